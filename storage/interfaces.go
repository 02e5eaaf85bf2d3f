package storage

import "carlist-scraper/models"

// RecordAppender is the interface any table backend must satisfy to
// receive extracted records one at a time.
type RecordAppender interface {
	Append(rec models.CarRecord) (string, error)
}

// TableLocator finds the table a processing run should read.
type TableLocator interface {
	LatestTable() (string, error)
}
