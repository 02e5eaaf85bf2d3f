package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"carlist-scraper/models"
	"carlist-scraper/utils"
)

const (
	tablePrefix     = "carlist_"
	tableExt        = ".csv"
	processedSuffix = "_processed"
	dateLayout      = "20060102"
)

// CSVStore keeps CarTables as date-named CSV files in one directory.
// Every append reads the whole current table and rewrites it, so a crash
// can lose at most the row being added.
type CSVStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewCSVStore returns a store rooted at dir. The directory is created on
// first append.
func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir, now: time.Now}
}

// WithClock overrides the clock used to name new tables.
func (s *CSVStore) WithClock(now func() time.Time) *CSVStore {
	s.now = now
	return s
}

// Dir returns the directory the store writes to.
func (s *CSVStore) Dir() string {
	return s.dir
}

// LatestTable returns the path of the newest raw table, chosen by
// lexicographic comparison of the date suffix. Processed outputs are not
// candidates.
func (s *CSVStore) LatestTable() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", utils.ErrNoTables
		}
		return "", utils.NewError(utils.KindStorage, "list tables", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !isRawTable(name) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", utils.ErrNoTables
	}

	sort.Slice(names, func(i, j int) bool {
		return tableSuffix(names[i]) > tableSuffix(names[j])
	})
	return filepath.Join(s.dir, names[0]), nil
}

// Append adds rec to the latest table, creating carlist_<YYYYMMDD>.csv
// when none exists, and returns the path written.
func (s *CSVStore) Append(rec models.CarRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", utils.NewError(utils.KindStorage, "create data dir", err)
	}

	path, err := s.LatestTable()
	table := &models.CarTable{}
	switch {
	case errors.Is(err, utils.ErrNoTables):
		path = filepath.Join(s.dir, tablePrefix+s.now().Format(dateLayout)+tableExt)
	case err != nil:
		return "", err
	default:
		if table, err = LoadTable(path); err != nil {
			return "", err
		}
	}

	table.EnsureColumns(rec)
	table.Rows = append(table.Rows, rec)

	if err := WriteTable(path, table); err != nil {
		return "", err
	}
	return path, nil
}

// LoadTable reads a CSV table. Short rows are padded with empty values.
func LoadTable(path string) (*models.CarTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, utils.NewError(utils.KindStorage, "open table", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return &models.CarTable{}, nil
	}
	if err != nil {
		return nil, utils.NewError(utils.KindStorage, "read header", err)
	}

	table := &models.CarTable{Columns: header}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, utils.NewError(utils.KindStorage, "read row", err)
		}
		rec := make(models.CarRecord, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				rec[col] = row[i]
			}
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

// WriteTable writes the whole table to path through a temporary file in
// the same directory.
func WriteTable(path string, table *models.CarTable) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".carlist-*.tmp")
	if err != nil {
		return utils.NewError(utils.KindStorage, "create temp file", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0644); err != nil {
		_ = tmp.Close()
		return utils.NewError(utils.KindStorage, "chmod temp file", err)
	}

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Columns); err != nil {
		_ = tmp.Close()
		return utils.NewError(utils.KindStorage, "write header", err)
	}
	for i := range table.Rows {
		if err := w.Write(table.Row(i)); err != nil {
			_ = tmp.Close()
			return utils.NewError(utils.KindStorage, "write row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return utils.NewError(utils.KindStorage, "flush table", err)
	}
	if err := tmp.Close(); err != nil {
		return utils.NewError(utils.KindStorage, "close temp file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return utils.NewError(utils.KindStorage, fmt.Sprintf("replace %s", path), err)
	}
	return nil
}

// ProcessedPath returns the sibling path holding the enriched table.
func ProcessedPath(path string) string {
	return strings.TrimSuffix(path, tableExt) + processedSuffix + tableExt
}

func isRawTable(name string) bool {
	return strings.HasPrefix(name, tablePrefix) &&
		strings.HasSuffix(name, tableExt) &&
		!strings.HasSuffix(name, processedSuffix+tableExt)
}

func tableSuffix(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, tablePrefix), tableExt)
}
