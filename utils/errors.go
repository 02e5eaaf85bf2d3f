package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so callers can decide whether to retry.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindTimeout ErrorKind = "timeout"
	KindParsing ErrorKind = "parsing"
	KindConfig  ErrorKind = "config"
	KindStorage ErrorKind = "storage"
)

var (
	// ErrWaitTimeout is returned when a bounded browser wait expires.
	ErrWaitTimeout = errors.New("wait timed out")
	// ErrNextControlMissing is returned when a results page has no pagination control.
	ErrNextControlMissing = errors.New("pagination next control not found")
	// ErrNoTables is returned when the data directory holds no carlist table.
	ErrNoTables = errors.New("no carlist CSV files found")
	// ErrIncomplete marks an extraction that did not recover every field.
	ErrIncomplete = errors.New("incomplete record")
)

// ScrapeError wraps an underlying error with its kind and the operation
// that produced it.
type ScrapeError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ScrapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Op)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewError builds a ScrapeError.
func NewError(kind ErrorKind, op string, err error) *ScrapeError {
	return &ScrapeError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first ScrapeError in err's chain, or "".
func KindOf(err error) ErrorKind {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
