package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means the source path does not exist.
	ErrSourceNotFound = errors.New("data source not found")

	// ErrMissingColumns means the header lacks one or more required columns.
	ErrMissingColumns = errors.New("missing required column")

	// ErrEmptySource means the source had no header or no data.
	ErrEmptySource = errors.New("empty data source")

	// ErrInvalidCSV means the source could not be parsed as CSV.
	ErrInvalidCSV = errors.New("invalid csv")
)

// DataLoadError is returned when a source cannot be read or is malformed.
// Callers treat it as fatal: nothing downstream can run without a dataset.
type DataLoadError struct {
	Source string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load data: %v", e.Err)
	}
	return fmt.Sprintf("load data from %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// IsDataLoadError reports whether err is or wraps a *DataLoadError.
func IsDataLoadError(err error) bool {
	var dle *DataLoadError
	return errors.As(err, &dle)
}

func loadError(source string, err error) error {
	return &DataLoadError{Source: source, Err: err}
}
