// Package core provides the data pipeline behind the indicator dashboard.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultCountry is the country the dashboard is restricted to.
const DefaultCountry = "Sri Lanka"

// NoCode is reported as the indicator code when a selection is empty.
const NoCode = "N/A"

// Column names as they appear in the source header (after trimming).
const (
	ColCountryName   = "Country Name"
	ColIndicatorName = "Indicator Name"
	ColIndicatorCode = "Indicator Code"
	ColYear          = "Year"
	ColValue         = "Value"

	// ColIndicatorValue is the exported name of the Value column.
	ColIndicatorValue = "Indicator Value"
)

// RequiredColumns lists the columns every source must provide.
var RequiredColumns = []string{
	ColCountryName,
	ColIndicatorName,
	ColIndicatorCode,
	ColYear,
	ColValue,
}

// Record is one normalized row.
//
// Country and IndicatorName are trimmed; Year and Value are well-formed
// numbers. IndicatorCode is kept exactly as read.
type Record struct {
	Country       string
	IndicatorName string
	IndicatorCode string
	Year          float64
	Value         float64

	// Extra holds the remaining cells of the row, aligned with
	// Dataset.ExtraColumns. Only the full-column export reads it.
	Extra []string
}

// Signature identifies one version of a source file.
type Signature struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// Equal reports whether two signatures describe the same file version.
func (s Signature) Equal(o Signature) bool {
	return s.Path == o.Path && s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Dataset is the normalized, read-only result of one load.
type Dataset struct {
	LoadID       uuid.UUID
	Source       Signature
	Country      string
	ExtraColumns []string
	Records      []Record

	RawRows     int // data rows in the source
	CountryRows int // rows matching the country before coercion
	Dropped     int // country rows dropped for a bad Year or Value

	LoadedAt time.Time
	Duration time.Duration
}

// Selection is the subset of a dataset for one indicator name.
type Selection struct {
	Name    string
	Code    string
	Records []Record
}

// Empty reports whether the selection matched no rows.
func (s Selection) Empty() bool {
	return len(s.Records) == 0
}

// Point is one (year, value) pair.
type Point struct {
	Year  float64 `json:"year"`
	Value float64 `json:"value"`
}

// View bundles everything a shell renders for one selection.
type View struct {
	Selection Selection
	Table     []Point
	Chart     []Point
	Summary   Summary
}

// LoadEvent describes one fresh (non-memoized) load.
type LoadEvent struct {
	ID          uuid.UUID
	Source      Signature
	Country     string
	RawRows     int
	CountryRows int
	Kept        int
	Dropped     int
	Duration    time.Duration
	LoadedAt    time.Time
}

// NewLoadEvent builds the event reported for a dataset.
func NewLoadEvent(ds *Dataset) LoadEvent {
	return LoadEvent{
		ID:          ds.LoadID,
		Source:      ds.Source,
		Country:     ds.Country,
		RawRows:     ds.RawRows,
		CountryRows: ds.CountryRows,
		Kept:        len(ds.Records),
		Dropped:     ds.Dropped,
		Duration:    ds.Duration,
		LoadedAt:    ds.LoadedAt,
	}
}

// LoadRecorder receives an event for every fresh load.
type LoadRecorder interface {
	RecordLoad(ctx context.Context, ev LoadEvent) error
}

// LoadLister returns the most recent load events, newest first.
type LoadLister interface {
	RecentLoads(ctx context.Context, limit int) ([]LoadEvent, error)
}
