package core

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"
)

// LoadOptions controls normalization.
type LoadOptions struct {
	// Country is the only country kept (exact match after trimming).
	// Defaults to DefaultCountry.
	Country string

	// Source names the input in errors and load events.
	Source string
}

func (o LoadOptions) country() string {
	if o.Country == "" {
		return DefaultCountry
	}
	return o.Country
}

// LoadFile opens path and loads it. The returned dataset carries the file's
// signature so callers can tell when it changes.
func LoadFile(path string, opts LoadOptions) (*Dataset, error) {
	opts.Source = path

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, loadError(path, ErrSourceNotFound)
		}
		return nil, loadError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, loadError(path, err)
	}
	if info.IsDir() {
		return nil, loadError(path, fmt.Errorf("is a directory: %w", ErrSourceNotFound))
	}

	ds, err := Load(f, opts)
	if err != nil {
		return nil, err
	}
	ds.Source = Signature{Path: path, Size: info.Size(), ModTime: info.ModTime()}
	return ds, nil
}

// Load reads a CSV source and returns its normalized records.
//
// Headers are trimmed and matched case-insensitively. The country and
// indicator name cells are trimmed; all other cells are kept as read. Rows for
// other countries are excluded, and rows whose Year or Value is not a number
// are dropped. Records keep source order. A source with a header and no data
// rows yields an empty dataset.
func Load(r io.Reader, opts LoadOptions) (*Dataset, error) {
	start := time.Now()
	country := opts.country()

	// The header is read as row 0 so repeated names reach MakeHeaderIndex
	// unchanged and a header-only source still yields a frame.
	df := dataframe.ReadCSV(NewSourceReader(r),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, loadError(opts.Source, classifyReadError(df.Err))
	}

	cells := make([][]string, df.Ncol())
	names := make([]string, df.Ncol())
	for i, name := range df.Names() {
		cells[i] = df.Col(name).Records()
		names[i] = cells[i][0]
	}

	header := MakeHeaderIndex(names)
	if missing := header.Missing(RequiredColumns); len(missing) > 0 {
		return nil, loadError(opts.Source,
			fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", ")))
	}

	cols := make(map[string][]string, len(RequiredColumns))
	required := make(map[int]bool, len(RequiredColumns))
	for _, name := range RequiredColumns {
		i, _ := header.Lookup(name)
		required[i] = true
		cols[name] = cells[i][1:]
	}

	var extraNames []string
	var extraCols [][]string
	for i, name := range names {
		if required[i] {
			continue
		}
		extraNames = append(extraNames, CleanHeader(name))
		extraCols = append(extraCols, cells[i][1:])
	}

	rows := df.Nrow() - 1
	ds := &Dataset{
		LoadID:       uuid.New(),
		Source:       Signature{Path: opts.Source},
		Country:      country,
		ExtraColumns: extraNames,
		RawRows:      rows,
	}

	for row := 0; row < rows; row++ {
		if strings.TrimSpace(cols[ColCountryName][row]) != country {
			continue
		}
		ds.CountryRows++

		extra := make([]string, len(extraCols))
		for j, col := range extraCols {
			extra[j] = col[row]
		}

		rec, ok := normalizeRow(
			cols[ColCountryName][row],
			cols[ColIndicatorName][row],
			cols[ColIndicatorCode][row],
			cols[ColYear][row],
			cols[ColValue][row],
			extra,
		)
		if !ok {
			ds.Dropped++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	ds.LoadedAt = time.Now()
	ds.Duration = ds.LoadedAt.Sub(start)

	slog.Debug("dataset loaded",
		"source", opts.Source,
		"country", country,
		"raw_rows", ds.RawRows,
		"country_rows", ds.CountryRows,
		"kept", len(ds.Records),
		"dropped", ds.Dropped,
		"duration_ms", ds.Duration.Milliseconds(),
	)

	return ds, nil
}

// normalizeRow trims the name cells and coerces the numeric ones.
// Returns false when Year or Value is not a number.
func normalizeRow(country, indicator, code, year, value string, extra []string) (Record, bool) {
	y, ok := ParseNumber(year)
	if !ok {
		return Record{}, false
	}
	v, ok := ParseNumber(value)
	if !ok {
		return Record{}, false
	}
	return Record{
		Country:       strings.TrimSpace(country),
		IndicatorName: strings.TrimSpace(indicator),
		IndicatorCode: code,
		Year:          y,
		Value:         v,
		Extra:         extra,
	}, true
}

// Normalize re-applies trimming and the country filter to records that were
// already loaded. Applying it to the output of Load returns an identical set.
func Normalize(records []Record, country string) []Record {
	if country == "" {
		country = DefaultCountry
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		rec.Country = strings.TrimSpace(rec.Country)
		rec.IndicatorName = strings.TrimSpace(rec.IndicatorName)
		if rec.Country != country {
			continue
		}
		y, ok := ParseNumber(FormatNumber(rec.Year))
		if !ok {
			continue
		}
		v, ok := ParseNumber(FormatNumber(rec.Value))
		if !ok {
			continue
		}
		rec.Year, rec.Value = y, v
		out = append(out, rec)
	}
	return out
}

// classifyReadError maps dataframe read failures onto the load sentinels.
func classifyReadError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "empty") {
		return fmt.Errorf("%w: %v", ErrEmptySource, err)
	}
	return fmt.Errorf("%w: %v", ErrInvalidCSV, err)
}
