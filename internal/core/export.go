package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// ExportCSV serializes the (year, value) columns of a subset as UTF-8 CSV
// with a header row and no index column. Rows keep source order.
func ExportCSV(subset []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{ColYear, ColIndicatorValue}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range subset {
		if err := w.Write([]string{FormatNumber(rec.Year), FormatNumber(rec.Value)}); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFullCSV serializes every column of a subset: the five normalized
// columns followed by the dataset's pass-through columns. Loading the output
// again with the same country yields the same records.
func ExportFullCSV(ds *Dataset, subset []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{ColCountryName, ColIndicatorName, ColIndicatorCode, ColYear, ColIndicatorValue}
	header = append(header, ds.ExtraColumns...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for _, rec := range subset {
		row = row[:0]
		row = append(row,
			rec.Country,
			rec.IndicatorName,
			rec.IndicatorCode,
			FormatNumber(rec.Year),
			FormatNumber(rec.Value),
		)
		for i := range ds.ExtraColumns {
			cell := ""
			if i < len(rec.Extra) {
				cell = rec.Extra[i]
			}
			row = append(row, cell)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportFileName returns the download name for an indicator:
// "{indicator}_{country without spaces}.csv".
func ExportFileName(indicator, country string) string {
	if country == "" {
		country = DefaultCountry
	}
	return indicator + "_" + strings.ReplaceAll(country, " ", "") + ".csv"
}
