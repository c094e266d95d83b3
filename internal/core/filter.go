package core

import (
	"slices"
)

// Indicators returns the distinct indicator names, sorted lexicographically.
// These are the valid choices for SelectIndicator.
func Indicators(records []Record) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range records {
		if _, ok := seen[rec.IndicatorName]; ok {
			continue
		}
		seen[rec.IndicatorName] = struct{}{}
		names = append(names, rec.IndicatorName)
	}
	slices.Sort(names)
	return names
}

// IndicatorCount is an indicator name with its number of rows.
type IndicatorCount struct {
	Name string
	Code string
	Rows int
}

// CountIndicators returns one entry per indicator, sorted by name.
// Code is taken from the first row of each indicator.
func CountIndicators(records []Record) []IndicatorCount {
	byName := make(map[string]*IndicatorCount)
	for _, rec := range records {
		c, ok := byName[rec.IndicatorName]
		if !ok {
			c = &IndicatorCount{Name: rec.IndicatorName, Code: rec.IndicatorCode}
			byName[rec.IndicatorName] = c
		}
		c.Rows++
	}

	names := Indicators(records)
	out := make([]IndicatorCount, len(names))
	for i, name := range names {
		out[i] = *byName[name]
	}
	return out
}

// SelectIndicator returns the records whose indicator name equals name
// exactly, in source order. The code comes from the first match, or NoCode
// when nothing matches. An empty selection is valid.
func SelectIndicator(records []Record, name string) Selection {
	sel := Selection{Name: name, Code: NoCode}
	for _, rec := range records {
		if rec.IndicatorName != name {
			continue
		}
		if len(sel.Records) == 0 {
			sel.Code = rec.IndicatorCode
		}
		sel.Records = append(sel.Records, rec)
	}
	return sel
}
