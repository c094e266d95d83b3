package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Table returns the (year, value) pairs sorted ascending by year.
// Rows sharing a year keep their source order.
func Table(subset []Record) []Point {
	points := toPoints(subset)
	slices.SortStableFunc(points, func(a, b Point) int {
		return cmp.Compare(a.Year, b.Year)
	})
	return points
}

// DuplicateYears decides how ChartSeries folds rows that share a year.
type DuplicateYears string

const (
	// DuplicateLast keeps the last value in source order.
	DuplicateLast DuplicateYears = "last"
	// DuplicateMean averages the values.
	DuplicateMean DuplicateYears = "mean"
	// DuplicateSum adds the values.
	DuplicateSum DuplicateYears = "sum"
)

// ParseDuplicateYears parses a policy name. Empty means DuplicateLast.
func ParseDuplicateYears(s string) (DuplicateYears, error) {
	switch p := DuplicateYears(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return DuplicateLast, nil
	case DuplicateLast, DuplicateMean, DuplicateSum:
		return p, nil
	default:
		return "", fmt.Errorf("unknown duplicate-years policy %q (want last, mean or sum)", s)
	}
}

// ChartSeries returns one point per distinct year, ascending, for charting.
//
// Source data should carry one row per year. When it does not, policy
// decides the value; DuplicateLast matches indexing a year-keyed series.
func ChartSeries(subset []Record, policy DuplicateYears) []Point {
	type acc struct {
		last, sum float64
		n         int
	}

	byYear := make(map[float64]*acc, len(subset))
	var years []float64
	for _, rec := range subset {
		a, ok := byYear[rec.Year]
		if !ok {
			a = &acc{}
			byYear[rec.Year] = a
			years = append(years, rec.Year)
		}
		a.last = rec.Value
		a.sum += rec.Value
		a.n++
	}
	slices.Sort(years)

	points := make([]Point, len(years))
	for i, y := range years {
		a := byYear[y]
		v := a.last
		switch policy {
		case DuplicateMean:
			v = a.sum / float64(a.n)
		case DuplicateSum:
			v = a.sum
		}
		points[i] = Point{Year: y, Value: v}
	}
	return points
}

// Summary holds the statistics shown next to the chart.
// All three values are zero when Count is zero; check HasData first.
type Summary struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
}

// HasData reports whether the summary covers at least one value.
func (s Summary) HasData() bool {
	return s.Count > 0
}

// NoData is shown in place of a metric for an empty selection.
const NoData = "no data"

// MeanText returns the mean with two decimals, or NoData.
func (s Summary) MeanText() string { return s.metric(s.Mean) }

// MaxText returns the maximum with two decimals, or NoData.
func (s Summary) MaxText() string { return s.metric(s.Max) }

// MinText returns the minimum with two decimals, or NoData.
func (s Summary) MinText() string { return s.metric(s.Min) }

func (s Summary) metric(v float64) string {
	if !s.HasData() {
		return NoData
	}
	return FormatMetric(v)
}

// Summarize computes mean, max and min over the Value column.
func Summarize(subset []Record) Summary {
	if len(subset) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(subset),
		Max:   subset[0].Value,
		Min:   subset[0].Value,
	}
	var sum float64
	for _, rec := range subset {
		sum += rec.Value
		s.Max = max(s.Max, rec.Value)
		s.Min = min(s.Min, rec.Value)
	}
	s.Mean = sum / float64(len(subset))
	return s
}

// BuildView runs every view over one selection.
func BuildView(sel Selection, policy DuplicateYears) View {
	return View{
		Selection: sel,
		Table:     Table(sel.Records),
		Chart:     ChartSeries(sel.Records, policy),
		Summary:   Summarize(sel.Records),
	}
}

func toPoints(subset []Record) []Point {
	points := make([]Point, len(subset))
	for i, rec := range subset {
		points[i] = Point{Year: rec.Year, Value: rec.Value}
	}
	return points
}
