package core

// convert.go turns raw CSV cells into normalized values.
//
// Source files are hand-edited exports, so headers and name cells carry stray
// whitespace and numeric cells hold placeholders like "n/a" or "..".
// Conversion never fails loudly: a cell that is not a number is reported as
// absent and the caller drops the row.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a plain decimal or scientific number.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// HeaderIndex maps trimmed, lowercased column names to their position.
type HeaderIndex map[string]int

// headerAliases maps alternate column names onto the required ones.
// Exports name the Value column "Indicator Value".
var headerAliases = map[string]string{
	strings.ToLower(ColIndicatorValue): strings.ToLower(ColValue),
}

func headerKey(name string) string {
	key := strings.ToLower(CleanHeader(name))
	if alias, ok := headerAliases[key]; ok {
		return alias
	}
	return key
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching, and aliases resolve to
// the column they stand for. When a name repeats, the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := headerKey(h)
		if _, dup := idx[key]; dup {
			continue
		}
		idx[key] = i
	}
	return idx
}

// Lookup returns the position of a column, matched case-insensitively.
func (h HeaderIndex) Lookup(name string) (int, bool) {
	i, ok := h[headerKey(name)]
	return i, ok
}

// Missing returns the names from want that the header does not contain,
// in the order given.
func (h HeaderIndex) Missing(want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := h.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// CleanHeader trims whitespace and surrounding quotes from a header cell.
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

// ParseNumber coerces a cell to a number.
// Returns false for empty cells, placeholders, NaN and anything that is not
// a plain decimal or scientific literal.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !numericRegex.MatchString(s) {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders a number in its shortest round-trip form without an
// exponent ("2010", "0.9").
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatMetric renders a summary metric with two decimals.
func FormatMetric(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
