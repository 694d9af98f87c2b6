package tabular

import (
	"strconv"
	"strings"

	"datalens/domain/core"
	"datalens/domain/dataset"
)

// Table represents a fully loaded tabular dataset.
// All cells are kept as strings; typed access goes through the column
// type map so missing and malformed values stay observable.
type Table struct {
	Headers []string
	Rows    [][]string
	Types   map[string]dataset.ColumnType
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int { return len(t.Headers) }

// ColumnIndex returns the index of a column by header name
func (t *Table) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Headers {
		if h == name {
			return i, true
		}
	}
	return 0, false
}

// Cell returns the raw cell value at (row, column name).
// Missing columns and short rows read as empty strings.
func (t *Table) Cell(row int, name string) string {
	idx, ok := t.ColumnIndex(name)
	if !ok || row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if idx >= len(r) {
		return ""
	}
	return r[idx]
}

// Column returns all raw values of a column
func (t *Table) Column(name string) ([]string, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, core.NewColumnError(name)
	}
	values := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		if idx < len(r) {
			values[i] = r[idx]
		}
	}
	return values, nil
}

// NumericColumn returns the parsed values of a numeric column with
// missing and unparseable cells dropped.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	if ct, ok := t.Types[name]; ok && ct != dataset.TypeNumeric {
		return nil, core.ErrNonNumericColumn
	}
	raw, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	values := make([]float64, 0, len(raw))
	for _, v := range raw {
		f, ok := ParseNumeric(v)
		if !ok {
			continue
		}
		values = append(values, f)
	}
	return values, nil
}

// NumericColumns returns the names of all numeric columns in header order
func (t *Table) NumericColumns() []string {
	var names []string
	for _, h := range t.Headers {
		if t.Types[h] == dataset.TypeNumeric {
			names = append(names, h)
		}
	}
	return names
}

// CategoricalColumns returns the names of all categorical columns in header order
func (t *Table) CategoricalColumns() []string {
	var names []string
	for _, h := range t.Headers {
		if t.Types[h] == dataset.TypeCategorical {
			names = append(names, h)
		}
	}
	return names
}

// TemporalColumns returns the names of all temporal columns in header order
func (t *Table) TemporalColumns() []string {
	var names []string
	for _, h := range t.Headers {
		if t.Types[h] == dataset.TypeTemporal {
			names = append(names, h)
		}
	}
	return names
}

// IsMissing reports whether a raw cell value counts as missing
func IsMissing(v string) bool {
	s := strings.TrimSpace(v)
	if s == "" {
		return true
	}
	switch strings.ToLower(s) {
	case "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// ParseNumeric parses a cell as a float, tolerating thousands separators
// and surrounding whitespace. Missing markers parse as not-ok.
func ParseNumeric(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if IsMissing(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
