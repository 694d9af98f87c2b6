package tabular

import (
	"strings"
	"time"

	"datalens/domain/dataset"
)

// CoercionConfig defines the type-detection thresholds
type CoercionConfig struct {
	NumericThreshold  float64 // fraction of non-missing values that must parse as numbers
	BooleanThreshold  float64
	TemporalThreshold float64
	SampleSize        int // max rows inspected per column (0 = all)
	CategoricalMax    int // max distinct values for a column to count as categorical
}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold:  0.8,
		BooleanThreshold:  0.9,
		TemporalThreshold: 0.8,
		SampleSize:        1000,
		CategoricalMax:    50,
	}
}

// temporalLayouts are the date formats recognized during coercion
var temporalLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
	"Jan-2006",
}

// CoerceColumnTypes classifies every column of a table by sampling values
func CoerceColumnTypes(t *Table) map[string]dataset.ColumnType {
	return CoerceColumnTypesWith(t, DefaultCoercionConfig())
}

// CoerceColumnTypesWith classifies columns using the given config
func CoerceColumnTypesWith(t *Table, cfg CoercionConfig) map[string]dataset.ColumnType {
	types := make(map[string]dataset.ColumnType, len(t.Headers))
	for idx, header := range t.Headers {
		types[header] = coerceColumn(t, idx, cfg)
	}
	return types
}

func coerceColumn(t *Table, idx int, cfg CoercionConfig) dataset.ColumnType {
	limit := cfg.SampleSize
	if limit <= 0 || limit > len(t.Rows) {
		limit = len(t.Rows)
	}

	var total, numeric, boolean, temporal int
	distinct := make(map[string]struct{})

	for i := 0; i < limit; i++ {
		row := t.Rows[i]
		if idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[idx])
		if IsMissing(v) {
			continue
		}
		total++
		if _, ok := ParseNumeric(v); ok {
			numeric++
		}
		if isBoolean(v) {
			boolean++
		}
		if isTemporal(v) {
			temporal++
		}
		if len(distinct) <= cfg.CategoricalMax {
			distinct[v] = struct{}{}
		}
	}

	if total == 0 {
		return dataset.TypeText
	}

	// Boolean is checked before numeric: "0"/"1" columns parse as both
	// and the stricter boolean threshold disambiguates
	if float64(boolean)/float64(total) >= cfg.BooleanThreshold {
		return dataset.TypeBoolean
	}
	if float64(numeric)/float64(total) >= cfg.NumericThreshold {
		return dataset.TypeNumeric
	}
	if float64(temporal)/float64(total) >= cfg.TemporalThreshold {
		return dataset.TypeTemporal
	}
	if len(distinct) <= cfg.CategoricalMax {
		return dataset.TypeCategorical
	}
	return dataset.TypeText
}

func isBoolean(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no", "y", "n":
		return true
	}
	return false
}

func isTemporal(v string) bool {
	for _, layout := range temporalLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// ParseTemporal parses a cell as a timestamp using the recognized layouts
func ParseTemporal(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if IsMissing(s) {
		return time.Time{}, false
	}
	for _, layout := range temporalLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
