package engine

import (
	"strings"

	"datalens/adapters/tabular"
	"datalens/domain/query"
)

// ApplyFilters returns the indices of table rows matching the filters.
// Semantics: OR within a column's value list, AND across columns; range
// and contains conditions AND with everything else.
func ApplyFilters(t *tabular.Table, f query.Filters) []int {
	matched := make([]int, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		if rowMatches(t, i, f) {
			matched = append(matched, i)
		}
	}
	return matched
}

func rowMatches(t *tabular.Table, row int, f query.Filters) bool {
	for column, allowed := range f.Values {
		if len(allowed) == 0 {
			continue
		}
		cell := t.Cell(row, column)
		if !valueAllowed(cell, allowed) {
			return false
		}
	}

	for column, rng := range f.Ranges {
		v, ok := tabular.ParseNumeric(t.Cell(row, column))
		if !ok {
			return false
		}
		if rng.Min != nil && v < *rng.Min {
			return false
		}
		if rng.Max != nil && v > *rng.Max {
			return false
		}
	}

	for column, substr := range f.Contains {
		if substr == "" {
			continue
		}
		cell := t.Cell(row, column)
		if !strings.Contains(strings.ToLower(cell), strings.ToLower(substr)) {
			return false
		}
	}

	return true
}

func valueAllowed(cell string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(cell), strings.TrimSpace(a)) {
			return true
		}
	}
	return false
}
