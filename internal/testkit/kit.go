package testkit

import (
	"datalens/adapters/tabular"
)

// NewTable builds a coerced table from literal headers and rows,
// mirroring what the file reader produces.
func NewTable(headers []string, rows [][]string) *tabular.Table {
	t := &tabular.Table{
		Headers: headers,
		Rows:    rows,
	}
	t.Types = tabular.CoerceColumnTypes(t)
	return t
}

// SalesTable generates a deterministic sales table for tests
func SalesTable(rowCount int) *tabular.Table {
	cfg := DefaultSalesConfig()
	cfg.RowCount = rowCount
	gen := NewSalesDataGenerator(cfg)
	return NewTable(gen.Headers(), gen.Generate())
}
