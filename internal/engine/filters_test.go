package engine

import (
	"testing"

	"datalens/adapters/tabular"
	"datalens/domain/query"
)

func salesTable() *tabular.Table {
	t := &tabular.Table{
		Headers: []string{"region", "category", "revenue", "product"},
		Rows: [][]string{
			{"North", "Electronics", "100", "Laptop Pro"},
			{"South", "Clothing", "50", "T-Shirt"},
			{"North", "Clothing", "75", "Jacket"},
			{"East", "Electronics", "200", "Laptop Air"},
			{"West", "Home", "30", "Lamp"},
		},
	}
	t.Types = tabular.CoerceColumnTypes(t)
	return t
}

func TestApplyFilters_Empty(t *testing.T) {
	tbl := salesTable()
	rows := ApplyFilters(tbl, query.Filters{})
	if len(rows) != 5 {
		t.Errorf("expected all 5 rows with no filters, got %d", len(rows))
	}
}

func TestApplyFilters_ValueOR(t *testing.T) {
	tbl := salesTable()
	rows := ApplyFilters(tbl, query.Filters{
		Values: map[string][]string{"region": {"North", "South"}},
	})
	if len(rows) != 3 {
		t.Errorf("expected 3 rows for North OR South, got %d", len(rows))
	}
}

func TestApplyFilters_ColumnsAND(t *testing.T) {
	tbl := salesTable()
	rows := ApplyFilters(tbl, query.Filters{
		Values: map[string][]string{
			"region":   {"North"},
			"category": {"Clothing"},
		},
	})
	if len(rows) != 1 {
		t.Fatalf("expected 1 row for North AND Clothing, got %d", len(rows))
	}
	if rows[0] != 2 {
		t.Errorf("expected row index 2, got %d", rows[0])
	}
}

func TestApplyFilters_CaseInsensitive(t *testing.T) {
	tbl := salesTable()
	rows := ApplyFilters(tbl, query.Filters{
		Values: map[string][]string{"region": {"north"}},
	})
	if len(rows) != 2 {
		t.Errorf("expected case-insensitive match on 2 rows, got %d", len(rows))
	}
}

func TestApplyFilters_Range(t *testing.T) {
	tbl := salesTable()
	min := 50.0
	max := 100.0
	rows := ApplyFilters(tbl, query.Filters{
		Ranges: map[string]query.Range{"revenue": {Min: &min, Max: &max}},
	})
	// 100, 50, 75 are within [50, 100]
	if len(rows) != 3 {
		t.Errorf("expected 3 rows in revenue range, got %d", len(rows))
	}
}

func TestApplyFilters_Contains(t *testing.T) {
	tbl := salesTable()
	rows := ApplyFilters(tbl, query.Filters{
		Contains: map[string]string{"product": "laptop"},
	})
	if len(rows) != 2 {
		t.Errorf("expected 2 laptop rows, got %d", len(rows))
	}
}

func TestApplyFilters_NoMatch(t *testing.T) {
	tbl := salesTable()
	rows := ApplyFilters(tbl, query.Filters{
		Values: map[string][]string{"region": {"Central"}},
	})
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}
