package tabular

import (
	"testing"

	"datalens/domain/dataset"
)

func tableFromColumns(headers []string, cols [][]string) *Table {
	rowCount := 0
	for _, col := range cols {
		if len(col) > rowCount {
			rowCount = len(col)
		}
	}
	rows := make([][]string, rowCount)
	for i := range rows {
		row := make([]string, len(headers))
		for j, col := range cols {
			if i < len(col) {
				row[j] = col[i]
			}
		}
		rows[i] = row
	}
	t := &Table{Headers: headers, Rows: rows}
	t.Types = CoerceColumnTypes(t)
	return t
}

func TestCoerceColumnTypes(t *testing.T) {
	tbl := tableFromColumns(
		[]string{"amount", "flag", "when", "label", "note"},
		[][]string{
			{"1,200.50", "3", "42%", "7", "100"},
			{"true", "false", "yes", "no", "true"},
			{"2024-01-15", "2024-02-01", "01/15/2024", "2024-03-10", "2024-04-01"},
			{"red", "green", "red", "blue", "green"},
			{"1", "2", "3", "4", "5"},
		},
	)

	cases := map[string]dataset.ColumnType{
		"amount": dataset.TypeNumeric,
		"flag":   dataset.TypeBoolean,
		"when":   dataset.TypeTemporal,
		"label":  dataset.TypeCategorical,
		"note":   dataset.TypeNumeric,
	}
	for col, want := range cases {
		if got := tbl.Types[col]; got != want {
			t.Errorf("column %s: expected %s, got %s", col, want, got)
		}
	}
}

func TestCoerceColumnTypes_MissingTolerant(t *testing.T) {
	// 4 of 5 values numeric, one missing marker: still numeric
	tbl := tableFromColumns(
		[]string{"v"},
		[][]string{{"1", "2", "NA", "4", "5"}},
	)
	if tbl.Types["v"] != dataset.TypeNumeric {
		t.Errorf("expected numeric despite missing marker, got %s", tbl.Types["v"])
	}
}

func TestCoerceColumnTypes_AllMissing(t *testing.T) {
	tbl := tableFromColumns(
		[]string{"v"},
		[][]string{{"", "null", "n/a"}},
	)
	if tbl.Types["v"] != dataset.TypeText {
		t.Errorf("expected text for all-missing column, got %s", tbl.Types["v"])
	}
}

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{"1,234.5", 1234.5, true},
		{"85%", 85, true},
		{" 7 ", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumeric(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("ParseNumeric(%q) = %v, %v; want %v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NA", "n/a", "NULL", "None", "nan"} {
		if !IsMissing(v) {
			t.Errorf("expected %q to be missing", v)
		}
	}
	for _, v := range []string{"0", "false", "-"} {
		if IsMissing(v) {
			t.Errorf("expected %q to not be missing", v)
		}
	}
}

func TestParseTemporal(t *testing.T) {
	if _, ok := ParseTemporal("2024-06-15"); !ok {
		t.Error("expected ISO date to parse")
	}
	if _, ok := ParseTemporal("06/15/2024"); !ok {
		t.Error("expected US date to parse")
	}
	if _, ok := ParseTemporal("not a date"); ok {
		t.Error("expected garbage to fail parsing")
	}
}
