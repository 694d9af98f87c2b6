package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"datalens/domain/dataset"
)

func TestGenerate_RowCountWithDuplicates(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.RowCount = 200
	cfg.DuplicateRate = 0.05

	rows := NewSalesDataGenerator(cfg).Generate()
	if len(rows) != 210 {
		t.Errorf("expected 200 base rows + 10 duplicates, got %d", len(rows))
	}

	headers := NewSalesDataGenerator(cfg).Headers()
	for i, row := range rows {
		if len(row) != len(headers) {
			t.Fatalf("row %d has %d fields, want %d", i, len(row), len(headers))
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.RowCount = 50

	a := NewSalesDataGenerator(cfg).Generate()
	b := NewSalesDataGenerator(cfg).Generate()
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce identical data")
	}

	cfg.Seed = 7
	c := NewSalesDataGenerator(cfg).Generate()
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different data")
	}
}

func TestGenerate_KeyColumnNeverMissing(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.RowCount = 300
	cfg.MissingRate = 0.2

	rows := NewSalesDataGenerator(cfg).Generate()
	for i, row := range rows {
		if row[0] == "" {
			t.Fatalf("row %d has an empty order_id", i)
		}
	}
}

func TestGenerate_DatesInRange(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.RowCount = 100
	cfg.MissingRate = 0

	rows := NewSalesDataGenerator(cfg).Generate()
	for i, row := range rows {
		d, err := time.Parse("2006-01-02", row[1])
		if err != nil {
			t.Fatalf("row %d has unparseable date %q", i, row[1])
		}
		if d.Before(cfg.StartDate) || d.After(cfg.EndDate) {
			t.Errorf("row %d date %s outside configured range", i, row[1])
		}
	}
}

func TestWriteCSV(t *testing.T) {
	cfg := DefaultSalesConfig()
	cfg.RowCount = 25
	path := filepath.Join(t.TempDir(), "sales.csv")

	if err := NewSalesDataGenerator(cfg).WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("csv read failed: %v", err)
	}
	if records[0][0] != "order_id" {
		t.Errorf("expected header row, got %v", records[0])
	}
	if len(records) < 26 {
		t.Errorf("expected at least 26 records incl. header, got %d", len(records))
	}
}

func TestSalesTable_Coerced(t *testing.T) {
	tbl := SalesTable(60)
	if tbl.RowCount() < 60 {
		t.Fatalf("expected at least 60 rows, got %d", tbl.RowCount())
	}
	if tbl.Types["revenue"] != dataset.TypeNumeric {
		t.Errorf("expected revenue numeric, got %s", tbl.Types["revenue"])
	}
	if tbl.Types["region"] != dataset.TypeCategorical {
		t.Errorf("expected region categorical, got %s", tbl.Types["region"])
	}
}
