package tabular

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"datalens/domain/core"
	"datalens/domain/dataset"
)

func writeTempCSV(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestNewReader_UnsupportedExtension(t *testing.T) {
	if _, err := NewReader("data.txt"); err == nil {
		t.Error("expected error for unsupported extension, got nil")
	}
	if _, err := NewReader("data.csv"); err != nil {
		t.Errorf("expected csv to be supported: %v", err)
	}
	if _, err := NewReader("data.XLSX"); err != nil {
		t.Errorf("expected xlsx to be supported regardless of case: %v", err)
	}
	// Legacy binary .xls is not parseable and must be rejected up front
	if _, err := NewReader("data.xls"); !errors.Is(err, core.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat for .xls, got %v", err)
	}
}

func TestReader_CoercionConfigApplied(t *testing.T) {
	csv := "v\n7\nabc\ndef\nghi\njkl\n"
	path := writeTempCSV(t, "mixed.csv", []byte(csv))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	table, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if table.Types["v"] == dataset.TypeNumeric {
		t.Fatal("column with 1/5 numeric values should not coerce numeric by default")
	}

	// Sampling only the first row makes the column look fully numeric
	reader, err = NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	reader.Coercion.SampleSize = 1
	table, err = reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if table.Types["v"] != dataset.TypeNumeric {
		t.Errorf("expected numeric with sample size 1, got %s", table.Types["v"])
	}
}

func TestReader_ReadCSV(t *testing.T) {
	csv := "name,age,city\nAlice,30,Boston\nBob,25,Seattle\nCara,41,Austin\n"
	path := writeTempCSV(t, "people.csv", []byte(csv))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	table, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if table.RowCount() != 3 {
		t.Errorf("expected 3 rows, got %d", table.RowCount())
	}
	if table.ColumnCount() != 3 {
		t.Errorf("expected 3 columns, got %d", table.ColumnCount())
	}
	if table.Headers[0] != "name" || table.Headers[2] != "city" {
		t.Errorf("unexpected headers: %v", table.Headers)
	}
	if reader.Encoding() != "utf-8" {
		t.Errorf("expected utf-8 encoding, got %q", reader.Encoding())
	}
	if table.Types["age"] != dataset.TypeNumeric {
		t.Errorf("expected age to be numeric, got %s", table.Types["age"])
	}
}

func TestReader_ReadCSV_Latin1Fallback(t *testing.T) {
	// "café" with a latin-1 encoded é (0xE9), invalid as UTF-8
	raw := []byte("name,drink\nJos\xe9,caf\xe9\nAnna,tea\n")
	path := writeTempCSV(t, "latin.csv", raw)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	table, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed on latin-1 file: %v", err)
	}

	if reader.Encoding() == "utf-8" {
		t.Error("expected a fallback encoding, got utf-8")
	}
	if got := table.Cell(0, "name"); got != "José" {
		t.Errorf("expected decoded name José, got %q", got)
	}
}

func TestReader_ReadCSV_RaggedRows(t *testing.T) {
	// Short rows get padded to header width
	csv := "a,b,c\n1,2\n3,4,5\n"
	path := writeTempCSV(t, "ragged.csv", []byte(csv))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	table, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(table.Rows[0]) != 3 {
		t.Errorf("expected short row padded to 3 cells, got %d", len(table.Rows[0]))
	}
	if table.Rows[0][2] != "" {
		t.Errorf("expected empty padding cell, got %q", table.Rows[0][2])
	}
}

func TestReader_ReadCSV_HeaderOnly(t *testing.T) {
	path := writeTempCSV(t, "empty.csv", []byte("a,b,c\n"))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	if _, err := reader.Read(); err == nil {
		t.Error("expected error for header-only file, got nil")
	}
}

func TestReader_ReadCSV_BlankHeaders(t *testing.T) {
	csv := "a,,c\n1,2,3\n"
	path := writeTempCSV(t, "blank.csv", []byte(csv))

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	table, err := reader.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if table.Headers[1] != "column_2" {
		t.Errorf("expected blank header renamed to column_2, got %q", table.Headers[1])
	}
}
