package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"datalens/domain/core"
)

// Reader handles reading Excel and CSV files into a Table
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	encoding string // set after a successful CSV read

	// Coercion controls type detection; callers may tune it before Read
	Coercion CoercionConfig
}

// fallbackEncodings are tried in order when a CSV is not valid UTF-8
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"latin-1", charmap.ISO8859_1},
	{"iso-8859-1", charmap.ISO8859_1},
	{"windows-1252", charmap.Windows1252},
}

// NewReader creates a reader that handles both Excel and CSV files
func NewReader(filePath string) (*Reader, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".csv":
		return &Reader{filePath: filePath, fileType: "csv", Coercion: DefaultCoercionConfig()}, nil
	case ".xlsx":
		return &Reader{filePath: filePath, fileType: "xlsx", Coercion: DefaultCoercionConfig()}, nil
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, ext)
	}
}

// Encoding returns the character encoding detected during the last read
func (r *Reader) Encoding() string { return r.encoding }

// Read loads the file into a Table with coerced column types
func (r *Reader) Read() (*Table, error) {
	log.Printf("[Reader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: need a header row and at least one data row", core.ErrEmptyTable)
	}

	return buildTable(rows, r.Coercion)
}

// readExcelRows reads the first sheet of an Excel workbook
func (r *Reader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", core.ErrEmptyTable)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	r.encoding = "utf-8"
	log.Printf("[Reader] Excel sheet %q read in %.2fms (%d rows)",
		sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// readCSVRows reads CSV data, retrying with legacy encodings on invalid UTF-8
func (r *Reader) readCSVRows() ([][]string, error) {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	if utf8.Valid(raw) {
		r.encoding = "utf-8"
		return parseCSV(bytes.NewReader(raw))
	}

	for _, fb := range fallbackEncodings {
		decoded, derr := fb.enc.NewDecoder().Bytes(raw)
		if derr != nil {
			continue
		}
		rows, perr := parseCSV(bytes.NewReader(decoded))
		if perr != nil {
			continue
		}
		log.Printf("[Reader] CSV decoded with fallback encoding %s", fb.name)
		r.encoding = fb.name
		return rows, nil
	}

	return nil, core.ErrBadEncoding
}

func parseCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1 // ragged rows are padded later
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	log.Printf("[Reader] CSV read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// buildTable converts raw string rows into a typed Table
func buildTable(rows [][]string, coercion CoercionConfig) (*Table, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		h := strings.TrimSpace(header)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// Pad short rows so every row has a cell per header
		if len(row) < len(headers) {
			padded := make([]string, len(headers))
			copy(padded, row)
			row = padded
		}
		data = append(data, row[:len(headers)])
	}

	table := &Table{Headers: headers, Rows: data}
	table.Types = CoerceColumnTypesWith(table, coercion)
	return table, nil
}
