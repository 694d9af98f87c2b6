package dataset

import (
	"time"

	"datalens/domain/core"
)

// Status represents the processing state of a dataset
type Status string

const (
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusFailed     Status = "failed"
)

// ColumnType classifies a column for profiling and query planning
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeTemporal    ColumnType = "temporal"
	TypeBoolean     ColumnType = "boolean"
	TypeText        ColumnType = "text"
)

// Dataset represents a stored dataset with its profile metadata
type Dataset struct {
	ID core.DatasetID `json:"id"`

	// File information
	OriginalFilename string `json:"original_filename"`
	FilePath         string `json:"file_path,omitempty"`
	FileSize         int64  `json:"file_size"`
	MimeType         string `json:"mime_type"`

	// Dataset statistics
	RecordCount int     `json:"record_count"`
	FieldCount  int     `json:"field_count"`
	MissingRate float64 `json:"missing_rate"`
	Source      string  `json:"source"` // "csv", "xlsx", "xls"

	// Processing state
	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Rich metadata stored as structured data
	Metadata Metadata `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Metadata contains detailed information about the dataset
type Metadata struct {
	Fields     []FieldInfo         `json:"fields"`
	SampleRows []map[string]string `json:"sample_rows"`
	FileInfo   FileInfo            `json:"file_info,omitempty"`
}

// FieldInfo describes a single field/column in the dataset
type FieldInfo struct {
	Name         string     `json:"name"`
	DataType     ColumnType `json:"data_type"`
	Nullable     bool       `json:"nullable"`
	UniqueCount  int        `json:"unique_count"`
	MissingCount int        `json:"missing_count"`
	SampleValues []string   `json:"sample_values,omitempty"`
}

// FileInfo contains file-specific metadata
type FileInfo struct {
	Encoding   string `json:"encoding,omitempty"`
	Delimiter  string `json:"delimiter,omitempty"`
	HasHeaders bool   `json:"has_headers"`
	SheetName  string `json:"sheet_name,omitempty"` // for Excel files
}

// NumericFields returns the names of numeric columns
func (m Metadata) NumericFields() []string {
	var names []string
	for _, f := range m.Fields {
		if f.DataType == TypeNumeric {
			names = append(names, f.Name)
		}
	}
	return names
}

// CategoricalFields returns the names of categorical columns
func (m Metadata) CategoricalFields() []string {
	var names []string
	for _, f := range m.Fields {
		if f.DataType == TypeCategorical {
			names = append(names, f.Name)
		}
	}
	return names
}

// TemporalFields returns the names of temporal columns
func (m Metadata) TemporalFields() []string {
	var names []string
	for _, f := range m.Fields {
		if f.DataType == TypeTemporal {
			names = append(names, f.Name)
		}
	}
	return names
}

// MarkReady transitions the dataset to the ready state
func (d *Dataset) MarkReady() {
	d.Status = StatusReady
	d.ErrorMessage = ""
	d.UpdatedAt = time.Now()
}

// MarkFailed transitions the dataset to the failed state with a reason
func (d *Dataset) MarkFailed(reason string) {
	d.Status = StatusFailed
	d.ErrorMessage = reason
	d.UpdatedAt = time.Now()
}
