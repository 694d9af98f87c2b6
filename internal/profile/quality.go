package profile

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
)

// MissingColumn reports missing values for one column
type MissingColumn struct {
	Column         string  `json:"column"`
	MissingCount   int     `json:"missing_count"`
	MissingPercent float64 `json:"missing_percent"`
}

// QualityReport summarizes dataset-level quality metrics
type QualityReport struct {
	TotalRecords    int `json:"total_records"`
	TotalColumns    int `json:"total_columns"`
	DuplicateRows   int `json:"duplicate_rows"`
	CompleteRecords int `json:"complete_records"`
	NumericColumns  int `json:"numeric_columns"`
	TextColumns     int `json:"text_columns"`
	TemporalColumns int `json:"temporal_columns"`
}

// ValidationReport flags structural problems and suggests next steps
type ValidationReport struct {
	IsValid         bool     `json:"is_valid"`
	Warnings        []string `json:"warnings,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// CorrelationMatrix holds pairwise Pearson correlations for numeric columns
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// MissingReport analyzes missing data per column, sorted by missing count
// descending. Columns with no missing values are omitted.
func (p *Profiler) MissingReport() []MissingColumn {
	var report []MissingColumn
	rows := p.table.RowCount()
	for _, header := range p.table.Headers {
		raw, err := p.table.Column(header)
		if err != nil {
			continue
		}
		missing := 0
		for _, v := range raw {
			if tabular.IsMissing(v) {
				missing++
			}
		}
		if missing == 0 {
			continue
		}
		report = append(report, MissingColumn{
			Column:         header,
			MissingCount:   missing,
			MissingPercent: round2(float64(missing) / float64(rows) * 100),
		})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].MissingCount != report[j].MissingCount {
			return report[i].MissingCount > report[j].MissingCount
		}
		return report[i].Column < report[j].Column
	})
	return report
}

// Quality generates the dataset-level quality report
func (p *Profiler) Quality() QualityReport {
	report := QualityReport{
		TotalRecords: p.table.RowCount(),
		TotalColumns: p.table.ColumnCount(),
	}

	seen := make(map[string]int)
	for _, row := range p.table.Rows {
		key := strings.Join(row, "\x1f")
		seen[key]++
	}
	for _, count := range seen {
		if count > 1 {
			report.DuplicateRows += count - 1
		}
	}

	for _, row := range p.table.Rows {
		complete := true
		for _, cell := range row {
			if tabular.IsMissing(cell) {
				complete = false
				break
			}
		}
		if complete {
			report.CompleteRecords++
		}
	}

	for _, t := range p.table.Types {
		switch t {
		case dataset.TypeNumeric:
			report.NumericColumns++
		case dataset.TypeTemporal:
			report.TemporalColumns++
		default:
			report.TextColumns++
		}
	}

	return report
}

// Validate checks the table for structural problems
func (p *Profiler) Validate() ValidationReport {
	report := ValidationReport{IsValid: true}

	if p.table.RowCount() == 0 {
		report.Errors = append(report.Errors, "table is empty")
		report.IsValid = false
		return report
	}

	if p.table.RowCount() > 1_000_000 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("large dataset (%d rows), consider sampling for better performance", p.table.RowCount()))
	}

	memoryMB := p.estimateMemoryMB()
	if memoryMB > 500 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("high memory usage (%.1f MB), consider data optimization", memoryMB))
	}

	if rate := p.MissingRate(); rate > 0.5 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("high percentage of missing values (%.1f%%)", rate*100))
	}

	quality := p.Quality()
	if quality.DuplicateRows > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("found %d duplicate rows", quality.DuplicateRows))
	}

	if allNull := p.allNullColumns(); len(allNull) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("columns with all missing values: %s", strings.Join(allNull, ", ")))
	}

	if len(p.table.NumericColumns()) >= 2 {
		report.Recommendations = append(report.Recommendations,
			"consider correlation analysis between numeric variables")
	}
	if len(p.table.CategoricalColumns()) > 0 {
		report.Recommendations = append(report.Recommendations,
			"explore categorical variable distributions")
	}

	return report
}

// SuggestAnalyses proposes analyses based on the column type mix
func (p *Profiler) SuggestAnalyses() []string {
	var suggestions []string

	numeric := p.table.NumericColumns()
	categorical := p.table.CategoricalColumns()
	temporal := p.table.TemporalColumns()

	if len(numeric) >= 2 {
		suggestions = append(suggestions,
			"correlation analysis between numeric variables",
			"statistical summary of numeric columns")
	}
	if len(categorical) > 0 {
		suggestions = append(suggestions, "frequency analysis of categorical variables")
	}
	if len(numeric) > 0 && len(categorical) > 0 {
		suggestions = append(suggestions, "group-by analysis (numeric by categories)")
	}
	if len(temporal) > 0 {
		suggestions = append(suggestions, "time series analysis")
	}
	if len(numeric) > 0 {
		suggestions = append(suggestions, "outlier detection and analysis")
	}

	return suggestions
}

// Correlation computes the pairwise Pearson correlation matrix for numeric
// columns. Rows with a missing value in either column of a pair are
// dropped pairwise.
func (p *Profiler) Correlation() (*CorrelationMatrix, error) {
	numeric := p.table.NumericColumns()
	if len(numeric) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 numeric columns for correlation", core.ErrInsufficientData)
	}

	matrix := &CorrelationMatrix{
		Columns: numeric,
		Values:  make([][]float64, len(numeric)),
	}
	for i := range matrix.Values {
		matrix.Values[i] = make([]float64, len(numeric))
		matrix.Values[i][i] = 1
	}

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			r := p.pairwiseCorrelation(numeric[i], numeric[j])
			matrix.Values[i][j] = r
			matrix.Values[j][i] = r
		}
	}

	return matrix, nil
}

func (p *Profiler) pairwiseCorrelation(colA, colB string) float64 {
	rawA, errA := p.table.Column(colA)
	rawB, errB := p.table.Column(colB)
	if errA != nil || errB != nil {
		return 0
	}

	var xs, ys []float64
	for i := range rawA {
		a, okA := tabular.ParseNumeric(rawA[i])
		b, okB := tabular.ParseNumeric(rawB[i])
		if !okA || !okB {
			continue
		}
		xs = append(xs, a)
		ys = append(ys, b)
	}
	if len(xs) < 2 {
		return 0
	}
	return round4(stat.Correlation(xs, ys, nil))
}

func (p *Profiler) estimateMemoryMB() float64 {
	var bytes int
	for _, row := range p.table.Rows {
		for _, cell := range row {
			bytes += len(cell)
		}
	}
	return float64(bytes) / 1024 / 1024
}

func (p *Profiler) allNullColumns() []string {
	var cols []string
	for _, header := range p.table.Headers {
		raw, err := p.table.Column(header)
		if err != nil {
			continue
		}
		allNull := true
		for _, v := range raw {
			if !tabular.IsMissing(v) {
				allNull = false
				break
			}
		}
		if allNull {
			cols = append(cols, header)
		}
	}
	return cols
}

func round2(v float64) float64 { return float64(int(v*100+0.5)) / 100 }

func round4(v float64) float64 {
	if v < 0 {
		return float64(int(v*10000-0.5)) / 10000
	}
	return float64(int(v*10000+0.5)) / 10000
}
