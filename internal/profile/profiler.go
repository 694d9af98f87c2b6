package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"datalens/adapters/tabular"
	"datalens/domain/dataset"
)

// ColumnInfo is the per-column overview row shown in the dataset overview
type ColumnInfo struct {
	Column       string             `json:"column"`
	DataType     dataset.ColumnType `json:"data_type"`
	NonNullCount int                `json:"non_null_count"`
	NullCount    int                `json:"null_count"`
	UniqueValues int                `json:"unique_values"`
	MemoryKB     float64            `json:"memory_kb"`

	// Numeric columns only
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Mean *float64 `json:"mean,omitempty"`

	// Low-cardinality categorical columns only
	SampleValues string `json:"sample_values,omitempty"`
}

// Profiler computes overview and summary statistics for a table
type Profiler struct {
	table *tabular.Table
}

// NewProfiler creates a profiler for the given table
func NewProfiler(table *tabular.Table) *Profiler {
	return &Profiler{table: table}
}

// ColumnInfos returns the per-column overview, computed concurrently
func (p *Profiler) ColumnInfos(ctx context.Context) ([]ColumnInfo, error) {
	infos := make([]ColumnInfo, len(p.table.Headers))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, header := range p.table.Headers {
		g.Go(func() error {
			info, err := p.columnInfo(header)
			if err != nil {
				return fmt.Errorf("profiling column %q: %w", header, err)
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func (p *Profiler) columnInfo(name string) (ColumnInfo, error) {
	raw, err := p.table.Column(name)
	if err != nil {
		return ColumnInfo{}, err
	}

	info := ColumnInfo{
		Column:   name,
		DataType: p.table.Types[name],
	}

	distinct := make(map[string]struct{})
	var bytes int
	for _, v := range raw {
		bytes += len(v)
		if tabular.IsMissing(v) {
			info.NullCount++
			continue
		}
		info.NonNullCount++
		distinct[v] = struct{}{}
	}
	info.UniqueValues = len(distinct)
	info.MemoryKB = float64(bytes) / 1024

	switch info.DataType {
	case dataset.TypeNumeric:
		data, nerr := p.table.NumericColumn(name)
		if nerr == nil && len(data) > 0 {
			summary, serr := ComputeSummary(data)
			if serr == nil {
				info.Min = &summary.Min
				info.Max = &summary.Max
				mean := summary.Mean
				info.Mean = &mean
			}
		}
	case dataset.TypeCategorical, dataset.TypeBoolean:
		if len(distinct) < 10 {
			info.SampleValues = sampleValues(raw, 5)
		}
	}

	return info, nil
}

// Describe returns statistical briefs for all numeric columns, computed
// concurrently. Column order follows the header order.
func (p *Profiler) Describe(ctx context.Context) ([]ColumnBrief, error) {
	numeric := p.table.NumericColumns()
	briefs := make([]ColumnBrief, 0, len(numeric))

	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, name := range numeric {
		g.Go(func() error {
			data, err := p.table.NumericColumn(name)
			if err != nil {
				return err
			}
			if len(data) == 0 {
				return nil // all-missing numeric column, nothing to describe
			}
			brief, err := ComputeBrief(name, data)
			if err != nil {
				return fmt.Errorf("describing column %q: %w", name, err)
			}
			mu.Lock()
			briefs = append(briefs, brief)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	order := make(map[string]int, len(numeric))
	for i, name := range numeric {
		order[name] = i
	}
	sort.Slice(briefs, func(i, j int) bool {
		return order[briefs[i].Name] < order[briefs[j].Name]
	})
	return briefs, nil
}

// BuildMetadata assembles persistent dataset metadata from the table
func (p *Profiler) BuildMetadata(ctx context.Context, sampleRows int) (dataset.Metadata, error) {
	infos, err := p.ColumnInfos(ctx)
	if err != nil {
		return dataset.Metadata{}, err
	}

	fields := make([]dataset.FieldInfo, len(infos))
	for i, info := range infos {
		fields[i] = dataset.FieldInfo{
			Name:         info.Column,
			DataType:     info.DataType,
			Nullable:     info.NullCount > 0,
			UniqueCount:  info.UniqueValues,
			MissingCount: info.NullCount,
		}
		if info.SampleValues != "" {
			fields[i].SampleValues = strings.Split(info.SampleValues, ", ")
		}
	}

	if sampleRows > p.table.RowCount() {
		sampleRows = p.table.RowCount()
	}
	samples := make([]map[string]string, 0, sampleRows)
	for i := 0; i < sampleRows; i++ {
		row := make(map[string]string, len(p.table.Headers))
		for _, h := range p.table.Headers {
			row[h] = p.table.Cell(i, h)
		}
		samples = append(samples, row)
	}

	return dataset.Metadata{Fields: fields, SampleRows: samples}, nil
}

// MissingRate returns the overall fraction of missing cells
func (p *Profiler) MissingRate() float64 {
	total := p.table.RowCount() * p.table.ColumnCount()
	if total == 0 {
		return 0
	}
	missing := 0
	for _, row := range p.table.Rows {
		for _, cell := range row {
			if tabular.IsMissing(cell) {
				missing++
			}
		}
	}
	return float64(missing) / float64(total)
}

func sampleValues(raw []string, n int) string {
	seen := make(map[string]struct{})
	var samples []string
	for _, v := range raw {
		if tabular.IsMissing(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		samples = append(samples, v)
		if len(samples) == n {
			break
		}
	}
	return strings.Join(samples, ", ")
}
