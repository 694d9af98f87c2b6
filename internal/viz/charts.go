package viz

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/query"
	"datalens/internal/profile"
)

const (
	defaultHistogramBins = 30
	maxPieCategories     = 10
)

// BuildGroupChart renders grouped aggregates as a bar, grouped bar, line,
// pie, or time-series chart
func BuildGroupChart(spec query.Spec, groups []query.Group) *query.ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	title := spec.Title
	if title == "" && len(spec.GroupBy) > 0 {
		title = fmt.Sprintf("%s by %s", spec.Measure, spec.GroupBy[0])
	}

	config := &query.ChartConfig{
		ChartType: spec.Chart,
		Title:     title,
	}
	if len(spec.GroupBy) > 0 {
		config.XAxis = spec.GroupBy[0]
	}
	config.YAxis = spec.Measure

	switch spec.Chart {
	case query.ChartGroupedBar:
		return buildGroupedBar(config, spec, groups)
	case query.ChartPie:
		return buildPie(config, groups)
	case query.ChartTimeSeries:
		sorted := make([]query.Group, len(groups))
		copy(sorted, groups)
		sort.SliceStable(sorted, func(i, j int) bool {
			ti, iOK := tabular.ParseTemporal(sorted[i].Label)
			tj, jOK := tabular.ParseTemporal(sorted[j].Label)
			if iOK && jOK {
				return ti.Before(tj)
			}
			return sorted[i].Label < sorted[j].Label
		})
		groups = sorted
		config.ChartType = query.ChartLine
	}

	series := query.ChartSeries{Name: config.YAxis}
	if series.Name == "" {
		series.Name = "count"
	}
	for _, g := range groups {
		series.Data = append(series.Data, query.ChartPoint{Label: g.Label, Value: g.Value})
	}
	config.Series = []query.ChartSeries{series}
	return config
}

// buildGroupedBar builds one series per secondary group
func buildGroupedBar(config *query.ChartConfig, spec query.Spec, groups []query.Group) *query.ChartConfig {
	if len(spec.GroupBy) < 2 {
		config.ChartType = query.ChartBar
		series := query.ChartSeries{Name: config.YAxis}
		for _, g := range groups {
			series.Data = append(series.Data, query.ChartPoint{Label: g.Label, Value: g.Value})
		}
		config.Series = []query.ChartSeries{series}
		return config
	}

	// Collect secondary keys in first-seen order
	var secondary []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, sub := range g.SubGroups {
			if !seen[sub.Key] {
				seen[sub.Key] = true
				secondary = append(secondary, sub.Key)
			}
		}
	}

	config.ShowLegend = true
	for _, key := range secondary {
		series := query.ChartSeries{Name: key}
		for _, g := range groups {
			value := 0.0
			for _, sub := range g.SubGroups {
				if sub.Key == key {
					value = sub.Value
					break
				}
			}
			series.Data = append(series.Data, query.ChartPoint{Label: g.Label, Value: value})
		}
		config.Series = append(config.Series, series)
	}
	return config
}

// buildPie caps the slice count and folds the remainder into "Other"
func buildPie(config *query.ChartConfig, groups []query.Group) *query.ChartConfig {
	sorted := make([]query.Group, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value > sorted[j].Value })

	series := query.ChartSeries{Name: config.YAxis}
	var other float64
	for i, g := range sorted {
		if i < maxPieCategories {
			series.Data = append(series.Data, query.ChartPoint{Label: g.Label, Value: g.Value})
			continue
		}
		other += g.Value
	}
	if other > 0 {
		series.Data = append(series.Data, query.ChartPoint{Label: "Other", Value: other})
	}
	config.Series = []query.ChartSeries{series}
	config.ShowLegend = true
	return config
}

// BuildHistogram bins a numeric column into equal-width buckets
func BuildHistogram(t *tabular.Table, rows []int, column string, bins int, title string) (*query.ChartConfig, error) {
	if bins <= 0 {
		bins = defaultHistogramBins
	}

	values := collectNumeric(t, rows, column)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no numeric values in column %q", core.ErrInsufficientData, column)
	}

	minV, _ := stats.Min(values)
	maxV, _ := stats.Max(values)
	if minV == maxV {
		bins = 1
	}
	width := (maxV - minV) / float64(bins)
	if width == 0 {
		width = 1
	}

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}

	if title == "" {
		title = fmt.Sprintf("Distribution of %s", column)
	}
	config := &query.ChartConfig{
		ChartType: query.ChartHistogram,
		Title:     title,
		XAxis:     column,
		YAxis:     "frequency",
	}
	series := query.ChartSeries{Name: column}
	for i, count := range counts {
		lo := minV + float64(i)*width
		hi := lo + width
		series.Data = append(series.Data, query.ChartPoint{
			Label: fmt.Sprintf("%.2f–%.2f", lo, hi),
			Value: float64(count),
		})
	}
	config.Series = []query.ChartSeries{series}
	return config, nil
}

// BuildBox computes five-number summary points plus outliers for a box plot
func BuildBox(t *tabular.Table, rows []int, column string, title string) (*query.ChartConfig, error) {
	values := collectNumeric(t, rows, column)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no numeric values in column %q", core.ErrInsufficientData, column)
	}

	q25, _ := stats.Percentile(values, 25)
	median, _ := stats.Median(values)
	q75, _ := stats.Percentile(values, 75)
	iqr := q75 - q25
	lowerFence := q25 - 1.5*iqr
	upperFence := q75 + 1.5*iqr

	// Whiskers reach the most extreme in-fence values
	whiskerLow, whiskerHigh := math.Inf(1), math.Inf(-1)
	var outliers []float64
	for _, v := range values {
		if v < lowerFence || v > upperFence {
			outliers = append(outliers, v)
			continue
		}
		if v < whiskerLow {
			whiskerLow = v
		}
		if v > whiskerHigh {
			whiskerHigh = v
		}
	}

	if title == "" {
		title = fmt.Sprintf("Box Plot of %s", column)
	}
	config := &query.ChartConfig{
		ChartType: query.ChartBox,
		Title:     title,
		YAxis:     column,
	}
	summary := query.ChartSeries{
		Name: column,
		Data: []query.ChartPoint{
			{Label: "whisker_low", Value: whiskerLow},
			{Label: "q25", Value: q25},
			{Label: "median", Value: median},
			{Label: "q75", Value: q75},
			{Label: "whisker_high", Value: whiskerHigh},
		},
	}
	config.Series = []query.ChartSeries{summary}

	if len(outliers) > 0 {
		outlierSeries := query.ChartSeries{Name: "outliers"}
		for _, v := range outliers {
			outlierSeries.Data = append(outlierSeries.Data, query.ChartPoint{Label: "outlier", Value: v})
		}
		config.Series = append(config.Series, outlierSeries)
	}
	return config, nil
}

// BuildScatter plots two numeric columns against each other
func BuildScatter(t *tabular.Table, rows []int, xColumn, yColumn, title string) (*query.ChartConfig, error) {
	if yColumn == "" {
		return nil, core.NewSpecError("chart", "scatter plot needs two numeric columns")
	}

	series := query.ChartSeries{Name: yColumn}
	for _, idx := range rows {
		x, okX := tabular.ParseNumeric(t.Cell(idx, xColumn))
		y, okY := tabular.ParseNumeric(t.Cell(idx, yColumn))
		if !okX || !okY {
			continue
		}
		series.Data = append(series.Data, query.ChartPoint{X: x, Value: y})
	}
	if len(series.Data) == 0 {
		return nil, fmt.Errorf("%w: no paired numeric values for %q vs %q", core.ErrInsufficientData, yColumn, xColumn)
	}

	if title == "" {
		title = fmt.Sprintf("%s vs %s", yColumn, xColumn)
	}
	return &query.ChartConfig{
		ChartType: query.ChartScatter,
		Title:     title,
		XAxis:     xColumn,
		YAxis:     yColumn,
		Series:    []query.ChartSeries{series},
	}, nil
}

// BuildCorrelationHeatmap renders the numeric correlation matrix, one
// series per column
func BuildCorrelationHeatmap(t *tabular.Table, title string) (*query.ChartConfig, error) {
	matrix, err := profile.NewProfiler(t).Correlation()
	if err != nil {
		return nil, err
	}

	if title == "" {
		title = "Correlation Heatmap"
	}
	config := &query.ChartConfig{
		ChartType:  query.ChartHeatmap,
		Title:      title,
		ShowLegend: true,
	}
	for i, column := range matrix.Columns {
		series := query.ChartSeries{Name: column}
		for j, other := range matrix.Columns {
			series.Data = append(series.Data, query.ChartPoint{
				Label: other,
				Value: matrix.Values[i][j],
			})
		}
		config.Series = append(config.Series, series)
	}
	return config, nil
}

func collectNumeric(t *tabular.Table, rows []int, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, idx := range rows {
		if v, ok := tabular.ParseNumeric(t.Cell(idx, column)); ok {
			values = append(values, v)
		}
	}
	return values
}
