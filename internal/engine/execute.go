package engine

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/query"
	"datalens/internal/viz"
)

// Execute runs a query Spec against a table and returns a render-ready
// Result. All computation is local; the LLM is never consulted here.
func Execute(spec query.Spec, t *tabular.Table) (*query.Result, error) {
	spec = query.Normalize(spec)

	if err := validateSpec(spec, t); err != nil {
		return nil, err
	}

	if t.RowCount() == 0 {
		return &query.Result{
			Success: true,
			Type:    query.IntentText,
			Reply:   "No data available to analyze.",
		}, nil
	}

	log.Printf("[Engine] Executing spec: %d rows, intent=%s, aggregation=%s, measure=%s",
		t.RowCount(), spec.Intent, spec.Aggregation, spec.Measure)

	rows := ApplyFilters(t, spec.Filters)
	if len(rows) == 0 {
		return &query.Result{
			Success: true,
			Type:    query.IntentText,
			Reply:   "No records match your query filters. Try broadening your search.",
			Plan:    planString(spec),
		}, nil
	}

	groups := GroupAndAggregate(t, rows, spec)

	result := &query.Result{
		Success: true,
		Plan:    planString(spec),
	}

	switch spec.Intent {
	case query.IntentChart:
		chart, err := buildChart(spec, t, rows, groups)
		if err != nil {
			return nil, err
		}
		if chart == nil {
			result.Type = query.IntentText
			result.Reply = "Not enough data to generate a chart."
			return result, nil
		}
		result.Type = query.IntentChart
		result.ChartConfig = chart

	case query.IntentTable:
		result.Type = query.IntentTable
		result.TableData = buildTable(spec, t, rows, groups)

	default:
		result.Type = query.IntentText
		result.TextData = buildText(spec, t, rows, groups)
	}

	result.Reply = resolvePlaceholders(spec, t, rows, groups)
	return result, nil
}

func validateSpec(spec query.Spec, t *tabular.Table) error {
	if spec.Measure != "" && spec.Aggregation != query.AggCount && spec.Aggregation != query.AggList {
		if _, ok := t.ColumnIndex(spec.Measure); !ok {
			return core.NewColumnError(spec.Measure)
		}
	}
	for _, g := range spec.GroupBy {
		if _, ok := t.ColumnIndex(g); !ok {
			return core.NewColumnError(g)
		}
	}
	for _, c := range spec.Columns {
		if _, ok := t.ColumnIndex(c); !ok {
			return core.NewColumnError(c)
		}
	}
	for column := range spec.Filters.Values {
		if _, ok := t.ColumnIndex(column); !ok {
			return core.NewColumnError(column)
		}
	}
	for column := range spec.Filters.Ranges {
		if _, ok := t.ColumnIndex(column); !ok {
			return core.NewColumnError(column)
		}
	}
	for column := range spec.Filters.Contains {
		if _, ok := t.ColumnIndex(column); !ok {
			return core.NewColumnError(column)
		}
	}
	return nil
}

func buildChart(spec query.Spec, t *tabular.Table, rows []int, groups []query.Group) (*query.ChartConfig, error) {
	switch spec.Chart {
	case query.ChartHistogram:
		return viz.BuildHistogram(t, rows, spec.Measure, 0, spec.Title)
	case query.ChartBox:
		return viz.BuildBox(t, rows, spec.Measure, spec.Title)
	case query.ChartScatter:
		x := spec.Measure
		y := ""
		if len(spec.GroupBy) > 0 {
			x = spec.GroupBy[0]
			y = spec.Measure
		} else if len(spec.Columns) >= 2 {
			x = spec.Columns[0]
			y = spec.Columns[1]
		}
		return viz.BuildScatter(t, rows, x, y, spec.Title)
	case query.ChartHeatmap:
		return viz.BuildCorrelationHeatmap(t, spec.Title)
	default:
		return viz.BuildGroupChart(spec, groups), nil
	}
}

// buildTable renders either grouped aggregates or a raw row listing
func buildTable(spec query.Spec, t *tabular.Table, rows []int, groups []query.Group) *query.TableData {
	if spec.Aggregation == query.AggList || len(spec.GroupBy) == 0 {
		return buildRowListing(spec, t, rows)
	}

	measureLabel := spec.Measure
	if measureLabel == "" || spec.Aggregation == query.AggCount {
		measureLabel = "count"
	} else {
		measureLabel = fmt.Sprintf("%s(%s)", spec.Aggregation, spec.Measure)
	}

	data := &query.TableData{
		Title:   spec.Title,
		Columns: []string{spec.GroupBy[0], measureLabel},
		Total:   len(groups),
	}
	for _, g := range groups {
		data.Rows = append(data.Rows, []string{g.Label, formatValue(g.Value)})
	}
	return data
}

func buildRowListing(spec query.Spec, t *tabular.Table, rows []int) *query.TableData {
	columns := spec.Columns
	if len(columns) == 0 {
		columns = t.Headers
	}

	data := &query.TableData{
		Title:   spec.Title,
		Columns: columns,
		Total:   len(rows),
	}

	limit := spec.Limit
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}
	for _, idx := range rows[:limit] {
		record := make([]string, len(columns))
		for i, c := range columns {
			record[i] = t.Cell(idx, c)
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

func buildText(spec query.Spec, t *tabular.Table, rows []int, groups []query.Group) *query.TextData {
	if len(groups) == 0 {
		return &query.TextData{Value: "0", Count: 0}
	}

	// Single-group scalar answer; multi-group answers surface the top group
	top := groups[0]
	for _, g := range groups[1:] {
		if g.Value > top.Value {
			top = g
		}
	}

	return &query.TextData{
		Value:    formatValue(top.Value),
		RawValue: top.Value,
		Count:    len(rows),
	}
}

// planString renders the executed plan for display, standing in for the
// generated-code snippet a notebook tool would show
func planString(spec query.Spec) string {
	var parts []string

	if !spec.Filters.IsEmpty() {
		var conds []string
		for column, vals := range spec.Filters.Values {
			conds = append(conds, fmt.Sprintf("%s in [%s]", column, strings.Join(vals, ", ")))
		}
		for column, rng := range spec.Filters.Ranges {
			if rng.Min != nil {
				conds = append(conds, fmt.Sprintf("%s >= %v", column, *rng.Min))
			}
			if rng.Max != nil {
				conds = append(conds, fmt.Sprintf("%s <= %v", column, *rng.Max))
			}
		}
		for column, substr := range spec.Filters.Contains {
			conds = append(conds, fmt.Sprintf("%s contains %q", column, substr))
		}
		parts = append(parts, "filter "+strings.Join(conds, " and "))
	}

	if len(spec.GroupBy) > 0 {
		parts = append(parts, "group by "+strings.Join(spec.GroupBy, ", "))
	}

	switch spec.Aggregation {
	case query.AggList:
		parts = append(parts, "list rows")
	case query.AggCount:
		parts = append(parts, "count")
	default:
		if spec.Measure != "" {
			parts = append(parts, fmt.Sprintf("%s(%s)", spec.Aggregation, spec.Measure))
		}
	}

	if spec.SortBy != "" {
		parts = append(parts, "sort "+spec.SortBy)
	}
	if spec.Limit > 0 {
		parts = append(parts, fmt.Sprintf("limit %d", spec.Limit))
	}

	if len(parts) == 0 {
		return "select all rows"
	}
	return strings.Join(parts, " | ")
}

// resolvePlaceholders substitutes computed values into the reply template
func resolvePlaceholders(spec query.Spec, t *tabular.Table, rows []int, groups []query.Group) string {
	template := spec.Reply
	if template == "" {
		return defaultReply(spec, t, rows, groups)
	}

	values := measureValues(t, rows, spec.Measure)
	total := sum(values)
	replacements := map[string]string{
		"{total}":   formatValue(total),
		"{count}":   fmt.Sprintf("%d", len(rows)),
		"{measure}": spec.Measure,
	}

	if len(values) > 0 {
		replacements["{avg}"] = formatValue(total / float64(len(values)))
		minV, maxV := values[0], values[0]
		for _, v := range values[1:] {
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
		replacements["{min}"] = formatValue(minV)
		replacements["{max}"] = formatValue(maxV)
	}

	if len(groups) > 0 {
		top := groups[0]
		for _, g := range groups[1:] {
			if g.Value > top.Value {
				top = g
			}
		}
		replacements["{top_group}"] = top.Label
		replacements["{top_value}"] = formatValue(top.Value)
	}

	result := template
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return stripUnresolvedPlaceholders(result)
}

func defaultReply(spec query.Spec, t *tabular.Table, rows []int, groups []query.Group) string {
	switch spec.Aggregation {
	case query.AggCount:
		return fmt.Sprintf("Found %d matching rows.", len(rows))
	case query.AggList:
		return fmt.Sprintf("Showing %d rows.", len(rows))
	default:
		if spec.Measure != "" {
			values := measureValues(t, rows, spec.Measure)
			return fmt.Sprintf("Found %d rows; %s of %s is %s.",
				len(rows), spec.Aggregation, spec.Measure, formatValue(aggregateAll(values, spec.Aggregation)))
		}
	}
	return fmt.Sprintf("Found %d matching rows.", len(rows))
}

func aggregateAll(values []float64, agg query.Aggregation) float64 {
	if len(values) == 0 {
		return 0
	}
	switch agg {
	case query.AggAvg:
		return sum(values) / float64(len(values))
	case query.AggMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case query.AggMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return m
	default:
		return sum(values)
	}
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

var placeholderRegex = regexp.MustCompile(`\{[a-z_]+\}`)

func stripUnresolvedPlaceholders(text string) string {
	cleaned := placeholderRegex.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return text
	}
	return cleaned
}
