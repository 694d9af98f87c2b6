package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/query"
	"datalens/internal"
	"datalens/internal/engine"
	"datalens/internal/profile"
	"datalens/internal/viz"
	"datalens/ports"
)

const defaultHistoryLimit = 50

// QueryService answers natural-language questions about a dataset
type QueryService struct {
	datasets   *DatasetService
	history    ports.QueryHistoryRepository
	translator ports.Translator
}

// NewQueryService creates a query service
func NewQueryService(datasets *DatasetService, history ports.QueryHistoryRepository, translator ports.Translator) *QueryService {
	return &QueryService{
		datasets:   datasets,
		history:    history,
		translator: translator,
	}
}

// Ask translates a question into a plan, executes it, and records the
// outcome in the dataset's query history.
func (s *QueryService) Ask(ctx context.Context, id core.DatasetID, question string) (*query.Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	ds, table, err := s.datasets.Table(ctx, id)
	if err != nil {
		return nil, err
	}

	translation, err := s.translator.Translate(ctx, question, table, ds.Metadata)
	if err != nil {
		s.record(ctx, id, question, "", nil, false, err)
		return nil, err
	}

	result, err := s.dispatch(ctx, translation, table)
	if err != nil {
		s.record(ctx, id, question, translation.Tier, specFor(translation), false, err)
		return nil, err
	}

	if result.Explanation == "" {
		result.Explanation = translation.Explanation
	}
	s.record(ctx, id, question, translation.Tier, specFor(translation), result.Success, nil)

	return result, nil
}

func specFor(t *ports.Translation) *query.Spec {
	if t.Action != ports.ActionRunSpec {
		return nil
	}
	spec := t.Spec
	return &spec
}

func (s *QueryService) dispatch(ctx context.Context, t *ports.Translation, table *tabular.Table) (*query.Result, error) {
	switch t.Action {
	case ports.ActionRunSpec:
		return engine.Execute(t.Spec, table)
	case ports.ActionColumnInfo:
		return columnInfoResult(ctx, table)
	case ports.ActionDescribe:
		return describeResult(ctx, table)
	case ports.ActionRowCount:
		return rowCountResult(table), nil
	case ports.ActionListColumns:
		return listColumnsResult(table), nil
	case ports.ActionMissing:
		return missingResult(table), nil
	case ports.ActionCorrelation:
		return correlationResult(table)
	default:
		return nil, fmt.Errorf("unknown translation action: %s", t.Action)
	}
}

func (s *QueryService) record(ctx context.Context, id core.DatasetID, question, tier string, spec *query.Spec, success bool, cause error) {
	entry := &query.HistoryEntry{
		ID:        core.NewQueryID(),
		DatasetID: id,
		Question:  question,
		Tier:      tier,
		Spec:      spec,
		Success:   success,
		CreatedAt: time.Now().UTC(),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := s.history.Append(ctx, entry); err != nil {
		internal.DefaultLogger.Warn("[QueryService] failed to record query history: %v", err)
	}
}

// History returns the most recent queries for a dataset
func (s *QueryService) History(ctx context.Context, id core.DatasetID, limit int) ([]*query.HistoryEntry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if _, err := s.datasets.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListByDataset(ctx, id, limit)
}

// BuildChart builds an explicitly requested chart, bypassing translation
func (s *QueryService) BuildChart(ctx context.Context, id core.DatasetID, spec query.Spec) (*query.Result, error) {
	_, table, err := s.datasets.Table(ctx, id)
	if err != nil {
		return nil, err
	}

	spec.Intent = query.IntentChart
	return engine.Execute(spec, table)
}

func columnInfoResult(ctx context.Context, table *tabular.Table) (*query.Result, error) {
	profiler := profile.NewProfiler(table)
	infos, err := profiler.ColumnInfos(ctx)
	if err != nil {
		return nil, err
	}

	data := &query.TableData{
		Title:   "Column Information",
		Columns: []string{"Column", "Type", "Non-Null", "Null", "Unique"},
		Total:   len(infos),
	}
	for _, info := range infos {
		data.Rows = append(data.Rows, []string{
			info.Column,
			string(info.DataType),
			fmt.Sprintf("%d", info.NonNullCount),
			fmt.Sprintf("%d", info.NullCount),
			fmt.Sprintf("%d", info.UniqueValues),
		})
	}

	return &query.Result{
		Success:   true,
		Type:      query.IntentTable,
		Reply:     fmt.Sprintf("The dataset has %d rows and %d columns.", table.RowCount(), table.ColumnCount()),
		TableData: data,
	}, nil
}

func describeResult(ctx context.Context, table *tabular.Table) (*query.Result, error) {
	briefs, err := profile.NewProfiler(table).Describe(ctx)
	if err != nil {
		return nil, err
	}
	if len(briefs) == 0 {
		return &query.Result{
			Success: true,
			Type:    query.IntentText,
			Reply:   "The dataset has no numeric columns to summarize.",
		}, nil
	}

	data := &query.TableData{
		Title:   "Statistical Summary",
		Columns: []string{"Column", "Count", "Mean", "Std", "Min", "25%", "Median", "75%", "Max"},
		Total:   len(briefs),
	}
	for _, b := range briefs {
		s := b.Summary
		data.Rows = append(data.Rows, []string{
			b.Name,
			fmt.Sprintf("%d", s.Count),
			formatStat(s.Mean), formatStat(s.StdDev),
			formatStat(s.Min), formatStat(s.Q25), formatStat(s.Median),
			formatStat(s.Q75), formatStat(s.Max),
		})
	}

	return &query.Result{
		Success:   true,
		Type:      query.IntentTable,
		Reply:     fmt.Sprintf("Statistical summary for %d numeric columns.", len(briefs)),
		TableData: data,
	}, nil
}

func rowCountResult(table *tabular.Table) *query.Result {
	return &query.Result{
		Success: true,
		Type:    query.IntentText,
		Reply:   fmt.Sprintf("The dataset has %d rows.", table.RowCount()),
		TextData: &query.TextData{
			Value:    fmt.Sprintf("%d", table.RowCount()),
			RawValue: float64(table.RowCount()),
			Count:    table.RowCount(),
		},
	}
}

func listColumnsResult(table *tabular.Table) *query.Result {
	return &query.Result{
		Success: true,
		Type:    query.IntentText,
		Reply:   fmt.Sprintf("The dataset has %d columns: %s.", len(table.Headers), strings.Join(table.Headers, ", ")),
		TextData: &query.TextData{
			Value: strings.Join(table.Headers, ", "),
		},
	}
}

func missingResult(table *tabular.Table) *query.Result {
	report := profile.NewProfiler(table).MissingReport()
	if len(report) == 0 {
		return &query.Result{
			Success: true,
			Type:    query.IntentText,
			Reply:   "No missing values found in the dataset.",
		}
	}

	data := &query.TableData{
		Title:   "Missing Values",
		Columns: []string{"Column", "Missing", "Percent"},
		Total:   len(report),
	}
	for _, m := range report {
		data.Rows = append(data.Rows, []string{
			m.Column,
			fmt.Sprintf("%d", m.MissingCount),
			fmt.Sprintf("%.1f%%", m.MissingPercent),
		})
	}

	return &query.Result{
		Success:   true,
		Type:      query.IntentTable,
		Reply:     fmt.Sprintf("%d columns have missing values.", len(report)),
		TableData: data,
	}
}

func correlationResult(table *tabular.Table) (*query.Result, error) {
	chart, err := viz.BuildCorrelationHeatmap(table, "Correlation Matrix")
	if err != nil {
		return nil, err
	}

	return &query.Result{
		Success:     true,
		Type:        query.IntentChart,
		Reply:       "Correlation matrix for numeric columns.",
		ChartConfig: chart,
	}, nil
}

func formatStat(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
