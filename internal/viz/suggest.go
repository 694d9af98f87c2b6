package viz

import (
	"datalens/adapters/tabular"
	"datalens/domain/query"
)

// Suggestion pairs a recommended chart with its reason
type Suggestion struct {
	Chart  query.ChartKind `json:"chart"`
	Reason string          `json:"reason"`
}

// Suggest recommends visualizations based on the column type mix
func Suggest(t *tabular.Table) []Suggestion {
	var suggestions []Suggestion

	numeric := t.NumericColumns()
	categorical := t.CategoricalColumns()
	temporal := t.TemporalColumns()

	if len(numeric) >= 2 {
		suggestions = append(suggestions,
			Suggestion{query.ChartHeatmap, "shows relationships between numeric variables"},
			Suggestion{query.ChartScatter, "compare two numeric variables"})
	}
	if len(numeric) >= 1 {
		suggestions = append(suggestions,
			Suggestion{query.ChartHistogram, "distribution of numeric variables"},
			Suggestion{query.ChartBox, "identify outliers and distribution shape"})
	}
	if len(categorical) >= 1 {
		suggestions = append(suggestions,
			Suggestion{query.ChartBar, "frequency of categorical variables"})
	}
	if len(categorical) >= 1 && len(numeric) >= 1 {
		suggestions = append(suggestions,
			Suggestion{query.ChartGroupedBar, "numeric values by categories"})
	}
	if len(temporal) > 0 {
		suggestions = append(suggestions,
			Suggestion{query.ChartTimeSeries, "trends over time"})
	}

	return suggestions
}
