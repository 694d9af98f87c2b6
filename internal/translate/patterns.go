package translate

import (
	"regexp"
	"strconv"
	"strings"

	"datalens/adapters/tabular"
	"datalens/domain/query"
	"datalens/ports"
)

const defaultTopN = 10

var numberRegex = regexp.MustCompile(`\d+`)

// matchPattern tries the cheap keyword tier before any LLM call.
// Returns nil when no rule matches.
func matchPattern(question string, table *tabular.Table) *ports.Translation {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return nil
	}

	// "show me the top 10 rows"
	if strings.Contains(q, "top") && containsAny(q, "rows", "records", "entries") {
		n := extractNumber(question, defaultTopN)
		return &ports.Translation{
			Action: ports.ActionRunSpec,
			Spec: query.Spec{
				Intent:      query.IntentTable,
				Aggregation: query.AggList,
				Limit:       n,
			},
			Tier:        "pattern",
			Explanation: "Showing the first rows of the dataset",
		}
	}

	// "first N rows", "head"
	if strings.HasPrefix(q, "head") || (strings.Contains(q, "first") && containsAny(q, "rows", "records")) {
		n := extractNumber(question, defaultTopN)
		return &ports.Translation{
			Action: ports.ActionRunSpec,
			Spec: query.Spec{
				Intent:      query.IntentTable,
				Aggregation: query.AggList,
				Limit:       n,
			},
			Tier:        "pattern",
			Explanation: "Showing the first rows of the dataset",
		}
	}

	// Dataset overview / column info
	if containsAny(q, "info", "information", "overview") {
		return &ports.Translation{
			Action:      ports.ActionColumnInfo,
			Tier:        "pattern",
			Explanation: "Dataset overview and column information",
		}
	}

	// Statistical summary
	if containsAny(q, "statistics", "stats", "describe", "summary") {
		return &ports.Translation{
			Action:      ports.ActionDescribe,
			Tier:        "pattern",
			Explanation: "Statistical summary of numeric columns",
		}
	}

	// Row count
	if containsAny(q, "how many rows", "number of rows", "row count", "count of rows") {
		return &ports.Translation{
			Action:      ports.ActionRowCount,
			Tier:        "pattern",
			Explanation: "Total row count of the dataset",
		}
	}

	// Column list
	if containsAny(q, "columns", "column names", "fields", "variables") {
		return &ports.Translation{
			Action:      ports.ActionListColumns,
			Tier:        "pattern",
			Explanation: "List of all columns in the dataset",
		}
	}

	// Missing values
	if containsAny(q, "missing", "null", "nan", "empty values") {
		return &ports.Translation{
			Action:      ports.ActionMissing,
			Tier:        "pattern",
			Explanation: "Analysis of missing values in the dataset",
		}
	}

	// Correlation
	if strings.Contains(q, "correlation") || strings.Contains(q, "corr ") || strings.HasSuffix(q, "corr") {
		return &ports.Translation{
			Action:      ports.ActionCorrelation,
			Tier:        "pattern",
			Explanation: "Correlation matrix for numeric columns",
		}
	}

	// "average of <column>" for a known numeric column
	if spec := matchAggregate(q, table); spec != nil {
		return &ports.Translation{
			Action:      ports.ActionRunSpec,
			Spec:        *spec,
			Tier:        "pattern",
			Explanation: "Aggregate over a numeric column",
		}
	}

	return nil
}

// aggWords maps aggregation phrasings in match order: longer words
// first so "minimum" never half-matches as "min", and the order is
// fixed so repeated questions always pick the same aggregation
var aggWords = []struct {
	word string
	agg  query.Aggregation
}{
	{"average", query.AggAvg},
	{"mean", query.AggAvg},
	{"minimum", query.AggMin},
	{"maximum", query.AggMax},
	{"total", query.AggSum},
	{"sum", query.AggSum},
	{"min", query.AggMin},
	{"max", query.AggMax},
}

// aggPlaceholders pairs each aggregation with the reply placeholder
// that computes it
var aggPlaceholders = map[query.Aggregation]string{
	query.AggSum: "{total}",
	query.AggAvg: "{avg}",
	query.AggMin: "{min}",
	query.AggMax: "{max}",
}

// matchAggregate recognizes "<agg> of <column>" phrasings against actual
// column names
func matchAggregate(q string, table *tabular.Table) *query.Spec {
	var agg query.Aggregation
	for _, entry := range aggWords {
		if strings.Contains(q, entry.word) {
			agg = entry.agg
			break
		}
	}
	if agg == "" {
		return nil
	}

	for _, name := range table.NumericColumns() {
		if strings.Contains(q, strings.ToLower(name)) {
			return &query.Spec{
				Intent:      query.IntentText,
				Aggregation: agg,
				Measure:     name,
				Reply:       "The " + string(agg) + " of " + name + " is " + aggPlaceholders[agg] + ".",
			}
		}
	}
	return nil
}

func containsAny(q string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func extractNumber(text string, defaultValue int) int {
	if match := numberRegex.FindString(text); match != "" {
		if n, err := strconv.Atoi(match); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
