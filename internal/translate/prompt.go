package translate

import (
	"fmt"
	"strings"

	"datalens/domain/dataset"
)

const maxSampleRows = 3

const systemContext = `You are a data analysis planner. You translate a user's natural
language question about a tabular dataset into a JSON query plan. You never write
code. You only emit a single JSON object matching this schema:

{
  "intent": "chart" | "table" | "text",
  "filters": {
    "values": {"<column>": ["<value>", ...]},
    "ranges": {"<column>": {"min": <number>, "max": <number>}},
    "contains": {"<column>": "<substring>"}
  },
  "aggregation": "count" | "sum" | "avg" | "min" | "max" | "list",
  "measure": "<numeric column to aggregate, empty for count/list>",
  "group_by": ["<column>", ...],
  "sort_by": "value_desc" | "value_asc" | "label_asc" | "label_desc",
  "limit": <number, 0 for no limit>,
  "chart": "bar" | "grouped_bar" | "line" | "pie" | "histogram" | "box" | "scatter" | "heatmap" | "time_series",
  "columns": ["<columns for scatter or table listing>"],
  "title": "<short chart or table title>",
  "reply": "<one sentence answer template, may use {total} {count} {top_group} {top_value} placeholders>",
  "confidence": <0.0 to 1.0>
}

Rules:
- Use only column names that exist in the dataset schema below.
- Prefer "chart" intent when the user asks to plot, show, visualize, or compare.
- Prefer "text" intent for single-number questions (what is the total, the average).
- Prefer "table" intent for listings and breakdowns without a chart request.
- "time_series" charts require a temporal group_by column.
- "scatter" requires exactly two numeric columns in "columns".
- Set confidence below 0.5 when the question cannot be answered from this schema.`

// BuildPrompt renders the dataset schema plus the question into the
// user prompt for the planning model.
func BuildPrompt(question string, meta dataset.Metadata, rowCount int) string {
	var b strings.Builder

	b.WriteString("Dataset schema:\n")
	fmt.Fprintf(&b, "Rows: %d\n", rowCount)
	b.WriteString("Columns:\n")
	for _, f := range meta.Fields {
		fmt.Fprintf(&b, "- %s (%s)", f.Name, f.DataType)
		if len(f.SampleValues) > 0 {
			fmt.Fprintf(&b, " e.g. %s", strings.Join(f.SampleValues, ", "))
		}
		b.WriteString("\n")
	}

	if names := meta.NumericFields(); len(names) > 0 {
		fmt.Fprintf(&b, "Numeric columns: %s\n", strings.Join(names, ", "))
	}
	if names := meta.CategoricalFields(); len(names) > 0 {
		fmt.Fprintf(&b, "Categorical columns: %s\n", strings.Join(names, ", "))
	}
	if names := meta.TemporalFields(); len(names) > 0 {
		fmt.Fprintf(&b, "Temporal columns: %s\n", strings.Join(names, ", "))
	}

	if len(meta.SampleRows) > 0 {
		b.WriteString("\nSample rows:\n")
		limit := len(meta.SampleRows)
		if limit > maxSampleRows {
			limit = maxSampleRows
		}
		for i := 0; i < limit; i++ {
			row := meta.SampleRows[i]
			parts := make([]string, 0, len(meta.Fields))
			for _, f := range meta.Fields {
				parts = append(parts, fmt.Sprintf("%s=%s", f.Name, row[f.Name]))
			}
			b.WriteString(strings.Join(parts, ", "))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nRespond with the JSON query plan only.")

	return b.String()
}
