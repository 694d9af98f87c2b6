package query

import (
	"time"

	"datalens/domain/core"
)

// Intent names the kind of answer a query plan produces
type Intent string

const (
	IntentText  Intent = "text"
	IntentTable Intent = "table"
	IntentChart Intent = "chart"
)

// Aggregation names the reduction applied to a measure
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggCount Aggregation = "count"
	AggAvg   Aggregation = "avg"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
	AggList  Aggregation = "list"
	AggNone  Aggregation = "none"
)

// ChartKind names a supported chart type
type ChartKind string

const (
	ChartBar        ChartKind = "bar"
	ChartGroupedBar ChartKind = "grouped_bar"
	ChartLine       ChartKind = "line"
	ChartScatter    ChartKind = "scatter"
	ChartHistogram  ChartKind = "histogram"
	ChartBox        ChartKind = "box"
	ChartPie        ChartKind = "pie"
	ChartHeatmap    ChartKind = "heatmap"
	ChartTimeSeries ChartKind = "time_series"
)

// Sort orders for aggregated groups
const (
	SortValueDesc = "value_desc"
	SortValueAsc  = "value_asc"
	SortLabelAsc  = "label_asc"
	SortLabelDesc = "label_desc"
)

// Spec is the contract between the query translator and the local engine.
// The translator (pattern tier or LLM tier) produces it; the engine
// consumes it. The engine never calls an external service.
type Spec struct {
	Intent      Intent      `json:"intent"`
	Filters     Filters     `json:"filters"`
	Aggregation Aggregation `json:"aggregation"`
	Measure     string      `json:"measure"`
	GroupBy     []string    `json:"group_by"`
	SortBy      string      `json:"sort_by"` // "value_desc", "value_asc", "label_asc", "label_desc"
	Limit       int         `json:"limit"`   // 0 = all
	Chart       ChartKind   `json:"chart,omitempty"`
	Columns     []string    `json:"columns,omitempty"` // table projection; empty = all
	Title       string      `json:"title,omitempty"`
	Reply       string      `json:"reply,omitempty"` // template: "Total {measure} is {total}."
	Confidence  float64     `json:"confidence"`
}

// Filters define which rows a plan includes.
// Values: OR within a column, AND across columns. Ranges and substring
// matches compose with value filters on the same AND basis.
type Filters struct {
	Values   map[string][]string `json:"values,omitempty"`
	Ranges   map[string]Range    `json:"ranges,omitempty"`
	Contains map[string]string   `json:"contains,omitempty"`
}

// Range restricts a numeric column to [Min, Max]; nil bound = unbounded.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// IsEmpty returns true if no filters are set
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Values {
		if len(vals) > 0 {
			return false
		}
	}
	return len(f.Ranges) == 0 && len(f.Contains) == 0
}

// Result is the engine's render-ready output
type Result struct {
	Success     bool   `json:"success"`
	Type        Intent `json:"type"`
	Reply       string `json:"reply,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	// Plan is a human-readable restatement of the executed Spec, the
	// equivalent of the generated-code snippet the original tool showed.
	Plan string `json:"plan,omitempty"`

	ChartConfig *ChartConfig `json:"chart_config,omitempty"`
	TableData   *TableData   `json:"table_data,omitempty"`
	TextData    *TextData    `json:"text_data,omitempty"`

	Error string `json:"error,omitempty"`
}

// Group represents a grouped and aggregated slice of the data
type Group struct {
	Key       string  `json:"key"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Count     int     `json:"count"`
	SubGroups []Group `json:"sub_groups,omitempty"`
	RowIdx    []int   `json:"-"` // indices into the source table
}

// ChartConfig defines how to render a chart
type ChartConfig struct {
	ChartType  ChartKind     `json:"chart_type"`
	Title      string        `json:"title"`
	XAxis      string        `json:"x_axis,omitempty"`
	YAxis      string        `json:"y_axis,omitempty"`
	Series     []ChartSeries `json:"series"`
	ShowLegend bool          `json:"show_legend"`
}

// ChartSeries represents one data series in a chart
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint represents a single data point
type ChartPoint struct {
	Label string  `json:"label"`
	X     float64 `json:"x,omitempty"`
	Value float64 `json:"value"`
}

// TableData defines how to render a table
type TableData struct {
	Title   string     `json:"title,omitempty"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"` // rows matched before any limit
}

// TextData is structured data for scalar answers
type TextData struct {
	Value    string  `json:"value"`
	RawValue float64 `json:"raw_value"`
	Count    int     `json:"count"`
}

// HistoryEntry records one answered query against a dataset
type HistoryEntry struct {
	ID        core.QueryID   `json:"id"`
	DatasetID core.DatasetID `json:"dataset_id"`
	Question  string         `json:"question"`
	Tier      string         `json:"tier"` // "pattern" or "llm"
	Spec      *Spec          `json:"spec,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
