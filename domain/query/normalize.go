package query

import "log"

// Normalize applies deterministic rules that fix common translator
// inconsistencies before the engine runs a Spec. LLM output drifts in
// predictable ways; these rules keep the engine's input well-formed.
func Normalize(spec Spec) Spec {
	changed := false

	// "list" aggregation must render as a table, except for the chart
	// kinds that draw raw rows rather than grouped aggregates
	if spec.Aggregation == AggList && spec.Intent != IntentTable &&
		!(spec.Intent == IntentChart && chartDrawsRawRows(spec.Chart)) {
		spec.Intent = IntentTable
		changed = true
	}

	// Charts other than histogram/box need a group-by dimension
	if spec.Intent == IntentChart && len(spec.GroupBy) == 0 &&
		!chartDrawsRawRows(spec.Chart) {
		spec.Intent = IntentText
		spec.Chart = ""
		changed = true
	}

	// min/max without group-by reduce to a scalar
	if (spec.Aggregation == AggMin || spec.Aggregation == AggMax) && len(spec.GroupBy) == 0 && spec.Intent == IntentChart {
		spec.Intent = IntentText
		spec.Chart = ""
		changed = true
	}

	// Chart intent with no chart kind defaults to bar
	if spec.Intent == IntentChart && spec.Chart == "" {
		spec.Chart = ChartBar
		changed = true
	}

	// Missing or "none" aggregation with no group-by is a row listing
	if spec.Aggregation == "" || spec.Aggregation == AggNone {
		if len(spec.GroupBy) == 0 && spec.Intent == IntentTable {
			spec.Aggregation = AggList
		} else {
			spec.Aggregation = AggSum
		}
		changed = true
	}

	// Negative limits are translator noise
	if spec.Limit < 0 {
		spec.Limit = 0
		changed = true
	}

	if changed {
		log.Printf("[Normalize] Adjusted spec: intent=%s, aggregation=%s, chart=%s, groupBy=%v",
			spec.Intent, spec.Aggregation, spec.Chart, spec.GroupBy)
	}

	return spec
}

// chartDrawsRawRows reports whether a chart kind renders row-level data
// and therefore needs no group-by dimension
func chartDrawsRawRows(kind ChartKind) bool {
	switch kind {
	case ChartHistogram, ChartBox, ChartScatter, ChartHeatmap:
		return true
	}
	return false
}
