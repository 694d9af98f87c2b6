package query

import "testing"

func TestNormalize_ListForcesTable(t *testing.T) {
	spec := Normalize(Spec{Intent: IntentText, Aggregation: AggList})
	if spec.Intent != IntentTable {
		t.Errorf("expected table intent for list aggregation, got %s", spec.Intent)
	}
}

func TestNormalize_ChartWithoutGroupByDemoted(t *testing.T) {
	spec := Normalize(Spec{Intent: IntentChart, Aggregation: AggSum, Chart: ChartBar})
	if spec.Intent != IntentText {
		t.Errorf("expected text intent for ungrouped bar chart, got %s", spec.Intent)
	}
	if spec.Chart != "" {
		t.Errorf("expected chart cleared, got %s", spec.Chart)
	}
}

func TestNormalize_RawRowChartsKeepListAggregation(t *testing.T) {
	for _, kind := range []ChartKind{ChartHistogram, ChartBox, ChartScatter, ChartHeatmap} {
		spec := Normalize(Spec{Intent: IntentChart, Aggregation: AggList, Chart: kind})
		if spec.Intent != IntentChart {
			t.Errorf("%s: expected chart intent kept, got %s", kind, spec.Intent)
		}
		if spec.Chart != kind {
			t.Errorf("%s: expected chart kind kept, got %s", kind, spec.Chart)
		}
	}
}

func TestNormalize_ChartKindDefaultsToBar(t *testing.T) {
	spec := Normalize(Spec{Intent: IntentChart, Aggregation: AggSum, GroupBy: []string{"region"}})
	if spec.Chart != ChartBar {
		t.Errorf("expected bar default, got %s", spec.Chart)
	}
}

func TestNormalize_EmptyAggregation(t *testing.T) {
	spec := Normalize(Spec{Intent: IntentTable})
	if spec.Aggregation != AggList {
		t.Errorf("expected list for bare table intent, got %s", spec.Aggregation)
	}

	spec = Normalize(Spec{Intent: IntentChart, GroupBy: []string{"region"}, Chart: ChartBar})
	if spec.Aggregation != AggSum {
		t.Errorf("expected sum default with group-by, got %s", spec.Aggregation)
	}

	// "none" from the translator behaves the same as missing
	spec = Normalize(Spec{Intent: IntentTable, Aggregation: AggNone})
	if spec.Aggregation != AggList {
		t.Errorf("expected list for none aggregation, got %s", spec.Aggregation)
	}
}

func TestNormalize_NegativeLimit(t *testing.T) {
	spec := Normalize(Spec{Intent: IntentTable, Aggregation: AggList, Limit: -5})
	if spec.Limit != 0 {
		t.Errorf("expected limit reset to 0, got %d", spec.Limit)
	}
}

func TestNormalize_WellFormedUnchanged(t *testing.T) {
	in := Spec{
		Intent:      IntentChart,
		Aggregation: AggAvg,
		Measure:     "revenue",
		GroupBy:     []string{"region"},
		Chart:       ChartLine,
		Limit:       10,
	}
	out := Normalize(in)
	if out.Intent != in.Intent || out.Aggregation != in.Aggregation ||
		out.Chart != in.Chart || out.Limit != in.Limit {
		t.Errorf("well-formed spec should pass through unchanged: %+v", out)
	}
}
