package translate

import (
	"strings"
	"testing"

	"datalens/domain/query"
	"datalens/internal/engine"
	"datalens/internal/testkit"
	"datalens/ports"
)

func TestMatchPattern_TopRows(t *testing.T) {
	tbl := testkit.SalesTable(20)

	trans := matchPattern("show me the top 5 rows", tbl)
	if trans == nil {
		t.Fatal("expected a pattern match")
	}
	if trans.Action != ports.ActionRunSpec {
		t.Errorf("expected run_spec action, got %s", trans.Action)
	}
	if trans.Spec.Limit != 5 {
		t.Errorf("expected limit 5, got %d", trans.Spec.Limit)
	}
	if trans.Spec.Aggregation != query.AggList {
		t.Errorf("expected list aggregation, got %s", trans.Spec.Aggregation)
	}
	if trans.Tier != "pattern" {
		t.Errorf("expected pattern tier, got %s", trans.Tier)
	}
}

func TestMatchPattern_TopRowsDefaultLimit(t *testing.T) {
	tbl := testkit.SalesTable(20)

	trans := matchPattern("show top rows", tbl)
	if trans == nil {
		t.Fatal("expected a pattern match")
	}
	if trans.Spec.Limit != defaultTopN {
		t.Errorf("expected default limit %d, got %d", defaultTopN, trans.Spec.Limit)
	}
}

func TestMatchPattern_Head(t *testing.T) {
	tbl := testkit.SalesTable(20)

	trans := matchPattern("head 3", tbl)
	if trans == nil {
		t.Fatal("expected a pattern match")
	}
	if trans.Spec.Limit != 3 {
		t.Errorf("expected limit 3, got %d", trans.Spec.Limit)
	}
}

func TestMatchPattern_Actions(t *testing.T) {
	tbl := testkit.SalesTable(20)

	cases := []struct {
		question string
		action   ports.TranslationAction
	}{
		{"give me some info about this dataset", ports.ActionColumnInfo},
		{"describe the data", ports.ActionDescribe},
		{"how many rows are there?", ports.ActionRowCount},
		{"what are the column names?", ports.ActionListColumns},
		{"are there any missing values?", ports.ActionMissing},
		{"show the correlation matrix", ports.ActionCorrelation},
	}
	for _, tc := range cases {
		trans := matchPattern(tc.question, tbl)
		if trans == nil {
			t.Errorf("%q: expected a match", tc.question)
			continue
		}
		if trans.Action != tc.action {
			t.Errorf("%q: expected action %s, got %s", tc.question, tc.action, trans.Action)
		}
	}
}

func TestMatchPattern_Aggregate(t *testing.T) {
	tbl := testkit.SalesTable(20)

	trans := matchPattern("what is the average unit_price?", tbl)
	if trans == nil {
		t.Fatal("expected a pattern match")
	}
	if trans.Action != ports.ActionRunSpec {
		t.Fatalf("expected run_spec, got %s", trans.Action)
	}
	if trans.Spec.Aggregation != query.AggAvg {
		t.Errorf("expected avg aggregation, got %s", trans.Spec.Aggregation)
	}
	if trans.Spec.Measure != "unit_price" {
		t.Errorf("expected measure unit_price, got %s", trans.Spec.Measure)
	}
	if trans.Spec.Reply == "" {
		t.Error("expected a reply template")
	}
}

func TestMatchPattern_AggregateAnswers(t *testing.T) {
	tbl := testkit.NewTable(
		[]string{"region", "revenue"},
		[][]string{
			{"North", "10"},
			{"South", "20"},
			{"East", "30"},
		},
	)

	cases := []struct {
		question string
		agg      query.Aggregation
		want     string
	}{
		{"what is the average of revenue?", query.AggAvg, "20"},
		{"sum of revenue", query.AggSum, "60"},
		{"minimum revenue", query.AggMin, "10"},
		{"maximum revenue", query.AggMax, "30"},
	}
	for _, tc := range cases {
		trans := matchPattern(tc.question, tbl)
		if trans == nil {
			t.Fatalf("%q: expected a match", tc.question)
		}
		if trans.Spec.Aggregation != tc.agg {
			t.Errorf("%q: expected %s aggregation, got %s", tc.question, tc.agg, trans.Spec.Aggregation)
		}

		result, err := engine.Execute(trans.Spec, tbl)
		if err != nil {
			t.Fatalf("%q: Execute failed: %v", tc.question, err)
		}
		if !strings.Contains(result.Reply, tc.want) {
			t.Errorf("%q: expected %s in reply, got %q", tc.question, tc.want, result.Reply)
		}
	}
}

func TestMatchAggregate_Deterministic(t *testing.T) {
	tbl := testkit.NewTable(
		[]string{"revenue"},
		[][]string{{"10"}, {"20"}},
	)

	// Two aggregation words in one question must always resolve the same
	for i := 0; i < 20; i++ {
		spec := matchAggregate("average total revenue", tbl)
		if spec == nil {
			t.Fatal("expected a match")
		}
		if spec.Aggregation != query.AggAvg {
			t.Fatalf("run %d: expected avg, got %s", i, spec.Aggregation)
		}
	}
}

func TestMatchPattern_NoMatch(t *testing.T) {
	tbl := testkit.SalesTable(20)

	if trans := matchPattern("which region has the highest revenue per order?", tbl); trans != nil {
		t.Errorf("expected no pattern match, got %+v", trans)
	}
	if trans := matchPattern("", tbl); trans != nil {
		t.Error("expected no match for empty question")
	}
}

func TestExtractNumber(t *testing.T) {
	if n := extractNumber("top 25 records", 10); n != 25 {
		t.Errorf("expected 25, got %d", n)
	}
	if n := extractNumber("top records", 10); n != 10 {
		t.Errorf("expected fallback 10, got %d", n)
	}
}
