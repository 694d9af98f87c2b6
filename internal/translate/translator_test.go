package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"datalens/adapters/llm"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/query"
	"datalens/internal/testkit"
	"datalens/ports"
)

func testMetadata() dataset.Metadata {
	return dataset.Metadata{
		Fields: []dataset.FieldInfo{
			{Name: "region", DataType: dataset.TypeCategorical, SampleValues: []string{"North", "South"}},
			{Name: "revenue", DataType: dataset.TypeNumeric, SampleValues: []string{"100", "250"}},
		},
		SampleRows: []map[string]string{
			{"region": "North", "revenue": "100"},
		},
	}
}

func TestTranslate_PatternTierFirst(t *testing.T) {
	mock := &llm.MockClient{}
	tr := NewTranslator(mock)
	tbl := testkit.SalesTable(10)

	trans, err := tr.Translate(context.Background(), "how many rows?", tbl, testMetadata())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if trans.Action != ports.ActionRowCount {
		t.Errorf("expected row_count action, got %s", trans.Action)
	}
	if len(mock.Prompts) != 0 {
		t.Error("pattern tier match should not call the LLM")
	}
}

func TestTranslate_NilClientDisabled(t *testing.T) {
	tr := NewTranslator(nil)
	tbl := testkit.SalesTable(10)

	_, err := tr.Translate(context.Background(), "which region drives churn?", tbl, testMetadata())
	if !errors.Is(err, core.ErrLLMDisabled) {
		t.Errorf("expected ErrLLMDisabled, got %v", err)
	}
}

func TestTranslate_LLMTier(t *testing.T) {
	mock := &llm.MockClient{
		Response: `{"intent":"chart","aggregation":"sum","measure":"revenue","group_by":["region"],"chart":"bar","title":"Revenue by region","confidence":0.9}`,
	}
	tr := NewTranslator(mock)
	tbl := testkit.SalesTable(10)

	trans, err := tr.Translate(context.Background(), "which region earns the most?", tbl, testMetadata())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if trans.Tier != "llm" {
		t.Errorf("expected llm tier, got %s", trans.Tier)
	}
	if trans.Action != ports.ActionRunSpec {
		t.Errorf("expected run_spec action, got %s", trans.Action)
	}
	if trans.Spec.Intent != query.IntentChart {
		t.Errorf("expected chart intent, got %s", trans.Spec.Intent)
	}
	if trans.Spec.Measure != "revenue" {
		t.Errorf("expected measure revenue, got %s", trans.Spec.Measure)
	}
	if len(mock.Prompts) != 1 {
		t.Fatalf("expected 1 LLM call, got %d", len(mock.Prompts))
	}
	if !strings.Contains(mock.Prompts[0], "which region earns the most?") {
		t.Error("prompt should include the question")
	}
	if !strings.Contains(mock.Prompts[0], "region") {
		t.Error("prompt should include the schema")
	}
}

func TestTranslate_LowConfidenceRejected(t *testing.T) {
	mock := &llm.MockClient{
		Response: `{"intent":"text","aggregation":"count","confidence":0.1}`,
	}
	tr := NewTranslator(mock)
	tbl := testkit.SalesTable(10)

	_, err := tr.Translate(context.Background(), "asdf qwerty", tbl, testMetadata())
	if !errors.Is(err, core.ErrQueryNotRecognized) {
		t.Errorf("expected ErrQueryNotRecognized, got %v", err)
	}
}

func TestTranslate_LLMError(t *testing.T) {
	mock := &llm.MockClient{Error: errors.New("rate limited")}
	tr := NewTranslator(mock)
	tbl := testkit.SalesTable(10)

	_, err := tr.Translate(context.Background(), "something unusual about the data", tbl, testMetadata())
	if err == nil {
		t.Fatal("expected error from the LLM client")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("total revenue by region", testMetadata(), 42)

	for _, want := range []string{
		"42", "region", "revenue", "total revenue by region",
		"Numeric columns: revenue", "Categorical columns: region",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
