package translate

import (
	"context"
	"fmt"
	"log"

	"datalens/adapters/llm"
	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/query"
	"datalens/ports"
)

const minConfidence = 0.3

// Translator turns natural language questions into query plans. The
// pattern tier handles common phrasings locally; everything else goes
// to the planning model when one is configured.
type Translator struct {
	structured *llm.StructuredClient[query.Spec]
}

// NewTranslator builds a translator. client may be nil, in which case
// only the pattern tier is available.
func NewTranslator(client ports.LLMClient) *Translator {
	t := &Translator{}
	if client != nil {
		t.structured = llm.NewStructuredClient[query.Spec](client, systemContext)
	}
	return t
}

func (t *Translator) Translate(ctx context.Context, question string, table *tabular.Table, meta dataset.Metadata) (*ports.Translation, error) {
	if trans := matchPattern(question, table); trans != nil {
		log.Printf("[Translator] Pattern tier matched question=%q action=%s", question, trans.Action)
		return trans, nil
	}

	if t.structured == nil {
		return nil, core.ErrLLMDisabled
	}

	prompt := BuildPrompt(question, meta, table.RowCount())
	spec, err := t.structured.GetJSONResponse(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("query planning failed: %w", err)
	}

	if spec.Confidence > 0 && spec.Confidence < minConfidence {
		log.Printf("[Translator] Low confidence plan (%.2f) for question=%q", spec.Confidence, question)
		return nil, core.ErrQueryNotRecognized
	}

	normalized := query.Normalize(*spec)
	log.Printf("[Translator] LLM tier produced plan intent=%s agg=%s groupBy=%v", normalized.Intent, normalized.Aggregation, normalized.GroupBy)

	return &ports.Translation{
		Action:      ports.ActionRunSpec,
		Spec:        normalized,
		Tier:        "llm",
		Explanation: normalized.Title,
	}, nil
}
