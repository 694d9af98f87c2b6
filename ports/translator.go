package ports

import (
	"context"

	"datalens/adapters/tabular"
	"datalens/domain/dataset"
	"datalens/domain/query"
)

// TranslationAction discriminates what the caller should run for a
// translated question. Most questions become engine plans; a few map to
// canned profile operations.
type TranslationAction string

const (
	ActionRunSpec     TranslationAction = "run_spec"
	ActionColumnInfo  TranslationAction = "column_info"
	ActionDescribe    TranslationAction = "describe"
	ActionRowCount    TranslationAction = "row_count"
	ActionListColumns TranslationAction = "list_columns"
	ActionMissing     TranslationAction = "missing"
	ActionCorrelation TranslationAction = "correlation"
)

// Translation carries a translated query plan plus how it was produced
type Translation struct {
	Action      TranslationAction
	Spec        query.Spec // populated when Action == ActionRunSpec
	Tier        string     // "pattern" or "llm"
	Explanation string
}

// Translator converts a natural-language question into a Translation
type Translator interface {
	Translate(ctx context.Context, question string, table *tabular.Table, meta dataset.Metadata) (*Translation, error)
}
