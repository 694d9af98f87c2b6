package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"datalens/domain/core"
	"datalens/domain/query"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
)

// historyRepository implements the QueryHistoryRepository interface
type historyRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new query history repository
func NewHistoryRepository(db *sqlx.DB) ports.QueryHistoryRepository {
	return &historyRepository{db: db}
}

// Append records an answered query
func (r *historyRepository) Append(ctx context.Context, entry *query.HistoryEntry) error {
	var specJSON []byte
	if entry.Spec != nil {
		var err error
		specJSON, err = json.Marshal(entry.Spec)
		if err != nil {
			return fmt.Errorf("failed to marshal query spec: %w", err)
		}
	}

	q := `INSERT INTO query_history (
		id, dataset_id, question, tier, spec, success, error_message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.DatasetID, entry.Question, entry.Tier,
		specJSON, entry.Success, entry.Error, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append query history: %w", err)
	}

	return nil
}

// ListByDataset returns the most recent queries for a dataset
func (r *historyRepository) ListByDataset(ctx context.Context, id core.DatasetID, limit int) ([]*query.HistoryEntry, error) {
	q := `SELECT
		id, dataset_id, question, tier, spec, success,
		COALESCE(error_message, '') as error_message, created_at
	FROM query_history
	WHERE dataset_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*query.HistoryEntry
	for rows.Next() {
		var entry query.HistoryEntry
		var specJSON []byte

		err := rows.Scan(
			&entry.ID, &entry.DatasetID, &entry.Question, &entry.Tier,
			&specJSON, &entry.Success, &entry.Error, &entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if len(specJSON) > 0 {
			var spec query.Spec
			if err := json.Unmarshal(specJSON, &spec); err != nil {
				return nil, fmt.Errorf("failed to unmarshal query spec: %w", err)
			}
			entry.Spec = &spec
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// DeleteByDataset removes all history for a dataset
func (r *historyRepository) DeleteByDataset(ctx context.Context, id core.DatasetID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM query_history WHERE dataset_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete query history: %w", err)
	}
	return nil
}
