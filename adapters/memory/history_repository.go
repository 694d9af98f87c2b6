package memory

import (
	"context"
	"sync"

	"datalens/domain/core"
	"datalens/domain/query"
	"datalens/ports"
)

// historyRepository is an in-memory QueryHistoryRepository.
type historyRepository struct {
	mu      sync.RWMutex
	entries map[core.DatasetID][]*query.HistoryEntry
}

// NewHistoryRepository creates an in-memory query history repository
func NewHistoryRepository() ports.QueryHistoryRepository {
	return &historyRepository{
		entries: make(map[core.DatasetID][]*query.HistoryEntry),
	}
}

func (r *historyRepository) Append(ctx context.Context, entry *query.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	// Newest first, matching the database ordering
	r.entries[entry.DatasetID] = append([]*query.HistoryEntry{&copied}, r.entries[entry.DatasetID]...)
	return nil
}

func (r *historyRepository) ListByDataset(ctx context.Context, id core.DatasetID, limit int) ([]*query.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.entries[id]
	if limit <= 0 || limit > len(stored) {
		limit = len(stored)
	}

	out := make([]*query.HistoryEntry, 0, limit)
	for _, e := range stored[:limit] {
		copied := *e
		out = append(out, &copied)
	}
	return out, nil
}

func (r *historyRepository) DeleteByDataset(ctx context.Context, id core.DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, id)
	return nil
}
