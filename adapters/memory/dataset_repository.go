package memory

import (
	"context"
	"sort"
	"sync"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/ports"
)

// datasetRepository is an in-memory DatasetRepository used when no
// database is configured.
type datasetRepository struct {
	mu       sync.RWMutex
	datasets map[core.DatasetID]*dataset.Dataset
}

// NewDatasetRepository creates an in-memory dataset repository
func NewDatasetRepository() ports.DatasetRepository {
	return &datasetRepository{
		datasets: make(map[core.DatasetID]*dataset.Dataset),
	}
}

func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *ds
	r.datasets[ds.ID] = &copied
	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ds, ok := r.datasets[id]
	if !ok {
		return nil, core.ErrDatasetNotFound
	}
	copied := *ds
	return &copied, nil
}

func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*dataset.Dataset, 0, len(r.datasets))
	for _, ds := range r.datasets {
		copied := *ds
		all = append(all, &copied)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}

	return all, nil
}

func (r *datasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[ds.ID]; !ok {
		return core.ErrDatasetNotFound
	}
	copied := *ds
	r.datasets[ds.ID] = &copied
	return nil
}

func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[id]; !ok {
		return core.ErrDatasetNotFound
	}
	delete(r.datasets, id)
	return nil
}
