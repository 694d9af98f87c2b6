package ports

import (
	"context"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/query"
)

// DatasetRepository persists dataset records and their profile metadata
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error)
	Update(ctx context.Context, ds *dataset.Dataset) error
	Delete(ctx context.Context, id core.DatasetID) error
}

// QueryHistoryRepository persists answered queries per dataset
type QueryHistoryRepository interface {
	Append(ctx context.Context, entry *query.HistoryEntry) error
	ListByDataset(ctx context.Context, id core.DatasetID, limit int) ([]*query.HistoryEntry, error)
	DeleteByDataset(ctx context.Context, id core.DatasetID) error
}
