package app

import (
	"log"
	"sync"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
)

// TableCache keeps parsed tables in memory so repeated queries against
// the same dataset skip re-reading the file.
type TableCache struct {
	mu      sync.Mutex
	tables  map[core.DatasetID]*tabular.Table
	maxSize int
	order   []core.DatasetID
}

// NewTableCache creates a cache holding at most maxSize parsed tables
func NewTableCache(maxSize int) *TableCache {
	if maxSize <= 0 {
		maxSize = 8
	}
	return &TableCache{
		tables:  make(map[core.DatasetID]*tabular.Table),
		maxSize: maxSize,
	}
}

// Get returns the cached table for a dataset, loading it from the
// dataset's stored file on a miss.
func (c *TableCache) Get(ds *dataset.Dataset) (*tabular.Table, error) {
	c.mu.Lock()
	if t, ok := c.tables[ds.ID]; ok {
		c.mu.Unlock()
		return t, nil
	}
	c.mu.Unlock()

	reader, err := tabular.NewReader(ds.FilePath)
	if err != nil {
		return nil, err
	}
	t, err := reader.Read()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[ds.ID]; !ok {
		c.tables[ds.ID] = t
		c.order = append(c.order, ds.ID)
		if len(c.order) > c.maxSize {
			evicted := c.order[0]
			c.order = c.order[1:]
			delete(c.tables, evicted)
			log.Printf("[TableCache] Evicted dataset %s", evicted)
		}
	}

	return c.tables[ds.ID], nil
}

// Put stores a freshly parsed table, used right after ingestion
func (c *TableCache) Put(id core.DatasetID, t *tabular.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tables[id]; !ok {
		c.order = append(c.order, id)
	}
	c.tables[id] = t
	if len(c.order) > c.maxSize {
		evicted := c.order[0]
		c.order = c.order[1:]
		delete(c.tables, evicted)
	}
}

// Evict drops a dataset's table, used on delete
func (c *TableCache) Evict(id core.DatasetID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tables, id)
	for i, cached := range c.order {
		if cached == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
