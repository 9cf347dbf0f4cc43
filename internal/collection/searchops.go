package collection

import (
	"github.com/google/uuid"

	"vecstore/internal/filter"
	"vecstore/internal/index"
	"vecstore/internal/metadata"
	"vecstore/internal/metric"
	"vecstore/internal/search"
)

func (c *Collection) searchSource() search.Source {
	return search.Source{
		Index:            c.vectorIndex,
		AllIDs:           func() []uuid.UUID { return c.offsetIndex.Ids() },
		VectorByID:       c.vectorSnapshot,
		MetadataByID:     func(id uuid.UUID) (metadata.Map, bool) { m, ok := c.metadataCache[id]; return m, ok },
		TextByID:         func(id uuid.UUID) (string, bool) { t, ok := c.textCache[id]; return t, ok },
		DefaultOverfetch: c.config.Search.FilterOverfetch,
	}
}

func (c *Collection) quality() index.Quality {
	return index.Quality{
		Ef:              c.config.Search.Ef,
		NProbe:          c.config.Search.NProbe,
		FilterOverfetch: c.config.Search.FilterOverfetch,
	}
}

// Search runs a single query against the collection's vector index,
// optionally restricted by f, returning up to k scored hits.
func (c *Collection) Search(query []float32, k int, m metric.Metric, f *filter.Filter) []search.Hit {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return search.Collection(c.searchSource(), query, k, m, search.Params{
		Mode:    c.config.Execution,
		Filter:  f,
		Quality: c.quality(),
	})
}

// SearchBatch runs every query, fanning out across goroutines when the
// collection's parallelism config enables it.
func (c *Collection) SearchBatch(queries [][]float32, k int, m metric.Metric, f *filter.Filter) [][]search.Hit {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return search.Batch(c.searchSource(), queries, k, m, search.Params{
		Mode:    c.config.Execution,
		Filter:  f,
		Quality: c.quality(),
	}, c.config.Parallelism.ParallelSearch)
}
