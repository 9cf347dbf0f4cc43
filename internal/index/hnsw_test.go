package index

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/metric"
)

func setupHnsw(n, dim int, seed int64) (*HnswIndex, map[uuid.UUID][]float32, []uuid.UUID) {
	h := NewHnsw(HnswConfig{M: 8, MMax: 16, EfConstruction: 64, EfSearch: 32, Ml: 0.36})
	h.rng = rand.New(rand.NewSource(seed))
	vectors := make(map[uuid.UUID][]float32, n)
	ids := make([]uuid.UUID, n)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	for i := 0; i < n; i++ {
		id := uuid.New()
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = float32((i*7+d*3)%23) + 1
		}
		vectors[id] = vec
		ids[i] = id
		h.Insert(id, vec, snapshot)
	}
	return h, vectors, ids
}

func TestHnswInsertAndSearchFindsExactMatch(t *testing.T) {
	h, vectors, ids := setupHnsw(40, 8, 7)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }

	target := ids[10]
	result := h.Search(vectors[target], 5, snapshot, Quality{Ef: 64}, nil, metric.Cosine, metric.Scalar)
	require.NotEmpty(t, result)
	assert.Contains(t, result, target)
}

func TestHnswRemoveTombstonesRatherThanDeletes(t *testing.T) {
	h, vectors, ids := setupHnsw(20, 6, 3)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }

	before := h.Stats().TotalVectors
	h.Remove(ids[0])
	stats := h.Stats()
	assert.Equal(t, before-1, stats.TotalVectors)
	assert.Equal(t, 1, stats.Details.TombstoneCount)

	result := h.Search(vectors[ids[0]], len(ids), snapshot, Quality{Ef: 64}, nil, metric.Cosine, metric.Scalar)
	assert.NotContains(t, result, ids[0])
}

func TestHnswKind(t *testing.T) {
	h := NewHnsw(DefaultHnswConfig())
	assert.Equal(t, KindHnsw, h.Kind())
}

func TestHnswEmptySearchReturnsNil(t *testing.T) {
	h := NewHnsw(DefaultHnswConfig())
	snapshot := func(id uuid.UUID) ([]float32, bool) { return nil, false }
	assert.Nil(t, h.Search([]float32{1, 2}, 5, snapshot, Quality{}, nil, metric.Cosine, metric.Auto))
}

// TestHnswConcurrentSearchWithDifferentMetricsDoesNotRace exercises the
// read path the way SearchBatch's parallel_search fan-out does: many
// goroutines calling Search concurrently, each with its own metric.
// Run with -race; it would previously trip on the shared h.metric write.
func TestHnswConcurrentSearchWithDifferentMetricsDoesNotRace(t *testing.T) {
	h, vectors, ids := setupHnsw(50, 6, 11)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	metrics := []metric.Metric{metric.Cosine, metric.Euclidean, metric.DotProduct}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target := ids[i%len(ids)]
			m := metrics[i%len(metrics)]
			h.Search(vectors[target], 5, snapshot, Quality{Ef: 64}, nil, m, metric.Scalar)
		}(i)
	}
	wg.Wait()
}
