package index

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/metric"
)

func setupFlat(n, dim int) (*FlatIndex, map[uuid.UUID][]float32, []uuid.UUID) {
	index := NewFlat()
	vectors := make(map[uuid.UUID][]float32, n)
	ids := make([]uuid.UUID, n)
	for i := 0; i < n; i++ {
		id := uuid.New()
		vec := make([]float32, dim)
		for d := 0; d < dim; d++ {
			vec[d] = float32(i*dim + d + 1)
		}
		vectors[id] = vec
		ids[i] = id
		index.Insert(id, vec, func(q uuid.UUID) ([]float32, bool) { v, ok := vectors[q]; return v, ok })
	}
	return index, vectors, ids
}

func TestFlatInsertMany(t *testing.T) {
	index, _, ids := setupFlat(5, 4)
	assert.Equal(t, 5, index.Stats().TotalVectors)
	assert.Len(t, ids, 5)
}

func TestFlatSearchReturnsAllWhenKExceedsN(t *testing.T) {
	index, vectors, ids := setupFlat(3, 4)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }

	result := index.Search(vectors[ids[0]], 10, snapshot, Quality{}, nil, metric.Cosine, metric.Auto)
	require.Len(t, result, 3)
}

func TestFlatSearchExactMatchIsFirst(t *testing.T) {
	index, vectors, ids := setupFlat(4, 5)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }

	result := index.Search(vectors[ids[2]], 2, snapshot, Quality{}, nil, metric.Cosine, metric.Scalar)
	require.Len(t, result, 2)
	assert.Equal(t, ids[2], result[0])
}

func TestFlatRemove(t *testing.T) {
	index, vectors, ids := setupFlat(3, 4)
	index.Remove(ids[1])
	assert.Equal(t, 2, index.Stats().TotalVectors)

	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	result := index.Search(vectors[ids[0]], 5, snapshot, Quality{}, nil, metric.Cosine, metric.Scalar)
	assert.NotContains(t, result, ids[1])
}

func TestFlatKindAndZeroK(t *testing.T) {
	index, vectors, _ := setupFlat(2, 3)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	assert.Equal(t, KindFlat, index.Kind())
	assert.Empty(t, index.Search([]float32{1, 2, 3}, 0, snapshot, Quality{}, nil, metric.Cosine, metric.Auto))
}
