package index

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/metric"
)

func setupIvf(n, dim int, cfg IvfConfig) (*IvfIndex, map[uuid.UUID][]float32, []uuid.UUID) {
	iv := NewIvf(cfg)
	vectors := make(map[uuid.UUID][]float32, n)
	ids := make([]uuid.UUID, n)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	for i := 0; i < n; i++ {
		id := uuid.New()
		vec := make([]float32, dim)
		cluster := i % 3
		for d := 0; d < dim; d++ {
			vec[d] = float32(cluster*10 + d)
		}
		vectors[id] = vec
		ids[i] = id
		iv.Insert(id, vec, snapshot)
	}
	return iv, vectors, ids
}

func TestIvfBuildsClustersAfterThreshold(t *testing.T) {
	iv, _, _ := setupIvf(20, 4, IvfConfig{NumClusters: 3, NumProbes: 2, MaxIterations: 10})
	assert.True(t, iv.built)
	assert.Equal(t, 3, len(iv.clusters))
}

func TestIvfBuildTriggersExactlyAtNumClusters(t *testing.T) {
	iv, vectors, _ := setupIvf(0, 4, IvfConfig{NumClusters: 5, NumProbes: 2, MaxIterations: 10})
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }

	for i := 0; i < 4; i++ {
		id := uuid.New()
		vectors[id] = []float32{float32(i), 0, 0, 0}
		iv.Insert(id, vectors[id], snapshot)
	}
	assert.False(t, iv.built, "must not build below num_clusters buffered vectors")

	id := uuid.New()
	vectors[id] = []float32{4, 0, 0, 0}
	iv.Insert(id, vectors[id], snapshot)
	assert.True(t, iv.built, "must build as soon as buffered count reaches num_clusters")
}

func TestIvfSearchBeforeBuildFallsBackToBruteForce(t *testing.T) {
	iv := NewIvf(IvfConfig{NumClusters: 50, NumProbes: 4, MaxIterations: 10})
	vectors := make(map[uuid.UUID][]float32)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	id := uuid.New()
	vec := []float32{1, 2, 3}
	vectors[id] = vec
	iv.Insert(id, vec, snapshot)

	result := iv.Search(vec, 1, snapshot, Quality{NProbe: 2}, nil, metric.Cosine, metric.Scalar)
	require.Len(t, result, 1)
	assert.Equal(t, id, result[0])
}

func TestIvfSearchFindsNearestClusterMembers(t *testing.T) {
	iv, vectors, ids := setupIvf(30, 4, IvfConfig{NumClusters: 3, NumProbes: 1, MaxIterations: 15})
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }

	target := ids[0]
	result := iv.Search(vectors[target], 3, snapshot, Quality{NProbe: 3}, nil, metric.Cosine, metric.Scalar)
	require.NotEmpty(t, result)
	// Ten stored vectors equal the query and tie on score; ties are broken
	// by id, so every hit must be one of those exact copies.
	for _, id := range result {
		assert.Equal(t, vectors[target], vectors[id])
	}
}

func TestIvfRemoveBeforeAndAfterBuild(t *testing.T) {
	iv := NewIvf(IvfConfig{NumClusters: 10, NumProbes: 2, MaxIterations: 5})
	vectors := make(map[uuid.UUID][]float32)
	snapshot := func(id uuid.UUID) ([]float32, bool) { v, ok := vectors[id]; return v, ok }
	id := uuid.New()
	vectors[id] = []float32{1, 1}
	iv.Insert(id, vectors[id], snapshot)
	iv.Remove(id)
	assert.Equal(t, 0, iv.Stats().TotalVectors)
}

func TestIvfKind(t *testing.T) {
	iv := NewIvf(DefaultIvfConfig())
	assert.Equal(t, KindIvf, iv.Kind())
}
