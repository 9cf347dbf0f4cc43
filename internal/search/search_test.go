package search

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/filter"
	"vecstore/internal/index"
	"vecstore/internal/metadata"
	"vecstore/internal/metric"
)

type fixture struct {
	ids      []uuid.UUID
	vectors  map[uuid.UUID][]float32
	metadata map[uuid.UUID]metadata.Map
	texts    map[uuid.UUID]string
}

func newFixture() *fixture {
	return &fixture{
		vectors:  make(map[uuid.UUID][]float32),
		metadata: make(map[uuid.UUID]metadata.Map),
		texts:    make(map[uuid.UUID]string),
	}
}

func (fx *fixture) add(vec []float32, text string, meta metadata.Map) uuid.UUID {
	id := uuid.New()
	fx.ids = append(fx.ids, id)
	fx.vectors[id] = vec
	fx.texts[id] = text
	fx.metadata[id] = meta
	return id
}

func (fx *fixture) source(idx index.VectorIndex) Source {
	return Source{
		Index:            idx,
		AllIDs:           func() []uuid.UUID { return fx.ids },
		VectorByID:       func(id uuid.UUID) ([]float32, bool) { v, ok := fx.vectors[id]; return v, ok },
		MetadataByID:     func(id uuid.UUID) (metadata.Map, bool) { m, ok := fx.metadata[id]; return m, ok },
		TextByID:         func(id uuid.UUID) (string, bool) { t, ok := fx.texts[id]; return t, ok },
		DefaultOverfetch: 3,
	}
}

func TestSearchRespectsFilter(t *testing.T) {
	fx := newFixture()
	idx := index.NewFlat()

	rust := fx.add([]float32{1, 0, 0}, "rust doc", metadata.Map{"lang": metadata.String("rust")})
	python := fx.add([]float32{0.9, 0.1, 0}, "python doc", metadata.Map{"lang": metadata.String("python")})
	idx.Insert(rust, fx.vectors[rust], nil)
	idx.Insert(python, fx.vectors[python], nil)

	f := filter.New().Eq("lang", metadata.String("rust"))
	hits := Collection(fx.source(idx), []float32{1, 0, 0}, 5, metric.Cosine, Params{Mode: metric.Scalar, Filter: f})

	require.Len(t, hits, 1)
	assert.Equal(t, "rust doc", hits[0].Text)
}

func TestSearchWithoutFilterReturnsAll(t *testing.T) {
	fx := newFixture()
	idx := index.NewFlat()
	a := fx.add([]float32{1, 0}, "a", nil)
	b := fx.add([]float32{0, 1}, "b", nil)
	idx.Insert(a, fx.vectors[a], nil)
	idx.Insert(b, fx.vectors[b], nil)

	hits := Collection(fx.source(idx), []float32{1, 0}, 5, metric.Cosine, Params{Mode: metric.Scalar})
	assert.Len(t, hits, 2)
}

func TestBatchSequentialAndParallelAgree(t *testing.T) {
	fx := newFixture()
	idx := index.NewFlat()
	a := fx.add([]float32{1, 0}, "a", nil)
	b := fx.add([]float32{0, 1}, "b", nil)
	idx.Insert(a, fx.vectors[a], nil)
	idx.Insert(b, fx.vectors[b], nil)

	queries := [][]float32{{1, 0}, {0, 1}}
	seq := Batch(fx.source(idx), queries, 1, metric.Cosine, Params{Mode: metric.Scalar}, false)
	par := Batch(fx.source(idx), queries, 1, metric.Cosine, Params{Mode: metric.Scalar}, true)

	require.Len(t, seq, 2)
	require.Len(t, par, 2)
	assert.Equal(t, seq[0][0].ID, par[0][0].ID)
	assert.Equal(t, seq[1][0].ID, par[1][0].ID)
}
