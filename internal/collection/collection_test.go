package collection

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/config"
	"vecstore/internal/filter"
	"vecstore/internal/metadata"
	"vecstore/internal/metric"
	"vecstore/internal/quantization"
	"vecstore/internal/storage"
	"vecstore/internal/vdberr"
)

func newTestCollection(t *testing.T) (*Collection, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	cfg := config.DefaultCollectionConfig()
	cfg.Index.Strategy = config.IndexFlat
	c, err := OpenWithOptions(path, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, path
}

func doc(vec []float32, text string, meta metadata.Map) storage.Document {
	return storage.Document{ID: uuid.New(), Vector: quantization.FromF32(vec), Text: text, Metadata: meta}
}

func TestInsertAndSearch(t *testing.T) {
	c, _ := newTestCollection(t)
	d := doc([]float32{1, 0, 0}, "rust doc", metadata.Map{"lang": metadata.String("rust")})
	id, err := c.Insert(d)
	require.NoError(t, err)
	assert.Equal(t, d.ID, id)

	hits := c.Search([]float32{1, 0, 0}, 5, metric.Cosine, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "rust doc", hits[0].Text)
}

func TestFilteredSearchOverfetch(t *testing.T) {
	c, _ := newTestCollection(t)
	_, err := c.Insert(doc([]float32{1, 0, 0}, "rust", metadata.Map{"lang": metadata.String("rust")}))
	require.NoError(t, err)
	_, err = c.Insert(doc([]float32{0.9, 0.1, 0}, "python", metadata.Map{"lang": metadata.String("python")}))
	require.NoError(t, err)

	f := filter.New().Eq("lang", metadata.String("rust"))
	hits := c.Search([]float32{1, 0, 0}, 5, metric.Cosine, f)
	require.Len(t, hits, 1)
	assert.Equal(t, "rust", hits[0].Text)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	c, path := newTestCollection(t)
	d := doc([]float32{1, 2, 3}, "persisted", nil)
	_, err := c.Insert(d)
	require.NoError(t, err)
	require.NoError(t, c.Checkpoint())
	require.NoError(t, c.Close())

	cfg := config.DefaultCollectionConfig()
	cfg.Index.Strategy = config.IndexFlat
	reopened, err := OpenWithOptions(path, cfg)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "persisted", got.Text)
}

func TestCrashRecoveryReplaysUncheckpointedWAL(t *testing.T) {
	c, path := newTestCollection(t)
	d := doc([]float32{4, 5, 6}, "uncommitted", nil)
	_, err := c.Insert(d)
	require.NoError(t, err)
	// No explicit Checkpoint: simulate a crash by closing only the WAL
	// and the region, without calling Close (which would also save the
	// sidecars), then reopen from the same path so the insert can only
	// come back through WAL replay.
	require.NoError(t, c.wal.Close())
	require.NoError(t, c.region.Close())

	cfg := config.DefaultCollectionConfig()
	cfg.Index.Strategy = config.IndexFlat
	reopened, err := OpenWithOptions(path, cfg)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok := reopened.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "uncommitted", got.Text)
}

func TestDimensionInvariantRejectsMismatch(t *testing.T) {
	c, _ := newTestCollection(t)
	_, err := c.Insert(doc([]float32{1, 2, 3}, "first", nil))
	require.NoError(t, err)

	_, err = c.Insert(doc([]float32{1, 2}, "wrong dim", nil))
	assert.Error(t, err)
}

func TestBatchDelete(t *testing.T) {
	c, _ := newTestCollection(t)
	a := doc([]float32{1, 0}, "a", nil)
	b := doc([]float32{0, 1}, "b", nil)
	ids, err := c.InsertBatch([]storage.Document{a, b})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	deleted, err := c.DeleteBatch(ids)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 0, c.Count())
}

func TestUpsertReplacesExisting(t *testing.T) {
	c, _ := newTestCollection(t)
	d := doc([]float32{1, 1}, "before", nil)
	id, err := c.Insert(d)
	require.NoError(t, err)

	d.ID = id
	d.Text = "after"
	_, err = c.Upsert(d)
	require.NoError(t, err)

	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, "after", got.Text)
}

func TestInsertRejectsNaNInfAndEmptyVector(t *testing.T) {
	c, _ := newTestCollection(t)

	_, err := c.Insert(doc([]float32{1, float32(math.NaN()), 0}, "nan", nil))
	require.Error(t, err)
	assert.True(t, vdberr.Is(err, vdberr.Validation))

	_, err = c.Insert(doc([]float32{1, float32(math.Inf(1)), 0}, "inf", nil))
	require.Error(t, err)
	assert.True(t, vdberr.Is(err, vdberr.Validation))

	_, err = c.Insert(doc(nil, "empty", nil))
	require.Error(t, err)
	assert.True(t, vdberr.Is(err, vdberr.Validation))

	assert.Equal(t, 0, c.Count())
}

func TestInsertBatchRejectsBadVectorWithoutPartialInsert(t *testing.T) {
	c, _ := newTestCollection(t)
	good := doc([]float32{1, 0}, "good", nil)
	bad := doc([]float32{float32(math.NaN()), 0}, "bad", nil)

	_, err := c.InsertBatch([]storage.Document{good, bad})
	require.Error(t, err)
	assert.True(t, vdberr.Is(err, vdberr.Validation))
	assert.Equal(t, 0, c.Count())
}

func TestUpdateVectorRejectsNaN(t *testing.T) {
	c, _ := newTestCollection(t)
	id, err := c.Insert(doc([]float32{1, 2}, "x", nil))
	require.NoError(t, err)

	_, err = c.UpdateVector(id, []float32{float32(math.Inf(-1)), 2})
	require.Error(t, err)
	assert.True(t, vdberr.Is(err, vdberr.Validation))

	got, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got.Vector.ToF32())
}

func TestUpdateMetadataAndVector(t *testing.T) {
	c, _ := newTestCollection(t)
	id, err := c.Insert(doc([]float32{1, 2}, "x", metadata.Map{"a": metadata.Integer(1)}))
	require.NoError(t, err)

	ok, err := c.UpdateMetadata(id, metadata.Map{"a": metadata.Integer(2)})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.UpdateVector(id, []float32{9, 9})
	require.NoError(t, err)
	assert.True(t, ok)

	got, exists := c.Get(id)
	require.True(t, exists)
	assert.Equal(t, metadata.Integer(2), got.Metadata["a"])
	assert.Equal(t, []float32{9, 9}, got.Vector.ToF32())
}
