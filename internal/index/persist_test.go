package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/vdberr"
)

func TestSaveLoadFlatRoundTrip(t *testing.T) {
	index, _, ids := setupFlat(5, 4)
	path := filepath.Join(t.TempDir(), "idx.vecindex.db")
	require.NoError(t, Save(index, path))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindFlat, loaded.Kind())
	assert.Equal(t, len(ids), loaded.Stats().TotalVectors)
}

func TestSaveLoadHnswRoundTrip(t *testing.T) {
	h, _, _ := setupHnsw(15, 6, 2)
	path := filepath.Join(t.TempDir(), "idx.vecindex.db")
	require.NoError(t, Save(h, path))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindHnsw, loaded.Kind())
	assert.Equal(t, h.Stats().TotalVectors, loaded.Stats().TotalVectors)
}

func TestSaveLoadIvfRoundTrip(t *testing.T) {
	iv, _, _ := setupIvf(20, 4, IvfConfig{NumClusters: 3, NumProbes: 2, MaxIterations: 10})
	path := filepath.Join(t.TempDir(), "idx.vecindex.db")
	require.NoError(t, Save(iv, path))

	loaded, ok, err := Load(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, KindIvf, loaded.Kind())
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	loaded, ok, err := Load(filepath.Join(t.TempDir(), "does-not-exist.db"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, loaded)
}

func TestLoadCorruptDataIsCorruptionError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.db")
	require.NoError(t, os.WriteFile(path, []byte("not a gob stream"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.True(t, vdberr.Is(err, vdberr.Corruption))
}
