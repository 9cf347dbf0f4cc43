package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCollectionConfigValidates(t *testing.T) {
	cfg := DefaultCollectionConfig()
	require.NoError(t, cfg.Validate())
}

func TestDisabledWalStillValidates(t *testing.T) {
	cfg := DefaultCollectionConfig().WithoutWal()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Wal.Enabled)
}

func TestZeroFilterOverfetchFailsValidation(t *testing.T) {
	cfg := DefaultCollectionConfig()
	cfg.Search.FilterOverfetch = 0
	assert.Error(t, cfg.Validate())
}

func TestSearchPresets(t *testing.T) {
	assert.Equal(t, 400, HighQualitySearch().Ef)
	assert.Equal(t, 50, FastSearch().Ef)
	assert.Equal(t, BalancedSearch(), DefaultSearchConfig())
}

func TestIndexConfigBuildRespectsExplicitStrategy(t *testing.T) {
	cfg := DefaultIndexConfig()
	cfg.Strategy = IndexFlat
	idx := cfg.Build(100000)
	assert.Equal(t, "flat", idx.Kind().String())
}

func TestIndexConfigAutoPicksByExpectedCount(t *testing.T) {
	cfg := DefaultIndexConfig()
	small := cfg.Build(100)
	large := cfg.Build(200000)
	assert.Equal(t, "flat", small.Kind().String())
	assert.Equal(t, "hnsw", large.Kind().String())
}
