package config

import (
	"errors"

	"vecstore/internal/metric"
)

// CollectionConfig is the unified, per-collection settings bag threaded
// through collection.Open, grounded on
// original_source/src/config/collection.rs.
type CollectionConfig struct {
	Index         IndexConfig        `toml:"index"`
	Search        SearchConfig       `toml:"search"`
	Quantization  QuantizationConfig `toml:"quantization"`
	Memory        MemoryConfig       `toml:"memory"`
	Wal           WalConfig          `toml:"wal"`
	Parallelism   ParallelismConfig  `toml:"parallelism"`
	Execution     metric.ExecutionMode `toml:"execution"`
}

func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Index:        DefaultIndexConfig(),
		Search:       DefaultSearchConfig(),
		Quantization: DefaultQuantizationConfig(),
		Memory:       DefaultMemoryConfig(),
		Wal:          DefaultWalConfig(),
		Parallelism:  DefaultParallelismConfig(),
		Execution:    metric.Auto,
	}
}

func WithIndex(idx IndexConfig) CollectionConfig {
	cfg := DefaultCollectionConfig()
	cfg.Index = idx
	return cfg
}

func (c CollectionConfig) WithInt8Quantization() CollectionConfig {
	c.Quantization = Int8Quantization()
	return c
}

func (c CollectionConfig) WithMemoryLimitMB(limitMB int64) CollectionConfig {
	c.Memory = MemoryWithLimitMB(limitMB)
	return c
}

func (c CollectionConfig) WithoutWal() CollectionConfig {
	c.Wal = DisabledWal()
	return c
}

func (c CollectionConfig) SingleThreaded() CollectionConfig {
	c.Parallelism = SingleThreaded()
	return c
}

func (c CollectionConfig) WithExecutionMode(mode metric.ExecutionMode) CollectionConfig {
	c.Execution = mode
	return c
}

// Validate mirrors AppConfig::validate: a misconfigured WAL checkpoint
// frequency or filter overfetch is a startup-time error, not a runtime
// surprise.
func (c CollectionConfig) Validate() error {
	if c.Wal.Enabled && c.Wal.CheckpointFrequency == 0 {
		return errors.New("config: wal.checkpoint_frequency must be > 0 when wal.enabled is true")
	}
	if c.Search.FilterOverfetch == 0 {
		return errors.New("config: search.filter_overfetch must be >= 1")
	}
	return nil
}
