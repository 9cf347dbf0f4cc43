package config

import (
	"vecstore/internal/index"
	"vecstore/internal/metric"
)

// IndexStrategy names which index construction path to take: Auto lets
// the collection pick based on expected size (index.NewAuto), the
// others pin a specific strategy.
type IndexStrategy int

const (
	IndexAuto IndexStrategy = iota
	IndexFlat
	IndexHnsw
	IndexIvf
)

func (s IndexStrategy) MarshalText() ([]byte, error) {
	switch s {
	case IndexFlat:
		return []byte("flat"), nil
	case IndexHnsw:
		return []byte("hnsw"), nil
	case IndexIvf:
		return []byte("ivf"), nil
	default:
		return []byte("auto"), nil
	}
}

func (s *IndexStrategy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "flat":
		*s = IndexFlat
	case "hnsw":
		*s = IndexHnsw
	case "ivf":
		*s = IndexIvf
	default:
		*s = IndexAuto
	}
	return nil
}

// IndexConfig groups the index strategy choice with each strategy's
// construction parameters, mirroring original_source's
// IndexConfig::{Flat,Hnsw,Ivf} enum variants as a flat struct (Go has
// no tagged-union language feature; the strategy field plus per-kind
// sub-structs is the idiomatic substitute, matching index.Config).
type IndexConfig struct {
	Strategy IndexStrategy     `toml:"strategy"`
	Metric   metric.Metric     `toml:"metric"`
	Mode     metric.ExecutionMode `toml:"mode"`
	Hnsw     index.HnswConfig  `toml:"hnsw"`
	Ivf      index.IvfConfig   `toml:"ivf"`
}

func DefaultIndexConfig() IndexConfig {
	return IndexConfig{
		Strategy: IndexAuto,
		Metric:   metric.Cosine,
		Mode:     metric.Auto,
		Hnsw:     index.DefaultHnswConfig(),
		Ivf:      index.DefaultIvfConfig(),
	}
}

func (c IndexConfig) ToIndexConfig() index.Config {
	return index.Config{Hnsw: c.Hnsw, Ivf: c.Ivf}
}

// Build constructs the concrete VectorIndex for this configuration,
// resolving IndexAuto against expectedCount per index.NewAuto.
func (c IndexConfig) Build(expectedCount int) index.VectorIndex {
	switch c.Strategy {
	case IndexFlat:
		return index.NewFlat()
	case IndexHnsw:
		return index.NewHnsw(c.Hnsw)
	case IndexIvf:
		return index.NewIvf(c.Ivf)
	default:
		return index.NewAuto(expectedCount, c.ToIndexConfig())
	}
}
