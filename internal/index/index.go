// Package index implements the pluggable ANN index layer: one contract,
// three interchangeable strategies (Flat, HNSW, IVF), search-time quality
// controls, and tagged persistence.
package index

import (
	"github.com/google/uuid"

	"vecstore/internal/filter"
	"vecstore/internal/metric"
)

// Kind identifies which concrete strategy an index implements.
type Kind int

const (
	KindFlat Kind = iota
	KindHnsw
	KindIvf
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindHnsw:
		return "hnsw"
	case KindIvf:
		return "ivf"
	default:
		return "unknown"
	}
}

// VectorSnapshot is a read-only accessor into the collection's vector
// cache. Implementations must not mutate through it and must not retain
// it beyond the call that received it.
type VectorSnapshot func(id uuid.UUID) ([]float32, bool)

// MetadataSnapshot is the read-only analogue of VectorSnapshot for
// metadata. No VectorIndex method takes one: an index sees metadata only
// through the filter.Hint passed to Search.
type MetadataSnapshot func(id uuid.UUID) (map[string]any, bool)

// Quality carries the search-time knobs: ef (HNSW), nprobe (IVF), and
// filter_overfetch (search pipeline, not consumed by the index itself but
// threaded through Quality for a single config surface).
type Quality struct {
	Ef              int
	NProbe          int
	FilterOverfetch int
}

// Details is the kind-specific portion of Stats.
type Details struct {
	// Hnsw
	MaxLevel        int
	TombstoneCount  int
	// Ivf
	NumClusters       int
	VectorsPerCluster float64
	CentroidsComputed bool
}

// Stats reports index-level observability, matching spec.md §6's
// `vector_index().stats()` surface.
type Stats struct {
	Kind          Kind
	TotalVectors  int
	MemoryBytes   int64
	Details       Details
}

// VectorIndex is the five-method contract every strategy implements, per
// spec.md §4.4 and Design Note "Polymorphism over index strategies".
type VectorIndex interface {
	Insert(id uuid.UUID, vector []float32, snapshot VectorSnapshot)
	Search(query []float32, k int, snapshot VectorSnapshot, quality Quality,
		filterHint *filter.Hint, metric metric.Metric, mode metric.ExecutionMode) []uuid.UUID
	Remove(id uuid.UUID)
	Stats() Stats
	Kind() Kind
}

// NewAuto resolves IndexConfig::Auto per spec.md §4.4.5: Flat below
// 10,000 expected vectors, Ivf below 100,000, Hnsw otherwise.
func NewAuto(expectedCount int, cfg Config) VectorIndex {
	switch {
	case expectedCount < 10_000:
		return NewFlat()
	case expectedCount < 100_000:
		return NewIvf(cfg.Ivf)
	default:
		return NewHnsw(cfg.Hnsw)
	}
}

// Config groups per-strategy construction parameters, mirroring the
// configuration surface's `index` group.
type Config struct {
	Hnsw HnswConfig
	Ivf  IvfConfig
}

// New builds a concrete index for an explicitly chosen strategy
// (IndexConfig::Flat | Hnsw{...} | Ivf{...}).
func New(kind Kind, cfg Config) VectorIndex {
	switch kind {
	case KindHnsw:
		return NewHnsw(cfg.Hnsw)
	case KindIvf:
		return NewIvf(cfg.Ivf)
	default:
		return NewFlat()
	}
}
