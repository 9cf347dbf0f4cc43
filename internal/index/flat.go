package index

import (
	"sort"

	"github.com/google/uuid"

	"vecstore/internal/filter"
	"vecstore/internal/metric"
)

// FlatIndex tracks inserted ids in a list and scores every one of them on
// every search: exhaustive, recall 1.0 by construction, no persistence
// beyond the id list. Grounded in the teacher's FlatIndex/NewFlatIndex
// naming, with the faiss-backed search replaced by a brute-force scan.
type FlatIndex struct {
	ids []uuid.UUID
}

func NewFlat() *FlatIndex {
	return &FlatIndex{}
}

func (f *FlatIndex) Insert(id uuid.UUID, vector []float32, snapshot VectorSnapshot) {
	f.ids = append(f.ids, id)
}

func (f *FlatIndex) Remove(id uuid.UUID) {
	for i, existing := range f.ids {
		if existing == id {
			f.ids = append(f.ids[:i], f.ids[i+1:]...)
			return
		}
	}
}

func (f *FlatIndex) Search(query []float32, k int, snapshot VectorSnapshot, quality Quality,
	filterHint *filter.Hint, m metric.Metric, mode metric.ExecutionMode) []uuid.UUID {
	if k <= 0 || len(f.ids) == 0 {
		return nil
	}

	type scored struct {
		id    uuid.UUID
		score float64
	}
	candidates := make([]scored, 0, len(f.ids))
	for _, id := range f.ids {
		if filterHint != nil && !filterHint.Contains(id) {
			continue
		}
		vec, ok := snapshot(id)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{id: id, score: m.Calculate(query, vec, mode)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return idLess(candidates[i].id, candidates[j].id)
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]uuid.UUID, k)
	for i := 0; i < k; i++ {
		out[i] = candidates[i].id
	}
	return out
}

func (f *FlatIndex) Stats() Stats {
	return Stats{Kind: KindFlat, TotalVectors: len(f.ids), MemoryBytes: int64(len(f.ids) * 16)}
}

func (f *FlatIndex) Kind() Kind { return KindFlat }

func idLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
