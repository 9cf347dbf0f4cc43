// Package search implements the unified query pipeline over a
// collection's vector index: over-fetch when a filter is present,
// rescoring against the chosen metric, post-filter, and batch fan-out.
// Grounded on original_source/src/search/engine.rs.
package search

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"vecstore/internal/filter"
	"vecstore/internal/index"
	"vecstore/internal/metadata"
	"vecstore/internal/metric"
)

// Hit is one scored, fully materialized search result.
type Hit struct {
	ID       uuid.UUID
	Score    float64
	Text     string
	Vector   []float32
	Metadata metadata.Map
}

// Params carries the per-request overrides named in engine.rs's
// SearchParams: execution mode, an optional filter, and overfetch/ef
// overrides that take precedence over the collection's configured
// defaults.
type Params struct {
	Mode                   metric.ExecutionMode
	Filter                 *filter.Filter
	FilterOverfetchOverride int // 0 means "unset"
	Quality                index.Quality
}

// Source is the minimal view of a collection a search needs: vector
// lookup, metadata lookup, document retrieval, and the index itself.
type Source struct {
	Index            index.VectorIndex
	AllIDs           func() []uuid.UUID
	VectorByID       func(uuid.UUID) ([]float32, bool)
	MetadataByID     func(uuid.UUID) (metadata.Map, bool)
	TextByID         func(uuid.UUID) (string, bool)
	DefaultOverfetch int
}

// Collection resolves k*overfetch candidates from the index (the
// overfetch applies only when a filter is present, per engine.rs's
// search_k computation), rescopes each against the chosen metric, and -
// when a filter is present - post-filters, re-sorts and truncates to k.
func Collection(src Source, query []float32, k int, m metric.Metric, params Params) []Hit {
	overfetch := params.FilterOverfetchOverride
	if overfetch <= 0 {
		overfetch = src.DefaultOverfetch
	}
	if overfetch <= 0 {
		overfetch = 1
	}

	searchK := k
	var hint *filter.Hint
	if params.Filter != nil {
		searchK = k * overfetch
		hint = buildHint(params.Filter, src)
	}

	neighborIDs := src.Index.Search(query, searchK, src.VectorByID, params.Quality, hint, m, params.Mode)

	results := make([]Hit, 0, len(neighborIDs))
	for _, id := range neighborIDs {
		vec, ok := src.VectorByID(id)
		if !ok {
			continue
		}
		meta, _ := src.MetadataByID(id)
		text, _ := src.TextByID(id)
		score := m.Calculate(query, vec, params.Mode)
		results = append(results, Hit{ID: id, Score: score, Text: text, Vector: vec, Metadata: meta})
	}

	if params.Filter == nil {
		return results
	}

	filtered := lo.Filter(results, func(h Hit, _ int) bool { return params.Filter.Matches(h.Metadata) })
	sortByScore(filtered)
	return filtered[:min(k, len(filtered))]
}

// Batch runs Collection over every query, optionally fanning out across
// goroutines when parallelSearch is set (the Go analogue of rayon's
// par_iter in engine.rs's search_batch_collection).
func Batch(src Source, queries [][]float32, k int, m metric.Metric, params Params, parallelSearch bool) [][]Hit {
	out := make([][]Hit, len(queries))
	if !parallelSearch {
		for i, q := range queries {
			out[i] = Collection(src, q, k, m, params)
		}
		return out
	}

	var wg sync.WaitGroup
	wg.Add(len(queries))
	for i, q := range queries {
		i, q := i, q
		go func() {
			defer wg.Done()
			out[i] = Collection(src, q, k, m, params)
		}()
	}
	wg.Wait()
	return out
}

func buildHint(f *filter.Filter, src Source) *filter.Hint {
	return filter.NewHint(f, src.AllIDs(), src.MetadataByID)
}

// sortByScore sorts hits by descending score, breaking ties by id for
// determinism, matching utils::sort_and_truncate's ordering.
func sortByScore(hits []Hit) {
	for i := 1; i < len(hits); i++ {
		j := i
		for j > 0 && hitLess(hits[j], hits[j-1]) {
			hits[j], hits[j-1] = hits[j-1], hits[j]
			j--
		}
	}
}

func hitLess(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	for i := range a.ID {
		if a.ID[i] != b.ID[i] {
			return a.ID[i] < b.ID[i]
		}
	}
	return false
}
