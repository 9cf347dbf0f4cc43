package index

import (
	"container/heap"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"vecstore/internal/filter"
	"vecstore/internal/metric"
)

// HnswConfig groups the hierarchical navigable small-world graph's
// construction and search parameters, per spec.md §4.4.2 and §6.
type HnswConfig struct {
	M              int
	MMax           int
	EfConstruction int
	EfSearch       int
	Ml             float64
}

// DefaultHnswConfig matches the "balanced" preset supplemented from
// original_source/src/config/search.rs.
func DefaultHnswConfig() HnswConfig {
	m := 16
	return HnswConfig{
		M:              m,
		MMax:           2 * m,
		EfConstruction: 200,
		EfSearch:       64,
		Ml:             1.0 / math.Log(float64(m)),
	}
}

type hnswNode struct {
	id          uuid.UUID
	connections [][]uuid.UUID // connections[l] = neighbor ids at layer l
}

// HnswIndex is a native Go port of the hierarchical navigable small-world
// graph, grounded arithmetic-for-arithmetic on
// original_source/src/index/hnsw.rs, using an id-indexed arena
// (nodes map[uuid.UUID]*hnswNode) per Design Note "Cyclic graph in
// HNSW" rather than back-references.
type HnswIndex struct {
	cfg        HnswConfig
	nodes      map[uuid.UUID]*hnswNode
	maxLevel   int
	entryPoint uuid.UUID
	hasEntry   bool
	tombstones map[uuid.UUID]bool
	rng        *rand.Rand
	// buildMetric is the distance used to shape the graph on Insert. Set
	// once at construction and never mutated afterward: Insert's
	// interface carries no per-call metric, so the graph topology is
	// fixed to one metric for its lifetime. Search takes its own metric
	// as a parameter and never touches this field.
	buildMetric metric.Metric
}

func NewHnsw(cfg HnswConfig) *HnswIndex {
	if cfg.M == 0 {
		cfg = DefaultHnswConfig()
	}
	return &HnswIndex{
		cfg:         cfg,
		nodes:       make(map[uuid.UUID]*hnswNode),
		tombstones:  make(map[uuid.UUID]bool),
		rng:         rand.New(rand.NewSource(1)),
		buildMetric: metric.Cosine,
	}
}

// hnswDistance converts a Metric's similarity into HNSW's smaller-is-better
// convention: 1-sim for Cosine/Dot, raw value for Euclidean.
func hnswDistance(m metric.Metric, a, b []float32, mode metric.ExecutionMode) float64 {
	switch m {
	case metric.Euclidean:
		// Calculate() returns 1/(1+d); invert back to raw distance so
		// smaller-is-better holds for Euclidean too.
		sim := m.Calculate(a, b, mode)
		if sim <= 0 {
			return math.Inf(1)
		}
		return 1.0/sim - 1.0
	default:
		return 1.0 - m.Calculate(a, b, mode)
	}
}

func (h *HnswIndex) randomLayer() int {
	u := h.rng.Float64()
	if u <= 0 {
		u = 1e-12
	}
	return int(math.Floor(-math.Log(u) * h.cfg.Ml))
}

func (h *HnswIndex) Insert(id uuid.UUID, vector []float32, snapshot VectorSnapshot) {
	layer := h.randomLayer()
	node := &hnswNode{id: id, connections: make([][]uuid.UUID, layer+1)}
	h.nodes[id] = node
	delete(h.tombstones, id)

	if !h.hasEntry {
		h.entryPoint = id
		h.hasEntry = true
		h.maxLevel = layer
		return
	}

	current := h.entryPoint
	for l := h.maxLevel; l > layer; l-- {
		current = h.greedyClosest(current, vector, l, snapshot, h.buildMetric)
	}

	for l := min(h.maxLevel, layer); l >= 0; l-- {
		candidates := h.searchLayer(vector, []uuid.UUID{current}, h.cfg.EfConstruction, l, snapshot, h.buildMetric)
		m := h.cfg.M
		if l == 0 {
			m = h.cfg.MMax
		}
		best := h.selectNeighbors(vector, candidates, m, snapshot, h.buildMetric)
		node.connections[l] = best

		for _, neighborID := range best {
			neighbor := h.nodes[neighborID]
			if neighbor == nil || len(neighbor.connections) <= l {
				continue
			}
			neighbor.connections[l] = append(neighbor.connections[l], id)
			cap := h.cfg.M
			if l == 0 {
				cap = h.cfg.MMax
			}
			if len(neighbor.connections[l]) > cap {
				neighborVec, ok := snapshot(neighborID)
				if ok {
					neighbor.connections[l] = h.selectNeighbors(neighborVec, neighbor.connections[l], cap, snapshot, h.buildMetric)
				}
			}
		}
		if len(candidates) > 0 {
			current = candidates[0]
		}
	}

	if layer > h.maxLevel {
		h.maxLevel = layer
		h.entryPoint = id
	}
}

func (h *HnswIndex) greedyClosest(from uuid.UUID, query []float32, layer int, snapshot VectorSnapshot, dm metric.Metric) uuid.UUID {
	current := from
	currentVec, _ := snapshot(current)
	currentDist := hnswDistance(dm, query, currentVec, metric.Scalar)

	improved := true
	for improved {
		improved = false
		node := h.nodes[current]
		if node == nil || len(node.connections) <= layer {
			break
		}
		for _, candidate := range node.connections[layer] {
			if h.tombstones[candidate] {
				continue
			}
			vec, ok := snapshot(candidate)
			if !ok {
				continue
			}
			d := hnswDistance(dm, query, vec, metric.Scalar)
			if d < currentDist {
				current = candidate
				currentDist = d
				improved = true
			}
		}
	}
	return current
}

type heapItem struct {
	id   uuid.UUID
	dist float64
}

// minHeap of candidates to explore, ordered by ascending distance.
type minHeap []heapItem

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// maxHeap of current best-of-size-ef results, ordered by descending
// distance so the worst kept candidate sits at the root.
type maxHeap []heapItem

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// searchLayer maintains a min-heap of candidates to expand and a
// bounded max-heap of the best results found so far, expanding until the
// nearest unexplored candidate is farther than the worst kept result.
func (h *HnswIndex) searchLayer(query []float32, entryPoints []uuid.UUID, ef int, layer int, snapshot VectorSnapshot, dm metric.Metric) []uuid.UUID {
	visited := make(map[uuid.UUID]bool)
	toExplore := &minHeap{}
	best := &maxHeap{}
	heap.Init(toExplore)
	heap.Init(best)

	for _, ep := range entryPoints {
		if visited[ep] {
			continue
		}
		visited[ep] = true
		vec, ok := snapshot(ep)
		if !ok {
			continue
		}
		d := hnswDistance(dm, query, vec, metric.Scalar)
		heap.Push(toExplore, heapItem{id: ep, dist: d})
		heap.Push(best, heapItem{id: ep, dist: d})
	}

	for toExplore.Len() > 0 {
		nearest := (*toExplore)[0]
		if best.Len() >= ef && nearest.dist > (*best)[0].dist {
			break
		}
		heap.Pop(toExplore)

		node := h.nodes[nearest.id]
		if node == nil || len(node.connections) <= layer {
			continue
		}
		for _, candidateID := range node.connections[layer] {
			if visited[candidateID] || h.tombstones[candidateID] {
				continue
			}
			visited[candidateID] = true
			vec, ok := snapshot(candidateID)
			if !ok {
				continue
			}
			d := hnswDistance(dm, query, vec, metric.Scalar)
			furthest := math.Inf(1)
			if best.Len() > 0 {
				furthest = (*best)[0].dist
			}
			if best.Len() < ef || d < furthest {
				heap.Push(toExplore, heapItem{id: candidateID, dist: d})
				heap.Push(best, heapItem{id: candidateID, dist: d})
				if best.Len() > ef {
					heap.Pop(best)
				}
			}
		}
	}

	out := make([]heapItem, best.Len())
	copy(out, *best)
	sortByDistThenID(out)
	ids := make([]uuid.UUID, len(out))
	for i, it := range out {
		ids[i] = it.id
	}
	return ids
}

// selectNeighbors picks the m closest candidates to query (the simple
// heuristic named in spec.md §4.4.2, not the heuristic variant).
func (h *HnswIndex) selectNeighbors(query []float32, candidates []uuid.UUID, m int, snapshot VectorSnapshot, dm metric.Metric) []uuid.UUID {
	items := make([]heapItem, 0, len(candidates))
	for _, id := range candidates {
		vec, ok := snapshot(id)
		if !ok {
			continue
		}
		items = append(items, heapItem{id: id, dist: hnswDistance(dm, query, vec, metric.Scalar)})
	}
	sortByDistThenID(items)
	if m > len(items) {
		m = len(items)
	}
	out := make([]uuid.UUID, m)
	for i := 0; i < m; i++ {
		out[i] = items[i].id
	}
	return out
}

func sortByDistThenID(items []heapItem) {
	// insertion sort is fine at these small (ef-bounded) sizes and keeps
	// ties broken deterministically by id ordering.
	for i := 1; i < len(items); i++ {
		j := i
		for j > 0 && less(items[j], items[j-1]) {
			items[j], items[j-1] = items[j-1], items[j]
			j--
		}
	}
}

func less(a, b heapItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return idLess(a.id, b.id)
}

func (h *HnswIndex) Remove(id uuid.UUID) {
	// Tombstone rather than physically excise, per spec.md §4.4.2 —
	// deliberately diverging from the original Rust remove()'s physical
	// removal.
	h.tombstones[id] = true
}

func (h *HnswIndex) Search(query []float32, k int, snapshot VectorSnapshot, quality Quality,
	filterHint *filter.Hint, m metric.Metric, mode metric.ExecutionMode) []uuid.UUID {
	if !h.hasEntry || k <= 0 {
		return nil
	}

	current := h.entryPoint
	for l := h.maxLevel; l >= 1; l-- {
		current = h.greedyClosest(current, query, l, snapshot, m)
	}

	ef := quality.Ef
	if ef <= 0 {
		ef = h.cfg.EfSearch
	}
	if ef < k {
		ef = k
	}
	candidates := h.searchLayer(query, []uuid.UUID{current}, ef, 0, snapshot, m)

	out := make([]uuid.UUID, 0, k)
	for _, id := range candidates {
		if h.tombstones[id] {
			continue
		}
		if filterHint != nil && !filterHint.Contains(id) {
			continue
		}
		out = append(out, id)
		if len(out) == k {
			break
		}
	}
	return out
}

func (h *HnswIndex) Stats() Stats {
	live := 0
	for id := range h.nodes {
		if !h.tombstones[id] {
			live++
		}
	}
	return Stats{
		Kind:         KindHnsw,
		TotalVectors: live,
		MemoryBytes:  int64(len(h.nodes) * 64),
		Details: Details{
			MaxLevel:       h.maxLevel,
			TombstoneCount: len(h.tombstones),
		},
	}
}

func (h *HnswIndex) Kind() Kind { return KindHnsw }
