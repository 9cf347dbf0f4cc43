package index

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"vecstore/internal/filter"
	"vecstore/internal/metric"
)

// IvfConfig groups the inverted-file index's clustering parameters, per
// spec.md §4.4.3 and §6.
type IvfConfig struct {
	NumClusters   int
	NumProbes     int
	MaxIterations int
}

func DefaultIvfConfig() IvfConfig {
	return IvfConfig{NumClusters: 100, NumProbes: 8, MaxIterations: 25}
}

// convergenceFraction is the reassignment-fraction stopping criterion:
// k-means halts once fewer than this share of vectors change cluster in
// an iteration, a metric-agnostic substitute for the original's
// similarity-threshold bound (see DESIGN.md open question #2).
const convergenceFraction = 0.001

type ivfCluster struct {
	centroid []float32
	members  []uuid.UUID
}

// IvfIndex is a native Go port of k-means clustered search, grounded on
// original_source/src/index/ivf/index.rs. Inserts are buffered until
// enough vectors accumulate to build clusters; afterward, new vectors
// are assigned to their nearest existing centroid without re-running
// k-means (online assignment, matching the original's insert_online).
type IvfIndex struct {
	mu             sync.Mutex
	cfg            IvfConfig
	clusters       []ivfCluster
	built          bool
	pendingIDs     []uuid.UUID
	pendingVectors [][]float32
	metric         metric.Metric
}

func NewIvf(cfg IvfConfig) *IvfIndex {
	if cfg.NumClusters == 0 {
		cfg = DefaultIvfConfig()
	}
	return &IvfIndex{cfg: cfg, metric: metric.Cosine}
}

func (iv *IvfIndex) Insert(id uuid.UUID, vector []float32, snapshot VectorSnapshot) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	if !iv.built {
		iv.pendingIDs = append(iv.pendingIDs, id)
		iv.pendingVectors = append(iv.pendingVectors, vector)
		if len(iv.pendingIDs) >= iv.cfg.NumClusters {
			iv.buildClusters()
		}
		return
	}

	c := iv.findNearestCentroid(vector)
	iv.clusters[c].members = append(iv.clusters[c].members, id)
}

// buildClusters runs k-means on the buffered vectors, grounded on
// original_source/src/index/ivf/index.rs's build_clusters.
func (iv *IvfIndex) buildClusters() {
	n := len(iv.pendingIDs)
	k := iv.cfg.NumClusters
	if k > n {
		k = n
	}
	if k == 0 {
		return
	}

	centroids := make([][]float32, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float32(nil), iv.pendingVectors[i*n/k]...)
	}

	assignment := make([]int, n)
	for iter := 0; iter < iv.cfg.MaxIterations; iter++ {
		changed := 0
		buckets := make([][]int, k)
		for i, vec := range iv.pendingVectors {
			best := nearestCentroidIndex(vec, centroids, iv.metric)
			if assignment[i] != best {
				changed++
			}
			assignment[i] = best
			buckets[best] = append(buckets[best], i)
		}

		for c := 0; c < k; c++ {
			if len(buckets[c]) == 0 {
				continue
			}
			centroids[c] = computeCentroid(buckets[c], iv.pendingVectors)
		}

		if n > 0 && float64(changed)/float64(n) < convergenceFraction {
			break
		}
	}

	iv.clusters = make([]ivfCluster, k)
	for c := 0; c < k; c++ {
		iv.clusters[c].centroid = centroids[c]
	}
	for i, c := range assignment {
		iv.clusters[c].members = append(iv.clusters[c].members, iv.pendingIDs[i])
	}
	iv.built = true
	iv.pendingIDs = nil
	iv.pendingVectors = nil
}

func computeCentroid(indices []int, vectors [][]float32) []float32 {
	dim := len(vectors[indices[0]])
	sum := make([]float64, dim)
	for _, idx := range indices {
		v := vectors[idx]
		for d := 0; d < dim; d++ {
			sum[d] += float64(v[d])
		}
	}
	out := make([]float32, dim)
	n := float64(len(indices))
	for d := 0; d < dim; d++ {
		out[d] = float32(sum[d] / n)
	}
	return out
}

func nearestCentroidIndex(vec []float32, centroids [][]float32, m metric.Metric) int {
	best := 0
	bestScore := m.Calculate(vec, centroids[0], metric.Scalar)
	for i := 1; i < len(centroids); i++ {
		score := m.Calculate(vec, centroids[i], metric.Scalar)
		if score > bestScore {
			bestScore = score
			best = i
		}
	}
	return best
}

func (iv *IvfIndex) findNearestCentroid(vec []float32) int {
	centroids := make([][]float32, len(iv.clusters))
	for i := range iv.clusters {
		centroids[i] = iv.clusters[i].centroid
	}
	return nearestCentroidIndex(vec, centroids, iv.metric)
}

func (iv *IvfIndex) Remove(id uuid.UUID) {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	for i, pending := range iv.pendingIDs {
		if pending == id {
			iv.pendingIDs = append(iv.pendingIDs[:i], iv.pendingIDs[i+1:]...)
			iv.pendingVectors = append(iv.pendingVectors[:i], iv.pendingVectors[i+1:]...)
			return
		}
	}
	for c := range iv.clusters {
		members := iv.clusters[c].members
		for i, existing := range members {
			if existing == id {
				iv.clusters[c].members = append(members[:i], members[i+1:]...)
				return
			}
		}
	}
}

// Search falls back to a brute-force scan over all buffered vectors
// until clusters have been built, then probes the NProbe closest
// clusters to the query, per quality.NProbe.
func (iv *IvfIndex) Search(query []float32, k int, snapshot VectorSnapshot, quality Quality,
	filterHint *filter.Hint, m metric.Metric, mode metric.ExecutionMode) []uuid.UUID {
	iv.mu.Lock()
	iv.metric = m
	built := iv.built
	var ids []uuid.UUID
	if !built {
		ids = append(ids, iv.pendingIDs...)
	} else {
		nprobe := quality.NProbe
		if nprobe <= 0 {
			nprobe = iv.cfg.NumProbes
		}
		if nprobe > len(iv.clusters) {
			nprobe = len(iv.clusters)
		}
		type scoredCluster struct {
			idx   int
			score float64
		}
		ranked := make([]scoredCluster, len(iv.clusters))
		for i, c := range iv.clusters {
			ranked[i] = scoredCluster{idx: i, score: m.Calculate(query, c.centroid, mode)}
		}
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
		for i := 0; i < nprobe; i++ {
			ids = append(ids, iv.clusters[ranked[i].idx].members...)
		}
	}
	iv.mu.Unlock()

	type scored struct {
		id    uuid.UUID
		score float64
	}
	candidates := make([]scored, 0, len(ids))
	for _, id := range ids {
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

func (iv *IvfIndex) Stats() Stats {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	total := len(iv.pendingIDs)
	for _, c := range iv.clusters {
		total += len(c.members)
	}
	avg := 0.0
	if len(iv.clusters) > 0 {
		avg = float64(total) / float64(len(iv.clusters))
	}
	return Stats{
		Kind:         KindIvf,
		TotalVectors: total,
		MemoryBytes:  int64(total * 16),
		Details: Details{
			NumClusters:       len(iv.clusters),
			VectorsPerCluster: avg,
			CentroidsComputed: iv.built,
		},
	}
}

func (iv *IvfIndex) Kind() Kind { return KindIvf }
