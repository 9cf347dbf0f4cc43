package index

import (
	"bytes"
	"encoding/gob"
	"os"

	"github.com/google/uuid"

	"vecstore/internal/vdberr"
)

// serializable is the tagged-union persistence contract: every strategy
// can convert to and be rebuilt from a plain-data snapshot, avoiding
// type-assertion downcasting at load time (Design Note "Polymorphism
// over index strategies").
type serializableFlat struct {
	IDs []uuid.UUID
}

type serializableHnswNode struct {
	ID          uuid.UUID
	Connections [][]uuid.UUID
}

type serializableHnsw struct {
	Cfg        HnswConfig
	Nodes      []serializableHnswNode
	MaxLevel   int
	EntryPoint uuid.UUID
	HasEntry   bool
	Tombstones []uuid.UUID
}

type serializableIvfCluster struct {
	Centroid []float32
	Members  []uuid.UUID
}

type serializableIvf struct {
	Cfg            IvfConfig
	Clusters       []serializableIvfCluster
	Built          bool
	PendingIDs     []uuid.UUID
	PendingVectors [][]float32
}

// envelope tags the payload so Load can dispatch to the right decode
// without type assertions on VectorIndex itself.
type envelope struct {
	Kind Kind
	Flat *serializableFlat
	Hnsw *serializableHnsw
	Ivf  *serializableIvf
}

// Save persists idx to path as a gob-encoded envelope.
func Save(idx VectorIndex, path string) error {
	env := envelope{Kind: idx.Kind()}
	switch v := idx.(type) {
	case *FlatIndex:
		env.Flat = &serializableFlat{IDs: v.ids}
	case *HnswIndex:
		nodes := make([]serializableHnswNode, 0, len(v.nodes))
		for _, n := range v.nodes {
			nodes = append(nodes, serializableHnswNode{ID: n.id, Connections: n.connections})
		}
		tomb := make([]uuid.UUID, 0, len(v.tombstones))
		for id := range v.tombstones {
			tomb = append(tomb, id)
		}
		env.Hnsw = &serializableHnsw{
			Cfg:        v.cfg,
			Nodes:      nodes,
			MaxLevel:   v.maxLevel,
			EntryPoint: v.entryPoint,
			HasEntry:   v.hasEntry,
			Tombstones: tomb,
		}
	case *IvfIndex:
		clusters := make([]serializableIvfCluster, len(v.clusters))
		for i, c := range v.clusters {
			clusters[i] = serializableIvfCluster{Centroid: c.centroid, Members: c.members}
		}
		env.Ivf = &serializableIvf{
			Cfg:            v.cfg,
			Clusters:       clusters,
			Built:          v.built,
			PendingIDs:     v.pendingIDs,
			PendingVectors: v.pendingVectors,
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return vdberr.New("index.Save", vdberr.IO, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return vdberr.New("index.Save", vdberr.IO, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return vdberr.New("index.Save", vdberr.IO, err)
	}
	return nil
}

// Load rebuilds a VectorIndex from the file at path. A missing file is
// not an error; the caller is expected to build a fresh index instead.
func Load(path string) (VectorIndex, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, vdberr.New("index.Load", vdberr.IO, err)
	}

	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, false, vdberr.New("index.Load", vdberr.Corruption, err)
	}

	switch env.Kind {
	case KindFlat:
		return &FlatIndex{ids: env.Flat.IDs}, true, nil
	case KindHnsw:
		nodes := make(map[uuid.UUID]*hnswNode, len(env.Hnsw.Nodes))
		for _, n := range env.Hnsw.Nodes {
			nodes[n.ID] = &hnswNode{id: n.ID, connections: n.Connections}
		}
		tomb := make(map[uuid.UUID]bool, len(env.Hnsw.Tombstones))
		for _, id := range env.Hnsw.Tombstones {
			tomb[id] = true
		}
		h := NewHnsw(env.Hnsw.Cfg)
		h.nodes = nodes
		h.maxLevel = env.Hnsw.MaxLevel
		h.entryPoint = env.Hnsw.EntryPoint
		h.hasEntry = env.Hnsw.HasEntry
		h.tombstones = tomb
		return h, true, nil
	case KindIvf:
		clusters := make([]ivfCluster, len(env.Ivf.Clusters))
		for i, c := range env.Ivf.Clusters {
			clusters[i] = ivfCluster{centroid: c.Centroid, members: c.Members}
		}
		iv := NewIvf(env.Ivf.Cfg)
		iv.clusters = clusters
		iv.built = env.Ivf.Built
		iv.pendingIDs = env.Ivf.PendingIDs
		iv.pendingVectors = env.Ivf.PendingVectors
		return iv, true, nil
	default:
		return nil, false, vdberr.New("index.Load", vdberr.Corruption, nil)
	}
}
