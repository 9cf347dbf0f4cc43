package collection

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vecstore/internal/config"
	"vecstore/internal/index"
	"vecstore/internal/metadata"
	"vecstore/internal/quantization"
	"vecstore/internal/storage"
)

// Open opens (or creates) the collection rooted at path using default
// configuration, per original_source's Collection::open.
func Open(path string) (*Collection, error) {
	return OpenWithOptions(path, config.DefaultCollectionConfig())
}

// OpenWithOptions opens the collection rooted at path with cfg,
// replaying any WAL records beyond the last checkpoint before becoming
// ready for use. Grounded on
// original_source/src/storage/collection/builder.rs's CollectionBuilder::open.
func OpenWithOptions(path string, cfg config.CollectionConfig) (*Collection, error) {
	initialSize := cfg.Memory.InitialMmapSize
	if !cfg.Memory.UseMmap {
		initialSize = 1024 * 1024
	}
	region, err := storage.OpenRegion(path, initialSize)
	if err != nil {
		return nil, err
	}

	offsetIndex, err := storage.LoadOffsetIndex(indexPath(path))
	if err != nil {
		region.Close()
		return nil, err
	}

	collMeta, err := storage.LoadCollectionMetadata(metaPath(path), collectionName(path), time.Now())
	if err != nil {
		region.Close()
		return nil, err
	}
	collMeta.UpdateVectorCount(offsetIndex.Len(), time.Now())

	vectorIndex, loaded, err := index.Load(vecIndexPath(path))
	if err != nil {
		region.Close()
		return nil, err
	}
	if !loaded {
		vectorIndex = cfg.Index.Build(offsetIndex.Len())
	}

	wal, err := storage.OpenWAL(walPath(path), cfg.Wal.EncoderName, cfg.Wal.Enabled)
	if err != nil {
		region.Close()
		return nil, err
	}

	c := &Collection{
		path:          path,
		config:        cfg,
		region:        region,
		offsetIndex:   offsetIndex,
		collMeta:      collMeta,
		vectorIndex:   vectorIndex,
		wal:           wal,
		vectorCache:   make(map[uuid.UUID][]float32),
		metadataCache: make(map[uuid.UUID]metadata.Map),
		textCache:     make(map[uuid.UUID]string),
		stopSync:      make(chan struct{}),
	}

	pending, err := wal.Replay()
	if err != nil {
		region.Close()
		return nil, err
	}

	if len(pending) > 0 {
		replayWAL(c, pending)
		c.rebuildVectorCache()
		if err := c.checkpointLocked(time.Now()); err != nil {
			region.Close()
			return nil, err
		}
	} else {
		c.rebuildVectorCache()
		if !loaded && offsetIndex.Len() > 0 {
			c.rebuildVectorIndexLocked()
		}
	}

	return c, nil
}

// replayWAL applies every pending WAL record directly to storage
// without re-logging it, matching CollectionBuilder::replay_wal.
func replayWAL(c *Collection, records []storage.WALRecord) {
	for _, rec := range records {
		switch rec.Operation {
		case storage.OpInsert:
			doc := storage.Document{
				ID:       rec.ID,
				Vector:   quantization.FromF32(rec.Vector),
				Text:     rec.Text,
				Metadata: rec.Metadata,
			}
			_, _ = insertInternal(c, doc)
		case storage.OpUpdate:
			deleteInternal(c, rec.ID)
			doc := storage.Document{
				ID:       rec.ID,
				Vector:   quantization.FromF32(rec.Vector),
				Text:     rec.Text,
				Metadata: rec.Metadata,
			}
			_, _ = insertInternal(c, doc)
		case storage.OpDelete:
			deleteInternal(c, rec.ID)
		}
	}
}

// rebuildVectorCache re-derives the in-memory vector/metadata/text
// caches from the offset index and mmap region, used after WAL replay
// and whenever the vector index had to be rebuilt from scratch.
func (c *Collection) rebuildVectorCache() {
	for _, id := range c.offsetIndex.Ids() {
		doc, ok := c.readDocument(id)
		if !ok {
			continue
		}
		c.vectorCache[id] = doc.Vector.ToF32()
		c.metadataCache[id] = doc.Metadata
		c.textCache[id] = doc.Text
	}
}

// rebuildVectorIndexLocked re-inserts every cached vector into a fresh
// vector index, used when no persisted vecindex sidecar was found.
func (c *Collection) rebuildVectorIndexLocked() {
	for id, vec := range c.vectorCache {
		c.vectorIndex.Insert(id, vec, c.vectorSnapshot)
	}
}

func (c *Collection) readDocument(id uuid.UUID) (storage.Document, bool) {
	ptr, ok := c.offsetIndex.Get(id)
	if !ok {
		return storage.Document{}, false
	}
	raw, err := c.region.ReadAt(int64(ptr.Offset), int64(ptr.Length))
	if err != nil {
		slog.Warn("collection: failed to read document", "id", id, "error", err)
		return storage.Document{}, false
	}
	doc, err := storage.DecodeDocument(raw)
	if err != nil {
		slog.Warn("collection: failed to decode document", "id", id, "error", err)
		return storage.Document{}, false
	}
	return doc, true
}

func (c *Collection) vectorSnapshot(id uuid.UUID) ([]float32, bool) {
	v, ok := c.vectorCache[id]
	return v, ok
}

func collectionName(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	if base == "" {
		return "unknown"
	}
	return base
}
