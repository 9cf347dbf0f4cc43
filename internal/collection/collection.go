// Package collection orchestrates the storage region, offset index,
// vector index, caches, and WAL into the single entry point described
// in SPEC_FULL.md §4.8. Grounded on
// original_source/src/storage/collection/storage.rs for the struct
// shape and internal/vecdb/db.go for the Go orchestrator idiom
// (sync.RWMutex, log/slog, background goroutine).
package collection

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"vecstore/internal/config"
	"vecstore/internal/index"
	"vecstore/internal/metadata"
	"vecstore/internal/storage"
)

// Collection is the single object an application talks to: every
// mutating or searching operation goes through it, guarded by mu.
type Collection struct {
	mu sync.RWMutex

	path   string
	config config.CollectionConfig

	region      *storage.Region
	offsetIndex *storage.OffsetIndex
	collMeta    *storage.CollectionMetadata
	vectorIndex index.VectorIndex
	wal         *storage.WAL

	vectorCache   map[uuid.UUID][]float32
	metadataCache map[uuid.UUID]metadata.Map
	textCache     map[uuid.UUID]string

	operationCount int

	stopSync chan struct{}
	syncDone sync.WaitGroup
}

func indexPath(path string) string    { return path + ".index.db" }
func walPath(path string) string      { return path + ".wal.db" }
func vecIndexPath(path string) string { return path + ".vecindex.db" }
func metaPath(path string) string     { return path + ".metadata.db" }

// Count returns the number of live documents.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offsetIndex.Len()
}

// Metadata returns the collection-level bookkeeping record.
func (c *Collection) Metadata() storage.CollectionMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.collMeta
}

// MemoryUsageBytes approximates total resident memory, mirroring
// storage.rs's memory_usage_bytes.
func (c *Collection) MemoryUsageBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.vectorIndex.Stats()
	entrySize := int64(28) // uuid (16) + EntryPointer offset (8) + length (4)
	return c.region.Size() + int64(c.offsetIndex.Len())*entrySize + stats.MemoryBytes
}

// VectorIndexStats exposes the underlying index's observability surface.
func (c *Collection) VectorIndexStats() index.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vectorIndex.Stats()
}

// trackOperation mirrors storage.rs's track_operation: count mutations
// since the last checkpoint, and checkpoint automatically once the
// configured frequency is reached.
func (c *Collection) trackOperation() error {
	c.operationCount++
	if c.config.Wal.Enabled && c.operationCount >= c.config.Wal.CheckpointFrequency {
		if err := c.checkpointLocked(time.Now()); err != nil {
			return err
		}
		c.operationCount = 0
	}
	return nil
}
