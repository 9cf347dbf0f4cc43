package collection

import (
	"time"

	"vecstore/internal/index"
)

// saveIndex persists the offset index sidecar. Per DESIGN.md's resolved
// open question #1, this runs on every mutation (matching
// operations.rs's literal save_index call inside insert/delete),
// unlike save_vector_index, which is deferred to upsert/delete/
// checkpoint.
func (c *Collection) saveIndex() error {
	return c.offsetIndex.Save(indexPath(c.path))
}

func (c *Collection) saveVectorIndex() error {
	return index.Save(c.vectorIndex, vecIndexPath(c.path))
}

func (c *Collection) saveMetadata() error {
	return c.collMeta.Save(metaPath(c.path))
}

// Checkpoint records a WAL checkpoint, persists every sidecar, and
// rotates the WAL file, matching
// original_source/src/storage/collection/persistence.rs's checkpoint.
func (c *Collection) Checkpoint() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkpointLocked(time.Now())
}

func (c *Collection) checkpointLocked(now time.Time) error {
	if err := c.wal.Checkpoint(now.UnixNano()); err != nil {
		return err
	}
	if err := c.saveIndex(); err != nil {
		return err
	}
	if err := c.saveVectorIndex(); err != nil {
		return err
	}
	if err := c.saveMetadata(); err != nil {
		return err
	}
	return c.wal.Rotate()
}

// Flush flushes the WAL and mmap region without checkpointing.
func (c *Collection) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.wal.Flush(); err != nil {
		return err
	}
	return c.region.Flush()
}

// RebuildIndex discards the current vector index and reinserts every
// cached vector, used to recover from a corrupt or stale vecindex
// sidecar or to switch strategy at runtime.
func (c *Collection) RebuildIndex(strategy index.VectorIndex) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectorIndex = strategy
	c.rebuildVectorIndexLocked()
	return c.saveVectorIndex()
}

// Close flushes pending writes and releases the mmap region.
func (c *Collection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.wal.Close(); err != nil {
		return err
	}
	if err := c.saveIndex(); err != nil {
		return err
	}
	if err := c.saveVectorIndex(); err != nil {
		return err
	}
	if err := c.saveMetadata(); err != nil {
		return err
	}
	return c.region.Close()
}

// Drop closes the collection handle, matching spec.md §6's `drop`:
// flush the WAL and release the mmap. It does not delete anything on
// disk; permanently erasing a collection's files is a server-layer
// concern this repo doesn't implement (see DESIGN.md).
func (c *Collection) Drop() error {
	return c.Close()
}
