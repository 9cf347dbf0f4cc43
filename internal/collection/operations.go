package collection

import (
	"time"

	"github.com/google/uuid"

	"vecstore/internal/metadata"
	"vecstore/internal/quantization"
	"vecstore/internal/storage"
	"vecstore/internal/vdberr"
)

// Get retrieves a document by id, or false if it does not exist.
func (c *Collection) Get(id uuid.UUID) (storage.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.readDocument(id)
}

// GetAll returns every live document, order unspecified.
func (c *Collection) GetAll() []storage.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := c.offsetIndex.Ids()
	out := make([]storage.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := c.readDocument(id); ok {
			out = append(out, doc)
		}
	}
	return out
}

// insertInternal appends doc's encoded bytes to the region, records the
// offset pointer, enforces the collection's locked-in dimension, and
// updates every in-memory cache and the vector index. It does not touch
// the WAL or sidecars; callers handle those around it, matching
// operations.rs's insert_internal/delete_internal split.
func insertInternal(c *Collection, doc storage.Document) (uuid.UUID, error) {
	encoded, err := storage.EncodeDocument(doc)
	if err != nil {
		return uuid.Nil, vdberr.New("collection.insertInternal", vdberr.IO, err)
	}

	offset := c.offsetIndex.NextOffset()
	required := int64(offset) + int64(len(encoded))
	if err := c.region.EnsureCapacity(required); err != nil {
		return uuid.Nil, err
	}
	if err := c.region.WriteAt(int64(offset), encoded); err != nil {
		return uuid.Nil, err
	}
	c.offsetIndex.Set(doc.ID, storage.EntryPointer{Offset: offset, Length: uint32(len(encoded))})

	vec := doc.Vector.ToF32()
	c.collMeta.SetDimensions(len(vec))
	if expected := c.collMeta.Dimensions; expected != 0 && len(vec) != expected {
		c.offsetIndex.Remove(doc.ID)
		return uuid.Nil, vdberr.New("collection.insertInternal", vdberr.Validation, nil)
	}

	c.vectorCache[doc.ID] = vec
	c.metadataCache[doc.ID] = doc.Metadata
	c.textCache[doc.ID] = doc.Text
	c.vectorIndex.Insert(doc.ID, vec, c.vectorSnapshot)
	c.collMeta.UpdateVectorCount(c.offsetIndex.Len(), time.Now())

	return doc.ID, nil
}

func deleteInternal(c *Collection, id uuid.UUID) {
	c.offsetIndex.Remove(id)
	c.vectorIndex.Remove(id)
	delete(c.vectorCache, id)
	delete(c.metadataCache, id)
	delete(c.textCache, id)
	c.collMeta.UpdateVectorCount(c.offsetIndex.Len(), time.Now())
}

// Insert logs the document to the WAL, persists the offset index, and
// applies the mutation, per operations.rs's insert.
func (c *Collection) Insert(doc storage.Document) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.insertLocked(doc)
}

func (c *Collection) insertLocked(doc storage.Document) (uuid.UUID, error) {
	if err := validateVector("collection.Insert", doc.Vector.ToF32()); err != nil {
		return uuid.Nil, err
	}
	if _, err := c.wal.Log(storage.WALRecord{
		Operation: storage.OpInsert,
		ID:        doc.ID,
		Vector:    doc.Vector.ToF32(),
		Text:      doc.Text,
		Metadata:  doc.Metadata,
	}); err != nil {
		return uuid.Nil, err
	}
	if err := c.saveIndex(); err != nil {
		return uuid.Nil, err
	}
	id, err := insertInternal(c, doc)
	if err != nil {
		return uuid.Nil, err
	}
	if err := c.trackOperation(); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Upsert inserts doc if its id is new, or replaces the existing
// document (delete-then-reinsert) if it already exists, per
// operations.rs's upsert.
func (c *Collection) Upsert(doc storage.Document) (uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.offsetIndex.Contains(doc.ID) {
		return c.insertLocked(doc)
	}
	if err := validateVector("collection.Upsert", doc.Vector.ToF32()); err != nil {
		return uuid.Nil, err
	}

	if _, err := c.wal.Log(storage.WALRecord{
		Operation: storage.OpUpdate,
		ID:        doc.ID,
		Vector:    doc.Vector.ToF32(),
		Text:      doc.Text,
		Metadata:  doc.Metadata,
	}); err != nil {
		return uuid.Nil, err
	}

	deleteInternal(c, doc.ID)
	if _, err := insertInternal(c, doc); err != nil {
		return uuid.Nil, err
	}
	if err := c.saveIndex(); err != nil {
		return uuid.Nil, err
	}
	if err := c.saveVectorIndex(); err != nil {
		return uuid.Nil, err
	}
	if err := c.trackOperation(); err != nil {
		return uuid.Nil, err
	}
	return doc.ID, nil
}

// InsertBatch logs every document, appends them all, and persists the
// offset index once at the end, per operations.rs's insert_batch.
func (c *Collection) InsertBatch(docs []storage.Document) ([]uuid.UUID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range docs {
		if err := validateVector("collection.InsertBatch", doc.Vector.ToF32()); err != nil {
			return nil, err
		}
	}

	for _, doc := range docs {
		if _, err := c.wal.Log(storage.WALRecord{
			Operation: storage.OpInsert,
			ID:        doc.ID,
			Vector:    doc.Vector.ToF32(),
			Text:      doc.Text,
			Metadata:  doc.Metadata,
		}); err != nil {
			return nil, err
		}
	}

	ids := make([]uuid.UUID, 0, len(docs))
	for _, doc := range docs {
		id, err := insertInternal(c, doc)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}

	if err := c.saveIndex(); err != nil {
		return ids, err
	}
	if err := c.trackOperation(); err != nil {
		return ids, err
	}
	return ids, nil
}

// Delete removes a document by id, reporting whether it existed.
func (c *Collection) Delete(id uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.offsetIndex.Contains(id) {
		return false, nil
	}
	if _, err := c.wal.Log(storage.WALRecord{Operation: storage.OpDelete, ID: id}); err != nil {
		return false, err
	}
	deleteInternal(c, id)
	if err := c.saveIndex(); err != nil {
		return false, err
	}
	if err := c.saveVectorIndex(); err != nil {
		return false, err
	}
	if err := c.trackOperation(); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteBatch removes every id that exists, returning how many were
// actually deleted, per operations.rs's delete_batch.
func (c *Collection) DeleteBatch(ids []uuid.UUID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		if c.offsetIndex.Contains(id) {
			if _, err := c.wal.Log(storage.WALRecord{Operation: storage.OpDelete, ID: id}); err != nil {
				return 0, err
			}
		}
	}

	deleted := 0
	for _, id := range ids {
		if c.offsetIndex.Contains(id) {
			deleteInternal(c, id)
			deleted++
		}
	}

	if deleted > 0 {
		if err := c.saveIndex(); err != nil {
			return deleted, err
		}
		if err := c.saveVectorIndex(); err != nil {
			return deleted, err
		}
		if err := c.trackOperation(); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// UpdateMetadata replaces a document's metadata in place, logging a
// single Update record and applying it via delete-then-reinsert, per
// operations.rs's update_metadata.
func (c *Collection) UpdateMetadata(id uuid.UUID, meta metadata.Map) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.readDocument(id)
	if !ok {
		return false, nil
	}
	if _, err := c.wal.Log(storage.WALRecord{
		Operation: storage.OpUpdate,
		ID:        id,
		Vector:    doc.Vector.ToF32(),
		Text:      doc.Text,
		Metadata:  meta,
	}); err != nil {
		return false, err
	}
	doc.Metadata = meta
	deleteInternal(c, id)
	if _, err := insertInternal(c, doc); err != nil {
		return false, err
	}
	if err := c.saveIndex(); err != nil {
		return false, err
	}
	if err := c.saveVectorIndex(); err != nil {
		return false, err
	}
	if err := c.trackOperation(); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateVector replaces a document's vector in place, re-quantizing it,
// per operations.rs's update_vector.
func (c *Collection) UpdateVector(id uuid.UUID, vector []float32) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := validateVector("collection.UpdateVector", vector); err != nil {
		return false, err
	}

	doc, ok := c.readDocument(id)
	if !ok {
		return false, nil
	}
	if _, err := c.wal.Log(storage.WALRecord{
		Operation: storage.OpUpdate,
		ID:        id,
		Vector:    vector,
		Text:      doc.Text,
		Metadata:  doc.Metadata,
	}); err != nil {
		return false, err
	}
	doc.Vector = quantization.FromF32WithLevel(vector, c.config.Quantization.Level())
	deleteInternal(c, id)
	if _, err := insertInternal(c, doc); err != nil {
		return false, err
	}
	if err := c.saveIndex(); err != nil {
		return false, err
	}
	if err := c.saveVectorIndex(); err != nil {
		return false, err
	}
	if err := c.trackOperation(); err != nil {
		return false, err
	}
	return true, nil
}
