package storage

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	"vecstore/internal/vdberr"
)

// CollectionMetadata tracks the collection-wide invariants: schema
// version, timestamps, the dimensionality locked in at first insert, and
// the current live document count.
type CollectionMetadata struct {
	SchemaVersion uint32
	Name          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Dimensions    int // 0 means unset
	VectorCount   int
}

const currentSchemaVersion = 1

// NewCollectionMetadata returns metadata for a brand new collection.
func NewCollectionMetadata(name string, now time.Time) *CollectionMetadata {
	return &CollectionMetadata{
		SchemaVersion: currentSchemaVersion,
		Name:          name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// LoadCollectionMetadata reads path, returning fresh metadata if absent.
func LoadCollectionMetadata(path, name string, now time.Time) (*CollectionMetadata, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewCollectionMetadata(name, now), nil
	}
	if err != nil {
		return nil, vdberr.New("storage.LoadCollectionMetadata", vdberr.IO, err)
	}
	var m CollectionMetadata
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, vdberr.New("storage.LoadCollectionMetadata", vdberr.Corruption, err)
	}
	return &m, nil
}

// Save rewrites path with m's current contents.
func (m *CollectionMetadata) Save(path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return vdberr.New("storage.CollectionMetadata.Save", vdberr.IO, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return vdberr.New("storage.CollectionMetadata.Save", vdberr.IO, err)
	}
	return os.Rename(tmp, path)
}

// SetDimensions locks in the collection's dimensionality the first time
// it is observed; subsequent calls are no-ops.
func (m *CollectionMetadata) SetDimensions(dim int) {
	if m.Dimensions == 0 {
		m.Dimensions = dim
	}
}

// UpdateVectorCount refreshes the live-document count and touches
// UpdatedAt.
func (m *CollectionMetadata) UpdateVectorCount(count int, now time.Time) {
	m.VectorCount = count
	m.UpdatedAt = now
}
