package filter

import (
	"github.com/RoaringBitmap/roaring"
	"github.com/google/uuid"

	"vecstore/internal/metadata"
)

// Hint is a transient set of ids likely to satisfy a Filter, computed by
// scanning the metadata cache once per filtered query. It is never
// persisted or incrementally maintained — the index layer may use it to
// prune candidates but is not required to honor it, per the search
// pipeline's "filter_hint is an optimization hint only" contract.
type Hint struct {
	bitmap *roaring.Bitmap
	index  map[uint32]uuid.UUID
}

// NewHint builds a Hint by scanning ids against metaOf, which looks up a
// document's metadata map by id.
func NewHint(f *Filter, ids []uuid.UUID, metaOf func(uuid.UUID) (metadata.Map, bool)) *Hint {
	h := &Hint{bitmap: roaring.New(), index: make(map[uint32]uuid.UUID, len(ids))}
	for _, id := range ids {
		meta, ok := metaOf(id)
		if !ok {
			continue
		}
		if f.Matches(meta) {
			key := h.key(id)
			h.bitmap.Add(key)
			h.index[key] = id
		}
	}
	return h
}

// Contains reports whether id was found to match during hint construction.
func (h *Hint) Contains(id uuid.UUID) bool {
	if h == nil {
		return true
	}
	return h.bitmap.Contains(h.key(id))
}

// Len reports how many ids the hint currently holds.
func (h *Hint) Len() int {
	if h == nil {
		return 0
	}
	return int(h.bitmap.GetCardinality())
}

// key folds a UUID down to the uint32 domain roaring.Bitmap operates
// over. Collisions only widen the hint (more candidates considered, never
// fewer), which is safe since the hint is advisory only.
func (h *Hint) key(id uuid.UUID) uint32 {
	b := id[:]
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
