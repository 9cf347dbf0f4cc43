package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"os"

	"github.com/google/uuid"

	"vecstore/internal/vdberr"
)

// EntryPointer locates a serialized Document inside the mmap region.
type EntryPointer struct {
	Offset uint64
	Length uint32
}

// OffsetIndex is the UUID -> EntryPointer map persisted alongside the data
// file. It is rewritten in full on every Save call.
type OffsetIndex struct {
	pointers map[uuid.UUID]EntryPointer
}

// NewOffsetIndex returns an empty index.
func NewOffsetIndex() *OffsetIndex {
	return &OffsetIndex{pointers: make(map[uuid.UUID]EntryPointer)}
}

// LoadOffsetIndex reads path, returning an empty index if the file is
// absent (a fresh collection).
func LoadOffsetIndex(path string) (*OffsetIndex, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewOffsetIndex(), nil
	}
	if err != nil {
		return nil, vdberr.New("storage.LoadOffsetIndex", vdberr.IO, err)
	}
	if len(data) == 0 {
		return NewOffsetIndex(), nil
	}
	if len(data) < 4 {
		return nil, vdberr.New("storage.LoadOffsetIndex", vdberr.Corruption, nil)
	}
	n := binary.LittleEndian.Uint32(data[:4])
	payload := data[4 : 4+n]
	var pointers map[uuid.UUID]EntryPointer
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&pointers); err != nil {
		return nil, vdberr.New("storage.LoadOffsetIndex", vdberr.Corruption, err)
	}
	return &OffsetIndex{pointers: pointers}, nil
}

// Save rewrites path with the index's current contents, length-prefixed.
func (idx *OffsetIndex) Save(path string) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(idx.pointers); err != nil {
		return vdberr.New("storage.OffsetIndex.Save", vdberr.IO, err)
	}
	var out bytes.Buffer
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(payload.Len()))
	out.Write(lenBuf[:])
	out.Write(payload.Bytes())

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out.Bytes(), 0o644); err != nil {
		return vdberr.New("storage.OffsetIndex.Save", vdberr.IO, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return vdberr.New("storage.OffsetIndex.Save", vdberr.IO, err)
	}
	return nil
}

func (idx *OffsetIndex) Get(id uuid.UUID) (EntryPointer, bool) {
	p, ok := idx.pointers[id]
	return p, ok
}

func (idx *OffsetIndex) Set(id uuid.UUID, p EntryPointer) {
	idx.pointers[id] = p
}

func (idx *OffsetIndex) Remove(id uuid.UUID) {
	delete(idx.pointers, id)
}

func (idx *OffsetIndex) Contains(id uuid.UUID) bool {
	_, ok := idx.pointers[id]
	return ok
}

func (idx *OffsetIndex) Len() int { return len(idx.pointers) }

// NextOffset is max(p.Offset+p.Length) over live pointers, or 0.
func (idx *OffsetIndex) NextOffset() uint64 {
	var max uint64
	for _, p := range idx.pointers {
		end := p.Offset + uint64(p.Length)
		if end > max {
			max = end
		}
	}
	return max
}

// Ids returns every live id, order unspecified.
func (idx *OffsetIndex) Ids() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(idx.pointers))
	for id := range idx.pointers {
		out = append(out, id)
	}
	return out
}
