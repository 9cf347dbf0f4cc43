// Package storage implements the collection's durable layer: the
// growable mmap region, its sidecar offset index, the document codec,
// and the write-ahead log.
package storage

import (
	"os"

	mmapgo "github.com/edsrzf/mmap-go"

	"vecstore/internal/vdberr"
)

// defaultInitialSize is the mmap region's size when a collection is first
// created, per the storage region contract.
const defaultInitialSize = 1 << 20 // 1 MiB

// Region is a growable byte region backed by a memory-mapped file.
type Region struct {
	file *os.File
	mmap mmapgo.MMap
	size int64
}

// OpenRegion opens (creating if absent) path and maps at least
// initialSize bytes.
func OpenRegion(path string, initialSize int64) (*Region, error) {
	if initialSize <= 0 {
		initialSize = defaultInitialSize
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, vdberr.New("storage.OpenRegion", vdberr.IO, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, vdberr.New("storage.OpenRegion", vdberr.IO, err)
	}
	size := info.Size()
	if size < initialSize {
		if err := f.Truncate(initialSize); err != nil {
			f.Close()
			return nil, vdberr.New("storage.OpenRegion", vdberr.IO, err)
		}
		size = initialSize
	}
	m, err := mmapgo.Map(f, mmapgo.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, vdberr.New("storage.OpenRegion", vdberr.Capacity, err)
	}
	return &Region{file: f, mmap: m, size: size}, nil
}

// EnsureCapacity doubles the backing file (to at least n) and remaps if
// the current mapping is smaller than n.
func (r *Region) EnsureCapacity(n int64) error {
	if int64(len(r.mmap)) >= n {
		return nil
	}
	if err := r.mmap.Unmap(); err != nil {
		return vdberr.New("storage.EnsureCapacity", vdberr.Capacity, err)
	}
	newSize := n * 2
	if err := r.file.Truncate(newSize); err != nil {
		return vdberr.New("storage.EnsureCapacity", vdberr.IO, err)
	}
	m, err := mmapgo.Map(r.file, mmapgo.RDWR, 0)
	if err != nil {
		return vdberr.New("storage.EnsureCapacity", vdberr.Capacity, err)
	}
	r.mmap = m
	r.size = newSize
	return nil
}

// WriteAt copies bytes into the mapping at offset. Caller guarantees
// disjoint, non-overlapping writes in append order.
func (r *Region) WriteAt(offset int64, data []byte) error {
	if offset < 0 || offset+int64(len(data)) > int64(len(r.mmap)) {
		return vdberr.New("storage.WriteAt", vdberr.Capacity, nil)
	}
	copy(r.mmap[offset:offset+int64(len(data))], data)
	return nil
}

// ReadAt returns a zero-copy slice into the mapping.
func (r *Region) ReadAt(offset int64, length int64) ([]byte, error) {
	if offset < 0 || offset+length > int64(len(r.mmap)) {
		return nil, vdberr.New("storage.ReadAt", vdberr.Corruption, nil)
	}
	return r.mmap[offset : offset+length], nil
}

// Size reports the current mapped length in bytes.
func (r *Region) Size() int64 {
	return int64(len(r.mmap))
}

// Flush syncs the mapping to disk.
func (r *Region) Flush() error {
	if err := r.mmap.Flush(); err != nil {
		return vdberr.New("storage.Flush", vdberr.IO, err)
	}
	return nil
}

// Close unmaps and closes the backing file.
func (r *Region) Close() error {
	if err := r.mmap.Unmap(); err != nil {
		return vdberr.New("storage.Close", vdberr.IO, err)
	}
	return r.file.Close()
}
