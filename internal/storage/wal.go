package storage

import (
	"bufio"
	"io"
	"os"
	"sync/atomic"

	"vecstore/internal/vdberr"
)

// WAL is the durable, append-only record of mutations described by
// spec.md §4.3: newline-delimited, checksummed records, flushed per
// operation, with checkpoint/rotate/replay support.
type WAL struct {
	path           string
	file           *os.File
	writer         *bufio.Writer
	encoder        WALEncoder
	nextSeq        atomic.Uint64
	lastCheckpoint uint64
	enabled        bool
}

// OpenWAL opens (creating if absent) the WAL file at path. If enabled is
// false, Log still advances sequence numbers for bookkeeping but writes
// nothing to disk.
func OpenWAL(path string, encoderName string, enabled bool) (*WAL, error) {
	w := &WAL{path: path, encoder: NewEncoder(encoderName), enabled: enabled}
	if !enabled {
		return w, nil
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, vdberr.New("storage.OpenWAL", vdberr.IO, err)
	}
	w.file = f
	w.writer = bufio.NewWriter(f)

	lastSeq, lastCheckpoint, err := scanWAL(path, w.encoder)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.nextSeq.Store(lastSeq)
	w.lastCheckpoint = lastCheckpoint
	return w, nil
}

func scanWAL(path string, encoder WALEncoder) (lastSeq, lastCheckpoint uint64, err error) {
	f, openErr := os.Open(path)
	if os.IsNotExist(openErr) {
		return 0, 0, nil
	}
	if openErr != nil {
		return 0, 0, vdberr.New("storage.scanWAL", vdberr.IO, openErr)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	for {
		rec, decodeErr := encoder.DecodeRecord(reader)
		if decodeErr == io.EOF {
			break
		}
		if decodeErr != nil {
			// A truncated trailing record stops replay at the last fully
			// readable one; it is not a fatal corruption by itself.
			break
		}
		if rec.Seq > lastSeq {
			lastSeq = rec.Seq
		}
		if rec.Operation == OpCheckpoint {
			lastCheckpoint = rec.Seq
		}
	}
	return lastSeq, lastCheckpoint, nil
}

// Log assigns the next sequence number, appends, and flushes the record.
// On I/O error the caller must not apply the in-memory mutation.
func (w *WAL) Log(rec WALRecord) (uint64, error) {
	seq := w.nextSeq.Add(1)
	rec.Seq = seq
	if !w.enabled {
		return seq, nil
	}
	if err := w.encoder.EncodeRecord(w.writer, &rec); err != nil {
		return seq, vdberr.New("storage.WAL.Log", vdberr.IO, err)
	}
	if err := w.writer.Flush(); err != nil {
		return seq, vdberr.New("storage.WAL.Log", vdberr.IO, err)
	}
	return seq, nil
}

// Replay returns every record with Seq > w.lastCheckpoint (i.e. beyond
// what the sidecars already reflect), in append order, excluding
// Checkpoint records themselves.
func (w *WAL) Replay() ([]WALRecord, error) {
	if !w.enabled {
		return nil, nil
	}
	f, err := os.Open(w.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, vdberr.New("storage.WAL.Replay", vdberr.IO, err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var out []WALRecord
	for {
		rec, decodeErr := w.encoder.DecodeRecord(reader)
		if decodeErr == io.EOF {
			break
		}
		if decodeErr != nil {
			break
		}
		if rec.Operation == OpCheckpoint {
			continue
		}
		if rec.Seq > w.lastCheckpoint {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// Checkpoint appends a Checkpoint record carrying the current seq,
// marking everything up to it as durably reflected in the sidecars.
func (w *WAL) Checkpoint(timestampUnixNano int64) error {
	seq, err := w.Log(WALRecord{Operation: OpCheckpoint, Timestamp: timestampUnixNano})
	if err != nil {
		return err
	}
	w.lastCheckpoint = seq
	return nil
}

// Rotate truncates the WAL file to zero length. Call only after a
// checkpoint's effects are durable in the sidecars.
func (w *WAL) Rotate() error {
	if !w.enabled {
		return nil
	}
	if err := w.file.Truncate(0); err != nil {
		return vdberr.New("storage.WAL.Rotate", vdberr.IO, err)
	}
	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return vdberr.New("storage.WAL.Rotate", vdberr.IO, err)
	}
	w.writer.Reset(w.file)
	return nil
}

// Flush flushes buffered writes without rotating.
func (w *WAL) Flush() error {
	if !w.enabled {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return vdberr.New("storage.WAL.Flush", vdberr.IO, err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *WAL) Close() error {
	if !w.enabled {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

// PendingCount is how many mutating records exist beyond the last
// checkpoint.
func (w *WAL) PendingCount() int {
	recs, _ := w.Replay()
	return len(recs)
}
