package storage

import (
	"github.com/google/uuid"

	"vecstore/internal/metadata"
)

// WALOperation tags the kind of mutation a WALRecord carries.
type WALOperation uint8

const (
	OpInsert WALOperation = iota
	OpUpdate
	OpDelete
	OpCheckpoint
)

func (op WALOperation) String() string {
	switch op {
	case OpInsert:
		return "Insert"
	case OpUpdate:
		return "Update"
	case OpDelete:
		return "Delete"
	case OpCheckpoint:
		return "Checkpoint"
	default:
		return "Unknown"
	}
}

// WALRecord is the self-describing, sequence-numbered union spec.md §3
// names: Insert/Update carry the full document payload, Delete carries
// only the id, and Checkpoint carries a durability watermark timestamp.
type WALRecord struct {
	Seq       uint64
	Operation WALOperation
	ID        uuid.UUID
	Vector    []float32
	Text      string
	Metadata  metadata.Map
	Timestamp int64 // unix nanos, populated for Checkpoint records
}
