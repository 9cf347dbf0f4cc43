package storage

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"vecstore/internal/metadata"
	"vecstore/internal/vdberr"
)

// WALEncoder encodes/decodes one WALRecord per line, carrying forward the
// teacher's pluggable-encoder-plus-CRC32 idiom but reshaped so every
// record is exactly one newline-delimited line, per spec.md §4.3.
type WALEncoder interface {
	EncodeRecord(w io.Writer, rec *WALRecord) error
	DecodeRecord(r *bufio.Reader) (*WALRecord, error)
	Name() string
}

// NewEncoder selects an encoder by name, defaulting to binary.
func NewEncoder(name string) WALEncoder {
	if name == "text" {
		return &TextEncoder{}
	}
	return &BinaryEncoder{}
}

// wireRecord is the JSON-friendly shape both encoders serialize; vectors
// travel as base64-encoded little-endian float32 bytes to keep lines
// compact for large embeddings.
type wireRecord struct {
	Seq       uint64         `json:"seq"`
	Operation uint8          `json:"op"`
	ID        string         `json:"id"`
	Vector    string         `json:"vector"`
	Text      string         `json:"text"`
	Metadata  metadata.Map   `json:"metadata,omitempty"`
	Timestamp int64          `json:"ts,omitempty"`
}

func toWire(rec *WALRecord) wireRecord {
	return wireRecord{
		Seq:       rec.Seq,
		Operation: uint8(rec.Operation),
		ID:        rec.ID.String(),
		Vector:    encodeVector(rec.Vector),
		Text:      rec.Text,
		Metadata:  rec.Metadata,
		Timestamp: rec.Timestamp,
	}
}

func fromWire(w wireRecord) (*WALRecord, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return nil, vdberr.New("storage.fromWire", vdberr.Corruption, err)
	}
	vec, err := decodeVector(w.Vector)
	if err != nil {
		return nil, vdberr.New("storage.fromWire", vdberr.Corruption, err)
	}
	return &WALRecord{
		Seq:       w.Seq,
		Operation: WALOperation(w.Operation),
		ID:        id,
		Vector:    vec,
		Text:      w.Text,
		Metadata:  w.Metadata,
		Timestamp: w.Timestamp,
	}, nil
}

func encodeVector(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		bits := math.Float32bits(f)
		buf[i*4] = byte(bits)
		buf[i*4+1] = byte(bits >> 8)
		buf[i*4+2] = byte(bits >> 16)
		buf[i*4+3] = byte(bits >> 24)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func decodeVector(s string) ([]float32, error) {
	if s == "" {
		return nil, nil
	}
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("storage: invalid vector byte length %d", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		bits := uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// BinaryEncoder writes one line per record: a base64 payload followed by
// its CRC32 checksum, both computed over the record's JSON encoding.
type BinaryEncoder struct{}

func (e *BinaryEncoder) Name() string { return "binary" }

func (e *BinaryEncoder) EncodeRecord(w io.Writer, rec *WALRecord) error {
	payload, err := json.Marshal(toWire(rec))
	if err != nil {
		return vdberr.New("storage.BinaryEncoder.EncodeRecord", vdberr.IO, err)
	}
	checksum := crc32.ChecksumIEEE(payload)
	line := base64.StdEncoding.EncodeToString(payload) + "|" + strconv.FormatUint(uint64(checksum), 10)
	_, err = fmt.Fprintln(w, line)
	return err
}

func (e *BinaryEncoder) DecodeRecord(r *bufio.Reader) (*WALRecord, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	line = strings.TrimRight(line, "\n\r")
	if line == "" {
		return nil, io.EOF
	}
	idx := strings.LastIndexByte(line, '|')
	if idx < 0 {
		return nil, vdberr.New("storage.BinaryEncoder.DecodeRecord", vdberr.Corruption, nil)
	}
	payloadB64, checksumStr := line[:idx], line[idx+1:]
	payload, err := base64.StdEncoding.DecodeString(payloadB64)
	if err != nil {
		return nil, vdberr.New("storage.BinaryEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	expected, err := strconv.ParseUint(checksumStr, 10, 32)
	if err != nil {
		return nil, vdberr.New("storage.BinaryEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	if uint32(expected) != crc32.ChecksumIEEE(payload) {
		return nil, vdberr.New("storage.BinaryEncoder.DecodeRecord", vdberr.Corruption, fmt.Errorf("checksum mismatch"))
	}
	var w wireRecord
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, vdberr.New("storage.BinaryEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	return fromWire(w)
}

// TextEncoder writes a human-inspectable pipe-delimited line per record,
// for the wal_converter maintenance tool's -format text mode.
type TextEncoder struct{}

func (e *TextEncoder) Name() string { return "text" }

func (e *TextEncoder) EncodeRecord(w io.Writer, rec *WALRecord) error {
	wire := toWire(rec)
	metaJSON, err := json.Marshal(wire.Metadata)
	if err != nil {
		return vdberr.New("storage.TextEncoder.EncodeRecord", vdberr.IO, err)
	}
	payload := fmt.Sprintf("%d|%d|%s|%s|%s|%s|%d",
		wire.Seq, wire.Operation, wire.ID, wire.Vector,
		escapePipe(wire.Text), escapePipe(string(metaJSON)), wire.Timestamp)
	checksum := crc32.ChecksumIEEE([]byte(payload))
	_, err = fmt.Fprintf(w, "%s#%d\n", payload, checksum)
	return err
}

func (e *TextEncoder) DecodeRecord(r *bufio.Reader) (*WALRecord, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return nil, err
	}
	line = strings.TrimRight(line, "\n\r")
	if line == "" {
		return nil, io.EOF
	}
	hashIdx := strings.LastIndexByte(line, '#')
	if hashIdx < 0 {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, nil)
	}
	payload, checksumStr := line[:hashIdx], line[hashIdx+1:]
	expected, err := strconv.ParseUint(checksumStr, 10, 32)
	if err != nil {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	if uint32(expected) != crc32.ChecksumIEEE([]byte(payload)) {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, fmt.Errorf("checksum mismatch"))
	}
	fields := strings.SplitN(payload, "|", 7)
	if len(fields) != 7 {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, fmt.Errorf("expected 7 fields, got %d", len(fields)))
	}
	seq, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	opNum, err := strconv.ParseUint(fields[1], 10, 8)
	if err != nil {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	ts, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	var meta metadata.Map
	if err := json.Unmarshal([]byte(unescapePipe(fields[5])), &meta); err != nil {
		return nil, vdberr.New("storage.TextEncoder.DecodeRecord", vdberr.Corruption, err)
	}
	wire := wireRecord{
		Seq:       seq,
		Operation: uint8(opNum),
		ID:        fields[2],
		Vector:    fields[3],
		Text:      unescapePipe(fields[4]),
		Metadata:  meta,
		Timestamp: ts,
	}
	return fromWire(wire)
}

func escapePipe(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	return strings.ReplaceAll(s, "|", "\\|")
}

func unescapePipe(s string) string {
	s = strings.ReplaceAll(s, "\\|", "|")
	return strings.ReplaceAll(s, "\\\\", "\\")
}
