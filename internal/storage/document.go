package storage

import (
	"bytes"
	"encoding/gob"

	"github.com/google/uuid"

	"vecstore/internal/metadata"
	"vecstore/internal/quantization"
	"vecstore/internal/vdberr"
)

// Document is the unit record: id + vector + text + metadata.
type Document struct {
	ID       uuid.UUID
	Vector   quantization.QuantizedVector
	Text     string
	Metadata metadata.Map
}

// EncodeDocument serializes a Document for storage in the mmap region.
func EncodeDocument(d Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d); err != nil {
		return nil, vdberr.New("storage.EncodeDocument", vdberr.Corruption, err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument deserializes bytes previously produced by EncodeDocument.
func DecodeDocument(data []byte) (Document, error) {
	var d Document
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&d); err != nil {
		return Document{}, vdberr.New("storage.DecodeDocument", vdberr.Corruption, err)
	}
	return d, nil
}
