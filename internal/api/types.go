package api

import (
	"github.com/google/uuid"

	commonmath "vecstore/internal/common/math"
	"vecstore/internal/metadata"
	"vecstore/internal/metric"
)

// DocumentPayload is the wire shape of a document on insert/upsert/get.
type DocumentPayload struct {
	ID       uuid.UUID    `json:"id"`
	Vector   []float32    `json:"vector"`
	Text     string       `json:"text,omitempty"`
	Metadata metadata.Map `json:"metadata,omitempty"`
}

// FilterCondition is one JSON-representable predicate; a request's
// Filters list is ANDed together, matching filter.Filter's own
// conjunction semantics.
type FilterCondition struct {
	Field  string           `json:"field"`
	Op     string           `json:"op"` // eq, ne, gt, gte, lt, lte, in
	Value  metadata.Value   `json:"value,omitempty"`
	Values []metadata.Value `json:"values,omitempty"` // for "in"
}

type SearchRequest struct {
	Query   []float32         `json:"query"`
	K       int               `json:"k"`
	Metric  metric.Metric     `json:"metric"`
	Filters []FilterCondition `json:"filters,omitempty"`
}

type HitResponse struct {
	ID       uuid.UUID    `json:"id"`
	Score    float64      `json:"score"`
	Text     string       `json:"text,omitempty"`
	Vector   []float32    `json:"vector,omitempty"`
	Metadata metadata.Map `json:"metadata,omitempty"`
}

type SearchResponse struct {
	Results []HitResponse `json:"results"`
}

// BatchSearchRequest carries its queries as a row-major matrix; on
// decode every row is checked to have the same length.
type BatchSearchRequest struct {
	Queries commonmath.Matrix32 `json:"queries"`
	K       int                 `json:"k"`
	Metric  metric.Metric       `json:"metric"`
	Filters []FilterCondition   `json:"filters,omitempty"`
}

type BatchSearchResponse struct {
	Results [][]HitResponse `json:"results"`
}

type InsertRequest struct {
	Document DocumentPayload `json:"document"`
}

type InsertResponse struct {
	ID uuid.UUID `json:"id"`
}

type InsertBatchRequest struct {
	Documents []DocumentPayload `json:"documents"`
}

type InsertBatchResponse struct {
	IDs []uuid.UUID `json:"ids"`
}

type DeleteBatchRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type DeleteBatchResponse struct {
	Deleted int `json:"deleted"`
}

type UpdateMetadataRequest struct {
	Metadata metadata.Map `json:"metadata"`
}

type UpdateVectorRequest struct {
	Vector []float32 `json:"vector"`
}

type StatusResponse struct {
	Found bool `json:"found"`
}

type CountResponse struct {
	Count int `json:"count"`
}
