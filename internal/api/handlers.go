// Package api is a thin gin HTTP shim over collection.Collection: each
// handler decodes a request, calls straight through to the collection,
// and encodes the result. No business logic lives here.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vecstore/internal/collection"
	"vecstore/internal/filter"
	"vecstore/internal/quantization"
	"vecstore/internal/storage"
)

var coll *collection.Collection

// Initialize wires the package-level handlers to an opened collection,
// matching the teacher's Initialize(db) idiom.
func Initialize(c *collection.Collection) {
	coll = c
}

func buildFilter(conditions []FilterCondition) *filter.Filter {
	if len(conditions) == 0 {
		return nil
	}
	f := filter.New()
	for _, c := range conditions {
		switch c.Op {
		case "eq":
			f.Eq(c.Field, c.Value)
		case "ne":
			f.Ne(c.Field, c.Value)
		case "gt":
			f.Gt(c.Field, c.Value)
		case "gte":
			f.Gte(c.Field, c.Value)
		case "lt":
			f.Lt(c.Field, c.Value)
		case "lte":
			f.Lte(c.Field, c.Value)
		case "in":
			f.In(c.Field, c.Values)
		}
	}
	return f
}

func toDocument(p DocumentPayload) storage.Document {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return storage.Document{
		ID:       id,
		Vector:   quantization.FromF32(p.Vector),
		Text:     p.Text,
		Metadata: p.Metadata,
	}
}

func HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hits := coll.Search(req.Query, req.K, req.Metric, buildFilter(req.Filters))
	results := make([]HitResponse, len(hits))
	for i, h := range hits {
		results[i] = HitResponse{ID: h.ID, Score: h.Score, Text: h.Text, Vector: h.Vector, Metadata: h.Metadata}
	}
	c.JSON(http.StatusOK, SearchResponse{Results: results})
}

func HandleSearchBatch(c *gin.Context) {
	var req BatchSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batches := coll.SearchBatch(req.Queries.Rows32(), req.K, req.Metric, buildFilter(req.Filters))
	results := make([][]HitResponse, len(batches))
	for i, hits := range batches {
		row := make([]HitResponse, len(hits))
		for j, h := range hits {
			row[j] = HitResponse{ID: h.ID, Score: h.Score, Text: h.Text, Vector: h.Vector, Metadata: h.Metadata}
		}
		results[i] = row
	}
	c.JSON(http.StatusOK, BatchSearchResponse{Results: results})
}

func HandleInsert(c *gin.Context) {
	var req InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := coll.Insert(toDocument(req.Document))
	if err != nil {
		slog.Error("api: insert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, InsertResponse{ID: id})
}

func HandleInsertBatch(c *gin.Context) {
	var req InsertBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docs := make([]storage.Document, len(req.Documents))
	for i, p := range req.Documents {
		docs[i] = toDocument(p)
	}
	ids, err := coll.InsertBatch(docs)
	if err != nil {
		slog.Error("api: insert_batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, InsertBatchResponse{IDs: ids})
}

func HandleUpsert(c *gin.Context) {
	var req InsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := coll.Upsert(toDocument(req.Document))
	if err != nil {
		slog.Error("api: upsert failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, InsertResponse{ID: id})
}

func HandleGet(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, ok := coll.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, DocumentPayload{ID: doc.ID, Vector: doc.Vector.ToF32(), Text: doc.Text, Metadata: doc.Metadata})
}

func HandleDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, err := coll.Delete(id)
	if err != nil {
		slog.Error("api: delete failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Found: found})
}

func HandleDeleteBatch(c *gin.Context) {
	var req DeleteBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	deleted, err := coll.DeleteBatch(req.IDs)
	if err != nil {
		slog.Error("api: delete_batch failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, DeleteBatchResponse{Deleted: deleted})
}

func HandleUpdateMetadata(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, err := coll.UpdateMetadata(id, req.Metadata)
	if err != nil {
		slog.Error("api: update_metadata failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Found: found})
}

func HandleUpdateVector(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var req UpdateVectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	found, err := coll.UpdateVector(id, req.Vector)
	if err != nil {
		slog.Error("api: update_vector failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, StatusResponse{Found: found})
}

func HandleCount(c *gin.Context) {
	c.JSON(http.StatusOK, CountResponse{Count: coll.Count()})
}

func HandleCheckpoint(c *gin.Context) {
	if err := coll.Checkpoint(); err != nil {
		slog.Error("api: checkpoint failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "checkpoint complete"})
}
