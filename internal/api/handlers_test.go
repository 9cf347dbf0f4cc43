package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vecstore/internal/filter"
	"vecstore/internal/metadata"
)

func TestSearchRequestUnmarshal(t *testing.T) {
	tests := []struct {
		name        string
		jsonData    string
		wantQuery   []float32
		wantK       int
		wantFilters int
		expectError bool
	}{
		{
			name:      "basic search request",
			jsonData:  `{"query": [1.0, 2.0, 3.0], "k": 5, "metric": "cosine"}`,
			wantQuery: []float32{1.0, 2.0, 3.0},
			wantK:     5,
		},
		{
			name: "search with filters",
			jsonData: `{
				"query": [1.0, 2.0, 3.0],
				"k": 10,
				"metric": "euclidean",
				"filters": [{"field": "lang", "op": "eq", "value": {"kind": "string", "str": "rust"}}]
			}`,
			wantQuery:   []float32{1.0, 2.0, 3.0},
			wantK:       10,
			wantFilters: 1,
		},
		{
			name:        "unknown metric name",
			jsonData:    `{"query": [1.0], "k": 1, "metric": "bogus"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SearchRequest
			err := json.Unmarshal([]byte(tt.jsonData), &req)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, req.Query)
			assert.Equal(t, tt.wantK, req.K)
			assert.Len(t, req.Filters, tt.wantFilters)
		})
	}
}

func TestBuildFilterAndsAllConditions(t *testing.T) {
	conditions := []FilterCondition{
		{Field: "lang", Op: "eq", Value: metadata.String("rust")},
		{Field: "score", Op: "gte", Value: metadata.Float(0.5)},
	}

	f := buildFilter(conditions)
	require.NotNil(t, f)

	assert.True(t, f.Matches(metadata.Map{"lang": metadata.String("rust"), "score": metadata.Float(0.9)}))
	assert.False(t, f.Matches(metadata.Map{"lang": metadata.String("python"), "score": metadata.Float(0.9)}))
	assert.False(t, f.Matches(metadata.Map{"lang": metadata.String("rust"), "score": metadata.Float(0.1)}))
}

func TestBuildFilterEmptyReturnsNil(t *testing.T) {
	var f *filter.Filter = buildFilter(nil)
	assert.Nil(t, f)
}

func TestDocumentPayloadUnmarshal(t *testing.T) {
	raw := `{"vector": [1.0, 2.0], "text": "hello", "metadata": {"a": {"kind": "integer", "int": 3}}}`
	var p DocumentPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, []float32{1.0, 2.0}, p.Vector)
	assert.Equal(t, "hello", p.Text)
	assert.Equal(t, metadata.Integer(3), p.Metadata["a"])
}
