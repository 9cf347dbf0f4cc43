package filter

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"vecstore/internal/metadata"
)

func TestFilterEq(t *testing.T) {
	f := New().Eq("lang", metadata.String("rust"))
	assert.True(t, f.Matches(metadata.Map{"lang": metadata.String("rust")}))
	assert.False(t, f.Matches(metadata.Map{"lang": metadata.String("python")}))
	assert.False(t, f.Matches(metadata.Map{}))
}

func TestFilterNumericComparison(t *testing.T) {
	f := New().Gt("stars", metadata.Integer(10)).Lte("stars", metadata.Float(20))
	assert.True(t, f.Matches(metadata.Map{"stars": metadata.Integer(15)}))
	assert.False(t, f.Matches(metadata.Map{"stars": metadata.Integer(5)}))
	assert.False(t, f.Matches(metadata.Map{"stars": metadata.Integer(25)}))
}

func TestFilterGtNonNumericFails(t *testing.T) {
	f := New().Gt("lang", metadata.Integer(1))
	assert.False(t, f.Matches(metadata.Map{"lang": metadata.String("rust")}))
}

func TestFilterIn(t *testing.T) {
	f := New().In("lang", []metadata.Value{metadata.String("rust"), metadata.String("go")})
	assert.True(t, f.Matches(metadata.Map{"lang": metadata.String("go")}))
	assert.False(t, f.Matches(metadata.Map{"lang": metadata.String("python")}))
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	var f *Filter
	assert.True(t, f.Matches(metadata.Map{"x": metadata.Integer(1)}))
	assert.True(t, New().Matches(metadata.Map{}))
}

func TestHintBuild(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	metas := map[uuid.UUID]metadata.Map{
		ids[0]: {"lang": metadata.String("rust")},
		ids[1]: {"lang": metadata.String("python")},
		ids[2]: {"lang": metadata.String("rust")},
	}
	f := New().Eq("lang", metadata.String("rust"))
	hint := NewHint(f, ids, func(id uuid.UUID) (metadata.Map, bool) {
		m, ok := metas[id]
		return m, ok
	})
	assert.True(t, hint.Contains(ids[0]))
	assert.True(t, hint.Contains(ids[2]))
	assert.Equal(t, 2, hint.Len())
}
