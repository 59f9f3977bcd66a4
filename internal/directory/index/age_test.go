package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir/internal/directory/models"
)

func newAged(id string, birth int64) *models.Record {
	return models.NewRecord(models.User{ID: id}, birth)
}

func TestAgeIndexRange(t *testing.T) {
	idx := NewAgeIndex()
	for _, rec := range []*models.Record{
		newAged("a", 100),
		newAged("b", 200),
		newAged("c", 200),
		newAged("d", 300),
		newAged("e", 400),
	} {
		idx.Insert(rec)
	}
	require.Equal(t, 5, idx.Len())

	t.Run("lower bound is exclusive and upper bound inclusive", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c", "d"}, ids(idx.Range(100, 300)))
	})

	t.Run("ties are ordered by id", func(t *testing.T) {
		assert.Equal(t, []string{"b", "c"}, ids(idx.Range(199, 200)))
	})

	t.Run("empty or inverted interval", func(t *testing.T) {
		assert.Empty(t, idx.Range(300, 300))
		assert.Empty(t, idx.Range(400, 100))
		assert.Empty(t, idx.Range(400, 1000))
	})
}

func TestAgeIndexDelete(t *testing.T) {
	t.Run("removes only the matching id among equal keys", func(t *testing.T) {
		idx := NewAgeIndex()
		idx.Insert(newAged("b", 200))
		idx.Insert(newAged("c", 200))

		assert.True(t, idx.Delete(200, "b"))
		assert.Equal(t, []string{"c"}, ids(idx.Range(0, 1000)))
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("reports missing pairs", func(t *testing.T) {
		idx := NewAgeIndex()
		idx.Insert(newAged("b", 200))

		assert.False(t, idx.Delete(201, "b"))
		assert.False(t, idx.Delete(200, "x"))
		assert.Equal(t, 1, idx.Len())
	})

	t.Run("soft deleted records are skipped before removal", func(t *testing.T) {
		idx := NewAgeIndex()
		rec := newAged("b", 200)
		idx.Insert(rec)
		rec.MarkDeleted()

		assert.Empty(t, idx.Range(0, 1000))
		assert.Equal(t, 1, idx.Len())
	})
}
