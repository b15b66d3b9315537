package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qaforge/internal/port"
)

func openTestStore(t *testing.T, path string) *BoltVectorStore {
	t.Helper()
	s, err := Open(path, 3)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndSearch(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "vectors.db"))

	err := s.Upsert([]port.VectorItem{
		{ID: "a", Vector: []float32{1, 0, 0}, Text: "alpha", Metadata: map[string]string{"filename": "a.md"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Text: "beta", Metadata: map[string]string{"filename": "b.md"}},
	})
	require.NoError(t, err)

	results, err := s.Search([]float32{1, 0.1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "alpha", results[0].Text)
	assert.Greater(t, results[0].Score, 0.9)
}

func TestUpsertDimensionMismatch(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "vectors.db"))

	err := s.Upsert([]port.VectorItem{{ID: "a", Vector: []float32{1, 0}}})
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestUpsertReplacesByID(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "vectors.db"))

	require.NoError(t, s.Upsert([]port.VectorItem{{ID: "a", Vector: []float32{1, 0, 0}, Text: "old"}}))
	require.NoError(t, s.Upsert([]port.VectorItem{{ID: "a", Vector: []float32{0, 1, 0}, Text: "new"}}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := s.Search([]float32{0, 1, 0}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "new", results[0].Text)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")

	s, err := Open(path, 3)
	require.NoError(t, err)
	require.NoError(t, s.Upsert([]port.VectorItem{
		{ID: "a", Vector: []float32{1, 0, 0}, Text: "alpha", Metadata: map[string]string{"filename": "a.md"}},
	}))
	require.NoError(t, s.Close())

	reopened := openTestStore(t, path)
	count, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	results, err := reopened.Search([]float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Text)
	assert.Equal(t, "a.md", results[0].Metadata["filename"])
}

func TestDeleteWhereAndClear(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "vectors.db"))

	require.NoError(t, s.Upsert([]port.VectorItem{
		{ID: "a", Vector: []float32{1, 0, 0}, Metadata: map[string]string{"filename": "a.md"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Metadata: map[string]string{"filename": "b.md"}},
	}))

	require.NoError(t, s.DeleteWhere(func(meta map[string]string) bool {
		return meta["filename"] == "a.md"
	}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Clear())
	count, err = s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
