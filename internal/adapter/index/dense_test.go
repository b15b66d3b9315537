package index

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qaforge/internal/adapter/embedding"
	"qaforge/internal/adapter/store"
	"qaforge/internal/domain"
)

func newTestDense(t *testing.T) *DenseIndex {
	t.Helper()

	embedder := &embedding.Mock{Dim: 16}
	vs, err := store.Open(filepath.Join(t.TempDir(), "qa_documents.db"), embedder.Dimension())
	require.NoError(t, err)
	t.Cleanup(func() { vs.Close() })

	return NewDense(embedder, vs, "qa_documents")
}

func TestDenseAddAndSearch(t *testing.T) {
	idx := newTestDense(t)

	added, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "discount codes reduce totals"),
		testChunk("faq.md", 0, "refund policy timing"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// The mock embedder is deterministic, so the exact stored text is the
	// nearest neighbor of itself.
	results, err := idx.Search("discount codes reduce totals", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "requirements.md_0", results[0].ID)
	assert.Equal(t, "requirements.md", results[0].Meta.Filename)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestDenseAddIsIdempotent(t *testing.T) {
	idx := newTestDense(t)
	chunks := []domain.Chunk{testChunk("doc.md", 0, "grounded retrieval")}

	added, err := idx.Add(chunks)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	added, err = idx.Add(chunks)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
}

func TestDenseSearchFilter(t *testing.T) {
	idx := newTestDense(t)

	_, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "discount rules"),
		testChunk("notes.md", 0, "discount rules"),
	})
	require.NoError(t, err)

	results, err := idx.Search("discount rules", 5, map[string]string{"filename": "notes.md"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes.md", results[0].Meta.Filename)
}

func TestDenseMetaRoundTrip(t *testing.T) {
	idx := newTestDense(t)

	chunk := testChunk("requirements.md", 2, "chunk with full metadata")
	chunk.Meta.StartPos = 1600
	chunk.Meta.EndPos = 2400
	chunk.Meta.TotalChunks = 3

	_, err := idx.Add([]domain.Chunk{chunk})
	require.NoError(t, err)

	results, err := idx.Search("chunk with full metadata", 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunk.Meta, results[0].Meta)
}

func TestDenseClearAndDelete(t *testing.T) {
	idx := newTestDense(t)

	_, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "discount rules"),
		testChunk("faq.md", 0, "refund policy"),
	})
	require.NoError(t, err)

	require.NoError(t, idx.DeleteBySource("requirements.md"))
	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)

	require.NoError(t, idx.Clear())
	stats, err = idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)
}
