package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qaforge/internal/domain"
)

func testChunk(filename string, index int, text string) domain.Chunk {
	return domain.Chunk{
		Text: text,
		Meta: domain.ChunkMeta{
			DocMeta: domain.DocMeta{
				Filename: filename,
				FileType: "markdown",
			},
			ChunkIndex:  index,
			TotalChunks: 1,
		},
	}
}

func newTestLexical(t *testing.T) *LexicalIndex {
	t.Helper()
	idx, err := NewLexical(filepath.Join(t.TempDir(), "qa_documents.json"), "qa_documents")
	require.NoError(t, err)
	return idx
}

func TestLexicalAddAndSearch(t *testing.T) {
	idx := newTestLexical(t)

	added, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "Discount codes reduce the order total by a percentage"),
		testChunk("requirements.md", 1, "Shipping addresses require a postal code"),
		testChunk("faq.md", 0, "Customers ask about refund policy timing"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	results, err := idx.Search("discount codes percentage", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	assert.Equal(t, "requirements.md_0", results[0].ID)
	assert.Equal(t, "requirements.md", results[0].Meta.Filename)
	assert.Greater(t, results[0].Score, 0.0)

	// Scores are non-increasing and zero-score records are excluded.
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
	for _, result := range results {
		assert.Greater(t, result.Score, 0.0)
	}
}

func TestLexicalAddIsIdempotent(t *testing.T) {
	idx := newTestLexical(t)
	chunks := []domain.Chunk{testChunk("doc.md", 0, "grounded retrieval pipeline")}

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

func TestLexicalSearchFilter(t *testing.T) {
	idx := newTestLexical(t)

	_, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "discount rules for checkout"),
		testChunk("notes.md", 0, "discount discussion from meeting"),
	})
	require.NoError(t, err)

	results, err := idx.Search("discount", 5, map[string]string{"filename": "notes.md"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "notes.md", results[0].Meta.Filename)

	results, err = idx.Search("discount", 5, map[string]string{"unknown_key": "x"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalSearchNoMatch(t *testing.T) {
	idx := newTestLexical(t)

	_, err := idx.Add([]domain.Chunk{testChunk("doc.md", 0, "payment gateway settlement")})
	require.NoError(t, err)

	results, err := idx.Search("zebra quantum", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Stopword-only queries yield nothing rather than matching everything.
	results, err = idx.Search("the and for", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_documents.json")

	idx, err := NewLexical(path, "qa_documents")
	require.NoError(t, err)
	_, err = idx.Add([]domain.Chunk{testChunk("doc.md", 0, "persistent discount rules")})
	require.NoError(t, err)

	reopened, err := NewLexical(path, "qa_documents")
	require.NoError(t, err)

	stats, err := reopened.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)

	results, err := reopened.Search("discount", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc.md_0", results[0].ID)
}

func TestLexicalCorruptedCollectionStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa_documents.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	idx, err := NewLexical(path, "qa_documents")
	require.NoError(t, err)

	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)
}

func TestLexicalClear(t *testing.T) {
	idx := newTestLexical(t)

	_, err := idx.Add([]domain.Chunk{testChunk("doc.md", 0, "discount rules")})
	require.NoError(t, err)

	require.NoError(t, idx.Clear())

	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)

	results, err := idx.Search("discount", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestLexicalDeleteBySource(t *testing.T) {
	idx := newTestLexical(t)

	_, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "discount rules"),
		testChunk("requirements.md", 1, "shipping rules"),
		testChunk("faq.md", 0, "refund policy"),
	})
	require.NoError(t, err)

	require.NoError(t, idx.DeleteBySource("requirements.md"))

	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
	assert.Equal(t, []string{"faq.md"}, stats.SampleFilenames)

	// Deleted ids can be re-added.
	added, err := idx.Add([]domain.Chunk{testChunk("requirements.md", 0, "discount rules")})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestLexicalStats(t *testing.T) {
	idx := newTestLexical(t)

	chunk := testChunk("checkout.html", 0, "checkout page markup")
	chunk.Meta.FileType = "html"
	_, err := idx.Add([]domain.Chunk{
		testChunk("requirements.md", 0, "discount rules"),
		chunk,
	})
	require.NoError(t, err)

	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalChunks)
	assert.Equal(t, "qa_documents", stats.CollectionName)
	assert.Equal(t, "lexical", stats.Strategy)
	assert.Equal(t, []string{"markdown", "html"}, stats.FileTypes)
	assert.Equal(t, []string{"requirements.md", "checkout.html"}, stats.SampleFilenames)
}
