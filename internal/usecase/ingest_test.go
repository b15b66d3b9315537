package usecase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qaforge/internal/adapter/chunker"
	"qaforge/internal/adapter/dom"
	"qaforge/internal/adapter/fs"
	"qaforge/internal/adapter/index"
	"qaforge/internal/adapter/parser"
	"qaforge/internal/domain"
)

const testCheckoutHTML = `<html><body>
<input type="text" id="coupon_code" placeholder="Coupon">
<button id="apply_coupon_btn">Apply</button>
</body></html>`

func newTestIngest(t *testing.T) (*IngestUseCase, *Session, *index.LexicalIndex) {
	t.Helper()

	idx, err := index.NewLexical(filepath.Join(t.TempDir(), "qa_documents.json"), "qa_documents")
	require.NoError(t, err)

	session := NewSession()
	uc := NewIngestUseCase(
		parser.New(),
		chunker.New(1000, 200),
		idx,
		dom.New(),
		fs.NewWalker([]string{"**/*.md", "**/*.txt", "**/*.json", "**/*.html"}, nil),
		session,
		"checkout.html",
	)
	return uc, session, idx
}

func TestIngestContent(t *testing.T) {
	uc, _, idx := newTestIngest(t)

	result := uc.IngestContent("requirements.md", []byte("# Discounts\nCodes reduce the order total."))
	require.NoError(t, result.Err)
	assert.Equal(t, "requirements.md", result.Filename)
	assert.Equal(t, 1, result.Chunks)

	results, err := idx.Search("discounts codes", 5, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}

func TestIngestContentUnsupported(t *testing.T) {
	uc, _, _ := newTestIngest(t)

	result := uc.IngestContent("report.docx", []byte("x"))
	assert.ErrorIs(t, result.Err, domain.ErrUnsupportedFormat)
}

func TestIngestCheckoutPageFeedsCatalog(t *testing.T) {
	uc, session, idx := newTestIngest(t)

	result := uc.IngestContent("checkout.html", []byte(testCheckoutHTML))
	require.NoError(t, result.Err)

	require.True(t, session.HasCheckoutPage())
	catalog := session.Catalog()
	assert.Contains(t, catalog.Selectors, "coupon_code")
	assert.Contains(t, catalog.Selectors, "apply_coupon_btn")

	// The page is indexed like any other document, not only cataloged.
	searchResults, err := idx.Search("coupon apply", 5, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, searchResults)
}

func TestIngestCheckoutPageNameIsCaseInsensitive(t *testing.T) {
	uc, session, _ := newTestIngest(t)

	result := uc.IngestContent("Checkout.HTML", []byte(testCheckoutHTML))
	require.NoError(t, result.Err)
	assert.True(t, session.HasCheckoutPage())
}

func TestIngestDirectoryContinuesPastFailures(t *testing.T) {
	uc, session, _ := newTestIngest(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "good.md"), []byte("# Discount rules\nValid codes apply."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken.json"), []byte(`{"unterminated": `), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "checkout.html"), []byte(testCheckoutHTML), 0644))

	var seen []string
	result, err := uc.IngestDirectory(root, func(done, total int, fileResult FileResult) {
		assert.Equal(t, 3, total)
		seen = append(seen, fileResult.Filename)
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.FilesIngested)
	assert.Equal(t, 1, result.FilesFailed)
	assert.Greater(t, result.ChunksAdded, 0)
	assert.Len(t, seen, 3)

	var failed *FileResult
	for i := range result.Files {
		if result.Files[i].Err != nil {
			failed = &result.Files[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "broken.json", failed.Filename)
	assert.ErrorIs(t, failed.Err, domain.ErrMalformedInput)

	assert.True(t, session.HasCheckoutPage())
}

func TestIngestDirectoryIsIdempotent(t *testing.T) {
	uc, _, idx := newTestIngest(t)

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.md"), []byte("# Discount rules"), 0644))

	first, err := uc.IngestDirectory(root, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ChunksAdded)

	second, err := uc.IngestDirectory(root, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.ChunksAdded)

	stats, err := idx.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalChunks)
}
