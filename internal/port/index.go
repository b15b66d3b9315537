package port

import "qaforge/internal/domain"

// Index stores chunk records and retrieves the most relevant ones for a
// free-text query. The strategy (lexical or dense) is chosen once at process
// start; nothing outside the selection point branches on which one is active.
type Index interface {
	// Add indexes the given chunks. Chunks whose id is already present are
	// skipped. Returns the number actually added.
	Add(chunks []domain.Chunk) (int, error)

	// Search returns up to n results ordered by non-increasing score. The
	// optional filter is an exact-match metadata predicate applied before
	// ranking.
	Search(query string, n int, filter map[string]string) ([]domain.SearchResult, error)

	// Stats summarises the collection.
	Stats() (domain.IndexStats, error)

	// Clear removes every record from the collection.
	Clear() error

	// DeleteBySource removes all chunks originating from the named file.
	DeleteBySource(filename string) error
}
