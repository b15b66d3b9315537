package usecase

import (
	"qaforge/internal/domain"
	"qaforge/internal/extract"
	"qaforge/internal/port"
)

// RetrieveUseCase runs similarity search and classifies the hits into
// grounded signal categories.
type RetrieveUseCase struct {
	index port.Index
	topK  int
}

// NewRetrieveUseCase creates a retrieve use case. Non-positive topK falls
// back to 5.
func NewRetrieveUseCase(index port.Index, topK int) *RetrieveUseCase {
	if topK <= 0 {
		topK = 5
	}
	return &RetrieveUseCase{index: index, topK: topK}
}

// Search returns up to n results for the query. n <= 0 uses the configured
// top-k.
func (u *RetrieveUseCase) Search(query string, n int, filter map[string]string) ([]domain.SearchResult, error) {
	if n <= 0 {
		n = u.topK
	}
	return u.index.Search(query, n, filter)
}

// Retrieve searches with the configured top-k and classifies the results.
func (u *RetrieveUseCase) Retrieve(query string) ([]domain.SearchResult, domain.GroundedInfo, error) {
	results, err := u.index.Search(query, u.topK, nil)
	if err != nil {
		return nil, domain.GroundedInfo{}, err
	}
	return results, extract.Grounded(results), nil
}

// Stats summarises the index contents.
func (u *RetrieveUseCase) Stats() (domain.IndexStats, error) {
	return u.index.Stats()
}

// Clear removes every indexed chunk.
func (u *RetrieveUseCase) Clear() error {
	return u.index.Clear()
}

// DeleteBySource removes all chunks from the named file.
func (u *RetrieveUseCase) DeleteBySource(filename string) error {
	return u.index.DeleteBySource(filename)
}
