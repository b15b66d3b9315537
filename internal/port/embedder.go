package port

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts, one vector per input.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// VectorStore stores and searches embedding vectors keyed by chunk id.
type VectorStore interface {
	// Upsert adds or replaces vectors. Re-upserting an id overwrites it, so
	// ingestion stays idempotent.
	Upsert(items []VectorItem) error

	// Search returns the k nearest vectors to the query by cosine similarity.
	Search(query []float32, k int) ([]VectorResult, error)

	// DeleteWhere removes every vector whose metadata matches the predicate.
	DeleteWhere(match func(meta map[string]string) bool) error

	// Clear removes all vectors.
	Clear() error

	// Count returns the number of stored vectors.
	Count() (int, error)
}

// VectorItem is a vector to be stored together with the chunk it represents.
type VectorItem struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// VectorResult is one nearest-neighbour match.
type VectorResult struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]string
}
