package index

import (
	"fmt"
	"log"
	"strconv"

	"qaforge/internal/domain"
	"qaforge/internal/port"
)

// DenseIndex is the embedding-based similarity strategy: chunks are embedded
// by a fixed sentence-embedding model and stored in an id-keyed vector store.
// It satisfies the same contract as the lexical strategy; nothing outside the
// selection point knows which is active.
type DenseIndex struct {
	embedder   port.Embedder
	store      port.VectorStore
	collection string
}

// NewDense creates a dense index over the given embedder and vector store.
func NewDense(embedder port.Embedder, store port.VectorStore, collection string) *DenseIndex {
	return &DenseIndex{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// Add embeds the chunks and upserts them. The store's id-keyed upsert makes
// re-adding a chunk a no-op in effect: the entry is overwritten in place, so
// the count never grows. Embedding or store failures are logged and surfaced
// as zero added.
func (x *DenseIndex) Add(chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, 0, len(chunks))
	kept := make([]domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk.Text == "" {
			continue
		}
		texts = append(texts, chunk.Text)
		kept = append(kept, chunk)
	}
	if len(kept) == 0 {
		return 0, nil
	}

	before, err := x.store.Count()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}

	vectors, err := x.embedder.Embed(texts)
	if err != nil {
		log.Printf("index: embedding failed: %v", err)
		return 0, fmt.Errorf("%w: embedding: %v", domain.ErrIndexIO, err)
	}

	items := make([]port.VectorItem, len(kept))
	for i, chunk := range kept {
		items[i] = port.VectorItem{
			ID:       chunk.ID(),
			Vector:   vectors[i],
			Text:     chunk.Text,
			Metadata: encodeMeta(chunk.Meta),
		}
	}

	if err := x.store.Upsert(items); err != nil {
		log.Printf("index: vector upsert failed: %v", err)
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}

	after, err := x.store.Count()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}

	return after - before, nil
}

// Search embeds the query and ranks all stored vectors, applying the
// metadata filter before the top-n cut.
func (x *DenseIndex) Search(query string, n int, filter map[string]string) ([]domain.SearchResult, error) {
	vectors, err := x.embedder.Embed([]string{query})
	if err != nil {
		log.Printf("index: query embedding failed: %v", err)
		return nil, nil
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	// Rank the full collection, then filter; the store has no notion of our
	// metadata schema.
	matches, err := x.store.Search(vectors[0], 0)
	if err != nil {
		log.Printf("index: vector search failed: %v", err)
		return nil, nil
	}

	var results []domain.SearchResult
	for _, m := range matches {
		if !stringMetaMatches(m.Metadata, filter) {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:    m.ID,
			Text:  m.Text,
			Meta:  decodeMeta(m.Metadata),
			Score: m.Score,
		})
		if n > 0 && len(results) == n {
			break
		}
	}

	return results, nil
}

// Stats summarises the collection.
func (x *DenseIndex) Stats() (domain.IndexStats, error) {
	count, err := x.store.Count()
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}

	stats := domain.IndexStats{
		TotalChunks:    count,
		CollectionName: x.collection,
		Strategy:       "dense",
	}

	// The embedder names the model; file types and sample names come from a
	// full scan, which the brute-force store already does for search.
	matches, err := x.store.Search(make([]float32, x.embedder.Dimension()), 0)
	if err != nil {
		return stats, nil
	}
	seenTypes := make(map[string]struct{})
	seenNames := make(map[string]struct{})
	for _, m := range matches {
		if t := m.Metadata["file_type"]; t != "" {
			if _, ok := seenTypes[t]; !ok {
				seenTypes[t] = struct{}{}
				stats.FileTypes = append(stats.FileTypes, t)
			}
		}
		if f := m.Metadata["filename"]; f != "" {
			if _, ok := seenNames[f]; !ok {
				seenNames[f] = struct{}{}
				stats.SampleFilenames = append(stats.SampleFilenames, f)
			}
		}
	}

	return stats, nil
}

// Clear removes all vectors.
func (x *DenseIndex) Clear() error {
	if err := x.store.Clear(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}
	return nil
}

// DeleteBySource removes every chunk originating from the named file.
func (x *DenseIndex) DeleteBySource(filename string) error {
	err := x.store.DeleteWhere(func(meta map[string]string) bool {
		return meta["filename"] == filename
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}
	return nil
}

// encodeMeta flattens chunk metadata into the stringly map the vector store
// persists.
func encodeMeta(meta domain.ChunkMeta) map[string]string {
	m := map[string]string{
		"filename":     meta.Filename,
		"file_type":    meta.FileType,
		"source_path":  meta.SourcePath,
		"chunk_index":  strconv.Itoa(meta.ChunkIndex),
		"start_pos":    strconv.Itoa(meta.StartPos),
		"end_pos":      strconv.Itoa(meta.EndPos),
		"total_chunks": strconv.Itoa(meta.TotalChunks),
	}
	if meta.NumPages > 0 {
		m["num_pages"] = strconv.Itoa(meta.NumPages)
	}
	return m
}

func decodeMeta(m map[string]string) domain.ChunkMeta {
	atoi := func(key string) int {
		v, _ := strconv.Atoi(m[key])
		return v
	}
	return domain.ChunkMeta{
		DocMeta: domain.DocMeta{
			Filename:   m["filename"],
			FileType:   m["file_type"],
			SourcePath: m["source_path"],
			NumPages:   atoi("num_pages"),
		},
		ChunkIndex:  atoi("chunk_index"),
		StartPos:    atoi("start_pos"),
		EndPos:      atoi("end_pos"),
		TotalChunks: atoi("total_chunks"),
	}
}

func stringMetaMatches(meta map[string]string, filter map[string]string) bool {
	for key, want := range filter {
		if meta[key] != want {
			return false
		}
	}
	return true
}
