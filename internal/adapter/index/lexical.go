package index

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"qaforge/internal/domain"
)

// record is the on-disk shape of one indexed chunk. The collection file is a
// single JSON array of these records and must stay bit-compatible across
// restarts.
type record struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata domain.ChunkMeta `json:"metadata"`
	Keywords []string         `json:"keywords"`
}

// LexicalIndex is the keyword-overlap similarity strategy. Similarity is the
// multiset Jaccard index over extracted keywords; persistence is one JSON
// document per collection.
type LexicalIndex struct {
	mu         sync.RWMutex
	records    []record
	ids        map[string]struct{}
	path       string
	collection string
}

// NewLexical opens (or creates) the lexical collection persisted at path.
// Existing records are reloaded with their keywords recomputed from the
// stored text so a stale or hand-edited index never poisons ranking.
func NewLexical(path, collection string) (*LexicalIndex, error) {
	idx := &LexicalIndex{
		ids:        make(map[string]struct{}),
		path:       path,
		collection: collection,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("%w: creating persist directory: %v", domain.ErrIndexIO, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, fmt.Errorf("%w: loading collection: %v", domain.ErrIndexIO, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("index: collection %s is corrupted, starting empty: %v", collection, err)
		return idx, nil
	}

	for i := range records {
		records[i].Keywords = extractKeywords(records[i].Text)
		idx.ids[records[i].ID] = struct{}{}
	}
	idx.records = records

	return idx, nil
}

// Add indexes the chunks, skipping any whose id already exists. A save
// failure is logged and reported as zero added so a bad disk never aborts a
// multi-file ingestion batch.
func (x *LexicalIndex) Add(chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	added := 0
	for _, chunk := range chunks {
		if chunk.Text == "" {
			continue
		}
		id := chunk.ID()
		if _, exists := x.ids[id]; exists {
			continue
		}
		x.records = append(x.records, record{
			ID:       id,
			Text:     chunk.Text,
			Metadata: chunk.Meta,
			Keywords: extractKeywords(chunk.Text),
		})
		x.ids[id] = struct{}{}
		added++
	}

	if err := x.save(); err != nil {
		log.Printf("index: failed to persist collection %s: %v", x.collection, err)
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}

	return added, nil
}

// Search scores every record against the query keywords and returns up to n
// results with score > 0, ordered by non-increasing score.
func (x *LexicalIndex) Search(query string, n int, filter map[string]string) ([]domain.SearchResult, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	queryKeywords := extractKeywords(query)
	if len(queryKeywords) == 0 || len(x.records) == 0 {
		return nil, nil
	}

	var results []domain.SearchResult
	for _, rec := range x.records {
		if !metaMatches(rec.Metadata, filter) {
			continue
		}
		score := jaccard(queryKeywords, rec.Keywords)
		if score <= 0 {
			continue
		}
		results = append(results, domain.SearchResult{
			ID:    rec.ID,
			Text:  rec.Text,
			Meta:  rec.Metadata,
			Score: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if n > 0 && len(results) > n {
		results = results[:n]
	}

	return results, nil
}

// Stats summarises the collection.
func (x *LexicalIndex) Stats() (domain.IndexStats, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	stats := domain.IndexStats{
		TotalChunks:    len(x.records),
		CollectionName: x.collection,
		Strategy:       "lexical",
	}

	seenTypes := make(map[string]struct{})
	seenNames := make(map[string]struct{})
	for _, rec := range x.records {
		if t := rec.Metadata.FileType; t != "" {
			if _, ok := seenTypes[t]; !ok {
				seenTypes[t] = struct{}{}
				stats.FileTypes = append(stats.FileTypes, t)
			}
		}
		if f := rec.Metadata.Filename; f != "" {
			if _, ok := seenNames[f]; !ok {
				seenNames[f] = struct{}{}
				stats.SampleFilenames = append(stats.SampleFilenames, f)
			}
		}
	}

	return stats, nil
}

// Clear removes every record and persists the empty collection.
func (x *LexicalIndex) Clear() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.records = nil
	x.ids = make(map[string]struct{})

	if err := x.save(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}
	return nil
}

// DeleteBySource removes every chunk originating from the named file.
func (x *LexicalIndex) DeleteBySource(filename string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.records[:0]
	for _, rec := range x.records {
		if rec.Metadata.Filename == filename {
			delete(x.ids, rec.ID)
			continue
		}
		kept = append(kept, rec)
	}
	x.records = kept

	if err := x.save(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexIO, err)
	}
	return nil
}

// save writes the whole collection. Callers hold the write lock.
func (x *LexicalIndex) save() error {
	records := x.records
	if records == nil {
		records = []record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(x.path, data, 0644)
}

// metaMatches applies the exact-match metadata filter. Every key/value pair
// must match; unknown keys never match.
func metaMatches(meta domain.ChunkMeta, filter map[string]string) bool {
	for key, want := range filter {
		if metaValue(meta, key) != want {
			return false
		}
	}
	return true
}

func metaValue(meta domain.ChunkMeta, key string) string {
	switch key {
	case "filename":
		return meta.Filename
	case "file_type":
		return meta.FileType
	case "source_path":
		return meta.SourcePath
	case "chunk_index":
		return strconv.Itoa(meta.ChunkIndex)
	case "total_chunks":
		return strconv.Itoa(meta.TotalChunks)
	default:
		return ""
	}
}
