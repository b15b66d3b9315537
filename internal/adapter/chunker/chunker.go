package chunker

import (
	"strings"

	"qaforge/internal/domain"
)

// Default window parameters, tuned for embedding-sized chunks.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// TextChunker splits canonical text into overlapping, position-tracked chunks.
type TextChunker struct {
	size    int
	overlap int
}

// New creates a TextChunker. Non-positive size falls back to the default;
// a negative overlap is treated as zero.
func New(size, overlap int) *TextChunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &TextChunker{size: size, overlap: overlap}
}

// Chunk splits text into overlapping chunks carrying the document metadata.
// Empty or whitespace-only text yields nil. Text no longer than the window
// yields exactly one chunk spanning the whole text.
func (c *TextChunker) Chunk(text string, meta domain.DocMeta) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	length := len(text)

	if length <= c.size {
		return []domain.Chunk{{
			Text: text,
			Meta: domain.ChunkMeta{
				DocMeta:     meta,
				ChunkIndex:  0,
				StartPos:    0,
				EndPos:      length,
				TotalChunks: 1,
			},
		}}
	}

	var chunks []domain.Chunk
	start := 0
	index := 0

	for start < length {
		end := start + c.size
		if end > length {
			end = length
		}

		// Retract to the last space inside the window so chunks break on
		// word boundaries when possible.
		if end < length {
			if lastSpace := strings.LastIndex(text[start:end], " "); lastSpace > 0 {
				end = start + lastSpace
			}
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			chunks = append(chunks, domain.Chunk{
				Text: piece,
				Meta: domain.ChunkMeta{
					DocMeta:    meta,
					ChunkIndex: index,
					StartPos:   start,
					EndPos:     end,
				},
			})
			index++
		}

		if end >= length {
			break
		}

		next := end - c.overlap
		// Force progress: with overlap >= size (or an aggressive boundary
		// retraction) the window would otherwise never advance.
		if next <= start {
			next = start + 1
		}
		start = next
	}

	// Second pass: every chunk carries the final count.
	for i := range chunks {
		chunks[i].Meta.TotalChunks = len(chunks)
	}

	return chunks
}
