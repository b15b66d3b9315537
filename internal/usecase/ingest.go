// Package usecase wires the adapters into the operations the CLI exposes:
// ingestion, retrieval and artifact generation.
package usecase

import (
	"fmt"
	"path/filepath"
	"strings"

	"qaforge/internal/adapter/chunker"
	"qaforge/internal/adapter/dom"
	"qaforge/internal/adapter/fs"
	"qaforge/internal/adapter/parser"
	"qaforge/internal/domain"
	"qaforge/internal/port"
)

// IngestUseCase handles document ingestion: parse, chunk, index, and for the
// configured checkout page additionally extract the DOM catalog.
type IngestUseCase struct {
	parser       *parser.Parser
	chunker      *chunker.TextChunker
	index        port.Index
	extractor    *dom.Extractor
	walker       *fs.Walker
	session      *Session
	checkoutPage string
}

// NewIngestUseCase creates a new ingest use case. checkoutPage is the
// filename (base name, case-insensitive) whose content also feeds the DOM
// catalog.
func NewIngestUseCase(
	p *parser.Parser,
	c *chunker.TextChunker,
	index port.Index,
	extractor *dom.Extractor,
	walker *fs.Walker,
	session *Session,
	checkoutPage string,
) *IngestUseCase {
	return &IngestUseCase{
		parser:       p,
		chunker:      c,
		index:        index,
		extractor:    extractor,
		walker:       walker,
		session:      session,
		checkoutPage: checkoutPage,
	}
}

// FileResult is the per-file outcome of a batch ingestion.
type FileResult struct {
	Filename string
	Chunks   int
	Err      error
}

// IngestResult summarises a batch ingestion. One failed file never aborts the
// batch; its error is recorded and the remaining files proceed.
type IngestResult struct {
	Files         []FileResult
	FilesIngested int
	FilesFailed   int
	ChunksAdded   int
}

// IngestFile parses, chunks and indexes a single file from disk.
func (u *IngestUseCase) IngestFile(path string) FileResult {
	record, err := u.parser.ParseFile(path)
	if err != nil {
		return FileResult{Filename: filepath.Base(path), Err: err}
	}
	return u.ingestRecord(record)
}

// IngestContent parses, chunks and indexes in-memory content under the given
// name.
func (u *IngestUseCase) IngestContent(name string, content []byte) FileResult {
	record, err := u.parser.Parse(name, content)
	if err != nil {
		return FileResult{Filename: filepath.Base(name), Err: err}
	}
	return u.ingestRecord(record)
}

func (u *IngestUseCase) ingestRecord(record domain.DocumentRecord) FileResult {
	result := FileResult{Filename: record.Meta.Filename}

	if u.isCheckoutPage(record.Meta.Filename) {
		catalog := u.extractor.Extract(record.RawContent)
		u.session.SetCheckoutPage(record.RawContent, catalog)
	}

	chunks := u.chunker.Chunk(record.Text, record.Meta)
	if len(chunks) == 0 {
		return result
	}

	added, err := u.index.Add(chunks)
	result.Chunks = added
	result.Err = err
	return result
}

// IngestDirectory walks root and ingests every matching file, reporting
// per-file progress through onFile when it is non-nil.
func (u *IngestUseCase) IngestDirectory(root string, onFile func(done, total int, result FileResult)) (*IngestResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	result := &IngestResult{}
	for i, file := range files {
		fileResult := u.IngestFile(file.Path)
		result.Files = append(result.Files, fileResult)

		if fileResult.Err != nil {
			result.FilesFailed++
		} else {
			result.FilesIngested++
			result.ChunksAdded += fileResult.Chunks
		}

		if onFile != nil {
			onFile(i+1, len(files), fileResult)
		}
	}

	return result, nil
}

func (u *IngestUseCase) isCheckoutPage(filename string) bool {
	return u.checkoutPage != "" && strings.EqualFold(filepath.Base(filename), u.checkoutPage)
}
