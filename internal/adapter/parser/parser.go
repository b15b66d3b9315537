package parser

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"qaforge/internal/domain"
)

// Parser converts raw file content of heterogeneous formats into a canonical
// DocumentRecord. Source information is preserved in the metadata so every
// downstream artifact stays attributable.
type Parser struct{}

// New creates a new Parser.
func New() *Parser {
	return &Parser{}
}

var supportedExtensions = map[string]struct{}{
	".md":   {},
	".txt":  {},
	".pdf":  {},
	".json": {},
	".html": {},
}

// Parse parses the given content according to the extension of name.
func (p *Parser) Parse(name string, content []byte) (domain.DocumentRecord, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := supportedExtensions[ext]; !ok {
		return domain.DocumentRecord{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}

	switch ext {
	case ".md":
		return p.parseMarkdown(name, string(content)), nil
	case ".txt":
		return p.parseText(name, string(content)), nil
	case ".pdf":
		return p.parsePDF(name, content)
	case ".json":
		return p.parseJSON(name, string(content))
	default:
		return p.parseHTML(name, string(content))
	}
}

// ParseFile reads the file at path and parses it. This is the only variant
// that performs I/O, and it performs exactly one read.
func (p *Parser) ParseFile(path string) (domain.DocumentRecord, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return domain.DocumentRecord{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DocumentRecord{}, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return domain.DocumentRecord{}, err
	}

	rec, err := p.Parse(filepath.Base(path), content)
	if err != nil {
		return domain.DocumentRecord{}, err
	}
	rec.Meta.SourcePath = path
	return rec, nil
}

var (
	mdHeading = regexp.MustCompile(`#+\s*`)
	mdBold    = regexp.MustCompile(`\*\*(.*?)\*\*`)
	mdItalic  = regexp.MustCompile(`\*(.*?)\*`)
	mdLink    = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	mdCode    = regexp.MustCompile("`(.*?)`")
	blankRuns = regexp.MustCompile(`\n\s*\n`)
)

func (p *Parser) parseMarkdown(name, content string) domain.DocumentRecord {
	clean := mdHeading.ReplaceAllString(content, "")
	clean = mdBold.ReplaceAllString(clean, "$1")
	clean = mdItalic.ReplaceAllString(clean, "$1")
	clean = mdLink.ReplaceAllString(clean, "$1")
	clean = mdCode.ReplaceAllString(clean, "$1")
	clean = blankRuns.ReplaceAllString(clean, "\n\n")

	return domain.DocumentRecord{
		Text: strings.TrimSpace(clean),
		Meta: domain.DocMeta{
			Filename:   filepath.Base(name),
			FileType:   "markdown",
			SourcePath: name,
		},
		RawContent: content,
	}
}

func (p *Parser) parseText(name, content string) domain.DocumentRecord {
	return domain.DocumentRecord{
		Text: strings.TrimSpace(content),
		Meta: domain.DocMeta{
			Filename:   filepath.Base(name),
			FileType:   "text",
			SourcePath: name,
		},
		RawContent: content,
	}
}

func (p *Parser) parseJSON(name, content string) (domain.DocumentRecord, error) {
	var data any
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return domain.DocumentRecord{}, fmt.Errorf("%w: parsing JSON: %v", domain.ErrMalformedInput, err)
	}

	return domain.DocumentRecord{
		Text: renderJSONValue(data, 0),
		Meta: domain.DocMeta{
			Filename:   filepath.Base(name),
			FileType:   "json",
			SourcePath: name,
		},
		RawContent: content,
	}, nil
}

// renderJSONValue renders a decoded JSON value as an indented outline so the
// chunker sees readable prose-like lines instead of raw syntax.
func renderJSONValue(value any, level int) string {
	switch v := value.(type) {
	case map[string]any:
		return renderJSONObject(v, level)
	case []any:
		return renderJSONArray(v, level)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func renderJSONObject(obj map[string]any, level int) string {
	indent := strings.Repeat("  ", level)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, key := range keys {
		switch v := obj[key].(type) {
		case map[string]any:
			lines = append(lines, indent+key+":")
			lines = append(lines, renderJSONObject(v, level+1))
		case []any:
			lines = append(lines, indent+key+":")
			lines = append(lines, renderJSONArray(v, level+1))
		default:
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, v))
		}
	}
	return strings.Join(lines, "\n")
}

func renderJSONArray(arr []any, level int) string {
	indent := strings.Repeat("  ", level)

	var lines []string
	for i, item := range arr {
		switch v := item.(type) {
		case map[string]any:
			lines = append(lines, fmt.Sprintf("%sItem %d:", indent, i+1))
			lines = append(lines, renderJSONObject(v, level+1))
		case []any:
			lines = append(lines, fmt.Sprintf("%sItem %d:", indent, i+1))
			lines = append(lines, renderJSONArray(v, level+1))
		default:
			lines = append(lines, fmt.Sprintf("%sItem %d: %v", indent, i+1, v))
		}
	}
	return strings.Join(lines, "\n")
}
