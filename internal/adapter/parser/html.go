package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"qaforge/internal/domain"
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

func (p *Parser) parseHTML(name, content string) (domain.DocumentRecord, error) {
	// html.Parse recovers from arbitrary tag soup, so extraction never fails
	// outright; a hopeless document simply yields empty text.
	text := ExtractText(content)

	return domain.DocumentRecord{
		Text: text,
		Meta: domain.DocMeta{
			Filename:   filepath.Base(name),
			FileType:   "html",
			SourcePath: name,
		},
		// Raw content is kept so the DOM catalog can re-parse the page when
		// the file is the checkout page.
		RawContent: content,
	}, nil
}

// ExtractText strips tags from an HTML document and collapses whitespace to
// single spaces. Script and style bodies are dropped.
func ExtractText(content string) string {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(strings.Join(parts, " "), " "))
}
