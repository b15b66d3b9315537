// Package dom extracts a catalog of addressable UI elements from an HTML
// page. The catalog grounds script synthesis: selectors that are not in it
// must never appear in generated automation code.
package dom

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/net/html"

	"qaforge/internal/domain"
)

// Extractor parses HTML pages into DOM catalogs.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract parses the page and builds the catalog. Extraction fails soft: a
// document malformed beyond parsing yields an empty catalog and a log line,
// never an error, because grounding must not crash the pipeline.
func (e *Extractor) Extract(content string) domain.DomCatalog {
	catalog := domain.DomCatalog{
		Selectors: make(map[string]domain.ElementDescriptor),
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		log.Printf("dom: failed to parse HTML: %v", err)
		return catalog
	}

	e.extractSelectors(root, &catalog)
	e.extractForms(root, &catalog)
	e.extractButtons(root, &catalog)
	e.extractInputs(root, &catalog)
	e.extractLinks(root, &catalog)
	e.extractTextElements(root, &catalog)
	e.analyzeStructure(root, &catalog)

	return catalog
}

// extractSelectors builds the three-tier selector map: id-keyed entries
// first, then name-keyed entries not shadowed by an id, then one entry per
// distinct first class token. The tiers reflect selector robustness.
func (e *Extractor) extractSelectors(root *html.Node, catalog *domain.DomCatalog) {
	putSelector := func(key string, desc domain.ElementDescriptor) {
		if _, exists := catalog.Selectors[key]; !exists {
			catalog.SelectorKeys = append(catalog.SelectorKeys, key)
		}
		desc.Key = key
		catalog.Selectors[key] = desc
	}

	walkElements(root, func(n *html.Node) {
		id := attr(n, "id")
		if id == "" {
			return
		}
		putSelector(id, domain.ElementDescriptor{
			Tag:           n.Data,
			Type:          elementType(n),
			SelectorKind:  domain.SelectorID,
			SelectorValue: id,
			Text:          elementText(n),
			Attributes:    attrMap(n),
			XPath:         xpath(n),
			CSSSelector:   "#" + id,
		})
	})

	walkElements(root, func(n *html.Node) {
		name := attr(n, "name")
		if name == "" {
			return
		}
		// An id-keyed entry with the same value already covers this element.
		if _, covered := catalog.Selectors[name]; covered {
			return
		}
		putSelector("name_"+name, domain.ElementDescriptor{
			Tag:           n.Data,
			Type:          elementType(n),
			SelectorKind:  domain.SelectorName,
			SelectorValue: name,
			Text:          elementText(n),
			Attributes:    attrMap(n),
			XPath:         xpath(n),
			CSSSelector:   fmt.Sprintf(`[name=%q]`, name),
		})
	})

	walkElements(root, func(n *html.Node) {
		classes := strings.Fields(attr(n, "class"))
		if len(classes) == 0 {
			return
		}
		// Only the first element per first-class token is kept; later
		// elements sharing the class are dropped deliberately.
		key := "class_" + classes[0]
		if _, exists := catalog.Selectors[key]; exists {
			return
		}
		putSelector(key, domain.ElementDescriptor{
			Tag:           n.Data,
			Type:          elementType(n),
			SelectorKind:  domain.SelectorClass,
			SelectorValue: classes[0],
			Text:          elementText(n),
			Attributes:    attrMap(n),
			XPath:         xpath(n),
			CSSSelector:   "." + classes[0],
		})
	})
}

func (e *Extractor) extractForms(root *html.Node, catalog *domain.DomCatalog) {
	i := 0
	walkElements(root, func(n *html.Node) {
		if n.Data != "form" {
			return
		}

		key := attr(n, "id")
		if key == "" {
			key = fmt.Sprintf("form_%d", i)
		}

		var fields []domain.FormField
		walkElements(n, func(field *html.Node) {
			if field.Data != "input" && field.Data != "select" && field.Data != "textarea" {
				return
			}
			fields = append(fields, domain.FormField{
				Tag:         field.Data,
				Type:        attrDefault(field, "type", "text"),
				Name:        attr(field, "name"),
				ID:          attr(field, "id"),
				Required:    hasAttr(field, "required"),
				Placeholder: attr(field, "placeholder"),
			})
		})

		catalog.Forms = append(catalog.Forms, domain.FormInfo{
			Key:        key,
			Action:     attr(n, "action"),
			Method:     attrDefault(n, "method", "GET"),
			Fields:     fields,
			Attributes: attrMap(n),
		})
		i++
	})
}

func (e *Extractor) extractButtons(root *html.Node, catalog *domain.DomCatalog) {
	i := 0
	walkElements(root, func(n *html.Node) {
		if n.Data != "button" && n.Data != "input" {
			return
		}
		// The positional index counts every button and input so generated
		// fallback keys stay stable when inputs are filtered out.
		pos := i
		i++

		if n.Data == "input" {
			switch attr(n, "type") {
			case "button", "submit", "reset":
			default:
				return
			}
		}

		key := attr(n, "id")
		if key == "" {
			key = attr(n, "name")
		}
		if key == "" {
			key = fmt.Sprintf("button_%d", pos)
		}

		text := elementText(n)
		if text == "" {
			text = attr(n, "value")
		}

		catalog.Buttons = append(catalog.Buttons, domain.ButtonInfo{
			Key:        key,
			Tag:        n.Data,
			Type:       attrDefault(n, "type", "button"),
			Text:       text,
			OnClick:    attr(n, "onclick"),
			Class:      attr(n, "class"),
			Attributes: attrMap(n),
		})
	})
}

func (e *Extractor) extractInputs(root *html.Node, catalog *domain.DomCatalog) {
	walkElements(root, func(n *html.Node) {
		if n.Data != "input" && n.Data != "select" && n.Data != "textarea" {
			return
		}

		key := attr(n, "id")
		if key == "" {
			key = attr(n, "name")
		}
		if key == "" {
			key = fmt.Sprintf("input_%d", len(catalog.Inputs))
		}

		catalog.Inputs = append(catalog.Inputs, domain.InputInfo{
			Key:         key,
			Tag:         n.Data,
			Type:        attrDefault(n, "type", "text"),
			Name:        attr(n, "name"),
			Placeholder: attr(n, "placeholder"),
			Required:    hasAttr(n, "required"),
			Value:       attr(n, "value"),
			Class:       attr(n, "class"),
			Attributes:  attrMap(n),
		})
	})
}

func (e *Extractor) extractLinks(root *html.Node, catalog *domain.DomCatalog) {
	i := 0
	walkElements(root, func(n *html.Node) {
		if n.Data != "a" {
			return
		}

		key := attr(n, "id")
		if key == "" {
			key = fmt.Sprintf("link_%d", i)
		}

		catalog.Links = append(catalog.Links, domain.LinkInfo{
			Key:        key,
			Href:       attr(n, "href"),
			Text:       elementText(n),
			Title:      attr(n, "title"),
			Target:     attr(n, "target"),
			Class:      attr(n, "class"),
			Attributes: attrMap(n),
		})
		i++
	})
}

var textTags = []string{"h1", "h2", "h3", "h4", "h5", "h6", "p", "span", "div", "label"}

func (e *Extractor) extractTextElements(root *html.Node, catalog *domain.DomCatalog) {
	for _, tag := range textTags {
		i := 0
		walkElements(root, func(n *html.Node) {
			if n.Data != tag {
				return
			}
			pos := i
			i++

			text := elementText(n)
			if text == "" {
				return
			}

			key := attr(n, "id")
			if key == "" {
				key = fmt.Sprintf("%s_%d", tag, pos)
			}

			catalog.TextElements = append(catalog.TextElements, domain.TextElement{
				Key:   key,
				Tag:   tag,
				Text:  text,
				Class: attr(n, "class"),
			})
		})
	}
}

func (e *Extractor) analyzeStructure(root *html.Node, catalog *domain.DomCatalog) {
	structure := domain.PageStructure{Title: "No Title"}

	walkElements(root, func(n *html.Node) {
		switch n.Data {
		case "title":
			if t := elementText(n); t != "" {
				structure.Title = t
			}
		case "form":
			structure.FormCount++
		case "button":
			structure.ButtonCount++
		case "input", "select", "textarea":
			structure.InputCount++
		case "a":
			structure.LinkCount++
		}

		switch n.Data {
		case "div", "section", "main", "article":
			id := attr(n, "id")
			class := attr(n, "class")
			if id != "" || class != "" {
				structure.MainContainers = append(structure.MainContainers, domain.ContainerInfo{
					Tag:   n.Data,
					ID:    id,
					Class: class,
				})
			}
		}
	})

	structure.HasForms = structure.FormCount > 0
	catalog.Structure = structure
}

// walkElements visits every element node under root in document order,
// including root itself when it is an element.
func walkElements(root *html.Node, visit func(*html.Node)) {
	if root.Type == html.ElementNode {
		visit(root)
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, visit)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func attrDefault(n *html.Node, key, def string) string {
	if v := attr(n, key); v != "" {
		return v
	}
	return def
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attrMap(n *html.Node) map[string]string {
	m := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		m[a.Key] = a.Val
	}
	return m
}

// elementType maps an element to the coarse type used by selector resolution.
func elementType(n *html.Node) string {
	switch n.Data {
	case "input":
		return attrDefault(n, "type", "text")
	case "button":
		return "button"
	case "select", "textarea":
		return n.Data
	case "a":
		return "link"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "p", "span", "div", "label":
		return "text"
	default:
		return n.Data
	}
}

// elementText returns the clean text content of an element. Inputs carry no
// text children, so their value or placeholder stands in.
func elementText(n *html.Node) string {
	if n.Data == "input" {
		if v := attr(n, "value"); v != "" {
			return v
		}
		return attr(n, "placeholder")
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(parts, " ")
}
