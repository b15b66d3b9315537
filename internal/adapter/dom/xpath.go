package dom

import (
	"fmt"

	"golang.org/x/net/html"
)

// xpath computes a bounded XPath for the element by walking its ancestors.
// Same-named siblings under a shared parent are indexed 1-based, and only
// when more than one sibling shares the tag. The walk stops at body/html to
// keep paths short. Any failure falls back to the wildcard path.
func xpath(element *html.Node) string {
	var components []string
	current := element

	for current != nil && current.Parent != nil {
		if current.Type == html.ElementNode && current.Data != "" {
			index, count := siblingPosition(current)
			if count > 1 {
				components = append(components, fmt.Sprintf("%s[%d]", current.Data, index))
			} else {
				components = append(components, current.Data)
			}
		}

		current = current.Parent
		if current != nil && (current.Data == "body" || current.Data == "html") {
			break
		}
	}

	if len(components) == 0 {
		return "//*"
	}

	// Components were collected bottom-up.
	path := "//"
	for i := len(components) - 1; i >= 0; i-- {
		path += components[i]
		if i > 0 {
			path += "/"
		}
	}
	return path
}

// siblingPosition returns the element's 1-based position among same-tag
// element siblings and the total number of such siblings.
func siblingPosition(n *html.Node) (int, int) {
	index := 0
	count := 0
	for sibling := n.Parent.FirstChild; sibling != nil; sibling = sibling.NextSibling {
		if sibling.Type != html.ElementNode || sibling.Data != n.Data {
			continue
		}
		count++
		if sibling == n {
			index = count
		}
	}
	return index, count
}
