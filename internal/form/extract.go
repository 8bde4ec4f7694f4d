package form

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	// ModelClass marks elements whose text content is a request model field.
	ModelClass = "model_elem"
	// ProviderClass marks anchors linking to an external identity provider.
	ProviderClass = "provider_link"
)

// ProviderLink is an external identity provider authorization link found on a page.
type ProviderLink struct {
	Name string
	URL  string
}

// Page is the parsed login page.
type Page struct {
	Model     Model
	Providers []ProviderLink
}

// ParsePage reads an HTML document and extracts its model fields and provider links.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{
		Model:     ExtractModel(doc),
		Providers: ExtractProviderLinks(doc),
	}, nil
}

// ExtractModel maps the id of every element tagged with ModelClass to its
// literal text content, in document order. Elements without an id are skipped.
func ExtractModel(doc *html.Node) Model {
	var m Model
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || !hasClass(n, ModelClass) {
			return
		}
		id := attr(n, "id")
		if id == "" {
			return
		}
		m.Set(id, textContent(n))
	})
	return m
}

// ExtractProviderLinks collects <a class="provider_link" id=NAME href=URL> entries.
func ExtractProviderLinks(doc *html.Node) []ProviderLink {
	var links []ProviderLink
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.A || !hasClass(n, ProviderClass) {
			return
		}
		href := attr(n, "href")
		if href == "" {
			return
		}
		name := attr(n, "id")
		if name == "" {
			name = strings.TrimSpace(textContent(n))
		}
		links = append(links, ProviderLink{Name: name, URL: href})
	})
	return links
}

func walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
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

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	})
	return b.String()
}
