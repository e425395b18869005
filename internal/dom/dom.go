// Package dom wraps golang.org/x/net/html with the handful of element
// operations the preview loader needs: attribute access, inner-HTML
// replacement and rendering.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads a full HTML document.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// ParseString is Parse for an in-memory document.
func ParseString(s string) (*html.Node, error) {
	return Parse(strings.NewReader(s))
}

// Render serialises n and all of its descendants.
func Render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", fmt.Errorf("rendering node: %w", err)
	}
	return buf.String(), nil
}

// InnerHTML serialises the children of n.
func InnerHTML(n *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("rendering child: %w", err)
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces the children of el with the nodes parsed from
// markup, using el as the parsing context the way a browser does for
// innerHTML assignments.
func SetInnerHTML(el *html.Node, markup string) error {
	nodes, err := ParseFragment(markup, el)
	if err != nil {
		return err
	}
	RemoveChildren(el)
	for _, n := range nodes {
		el.AppendChild(n)
	}
	return nil
}

// ParseFragment parses markup as the content of context. A nil context is
// treated as a <body> element.
func ParseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	if context == nil || context.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	return nodes, nil
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}
