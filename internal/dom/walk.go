package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Elements returns root and every element below it in document order.
// The result is a snapshot: callers may mutate the tree while iterating it.
func Elements(root *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// ElementsByTag returns the elements under root whose tag name equals tag.
// "*" matches every element.
func ElementsByTag(root *html.Node, tag string) []*html.Node {
	tag = strings.ToLower(tag)
	var out []*html.Node
	for _, el := range Elements(root) {
		if tag == "*" || el.Data == tag {
			out = append(out, el)
		}
	}
	return out
}

// Contains reports whether n is root or one of its descendants.
func Contains(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// FindFirst returns the first element named tag under root, or nil.
func FindFirst(root *html.Node, tag string) *html.Node {
	els := ElementsByTag(root, tag)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}
