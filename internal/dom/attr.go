package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the attribute key on n. Keys are compared
// case-insensitively because the tokenizer lower-cases attribute names.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if attrKey(a) == strings.ToLower(key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val on n, adding the attribute if it is missing.
func SetAttr(n *html.Node, key, val string) {
	key = strings.ToLower(key)
	for i, a := range n.Attr {
		if attrKey(a) == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes every occurrence of key from n and reports whether
// anything was removed.
func RemoveAttr(n *html.Node, key string) bool {
	key = strings.ToLower(key)
	kept := n.Attr[:0]
	removed := false
	for _, a := range n.Attr {
		if attrKey(a) == key {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
	return removed
}

// attrKey rebuilds the qualified name for attributes the parser split into
// namespace and key (foreign content such as SVG).
func attrKey(a html.Attribute) string {
	if a.Namespace != "" {
		return strings.ToLower(a.Namespace + ":" + a.Key)
	}
	return strings.ToLower(a.Key)
}
