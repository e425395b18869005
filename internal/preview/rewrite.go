package preview

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/dom"
)

// RewriteMode selects how nested references in a fetched fragment are
// qualified with the fragment's directory.
type RewriteMode string

const (
	// RewriteText replaces every `attr="` in the raw text, wherever it
	// appears (text nodes and comments included).
	RewriteText RewriteMode = "text"
	// RewriteStructural parses the fragment and only touches values of the
	// trigger attribute, leaving absolute and root-relative URLs alone.
	RewriteStructural RewriteMode = "structural"
)

// Directory returns ref up to and including its last slash, or "" when ref
// has no slash.
func Directory(ref string) string {
	i := strings.LastIndex(ref, "/")
	if i < 0 {
		return ""
	}
	return ref[:i+1]
}

// RewriteMarkers qualifies every `attr="` in text with the directory of ref.
// Text fetched from a reference without a slash is returned unchanged.
func RewriteMarkers(text, attr, ref string) string {
	dir := Directory(ref)
	if dir == "" {
		return text
	}
	marker := attr + `="`
	return strings.ReplaceAll(text, marker, marker+dir)
}

// RewriteNodes prefixes the trigger attribute of every element in nodes
// (and their descendants) with the directory of ref.
func RewriteNodes(nodes []*html.Node, attr, ref string) int {
	dir := Directory(ref)
	if dir == "" {
		return 0
	}
	changed := 0
	for _, n := range nodes {
		for _, el := range dom.Elements(n) {
			v, ok := dom.Attr(el, attr)
			if !ok || isAbsolute(v) {
				continue
			}
			dom.SetAttr(el, attr, dir+v)
			changed++
		}
	}
	return changed
}

func isAbsolute(ref string) bool {
	if strings.HasPrefix(ref, "/") {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != ""
}
