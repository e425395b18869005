package site

import (
	"fmt"
	"html"
	"net/url"
	"sort"
	"strings"
)

// FileTree represents a node in the page index.
type FileTree struct {
	Name     string
	Title    string // Display name (the page <title>, or formatted from the directory name).
	Path     string // For pages: full relative path. For dirs: directory path (e.g., "blog/2026").
	IsDir    bool
	Children []*FileTree
}

// BuildTree constructs a FileTree from a list of slash-separated page paths.
// titleMap is an optional map of relative path -> display title.
func BuildTree(paths []string, titleMap map[string]string) *FileTree {
	root := &FileTree{Name: "/", IsDir: true}

	for _, p := range paths {
		parts := strings.Split(p, "/")
		current := root
		for i, part := range parts {
			isLast := i == len(parts)-1
			var next *FileTree
			for _, child := range current.Children {
				if child.Name == part && child.IsDir == !isLast {
					next = child
					break
				}
			}
			if next == nil {
				next = &FileTree{Name: part, IsDir: !isLast}
				if isLast {
					next.Path = p
					next.Title = titleMap[p]
				} else {
					next.Path = strings.Join(parts[:i+1], "/")
					next.Title = formatDirName(part)
				}
				current.Children = append(current.Children, next)
			}
			current = next
		}
	}

	sortTree(root)
	return root
}

// sortTree recursively sorts tree children: directories first, then pages, alphabetically.
func sortTree(node *FileTree) {
	sort.Slice(node.Children, func(i, j int) bool {
		if node.Children[i].IsDir != node.Children[j].IsDir {
			return node.Children[i].IsDir
		}
		return node.Children[i].Name < node.Children[j].Name
	})
	for _, child := range node.Children {
		if child.IsDir {
			sortTree(child)
		}
	}
}

// Count returns the number of pages below t.
func (t *FileTree) Count() int {
	if !t.IsDir {
		return 1
	}
	n := 0
	for _, c := range t.Children {
		n += c.Count()
	}
	return n
}

// ToHTML renders the tree as nested <ul><li> lists linking to each page.
// The directory containing activePath is marked expanded.
func (t *FileTree) ToHTML(activePath string) string {
	var b strings.Builder
	renderChildren(&b, t, activePath, computeActiveAncestors(activePath))
	return b.String()
}

// computeActiveAncestors returns the set of directory paths that are ancestors of activePath.
// For "blog/2026/post.html" it returns {"blog", "blog/2026"}.
func computeActiveAncestors(activePath string) map[string]bool {
	ancestors := make(map[string]bool)
	parts := strings.Split(strings.Trim(activePath, "/"), "/")
	for i := 1; i <= len(parts); i++ {
		ancestors[strings.Join(parts[:i], "/")] = true
	}
	return ancestors
}

func renderChildren(b *strings.Builder, node *FileTree, activePath string, activeAncestors map[string]bool) {
	if len(node.Children) == 0 {
		return
	}
	b.WriteString("<ul>\n")
	for _, child := range node.Children {
		if child.IsDir {
			expanded := ""
			if activeAncestors[child.Path] {
				expanded = " expanded"
			}
			label := child.Title
			if label == "" {
				label = child.Name
			}
			fmt.Fprintf(b, `<li class="dir%s"><span class="dir-toggle">%s/</span>`+"\n", expanded, html.EscapeString(label))
			renderChildren(b, child, activePath, activeAncestors)
			b.WriteString("</li>\n")
			continue
		}

		label := child.Name
		if child.Title != "" {
			label = child.Title + " (" + child.Name + ")"
		}
		activeClass := ""
		if child.Path == activePath {
			activeClass = ` class="active"`
		}
		href := pageHref(child.Path)
		fmt.Fprintf(b, `<li class="page"><a href="%s"%s>%s</a> <a class="raw" href="%s?raw=1">raw</a></li>`+"\n",
			href, activeClass, html.EscapeString(label), href)
	}
	b.WriteString("</ul>\n")
}

// pageHref escapes a slash-separated page path for use in an href.
func pageHref(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return "/" + strings.Join(parts, "/")
}

// formatDirName converts a directory name to a human-readable display name.
// Multi-word slugs separated by hyphens or underscores are title-cased.
func formatDirName(name string) string {
	words := strings.FieldsFunc(name, func(c rune) bool {
		return c == '-' || c == '_'
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
