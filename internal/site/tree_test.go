package site

import (
	"strings"
	"testing"
)

func TestBuildTree(t *testing.T) {
	paths := []string{
		"index.html",
		"blog/post.html",
		"blog/2026/new-year.html",
		"frag/header.html",
	}
	titles := map[string]string{"index.html": "Home"}

	tree := BuildTree(paths, titles)

	if !tree.IsDir || tree.Name != "/" {
		t.Fatalf("root = %+v", tree)
	}
	if tree.Count() != 4 {
		t.Errorf("Count() = %d, want 4", tree.Count())
	}

	// Directories first, then pages.
	if len(tree.Children) != 3 {
		t.Fatalf("root children = %d, want 3", len(tree.Children))
	}
	if tree.Children[0].Name != "blog" || !tree.Children[0].IsDir {
		t.Errorf("first child = %q", tree.Children[0].Name)
	}
	if tree.Children[1].Name != "frag" {
		t.Errorf("second child = %q", tree.Children[1].Name)
	}
	last := tree.Children[2]
	if last.Name != "index.html" || last.IsDir || last.Title != "Home" {
		t.Errorf("third child = %+v", last)
	}

	blog := tree.Children[0]
	if len(blog.Children) != 2 || blog.Children[0].Path != "blog/2026" || blog.Children[1].Path != "blog/post.html" {
		t.Errorf("blog children = %+v", blog.Children)
	}
}

func TestToHTML(t *testing.T) {
	tree := BuildTree([]string{"a b/page one.html", "top.html"}, map[string]string{"top.html": "<Top>"})
	out := tree.ToHTML("a b")

	for _, want := range []string{
		`<li class="dir expanded"><span class="dir-toggle">A b/</span>`,
		`href="/a%20b/page%20one.html"`,
		`&lt;Top&gt; (top.html)`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("ToHTML missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDirName(t *testing.T) {
	tests := map[string]string{
		"blog":          "Blog",
		"release-notes": "Release Notes",
		"api_v2":        "Api V2",
	}
	for in, want := range tests {
		if got := formatDirName(in); got != want {
			t.Errorf("formatDirName(%q) = %q, want %q", in, got, want)
		}
	}
}
