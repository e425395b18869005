package preview

import (
	"strings"
	"testing"

	"github.com/ziadkadry99/fragview/internal/dom"
)

func TestDirectory(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"a/b/c.html", "a/b/"},
		{"c.html", ""},
		{"/root.html", "/"},
		{"http://example.com/x/y.html", "http://example.com/x/"},
		{"dir/", "dir/"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Directory(tt.input); got != tt.want {
			t.Errorf("Directory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRewriteMarkers(t *testing.T) {
	const attr = "wicket:preview"
	tests := []struct {
		name, text, ref, want string
	}{
		{
			name: "empty value",
			text: `<span wicket:preview="">x</span>`,
			ref:  "a/b/c.html",
			want: `<span wicket:preview="a/b/">x</span>`,
		},
		{
			name: "relative value",
			text: `<div wicket:preview="d.html"></div>`,
			ref:  "a/b/c.html",
			want: `<div wicket:preview="a/b/d.html"></div>`,
		},
		{
			name: "every occurrence",
			text: `<div wicket:preview="1.html"></div><div wicket:preview="2.html"></div>`,
			ref:  "frag/x.html",
			want: `<div wicket:preview="frag/1.html"></div><div wicket:preview="frag/2.html"></div>`,
		},
		{
			name: "no separator",
			text: `<span wicket:preview="">x</span>`,
			ref:  "c.html",
			want: `<span wicket:preview="">x</span>`,
		},
		{
			name: "text occurrences are rewritten too",
			text: `<pre>wicket:preview="</pre>`,
			ref:  "a/c.html",
			want: `<pre>wicket:preview="a/</pre>`,
		},
		{
			name: "single quotes untouched",
			text: `<div wicket:preview='d.html'></div>`,
			ref:  "a/c.html",
			want: `<div wicket:preview='d.html'></div>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RewriteMarkers(tt.text, attr, tt.ref); got != tt.want {
				t.Errorf("RewriteMarkers = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteNodes(t *testing.T) {
	const attr = "wicket:preview"
	markup := `<div wicket:preview="d.html"></div>` +
		`<div wicket:preview="/abs.html"></div>` +
		`<div wicket:preview="https://example.com/e.html"></div>` +
		`<p>wicket:preview="</p><!-- wicket:preview=" -->` +
		`<section><span wicket:preview=""></span></section>`

	nodes, err := dom.ParseFragment(markup, nil)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	changed := RewriteNodes(nodes, attr, "frag/x.html")
	if changed != 2 {
		t.Errorf("changed = %d, want 2", changed)
	}

	var out string
	for _, n := range nodes {
		s, _ := dom.Render(n)
		out += s
	}
	for _, want := range []string{
		`<div wicket:preview="frag/d.html"></div>`,
		`<div wicket:preview="/abs.html"></div>`,
		`<div wicket:preview="https://example.com/e.html"></div>`,
		`<span wicket:preview="frag/"></span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %s\n%s", want, out)
		}
	}
	if strings.Contains(out, "frag/</p>") || strings.Contains(out, `="frag/ -->`) {
		t.Errorf("text or comment content was rewritten:\n%s", out)
	}

	if n := RewriteNodes(nodes, attr, "plain.html"); n != 0 {
		t.Errorf("no-directory rewrite changed %d attributes", n)
	}
}
