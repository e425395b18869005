package behaviour

import (
	"context"
	"testing"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/dom"
)

func TestApplyMatchesTag(t *testing.T) {
	doc, _ := dom.ParseString(`<div id="a"></div><span></span><div id="b"></div>`)

	reg := NewRegistry()
	var seen []string
	reg.Register("div", func(ctx context.Context, el *html.Node) {
		id, _ := dom.Attr(el, "id")
		seen = append(seen, id)
	})

	calls := reg.Apply(context.Background(), doc)
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Errorf("seen = %v, want [a b]", seen)
	}
}

func TestApplyScopedRoot(t *testing.T) {
	doc, _ := dom.ParseString(`<section><div id="in"></div></section><div id="out"></div>`)
	section := dom.FindFirst(doc, "section")

	reg := NewRegistry()
	var seen []string
	reg.Register("DIV", func(ctx context.Context, el *html.Node) {
		id, _ := dom.Attr(el, "id")
		seen = append(seen, id)
	})

	reg.Apply(context.Background(), section)
	if len(seen) != 1 || seen[0] != "in" {
		t.Errorf("seen = %v, want [in]", seen)
	}
}

func TestApplyWildcardAndRules(t *testing.T) {
	doc, _ := dom.ParseString(`<p></p><em></em>`)

	reg := NewRegistry()
	var all, em int
	reg.RegisterRules(Rules{
		"*":  func(ctx context.Context, el *html.Node) { all++ },
		"em": func(ctx context.Context, el *html.Node) { em++ },
	})
	reg.Register("ignored", nil)

	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
	reg.Apply(context.Background(), doc)
	// html, head, body, p, em
	if all != 5 {
		t.Errorf("wildcard calls = %d, want 5", all)
	}
	if em != 1 {
		t.Errorf("em calls = %d, want 1", em)
	}
}

func TestApplyIsRepeatable(t *testing.T) {
	doc, _ := dom.ParseString(`<div data-once="yes"></div>`)

	reg := NewRegistry()
	fired := 0
	reg.Register("div", func(ctx context.Context, el *html.Node) {
		if _, ok := dom.Attr(el, "data-once"); !ok {
			return
		}
		fired++
		dom.RemoveAttr(el, "data-once")
	})

	for i := 0; i < 3; i++ {
		reg.Apply(context.Background(), doc)
	}
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}

func TestApplySkipsDetached(t *testing.T) {
	doc, _ := dom.ParseString(`<div id="outer"><div id="inner"></div></div>`)

	reg := NewRegistry()
	var seen []string
	reg.Register("div", func(ctx context.Context, el *html.Node) {
		id, _ := dom.Attr(el, "id")
		seen = append(seen, id)
		if id == "outer" {
			dom.RemoveChildren(el)
		}
	})

	reg.Apply(context.Background(), doc)
	if len(seen) != 1 || seen[0] != "outer" {
		t.Errorf("seen = %v, want [outer]", seen)
	}
}

func TestApplyNilRoot(t *testing.T) {
	reg := NewRegistry()
	reg.Register("div", func(ctx context.Context, el *html.Node) { t.Error("should not run") })
	if n := reg.Apply(context.Background(), nil); n != 0 {
		t.Errorf("Apply(nil) = %d, want 0", n)
	}
}

func TestApplyStopsOnCancel(t *testing.T) {
	doc, _ := dom.ParseString(`<div></div><div></div>`)
	ctx, cancel := context.WithCancel(context.Background())

	reg := NewRegistry()
	calls := 0
	reg.Register("div", func(ctx context.Context, el *html.Node) {
		calls++
		cancel()
	})

	reg.Apply(ctx, doc)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
