// Package behaviour attaches handlers to elements by tag name. A Registry
// is owned by whoever builds it; Apply walks an explicit root so callers can
// re-scan just the part of the tree they changed.
package behaviour

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/dom"
)

// Handler is invoked once per matching element per scan.
type Handler func(ctx context.Context, el *html.Node)

// Rules maps a tag name ("*" for any element) to its handler.
type Rules map[string]Handler

type rule struct {
	tag     string
	handler Handler
}

// Registry holds the rules consulted on every scan.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a handler for tag. Handlers run in registration order.
func (r *Registry) Register(tag string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{tag: strings.ToLower(strings.TrimSpace(tag)), handler: h})
}

// RegisterRules adds every entry of rules.
func (r *Registry) RegisterRules(rules Rules) {
	for tag, h := range rules {
		r.Register(tag, h)
	}
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Apply runs every rule against root and its descendants and returns the
// number of handler invocations. Matching elements are collected before
// any handler runs, so handlers may rewrite the tree freely; elements
// detached by an earlier handler in the same scan are skipped. Handlers
// that start work, such as a preview session's fetches, may finish it
// later; a session applies fetch results in its Run loop.
func (r *Registry) Apply(ctx context.Context, root *html.Node) int {
	if root == nil {
		return 0
	}
	r.mu.RLock()
	rules := make([]rule, len(r.rules))
	copy(rules, r.rules)
	r.mu.RUnlock()

	elements := dom.Elements(root)
	calls := 0
	for _, el := range elements {
		for _, ru := range rules {
			if ctx.Err() != nil {
				return calls
			}
			if ru.tag != "*" && ru.tag != el.Data {
				continue
			}
			if !dom.Contains(root, el) {
				break
			}
			ru.handler(ctx, el)
			calls++
		}
	}
	return calls
}
