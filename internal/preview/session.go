// Package preview expands preview fragments: elements whose trigger
// attribute names a piece of markup to fetch and splice in. Inserted markup
// is scanned again, so fragments may include further fragments.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/behaviour"
	"github.com/ziadkadry99/fragview/internal/dom"
	"github.com/ziadkadry99/fragview/internal/fetch"
)

const (
	DefaultAttribute = "wicket:preview"
	DefaultTag       = "div"
	DefaultMaxDepth  = 16
)

// RescanScope selects what is scanned after a fragment is inserted.
type RescanScope string

const (
	// RescanSubtree re-applies behaviours to the element that was filled.
	RescanSubtree RescanScope = "subtree"
	// RescanDocument re-applies behaviours to the whole document.
	RescanDocument RescanScope = "document"
)

var (
	// ErrDepthExceeded is recorded for trigger elements nested deeper than
	// Options.MaxDepth.
	ErrDepthExceeded = errors.New("preview: maximum fragment depth exceeded")
	// ErrSessionAbandoned is returned by Run after an earlier run was
	// cancelled while fetches were still in flight.
	ErrSessionAbandoned = errors.New("preview: session abandoned")
)

// State tracks a trigger element through a session.
type State int

const (
	Unprocessed State = iota
	InFlight
	Processed
	Failed
)

func (s State) String() string {
	switch s {
	case InFlight:
		return "in-flight"
	case Processed:
		return "processed"
	case Failed:
		return "failed"
	default:
		return "unprocessed"
	}
}

// Options configures a Session.
type Options struct {
	Attribute string
	Tag       string
	Rewrite   RewriteMode
	Rescan    RescanScope
	MaxDepth  int // 0 means unlimited
	Page      string
	Logger    *slog.Logger
	Recorder  Recorder
}

func (o Options) withDefaults() Options {
	if o.Attribute == "" {
		o.Attribute = DefaultAttribute
	}
	if o.Tag == "" {
		o.Tag = DefaultTag
	}
	if o.Rewrite == "" {
		o.Rewrite = RewriteText
	}
	if o.Rescan == "" {
		o.Rescan = RescanSubtree
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Session expands the fragments of one document. The document is only
// touched from the goroutine calling Run; fetches run concurrently and
// hand their results back over a channel.
type Session struct {
	reg     *behaviour.Registry
	fetcher fetch.Fetcher
	opts    Options
	log     *slog.Logger

	root      *html.Node
	depths    map[*html.Node]int
	pending   int
	states    map[*html.Node]State
	completed chan *Task
	abandon   chan struct{}
	abandoned bool
	report    Report
}

// NewSession creates a session that fetches through f and re-scans with
// reg. Call Register to install the preview rule.
func NewSession(reg *behaviour.Registry, f fetch.Fetcher, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		reg:       reg,
		fetcher:   f,
		opts:      opts,
		log:       opts.Logger.With("page", opts.Page),
		depths:    make(map[*html.Node]int),
		states:    make(map[*html.Node]State),
		completed: make(chan *Task),
		abandon:   make(chan struct{}),
		report:    Report{Page: opts.Page},
	}
}

// Register installs the preview rule for the configured tag. Applying the
// registry outside Run issues fetches, but their results are applied by
// the next Run.
func (s *Session) Register() {
	s.reg.Register(s.opts.Tag, s.handle)
}

// State returns what the session knows about el.
func (s *Session) State(el *html.Node) State {
	return s.states[el]
}

// handle is the registration rule: elements with a non-empty trigger
// attribute that the session has not seen yet are loaded.
func (s *Session) handle(ctx context.Context, el *html.Node) {
	ref, ok := dom.Attr(el, s.opts.Attribute)
	if !ok || ref == "" {
		return
	}
	if _, seen := s.states[el]; seen {
		return
	}
	if depth := s.depthOf(el); s.opts.MaxDepth > 0 && depth > s.opts.MaxDepth {
		s.states[el] = Failed
		s.log.Warn("fragment not loaded", "url", ref, "depth", depth, "error", ErrDepthExceeded)
		s.record(ctx, Load{
			ID:     uuid.New().String(),
			URL:    ref,
			Depth:  depth,
			Status: StatusDepthExceeded,
			Error:  ErrDepthExceeded.Error(),
		})
		return
	}
	s.Insert(ctx, el, ref)
}

// depthOf is one more than the depth of the nearest filled ancestor of
// el, or 1 for markup that came from no fragment.
func (s *Session) depthOf(el *html.Node) int {
	for n := el.Parent; n != nil; n = n.Parent {
		if d, ok := s.depths[n]; ok {
			return d + 1
		}
	}
	return 1
}

// Insert issues exactly one fetch of ref for el. It must be called from
// the goroutine that runs the session (handlers are); the element is
// updated once Run receives the result, so a fetch issued outside Run
// stays in flight until the next Run.
func (s *Session) Insert(ctx context.Context, el *html.Node, ref string) *Task {
	t := newTask(uuid.New().String(), ref, el, s.depthOf(el))
	s.states[el] = InFlight
	s.pending++
	s.log.Debug("fetching fragment", "url", ref, "depth", t.Depth, "task", t.ID)

	// An issued fetch is never aborted; the session only stops waiting.
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		body, err := s.fetcher.Fetch(fetchCtx, ref)
		t.finish(body, err)
		select {
		case s.completed <- t:
		case <-s.abandon:
		}
	}()
	return t
}

// Run scans root, then applies fetch results one at a time until no fetch
// is pending. Load failures are logged and reported, never returned; the
// only error is the context's.
func (s *Session) Run(ctx context.Context, root *html.Node) (*Report, error) {
	if s.abandoned {
		return nil, ErrSessionAbandoned
	}
	s.root = root
	s.reg.Apply(ctx, root)

	for s.pending > 0 {
		select {
		case t := <-s.completed:
			s.pending--
			s.complete(ctx, t)
		case <-ctx.Done():
			s.abandoned = true
			close(s.abandon)
			report := s.report
			return &report, fmt.Errorf("expanding fragments: %w", ctx.Err())
		}
	}

	report := s.report
	return &report, nil
}

func (s *Session) complete(ctx context.Context, t *Task) {
	el := t.Element
	load := Load{
		ID:       t.ID,
		URL:      t.URL,
		Depth:    t.Depth,
		Duration: t.duration,
	}

	if t.err != nil {
		s.fail(ctx, el, load, t.err)
		return
	}

	if s.root != nil && !dom.Contains(s.root, el) {
		// An enclosing fragment replaced this element while it was loading.
		s.states[el] = Failed
		load.Status = StatusDiscarded
		s.log.Debug("fragment discarded", "url", t.URL, "task", t.ID)
		s.record(ctx, load)
		return
	}

	if err := s.inject(el, t.URL, t.body); err != nil {
		s.fail(ctx, el, load, err)
		return
	}
	dom.RemoveAttr(el, s.opts.Attribute)
	s.states[el] = Processed
	s.depths[el] = t.Depth

	load.Status = StatusLoaded
	load.Bytes = len(t.body)
	s.log.Debug("fragment loaded", "url", t.URL, "bytes", load.Bytes, "duration", t.duration)
	s.record(ctx, load)

	scope := el
	if s.opts.Rescan == RescanDocument && s.root != nil {
		scope = s.root
	}
	s.reg.Apply(ctx, scope)
}

// inject replaces the content of el with the fetched markup.
func (s *Session) inject(el *html.Node, ref, body string) error {
	if s.opts.Rewrite == RewriteStructural {
		nodes, err := dom.ParseFragment(body, el)
		if err != nil {
			return err
		}
		RewriteNodes(nodes, s.opts.Attribute, ref)
		dom.RemoveChildren(el)
		for _, n := range nodes {
			el.AppendChild(n)
		}
		return nil
	}
	return dom.SetInnerHTML(el, RewriteMarkers(body, s.opts.Attribute, ref))
}

func (s *Session) fail(ctx context.Context, el *html.Node, load Load, err error) {
	s.states[el] = Failed
	load.Status = StatusFailed
	load.Error = err.Error()
	s.log.Warn("fragment not loaded", "url", load.URL, "error", err)
	s.record(ctx, load)
}

func (s *Session) record(ctx context.Context, l Load) {
	l.Page = s.opts.Page
	if l.At.IsZero() {
		l.At = time.Now()
	}
	s.report.Loads = append(s.report.Loads, l)
	if s.opts.Recorder == nil {
		return
	}
	if err := s.opts.Recorder.Record(context.WithoutCancel(ctx), l); err != nil {
		s.log.Warn("recording load", "url", l.URL, "error", err)
	}
}

// Expand builds a registry holding only the preview rule and runs a
// session over root.
func Expand(ctx context.Context, root *html.Node, f fetch.Fetcher, opts Options) (*Report, error) {
	reg := behaviour.NewRegistry()
	s := NewSession(reg, f, opts)
	s.Register()
	return s.Run(ctx, root)
}
