package site

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/dom"
	"github.com/ziadkadry99/fragview/internal/fetch"
	"github.com/ziadkadry99/fragview/internal/preview"
)

// Expander expands the preview fragments of pages living under a site root.
// Local references are read from FS; absolute http(s) references go through
// Remote, which may be nil to disable remote fetching.
type Expander struct {
	FS       fs.FS
	Remote   fetch.Fetcher
	MaxBytes int64
	Options  preview.Options
}

// NewExpander creates an Expander over fsys.
func NewExpander(fsys fs.FS, remote fetch.Fetcher, opts preview.Options) *Expander {
	return &Expander{
		FS:       fsys,
		Remote:   remote,
		MaxBytes: fetch.DefaultMaxBytes,
		Options:  opts,
	}
}

// ExpandPage parses the page at rel (slash-separated, relative to the site
// root) and expands its fragments.
func (e *Expander) ExpandPage(ctx context.Context, rel string) (*html.Node, *preview.Report, error) {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")

	f, err := e.FS.Open(rel)
	if err != nil {
		return nil, nil, fmt.Errorf("opening page %s: %w", rel, err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing page %s: %w", rel, err)
	}

	report, err := e.ExpandDocument(ctx, doc, rel)
	return doc, report, err
}

// ExpandDocument expands the fragments of an already parsed document whose
// location is base: a path inside the site root or an http(s) URL.
func (e *Expander) ExpandDocument(ctx context.Context, doc *html.Node, base string) (*preview.Report, error) {
	var files fetch.Fetcher
	if e.FS != nil {
		files = fetch.NewFileFetcher(e.FS, e.MaxBytes)
	}

	resolver, err := fetch.NewResolver(base, e.Remote, files)
	if err != nil {
		return nil, err
	}

	opts := e.Options
	opts.Page = base
	return preview.Expand(ctx, doc, resolver, opts)
}

// Render expands the page at rel and writes the resulting document to w.
func (e *Expander) Render(ctx context.Context, rel string, w io.Writer) (*preview.Report, error) {
	doc, report, err := e.ExpandPage(ctx, rel)
	if err != nil {
		return report, err
	}
	if err := html.Render(w, doc); err != nil {
		return report, fmt.Errorf("rendering %s: %w", rel, err)
	}
	return report, nil
}

// logReport summarizes the loads of one page.
func logReport(log *slog.Logger, r *preview.Report) {
	if r == nil {
		return
	}
	failed := r.Count(preview.StatusFailed) + r.Count(preview.StatusDepthExceeded)
	attrs := []any{
		"page", r.Page,
		"loaded", r.Count(preview.StatusLoaded),
		"failed", failed,
	}
	if failed > 0 {
		log.Warn("page expanded with failures", attrs...)
		return
	}
	log.Debug("page expanded", attrs...)
}
