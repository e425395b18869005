package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/fragview/internal/preview"
	"github.com/ziadkadry99/fragview/internal/progress"
	"github.com/ziadkadry99/fragview/internal/walker"
)

// Builder writes an expanded copy of a site to an output directory.
type Builder struct {
	Expander    *Expander
	RootDir     string
	OutputDir   string
	Include     []string
	Exclude     []string
	Concurrency int
	Reporter    progress.Reporter
	Logger      *slog.Logger
}

// BuildResult summarizes a build.
type BuildResult struct {
	Pages   int
	Assets  int
	Loaded  int
	Failed  int
	Reports []*preview.Report
}

// Build expands every page under RootDir and copies every other file.
// A fragment that fails to load never fails the build; I/O errors on
// the output side do.
func (b *Builder) Build(ctx context.Context) (*BuildResult, error) {
	log := b.Logger
	if log == nil {
		log = slog.Default()
	}
	reporter := b.Reporter
	if reporter == nil {
		reporter = progress.Nop{}
	}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:  b.RootDir,
		Include:  b.Include,
		Exclude:  b.Exclude,
		SkipDirs: []string{b.OutputDir},
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	result := &BuildResult{}
	pages := walker.Pages(files)

	for _, f := range files {
		if f.IsPage {
			continue
		}
		if err := copyFile(f.Path, b.outPath(f.RelPath)); err != nil {
			return nil, fmt.Errorf("copying %s: %w", f.RelPath, err)
		}
		result.Assets++
	}

	reporter.Start(len(pages))
	defer reporter.Finish()

	limit := b.Concurrency
	if limit <= 0 {
		limit = 1
	}

	var (
		mu   sync.Mutex
		done int
	)
	reports := make([]*preview.Report, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, report, err := b.Expander.ExpandPage(gctx, page.RelPath)
			if err != nil {
				return err
			}
			if err := writeDocument(b.outPath(page.RelPath), doc); err != nil {
				return fmt.Errorf("writing %s: %w", page.RelPath, err)
			}
			logReport(log, report)
			reports[i] = report

			mu.Lock()
			done++
			reporter.Update(done, page.RelPath)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range reports {
		result.Pages++
		result.Loaded += r.Count(preview.StatusLoaded)
		result.Failed += r.Count(preview.StatusFailed) + r.Count(preview.StatusDepthExceeded)
	}
	result.Reports = reports

	log.Info("build complete",
		"pages", result.Pages,
		"assets", result.Assets,
		"loaded", result.Loaded,
		"failed", result.Failed,
		"output", b.OutputDir,
	)
	return result, nil
}

func (b *Builder) outPath(rel string) string {
	return filepath.Join(b.OutputDir, filepath.FromSlash(rel))
}

func writeDocument(dst string, doc *html.Node) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := html.Render(out, doc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
