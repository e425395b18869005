package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/config"
	"github.com/ziadkadry99/fragview/internal/dom"
	"github.com/ziadkadry99/fragview/internal/preview"
	"github.com/ziadkadry99/fragview/internal/site"
)

var renderCmd = &cobra.Command{
	Use:   "render <page>",
	Short: "Expand the fragments of one page",
	Long: `Expands every preview fragment of a single page and writes the resulting
document to stdout (or --out). The page is a file inside root_dir or an
http(s) URL; fragments are resolved relative to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringP("out", "o", "", "write the expanded page to this file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, closeJournal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	page := args[0]
	isURL := strings.HasPrefix(page, "http://") || strings.HasPrefix(page, "https://")

	exp, err := newExpander(cfg, store, isURL)
	if err != nil {
		return err
	}

	var (
		doc    *html.Node
		report *preview.Report
	)
	if isURL {
		doc, report, err = renderURL(ctx, cfg, exp, page)
	} else {
		var rel string
		rel, err = pageRel(cfg.RootDir, page)
		if err != nil {
			return err
		}
		doc, report, err = exp.ExpandPage(ctx, rel)
	}
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := html.Render(out, doc); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}

	slog.Info("page rendered",
		"page", report.Page,
		"loaded", report.Count(preview.StatusLoaded),
		"failed", report.Count(preview.StatusFailed)+report.Count(preview.StatusDepthExceeded),
	)
	return nil
}

func renderURL(ctx context.Context, cfg *config.Config, exp *site.Expander, pageURL string) (*html.Node, *preview.Report, error) {
	f, err := newHTTPFetcher(cfg)
	if err != nil {
		return nil, nil, err
	}
	body, err := f.Fetch(ctx, pageURL)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching page: %w", err)
	}
	doc, err := dom.ParseString(body)
	if err != nil {
		return nil, nil, err
	}
	report, err := exp.ExpandDocument(ctx, doc, pageURL)
	return doc, report, err
}

// pageRel returns page as a slash-separated path relative to root. The page
// may be given relative to the working directory or to root itself.
func pageRel(root, page string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	candidate := page
	if !filepath.IsAbs(candidate) {
		if _, err := os.Stat(candidate); err != nil {
			candidate = filepath.Join(absRoot, candidate)
		}
	}
	absPage, err := filepath.Abs(candidate)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absRoot, absPage)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("page %s is outside root_dir %s", page, root)
	}
	return filepath.ToSlash(rel), nil
}
