package site

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/ziadkadry99/fragview/internal/dom"
	"github.com/ziadkadry99/fragview/internal/preview"
	"github.com/ziadkadry99/fragview/internal/walker"
)

// Handler serves a site with the fragments of every page expanded per
// request. Non-page files, and pages requested with ?raw=1, are served
// unchanged.
type Handler struct {
	Expander *Expander
	RootDir  string
	Include  []string
	Exclude  []string
	// Inject is markup appended to the body of every expanded page.
	Inject string
	Logger *slog.Logger

	index *template.Template
}

// NewHandler creates a Handler for the site at rootDir.
func NewHandler(exp *Expander, rootDir string, include, exclude []string) *Handler {
	return &Handler{
		Expander: exp,
		RootDir:  rootDir,
		Include:  include,
		Exclude:  exclude,
		index:    template.Must(template.New("index").Parse(indexTemplate)),
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	name := rel
	if name == "" {
		name = "."
	}

	fsys := h.Expander.FS
	info, err := fs.Stat(fsys, name)
	if err != nil || (rel != "" && walker.MatchesExclude(rel, h.Exclude)) {
		http.NotFound(w, r)
		return
	}

	if info.IsDir() {
		index := path.Join(rel, "index.html")
		if _, err := fs.Stat(fsys, index); err != nil {
			h.serveIndex(w, rel)
			return
		}
		rel = index
	}

	if r.URL.Query().Has("raw") || !h.isPage(rel) {
		http.ServeFileFS(w, r, fsys, rel)
		return
	}

	h.servePage(w, r, rel)
}

func (h *Handler) isPage(rel string) bool {
	return len(h.Include) > 0 && walker.MatchesInclude(rel, h.Include)
}

func (h *Handler) servePage(w http.ResponseWriter, r *http.Request, rel string) {
	doc, report, err := h.Expander.ExpandPage(r.Context(), rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.logger().Error("expanding page", "page", rel, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	logReport(h.logger(), report)

	if h.Inject != "" {
		if err := injectBody(doc, h.Inject); err != nil {
			h.logger().Warn("injecting snippet", "page", rel, "error", err)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Fragview-Loaded", strconv.Itoa(report.Count(preview.StatusLoaded)))
	w.Header().Set("X-Fragview-Failed", strconv.Itoa(report.Count(preview.StatusFailed)+report.Count(preview.StatusDepthExceeded)))
	w.Write(buf.Bytes())
}

// serveIndex lists every page of the site, expanding the tree down to dir.
func (h *Handler) serveIndex(w http.ResponseWriter, dir string) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir: h.RootDir,
		Include: h.Include,
		Exclude: h.Exclude,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var paths []string
	titles := make(map[string]string)
	for _, f := range walker.Pages(files) {
		paths = append(paths, f.RelPath)
		if t := pageTitle(h.Expander.FS, f.RelPath); t != "" {
			titles[f.RelPath] = t
		}
	}
	tree := BuildTree(paths, titles)

	data := struct {
		Dir      string
		Root     string
		Count    int
		TreeHTML template.HTML
	}{
		Dir:      "/" + dir,
		Root:     h.RootDir,
		Count:    tree.Count(),
		TreeHTML: template.HTML(tree.ToHTML(dir)),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, data); err != nil {
		h.logger().Error("rendering index", "error", err)
	}
}

// pageTitle returns the text of the page's <title>, if any.
func pageTitle(fsys fs.FS, rel string) string {
	f, err := fsys.Open(rel)
	if err != nil {
		return ""
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return ""
	}
	title := dom.FindFirst(doc, "title")
	if title == nil || title.FirstChild == nil {
		return ""
	}
	return strings.TrimSpace(title.FirstChild.Data)
}

// injectBody appends markup to the document body.
func injectBody(doc *html.Node, markup string) error {
	body := dom.FindFirst(doc, "body")
	if body == nil {
		return errors.New("document has no body")
	}
	nodes, err := dom.ParseFragment(markup, body)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}
	return nil
}
