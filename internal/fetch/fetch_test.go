package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"
)

func TestHTTPFetcher(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		switch r.URL.Path {
		case "/frag.html":
			w.Write([]byte("<p>fragment</p>"))
		case "/big.html":
			w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, 32).WithClient(srv.Client())
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/frag.html")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if body != "<p>fragment</p>" {
		t.Errorf("body = %q", body)
	}
	if gotAccept != PlainText {
		t.Errorf("Accept = %q, want %q", gotAccept, PlainText)
	}

	_, err = f.Fetch(ctx, srv.URL+"/missing.html")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", se.StatusCode)
	}

	if _, err := f.Fetch(ctx, srv.URL+"/big.html"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	fsys := fstest.MapFS{
		"pages/frag/inner.html": {Data: []byte("<span>inner</span>")},
		"pages/index.html":      {Data: []byte("<div></div>")},
	}
	f := NewFileFetcher(fsys, 0)
	ctx := context.Background()

	tests := []struct {
		ref     string
		want    string
		wantErr error
	}{
		{ref: "pages/frag/inner.html", want: "<span>inner</span>"},
		{ref: "/pages/frag/inner.html", want: "<span>inner</span>"},
		{ref: "pages/frag/inner.html?v=2#top", want: "<span>inner</span>"},
		{ref: "pages/./frag/../index.html", want: "<div></div>"},
		{ref: "../secret.txt", wantErr: ErrOutsideRoot},
		{ref: "pages/../../secret.txt", wantErr: ErrOutsideRoot},
	}
	for _, tt := range tests {
		got, err := f.Fetch(ctx, tt.ref)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch(%q) err = %v, want %v", tt.ref, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("Fetch(%q): %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Fetch(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}

	if _, err := f.Fetch(ctx, "pages/missing.html"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := f.Fetch(ctx, "pages/frag"); err == nil {
		t.Error("expected error for directory")
	}
}

func TestResolverDispatch(t *testing.T) {
	var httpRefs, fileRefs []string
	httpF := FetcherFunc(func(ctx context.Context, ref string) (string, error) {
		httpRefs = append(httpRefs, ref)
		return "remote", nil
	})
	fileF := FetcherFunc(func(ctx context.Context, ref string) (string, error) {
		fileRefs = append(fileRefs, ref)
		return "local", nil
	})

	r, err := NewResolver("pages/index.html", httpF, fileF)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	ctx := context.Background()

	if got, _ := r.Fetch(ctx, "frag/inner.html"); got != "local" {
		t.Errorf("relative ref = %q, want local", got)
	}
	if got, _ := r.Fetch(ctx, "/shared/nav.html"); got != "local" {
		t.Errorf("rooted ref = %q, want local", got)
	}
	if got, _ := r.Fetch(ctx, "https://example.com/x.html"); got != "remote" {
		t.Errorf("absolute ref = %q, want remote", got)
	}
	if _, err := r.Fetch(ctx, "ftp://example.com/x.html"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("ftp ref err = %v, want ErrUnsupportedScheme", err)
	}

	wantFiles := []string{"/pages/frag/inner.html", "/shared/nav.html"}
	if strings.Join(fileRefs, ",") != strings.Join(wantFiles, ",") {
		t.Errorf("file refs = %v, want %v", fileRefs, wantFiles)
	}
	if len(httpRefs) != 1 || httpRefs[0] != "https://example.com/x.html" {
		t.Errorf("http refs = %v", httpRefs)
	}
}

func TestResolverHTTPBase(t *testing.T) {
	var got string
	httpF := FetcherFunc(func(ctx context.Context, ref string) (string, error) {
		got = ref
		return "", nil
	})
	r, err := NewResolver("http://example.com/site/page.html", httpF, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if _, err := r.Fetch(context.Background(), "frag/a.html"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "http://example.com/site/frag/a.html" {
		t.Errorf("resolved = %q", got)
	}
}

func TestResolverMissingFetchers(t *testing.T) {
	r, _ := NewResolver("index.html", nil, nil)
	ctx := context.Background()
	if _, err := r.Fetch(ctx, "http://example.com/a.html"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("expected ErrUnsupportedScheme, got %v", err)
	}
	if _, err := r.Fetch(ctx, "a.html"); err == nil {
		t.Error("expected error without file fetcher")
	}
}
