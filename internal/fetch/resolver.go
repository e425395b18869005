package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Resolver resolves references against the location of the document being
// previewed and dispatches them to the HTTP or file fetcher. References are
// relative to the document, exactly as a browser would resolve them.
type Resolver struct {
	base  *url.URL
	http  Fetcher
	files Fetcher
}

// NewResolver creates a Resolver for a document at base, which is either an
// absolute http(s) URL or a slash-separated path inside the site root.
// Either fetcher may be nil, in which case references needing it fail.
func NewResolver(base string, httpFetcher, fileFetcher Fetcher) (*Resolver, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing document base %q: %w", base, err)
	}
	if u.Scheme == "" && !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return &Resolver{base: u, http: httpFetcher, files: fileFetcher}, nil
}

// Resolve returns the absolute location of ref.
func (r *Resolver) Resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return nil, fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	return r.base.ResolveReference(u), nil
}

// Fetch resolves ref and reads it with the matching fetcher.
func (r *Resolver) Fetch(ctx context.Context, ref string) (string, error) {
	abs, err := r.Resolve(ref)
	if err != nil {
		return "", err
	}

	switch abs.Scheme {
	case "http", "https":
		if r.http == nil {
			return "", fmt.Errorf("%s: %w (remote fetching disabled)", abs, ErrUnsupportedScheme)
		}
		return r.http.Fetch(ctx, abs.String())
	case "":
		if abs.Host != "" {
			return "", fmt.Errorf("%s: %w", ref, ErrUnsupportedScheme)
		}
		if r.files == nil {
			return "", fmt.Errorf("%s: no site root to read from", ref)
		}
		return r.files.Fetch(ctx, abs.Path)
	default:
		return "", fmt.Errorf("%s: %w %q", ref, ErrUnsupportedScheme, abs.Scheme)
	}
}
