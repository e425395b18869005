// Package fetch reads preview fragments over HTTP or from a site directory.
package fetch

import (
	"context"
	"errors"
	"fmt"
)

// PlainText is the only representation fragments are requested in.
const PlainText = "text/plain"

// DefaultMaxBytes caps a single fragment body (4 MB).
const DefaultMaxBytes int64 = 4 << 20

// Fetcher reads the fragment identified by ref.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, ref string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

var (
	// ErrOutsideRoot is returned when a reference escapes the site root.
	ErrOutsideRoot = errors.New("fetch: reference escapes site root")
	// ErrTooLarge is returned when a body exceeds the configured limit.
	ErrTooLarge = errors.New("fetch: fragment too large")
	// ErrUnsupportedScheme is returned for references that are neither
	// http(s) nor local paths.
	ErrUnsupportedScheme = errors.New("fetch: unsupported scheme")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}
