package fetch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// FileFetcher reads fragments from a filesystem rooted at the site
// directory. References are slash-separated paths relative to that root.
type FileFetcher struct {
	fsys     fs.FS
	maxBytes int64
}

// NewFileFetcher creates a FileFetcher over fsys.
func NewFileFetcher(fsys fs.FS, maxBytes int64) *FileFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &FileFetcher{fsys: fsys, maxBytes: maxBytes}
}

// Fetch reads the file named by ref. A leading slash is accepted and
// refers to the root; query strings and fragments are ignored.
func (f *FileFetcher) Fetch(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, err := cleanFileRef(ref)
	if err != nil {
		return "", err
	}

	file, err := f.fsys.Open(name)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", name, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: is a directory", name)
	}

	body, err := io.ReadAll(io.LimitReader(file, f.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	if int64(len(body)) > f.maxBytes {
		return "", fmt.Errorf("%s: %w", name, ErrTooLarge)
	}
	return string(body), nil
}

// cleanFileRef turns a reference into an fs.FS name.
func cleanFileRef(ref string) (string, error) {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	// path.Clean would quietly clamp "/../x" to "/x"; reject instead.
	if escapes(ref) {
		return "", fmt.Errorf("%s: %w", ref, ErrOutsideRoot)
	}
	name := strings.TrimPrefix(path.Clean("/"+ref), "/")
	if name == "" {
		name = "."
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("%s: %w", ref, ErrOutsideRoot)
	}
	return name, nil
}

// escapes reports whether a relative path climbs above its starting point.
func escapes(p string) bool {
	depth := 0
	for _, seg := range strings.Split(strings.TrimPrefix(p, "/"), "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}
