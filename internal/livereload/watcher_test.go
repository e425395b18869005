package livereload

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg WatcherConfig) <-chan []string {
	t.Helper()
	changes := make(chan []string, 8)
	cfg.Debounce = 20 * time.Millisecond
	cfg.OnChange = func(changed []string) { changes <- changed }

	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return changes
}

func waitChange(t *testing.T, changes <-chan []string) []string {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
		return nil
	}
}

func TestWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "frag"), 0o755); err != nil {
		t.Fatal(err)
	}
	changes := startWatcher(t, WatcherConfig{RootDir: dir})

	if err := os.WriteFile(filepath.Join(dir, "frag", "nav.html"), []byte("<ul></ul>"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := waitChange(t, changes)
	if !slices.Contains(changed, "frag/nav.html") {
		t.Errorf("changed = %v, want frag/nav.html", changed)
	}
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	changes := startWatcher(t, WatcherConfig{RootDir: dir})

	sub := filepath.Join(dir, "blog")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changes)

	if err := os.WriteFile(filepath.Join(sub, "post.html"), []byte("<p>x</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	for {
		changed := waitChange(t, changes)
		if slices.Contains(changed, "blog/post.html") {
			return
		}
	}
}

func TestWatcherSkipsIgnoredAndOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "preview")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	changes := startWatcher(t, WatcherConfig{
		RootDir:  dir,
		Ignore:   []string{"**/*.tmp"},
		SkipDirs: []string{out},
	})

	os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644)

	changed := waitChange(t, changes)
	if !slices.Equal(changed, []string{"index.html"}) {
		t.Errorf("changed = %v, want [index.html]", changed)
	}
}

func TestNewWatcherRejectsBadPattern(t *testing.T) {
	if _, err := NewWatcher(WatcherConfig{RootDir: t.TempDir(), Ignore: []string{"[unclosed"}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
