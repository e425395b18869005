package livereload

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of events, such as an editor writing a
// temp file and renaming it, into one callback.
const DefaultDebounce = 200 * time.Millisecond

var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*~",
	"**/.DS_Store",
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	RootDir  string
	Ignore   []string // doublestar patterns relative to RootDir
	SkipDirs []string // absolute or relative directories never watched
	Debounce time.Duration
	// OnChange receives the changed paths, relative to RootDir.
	OnChange func(changed []string)
	Logger   *slog.Logger
}

// Watcher watches a directory tree and calls OnChange after changes settle.
type Watcher struct {
	cfg      WatcherConfig
	fsw      *fsnotify.Watcher
	root     string
	skip     map[string]bool
	ignores  []string
	debounce time.Duration
	log      *slog.Logger
}

// NewWatcher registers every directory under cfg.RootDir.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("livereload: resolve root: %w", err)
	}

	for _, pat := range cfg.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("livereload: invalid ignore pattern %q", pat)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("livereload: create watcher: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		root:     root,
		skip:     make(map[string]bool),
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: cfg.Debounce,
		log:      cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	for _, d := range cfg.SkipDirs {
		if abs, err := filepath.Abs(d); err == nil {
			w.skip[abs] = true
		}
	}

	if err := w.addDirectories(w.root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()
		if len(changed) == 0 {
			return
		}
		w.log.Debug("site changed", "paths", changed)
		if w.cfg.OnChange != nil {
			w.cfg.OnChange(changed)
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("livereload: event channel closed")
			}
			if evt.Op == fsnotify.Chmod {
				continue
			}
			if w.skip[evt.Name] {
				continue
			}

			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil || w.isIgnored(rel) {
				continue
			}

			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addDirectories(evt.Name); err != nil {
						w.log.Warn("watching new directory", "path", evt.Name, "error", err)
					}
				}
			}

			mu.Lock()
			pending[filepath.ToSlash(rel)] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("livereload: error channel closed")
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) addDirectories(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.skip[path] {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			return nil
		}
		if rel != "." && (w.isIgnored(rel) || w.isIgnored(rel+"/")) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("livereload: watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) isIgnored(rel string) bool {
	normalized := filepath.ToSlash(rel)
	for _, pat := range w.ignores {
		if matched, err := doublestar.Match(pat, normalized); err == nil && matched {
			return true
		}
	}
	return false
}
