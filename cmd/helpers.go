package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/ziadkadry99/fragview/internal/config"
	"github.com/ziadkadry99/fragview/internal/db"
	"github.com/ziadkadry99/fragview/internal/fetch"
	"github.com/ziadkadry99/fragview/internal/journal"
	"github.com/ziadkadry99/fragview/internal/preview"
	"github.com/ziadkadry99/fragview/internal/site"
)

// loadConfig loads and validates the config and installs the logger,
// providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `fragview init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}

	level, _ := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(newLogger(level))
	return cfg, nil
}

// newLogger writes tinted records to stderr, without colour when stderr is
// not a terminal.
func newLogger(level slog.Level) *slog.Logger {
	w := os.Stderr
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	}))
}

// openJournal opens the load journal when journal_path is set. The returned
// close function is never nil.
func openJournal(cfg *config.Config) (*journal.Store, func(), error) {
	if cfg.JournalPath == "" {
		return nil, func() {}, nil
	}
	database, err := db.Open(cfg.JournalPath)
	if err != nil {
		return nil, func() {}, fmt.Errorf("opening journal: %w", err)
	}
	return journal.NewStore(database), func() { database.Close() }, nil
}

// sessionOptions maps the config onto preview options.
func sessionOptions(cfg *config.Config, store *journal.Store) preview.Options {
	opts := preview.Options{
		Attribute: cfg.Attribute,
		Tag:       cfg.Tag,
		Rewrite:   preview.RewriteMode(cfg.Rewrite),
		Rescan:    preview.RescanScope(cfg.Rescan),
		MaxDepth:  cfg.MaxDepth,
		Logger:    slog.Default(),
	}
	if store != nil {
		opts.Recorder = store
	}
	return opts
}

// newHTTPFetcher builds the fetcher used for http(s) references.
func newHTTPFetcher(cfg *config.Config) (*fetch.HTTPFetcher, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return fetch.NewHTTPFetcher(timeout, cfg.MaxFragmentBytes), nil
}

// newExpander builds an expander over the configured site root. Remote
// references are only followed when remote_fetch is on or forceRemote is
// set.
func newExpander(cfg *config.Config, store *journal.Store, forceRemote bool) (*site.Expander, error) {
	var remote fetch.Fetcher
	if cfg.RemoteFetch || forceRemote {
		f, err := newHTTPFetcher(cfg)
		if err != nil {
			return nil, err
		}
		remote = f
	}

	exp := site.NewExpander(os.DirFS(cfg.RootDir), remote, sessionOptions(cfg, store))
	if cfg.MaxFragmentBytes > 0 {
		exp.MaxBytes = cfg.MaxFragmentBytes
	}
	return exp, nil
}
