package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".fragview.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (FRAGVIEW_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: FRAGVIEW_MAX_DEPTH -> max_depth,
	// FRAGVIEW_SERVE.PORT -> serve.port.
	if err := k.Load(env.Provider("FRAGVIEW_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FRAGVIEW_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// Lists from the file replace the defaults instead of being merged
	// into them element by element.
	if k.Exists("include") {
		cfg.Include = nil
	}
	if k.Exists("exclude") {
		cfg.Exclude = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validRewriteModes = map[string]bool{
	RewriteText:       true,
	RewriteStructural: true,
}

var validRescanScopes = map[string]bool{
	RescanSubtree:  true,
	RescanDocument: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Attribute) == "" {
		return fmt.Errorf("attribute is required")
	}
	if strings.ContainsAny(c.Attribute, " \t\"'=<>") {
		return fmt.Errorf("invalid attribute name %q", c.Attribute)
	}
	if strings.TrimSpace(c.Tag) == "" {
		return fmt.Errorf("tag is required")
	}
	if c.RootDir == "" {
		return fmt.Errorf("root_dir is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if !validRewriteModes[c.Rewrite] {
		return fmt.Errorf("invalid rewrite %q: must be one of text, structural", c.Rewrite)
	}
	if !validRescanScopes[c.Rescan] {
		return fmt.Errorf("invalid rescan %q: must be one of subtree, document", c.Rescan)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative")
	}
	if c.MaxFragmentBytes < 0 {
		return fmt.Errorf("max_fragment_bytes must be non-negative")
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d out of range", c.Serve.Port)
	}
	return nil
}

// Timeout parses FetchTimeout. An empty value means no timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.FetchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid fetch_timeout %q: %w", c.FetchTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("fetch_timeout must be non-negative")
	}
	return d, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}
