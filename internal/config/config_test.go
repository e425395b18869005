package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Attribute != "wicket:preview" {
		t.Errorf("expected default attribute %q, got %q", "wicket:preview", cfg.Attribute)
	}
	if cfg.Tag != "div" {
		t.Errorf("expected default tag %q, got %q", "div", cfg.Tag)
	}
	if cfg.Rewrite != RewriteText {
		t.Errorf("expected default rewrite %q, got %q", RewriteText, cfg.Rewrite)
	}
	if cfg.Rescan != RescanSubtree {
		t.Errorf("expected default rescan %q, got %q", RescanSubtree, cfg.Rescan)
	}
	if cfg.MaxDepth != 16 {
		t.Errorf("expected default max_depth 16, got %d", cfg.MaxDepth)
	}
	if cfg.Serve.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Serve.Port)
	}
}

func TestDefaultConfigDoesNotShareSlices(t *testing.T) {
	a := DefaultConfig()
	a.Include[0] = "changed"
	b := DefaultConfig()
	if b.Include[0] == "changed" {
		t.Error("DefaultConfig returned a shared include slice")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.fragview.yml")

	original := DefaultConfig()
	original.Attribute = "data-preview"
	original.Tag = "section"
	original.RootDir = "templates"
	original.Rewrite = RewriteStructural
	original.Rescan = RescanDocument
	original.Include = []string{"**/*.html", "pages/*.xhtml"}
	original.MaxDepth = 4
	original.FetchTimeout = "3s"
	original.Serve.Port = 9000
	original.Serve.LiveReload = false

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Attribute != original.Attribute {
		t.Errorf("attribute: got %q, want %q", loaded.Attribute, original.Attribute)
	}
	if loaded.Tag != original.Tag {
		t.Errorf("tag: got %q, want %q", loaded.Tag, original.Tag)
	}
	if loaded.RootDir != original.RootDir {
		t.Errorf("root_dir: got %q, want %q", loaded.RootDir, original.RootDir)
	}
	if loaded.Rewrite != original.Rewrite {
		t.Errorf("rewrite: got %q, want %q", loaded.Rewrite, original.Rewrite)
	}
	if loaded.Rescan != original.Rescan {
		t.Errorf("rescan: got %q, want %q", loaded.Rescan, original.Rescan)
	}
	if loaded.MaxDepth != original.MaxDepth {
		t.Errorf("max_depth: got %d, want %d", loaded.MaxDepth, original.MaxDepth)
	}
	if loaded.Serve.Port != 9000 || loaded.Serve.LiveReload {
		t.Errorf("serve: got %+v", loaded.Serve)
	}
	if len(loaded.Include) != len(original.Include) {
		t.Fatalf("include length: got %d, want %d", len(loaded.Include), len(original.Include))
	}
	for i, v := range loaded.Include {
		if v != original.Include[i] {
			t.Errorf("include[%d]: got %q, want %q", i, v, original.Include[i])
		}
	}
	if d, _ := loaded.Timeout(); d != 3*time.Second {
		t.Errorf("timeout: got %v, want 3s", d)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Attribute != "wicket:preview" {
		t.Errorf("expected default attribute, got %q", cfg.Attribute)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("FRAGVIEW_ATTRIBUTE", "data-include")
	t.Setenv("FRAGVIEW_MAX_DEPTH", "2")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Attribute != "data-include" {
		t.Errorf("env override failed: got %q, want %q", loaded.Attribute, "data-include")
	}
	if loaded.MaxDepth != 2 {
		t.Errorf("env override failed: got max_depth %d, want 2", loaded.MaxDepth)
	}
}

func TestLoadReplacesLists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lists.yml")
	if err := os.WriteFile(path, []byte("exclude:\n  - drafts/**\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "drafts/**" {
		t.Errorf("exclude = %v, want [drafts/**]", cfg.Exclude)
	}
	if len(cfg.Include) != len(DefaultInclude) {
		t.Errorf("include = %v, want defaults", cfg.Include)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("attribute: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty attribute", func(c *Config) { c.Attribute = " " }, true},
		{"attribute with quote", func(c *Config) { c.Attribute = `a"b` }, true},
		{"empty tag", func(c *Config) { c.Tag = "" }, true},
		{"empty root", func(c *Config) { c.RootDir = "" }, true},
		{"empty output", func(c *Config) { c.OutputDir = "" }, true},
		{"bad rewrite", func(c *Config) { c.Rewrite = "regex" }, true},
		{"bad rescan", func(c *Config) { c.Rescan = "page" }, true},
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, true},
		{"unlimited depth", func(c *Config) { c.MaxDepth = 0 }, false},
		{"negative bytes", func(c *Config) { c.MaxFragmentBytes = -1 }, true},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, true},
		{"bad timeout", func(c *Config) { c.FetchTimeout = "soon" }, true},
		{"negative timeout", func(c *Config) { c.FetchTimeout = "-1s" }, true},
		{"no timeout", func(c *Config) { c.FetchTimeout = "" }, false},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad port", func(c *Config) { c.Serve.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	lvl, err := cfg.Level()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("Level() = (%v, %v), want debug", lvl, err)
	}
	cfg.LogLevel = ""
	if lvl, _ := cfg.Level(); lvl != slog.LevelInfo {
		t.Errorf("empty level = %v, want info", lvl)
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"**/*.html", []string{"**/*.html"}},
		{"", nil},
		{"  ,  , ", nil},
	}
	for _, tt := range tests {
		got := splitAndTrim(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("splitAndTrim(%q) len = %d, want %d", tt.input, len(got), len(tt.want))
			continue
		}
		for i, v := range got {
			if v != tt.want[i] {
				t.Errorf("splitAndTrim(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
			}
		}
	}
}
