package config

// Rewrite modes.
const (
	RewriteText       = "text"
	RewriteStructural = "structural"
)

// Rescan scopes.
const (
	RescanSubtree  = "subtree"
	RescanDocument = "document"
)

// DefaultInclude selects the pages that are expanded.
var DefaultInclude = []string{"**/*.html", "**/*.htm"}

// DefaultExcludes are glob patterns skipped entirely: neither expanded,
// copied, served nor watched.
var DefaultExcludes = []string{
	".git/**",
	"node_modules/**",
	"vendor/**",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Attribute:        "wicket:preview",
		Tag:              "div",
		RootDir:          ".",
		OutputDir:        "preview",
		Include:          append([]string(nil), DefaultInclude...),
		Exclude:          append([]string(nil), DefaultExcludes...),
		Rewrite:          RewriteText,
		Rescan:           RescanSubtree,
		MaxDepth:         16,
		FetchTimeout:     "10s",
		MaxFragmentBytes: 4 << 20,
		RemoteFetch:      true,
		MaxConcurrency:   4,
		LogLevel:         "info",
		Serve: ServeConfig{
			Port:       8080,
			LiveReload: true,
		},
	}
}
