package config

// Config is the top-level fragview configuration, corresponding to .fragview.yml.
type Config struct {
	Attribute        string      `yaml:"attribute" koanf:"attribute"`
	Tag              string      `yaml:"tag" koanf:"tag"`
	RootDir          string      `yaml:"root_dir" koanf:"root_dir"`
	OutputDir        string      `yaml:"output_dir" koanf:"output_dir"`
	Include          []string    `yaml:"include" koanf:"include"`
	Exclude          []string    `yaml:"exclude" koanf:"exclude"`
	Rewrite          string      `yaml:"rewrite" koanf:"rewrite"`
	Rescan           string      `yaml:"rescan" koanf:"rescan"`
	MaxDepth         int         `yaml:"max_depth" koanf:"max_depth"`
	FetchTimeout     string      `yaml:"fetch_timeout" koanf:"fetch_timeout"`
	MaxFragmentBytes int64       `yaml:"max_fragment_bytes" koanf:"max_fragment_bytes"`
	RemoteFetch      bool        `yaml:"remote_fetch" koanf:"remote_fetch"`
	JournalPath      string      `yaml:"journal_path" koanf:"journal_path"`
	MaxConcurrency   int         `yaml:"max_concurrency" koanf:"max_concurrency"`
	LogLevel         string      `yaml:"log_level" koanf:"log_level"`
	Serve            ServeConfig `yaml:"serve" koanf:"serve"`
}

// ServeConfig holds settings for the preview server.
type ServeConfig struct {
	Port       int  `yaml:"port" koanf:"port"`
	LiveReload bool `yaml:"live_reload" koanf:"live_reload"`
	AllowAll   bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}
