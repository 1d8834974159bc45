package model

import "time"

// Config is the complete tool configuration
type Config struct {
	HTTP   HTTPConfig   `yaml:"http" json:"http" mapstructure:"http"`
	Source SourceConfig `yaml:"source" json:"source" mapstructure:"source"`
	Cache  CacheConfig  `yaml:"cache" json:"cache" mapstructure:"cache"`
	Batch  BatchConfig  `yaml:"batch" json:"batch" mapstructure:"batch"`
	Store  StoreConfig  `yaml:"store" json:"store" mapstructure:"store"`
	Output OutputConfig `yaml:"output" json:"output" mapstructure:"output"`
}

// HTTPConfig controls the knowledge-source HTTP client
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes" mapstructure:"max_body_bytes"`
	ProxyHTTP    string        `yaml:"proxy_http,omitempty" json:"proxy_http,omitempty" mapstructure:"proxy_http"`
	ProxyHTTPS   string        `yaml:"proxy_https,omitempty" json:"proxy_https,omitempty" mapstructure:"proxy_https"`
}

// SourceConfig identifies the external knowledge source
type SourceConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"` // Wikidata action API endpoint
	Language string `yaml:"language" json:"language" mapstructure:"language"` // Label/description language
}

// CacheConfig controls the resolution cache. Entries never expire within a
// session; PersistDir additionally keeps results across sessions on disk.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	PersistDir string `yaml:"persist_dir,omitempty" json:"persist_dir,omitempty" mapstructure:"persist_dir"`
}

// BatchConfig is the backpressure policy for external lookups: mentions
// resolve in fixed-size batches with a pause between batches. This protects
// the external API's rate limits and is not a tuning knob.
type BatchConfig struct {
	Size              int           `yaml:"size" json:"size" mapstructure:"size"`
	Delay             time.Duration `yaml:"delay" json:"delay" mapstructure:"delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second" json:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" json:"burst" mapstructure:"burst"`
}

// StoreConfig locates the local knowledge-base store
type StoreConfig struct {
	Path string `yaml:"path" json:"path" mapstructure:"path"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "eventkb/0.2 (+https://github.com/mkarpis/eventkb)",
			MaxBodyBytes: 4_000_000,
		},
		Source: SourceConfig{
			Endpoint: "https://www.wikidata.org/w/api.php",
			Language: "en",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Batch: BatchConfig{
			Size:              5,
			Delay:             time.Second,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Store: StoreConfig{
			Path: "~/.eventkb/eventkb.db",
		},
		Output: OutputConfig{},
	}
}
