package model

import "time"

// MoneySelection decides how competing money mentions are reconciled.
// Package-level totals usually dominate itemized figures, so "largest"
// is the default; "nearest" prefers proximity to the delivery anchor.
type MoneySelection string

const (
	SelectLargest MoneySelection = "largest"
	SelectNearest MoneySelection = "nearest"
)

// Config holds all runtime configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" json:"http"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	FX          FXConfig          `yaml:"fx" json:"fx"`
	Money       MoneyConfig       `yaml:"money" json:"money"`
	Engine      EngineConfig      `yaml:"engine" json:"engine"`
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Output      OutputConfig      `yaml:"output" json:"output"`
}

// HTTPConfig controls the document fetcher
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent    string        `yaml:"user_agent" json:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" json:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" json:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty" json:"no_proxy,omitempty"`
}

// CacheConfig controls the fetch cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" json:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" json:"disk_ttl"`
}

// ConcurrencyConfig sizes the row worker pool and fetch rate limits
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" json:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
	Burst             int     `yaml:"burst" json:"burst"`
}

// FXConfig controls currency conversion
type FXConfig struct {
	Reference    string        `yaml:"reference" json:"reference"` // Reference currency, all values normalized into it
	Endpoint     string        `yaml:"endpoint" json:"endpoint"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
	LiveDisabled bool          `yaml:"live_disabled" json:"live_disabled"` // Skip the live refresh, snapshot only
}

// MoneyConfig controls money-mention reconciliation
type MoneyConfig struct {
	Selection MoneySelection `yaml:"selection" json:"selection"`
}

// EngineConfig controls extraction behavior
type EngineConfig struct {
	AnchorWindow int    `yaml:"anchor_window" json:"anchor_window"` // Chars searched around the delivery anchor
	YearMin      int    `yaml:"year_min" json:"year_min"`
	YearMax      int    `yaml:"year_max" json:"year_max"`
	CatalogPath  string `yaml:"catalog_path,omitempty" json:"catalog_path,omitempty"` // Override for the embedded catalog
	LexiconPath  string `yaml:"lexicon_path,omitempty" json:"lexicon_path,omitempty"` // Override for the embedded lexicon
}

// LLMConfig controls the optional query translator
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"` // Empty disables translation
	Model    string `yaml:"model,omitempty" json:"model,omitempty"`
	APIKey   string `yaml:"-" json:"-"`
	BaseURL  string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:      25 * time.Second,
			UserAgent:    "Aidlens/0.1 (+https://github.com/aidlens/aidlens)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".aidlens_cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           8,
			RequestsPerSecond: 1.0,
			Burst:             3,
		},
		FX: FXConfig{
			Reference: "EUR",
			Endpoint:  "https://api.exchangerate.host/latest",
			Timeout:   10 * time.Second,
		},
		Money: MoneyConfig{
			Selection: SelectLargest,
		},
		Engine: EngineConfig{
			AnchorWindow: 200,
			YearMin:      2022,
			YearMax:      2026,
		},
		Output: OutputConfig{},
	}
}
