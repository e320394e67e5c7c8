package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete runtime configuration
type Config struct {
	Classifier   ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	Lexicon      LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Tracing      TracingConfig     `yaml:"tracing" mapstructure:"tracing"`
	Server       ServerConfig      `yaml:"server" mapstructure:"server"`
}

// ClassifierConfig selects and tunes the sentence classifier
type ClassifierConfig struct {
	// Provider name: "finbert", "openai", "anthropic", "ollama", "wordlist", "neutral"
	Provider      string        `yaml:"provider" mapstructure:"provider"`
	Model         string        `yaml:"model" mapstructure:"model"`
	APIKey        string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL       string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxInputChars int           `yaml:"max_input_chars" mapstructure:"max_input_chars"`
	BatchSize     int           `yaml:"batch_size" mapstructure:"batch_size"`
	// Strict fails construction when the provider is misconfigured instead of
	// degrading to the neutral classifier
	Strict bool `yaml:"strict" mapstructure:"strict"`
}

// CacheConfig configures classifier result caching
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig throttles classifier requests per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the worker pools
type ConcurrencyConfig struct {
	SentenceWorkers int `yaml:"sentence_workers" mapstructure:"sentence_workers"`
	DocumentWorkers int `yaml:"document_workers" mapstructure:"document_workers"`
}

// HTTPConfig configures fetching of URL sources
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// LexiconConfig points at optional lexicon overrides
type LexiconConfig struct {
	OverridesPath string `yaml:"overrides_path,omitempty" mapstructure:"overrides_path"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose          bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeSentences bool `yaml:"include_sentences" mapstructure:"include_sentences"`
	IncludeFooter    bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// TracingConfig toggles OpenTelemetry spans
type TracingConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			Provider:      "wordlist", // Offline by default
			Timeout:       30 * time.Second,
			MaxInputChars: 2000,
			BatchSize:     16,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskDir:   defaultCacheDir(),
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			SentenceWorkers: 4,
			DocumentWorkers: 4,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "distress/0.1 (+https://github.com/ppiankov/distress)",
			MaxBodyBytes:  10_000_000,
			RespectRobots: true,
		},
		Output: OutputConfig{
			IncludeSentences: true,
			IncludeFooter:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    5_000_000,
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "distress")
	}
	return ".distress-cache"
}
