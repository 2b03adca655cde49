package types

import (
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout. Zero means no client-side timeout;
	// callers may still bound a call with a context deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-ingest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// DownloadConfig holds settings for the downloader.
type DownloadConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxRedirects bounds the redirect chain. The default of 1 follows exactly
	// one Location hop and rejects longer chains.
	MaxRedirects int `json:"max_redirects" yaml:"max_redirects" mapstructure:"max_redirects"`
}

// ResolverConfig holds settings for external metadata lookups.
type ResolverConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DOILookup enables CrossRef and Semantic Scholar lookups for DOIs. When
	// false the resolver returns the placeholder record.
	DOILookup bool `json:"doi_lookup" yaml:"doi_lookup" mapstructure:"doi_lookup"`

	// SemanticScholar enables the Semantic Scholar fallback for DOIs.
	SemanticScholar bool `json:"semantic_scholar" yaml:"semantic_scholar" mapstructure:"semantic_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// OpenAlexEmail is sent as the mailto parameter for the OpenAlex polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`

	// MaxRetries is the number of retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// StoreConfig locates the content store.
type StoreConfig struct {
	// DataDir is the application data root. Documents live in DataDir/files.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// FilesDir returns the content-addressed storage root.
func (c StoreConfig) FilesDir() string {
	return filepath.Join(c.DataDir, "files")
}

// ImportConfig groups the settings for the import pipeline.
type ImportConfig struct {
	Download DownloadConfig `json:"download" yaml:"download" mapstructure:"download"`
	Resolve  ResolverConfig `json:"resolve" yaml:"resolve" mapstructure:"resolve"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`

	// Concurrency is the worker pool size for batch imports (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// LogMode selects the logger preset: "development" or "production".
	LogMode string `json:"log_mode" yaml:"log_mode" mapstructure:"log_mode"`
}

const (
	DefaultUserAgent    = "paper-ingest/0.1 (+https://github.com/pdiddy/paper-ingest)"
	DefaultTimeout      = 60 * time.Second
	DefaultMaxRedirects = 1
	DefaultConcurrency  = 4
	DefaultMaxRetries   = 5
)

// DefaultImportConfig returns the configuration used when no file, flag, or
// environment variable overrides a value.
func DefaultImportConfig() ImportConfig {
	httpCfg := HTTPConfig{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent}
	return ImportConfig{
		Download: DownloadConfig{HTTPConfig: httpCfg, MaxRedirects: DefaultMaxRedirects},
		Resolve: ResolverConfig{
			HTTPConfig:      httpCfg,
			DOILookup:       true,
			SemanticScholar: true,
			MaxRetries:      DefaultMaxRetries,
		},
		Store:       StoreConfig{DataDir: "data"},
		Concurrency: DefaultConcurrency,
		LogMode:     "development",
	}
}
