// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrCookieRequired is returned when SEAART_COOKIE is not set.
	ErrCookieRequired = errors.New("config: SEAART_COOKIE is required")
	// ErrGagaCookieRequired is returned when the gaga provider is selected
	// without GAGA_COOKIE.
	ErrGagaCookieRequired = errors.New("config: GAGA_COOKIE is required when PROVIDER=gaga")
	// ErrUnknownProvider is returned for a PROVIDER value other than seaart or gaga.
	ErrUnknownProvider = errors.New("config: PROVIDER must be seaart or gaga")
)

// Config holds all configuration for the application.
// It is immutable after Load; use Store.Reload to pick up changes.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Vendor selection and credentials
	Provider      string `env:"PROVIDER, default=seaart" json:"provider"`
	SeaArtCookie  string `env:"SEAART_COOKIE" json:"-"` // Masked in JSON
	SeaArtBaseURL string `env:"SEAART_BASE_URL, default=https://www.haiyi.art" json:"seaart_base_url"`
	GagaCookie    string `env:"GAGA_COOKIE" json:"-"` // Masked in JSON
	GagaBaseURL   string `env:"GAGA_BASE_URL, default=https://gaga.art" json:"gaga_base_url"`

	// Orchestration budgets
	TimeoutSeconds      int `env:"TIMEOUT_SECONDS, default=30" json:"timeout_seconds"`
	MaxWaitSeconds      int `env:"MAX_WAIT_SECONDS, default=300" json:"max_wait_seconds"`
	PollIntervalSeconds int `env:"POLL_INTERVAL_SECONDS, default=3" json:"poll_interval_seconds"`
	MaxAssetsPerTask    int `env:"MAX_ASSETS_PER_TASK, default=4" json:"max_assets_per_task"`

	// Fallback placeholder dimensions
	PlaceholderWidth  int `env:"PLACEHOLDER_WIDTH, default=256" json:"placeholder_width"`
	PlaceholderHeight int `env:"PLACEHOLDER_HEIGHT, default=256" json:"placeholder_height"`

	// Quota probe settings
	QuotaCacheTTLSeconds int `env:"QUOTA_CACHE_TTL_SECONDS, default=30" json:"quota_cache_ttl_seconds"`

	// Asset archival settings
	ArchiveDir         string `env:"ARCHIVE_DIR" json:"archive_dir,omitempty"`
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// CallTimeout returns the per-request timeout budget.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxWait returns the overall wall-clock budget for a polling loop.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSeconds) * time.Second
}

// PollInterval returns the fixed wait between consecutive status queries.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// QuotaCacheTTL returns how long a quota snapshot stays fresh.
func (c *Config) QuotaCacheTTL() time.Duration {
	return time.Duration(c.QuotaCacheTTLSeconds) * time.Second
}

// S3Enabled returns true if S3 archival configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// ArchiveEnabled returns true if collected assets should be archived.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveDir != "" || c.S3Enabled()
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
// A missing credential is fatal before any network call happens.
func (c *Config) Validate() error {
	switch c.Provider {
	case "seaart":
		if c.SeaArtCookie == "" {
			return ErrCookieRequired
		}
	case "gaga":
		if c.GagaCookie == "" {
			return ErrGagaCookieRequired
		}
	default:
		return ErrUnknownProvider
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, Provider: %s, SeaArtBaseURL: %s, GagaBaseURL: %s, TimeoutSeconds: %d, MaxWaitSeconds: %d, PollIntervalSeconds: %d, MaxAssetsPerTask: %d, ArchiveDir: %s, S3Bucket: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.Provider,
		c.SeaArtBaseURL,
		c.GagaBaseURL,
		c.TimeoutSeconds,
		c.MaxWaitSeconds,
		c.PollIntervalSeconds,
		c.MaxAssetsPerTask,
		c.ArchiveDir,
		c.S3Bucket,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Store holds the current configuration snapshot and supports explicit
// reloads. The snapshot is never mutated in place; Reload swaps it so
// in-flight invocations keep the values they started with.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore creates a Store seeded with an already-loaded configuration.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Current returns the active configuration snapshot.
func (s *Store) Current() *Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Reload re-reads configuration from the environment and swaps the snapshot.
// On error, the previous snapshot stays active.
func (s *Store) Reload() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return cfg, nil
}
