// Package config defines client configuration structures and loading hooks.
//
// Conventions:
//   - Provide New(ctx) to build a Config with defaults.
//   - Load layers a YAML file and environment variables on top of New.
//   - External errors are wrapped with this package's sentinels.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches log output to JSON lines.
	LogJSON bool `koanf:"log_json"`

	// BaseURL is the root of the ranking backend API, e.g. "http://localhost:8000".
	BaseURL string `koanf:"base_url"`

	// RequestTimeoutMS bounds a single backend request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// MaxRetries bounds retries of transient backend failures. Zero disables retries.
	MaxRetries int `koanf:"max_retries"`

	// SeasonYear is the live season queried when not in historical mode.
	SeasonYear int `koanf:"season_year"`

	// FetchLimit is the page size requested from list endpoints. The whole
	// filtered set is pulled once and paginated client-side.
	FetchLimit int `koanf:"fetch_limit"`

	// PageSize is the number of rows rendered per page.
	PageSize int `koanf:"page_size"`

	// KnockoutPageLimit is the server ceiling for /team-knockout/ pages.
	KnockoutPageLimit int `koanf:"knockout_page_limit"`

	// MaxKnockoutPages bounds how many knockout pages one fetch may pull.
	MaxKnockoutPages int `koanf:"max_knockout_pages"`

	// NetworkDebounceMS delays list fetches after filter changes.
	NetworkDebounceMS int `koanf:"network_debounce_ms"`

	// SearchDebounceMS delays re-materialization after search edits. Must be
	// shorter than NetworkDebounceMS.
	SearchDebounceMS int `koanf:"search_debounce_ms"`

	// QueueSize bounds the in-memory intent queue.
	QueueSize int `koanf:"queue_size"`

	// SessionStore selects the session cache backend: memory or redis.
	SessionStore string `koanf:"session_store"`

	// RedisAddr is used when SessionStore is redis.
	RedisAddr string `koanf:"redis_addr"`

	// RedisPrefix namespaces session keys in Redis.
	RedisPrefix string `koanf:"redis_prefix"`

	// MetricsAddr, when set, serves Prometheus metrics, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`
}

// New creates a Config populated with defaults. Context is accepted first to
// satisfy the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		BaseURL:           "http://localhost:8000",
		RequestTimeoutMS:  15_000,
		MaxRetries:        2,
		SeasonYear:        2025,
		FetchLimit:        50_000,
		PageSize:          100,
		KnockoutPageLimit: 500,
		MaxKnockoutPages:  20,
		NetworkDebounceMS: 300,
		SearchDebounceMS:  150,
		QueueSize:         256,
		SessionStore:      "memory",
		RedisAddr:         "localhost:6379",
		RedisPrefix:       "xcri:session",
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// NetworkDebounce returns NetworkDebounceMS as a duration.
func (c *Config) NetworkDebounce() time.Duration {
	return time.Duration(c.NetworkDebounceMS) * time.Millisecond
}

// SearchDebounce returns SearchDebounceMS as a duration.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}
