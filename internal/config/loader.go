package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix = "RANKINGS_"
	EnvFile   = "RANKINGS_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if RANKINGS_CONFIG is set
//  3. env (prefix RANKINGS_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	// RANKINGS_BASE_URL -> base_url (flat keys, underscores preserved).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if c.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url must be an absolute URL, got %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	}
	if c.FetchLimit <= 0 {
		return fmt.Errorf("%w: fetch_limit must be positive", ErrInvalidConfig)
	}
	if c.KnockoutPageLimit <= 0 || c.MaxKnockoutPages <= 0 {
		return fmt.Errorf("%w: knockout paging must be positive", ErrInvalidConfig)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if c.NetworkDebounceMS < 0 || c.SearchDebounceMS < 0 {
		return fmt.Errorf("%w: debounce windows must not be negative", ErrInvalidConfig)
	}
	if c.SearchDebounceMS >= c.NetworkDebounceMS && c.NetworkDebounceMS > 0 {
		return fmt.Errorf("%w: search_debounce_ms (%d) must be shorter than network_debounce_ms (%d)",
			ErrInvalidConfig, c.SearchDebounceMS, c.NetworkDebounceMS)
	}
	switch c.SessionStore {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis session store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session_store %q", ErrInvalidConfig, c.SessionStore)
	}
	return nil
}
