// Package calcdate caches when the rankings were last calculated.
//
// The timestamp is fetched once per session and kept in the session store.
// It is metadata: a failed fetch is logged and reported as unknown, never
// surfaced as an error.
package calcdate

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/xcri/rankings/internal/adapters/session"
	"github.com/xcri/rankings/pkg/logger"
	"github.com/xcri/rankings/pkg/metrics"
)

// Key is the session key holding the timestamp.
const Key = "latest_calculation"

// Source fetches the latest calculation time from the backend.
type Source interface {
	LatestCalculation(ctx context.Context) (time.Time, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (time.Time, error)

// LatestCalculation calls f.
func (f SourceFunc) LatestCalculation(ctx context.Context) (time.Time, error) { return f(ctx) }

// Cache resolves the latest calculation time through a session store.
type Cache struct {
	src    Source
	store  session.Store
	group  singleflight.Group
	logger logger.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Cache reading from src and storing into store.
func New(src Source, store session.Store, opts ...Option) *Cache {
	c := &Cache{src: src, store: store, logger: logger.Get().Named("calcdate")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Latest returns the cached timestamp, fetching it on first use. Concurrent
// misses share one backend request. ok is false when the time is unknown.
func (c *Cache) Latest(ctx context.Context) (time.Time, bool) {
	if t, ok := c.cached(ctx); ok {
		metrics.RecordSessionCacheHit(c.store.Name())
		return t, true
	}
	metrics.RecordSessionCacheMiss(c.store.Name())

	v, err, _ := c.group.Do(c.store.ID(), func() (any, error) {
		if t, ok := c.cached(ctx); ok {
			return t, nil
		}
		t, err := c.src.LatestCalculation(ctx)
		if err != nil {
			return nil, err
		}
		stored, _, err := c.store.SetIfAbsent(ctx, Key, t.UTC().Format(time.RFC3339Nano))
		if err != nil {
			c.logger.Warn(ctx, "failed to cache latest calculation date", logger.Error(err))
			return t, nil
		}
		if st, perr := time.Parse(time.RFC3339Nano, stored); perr == nil {
			return st, nil
		}
		return t, nil
	})
	if err != nil {
		c.logger.Warn(ctx, "latest calculation date unavailable", logger.Error(err))
		metrics.RecordErrorByComponent("calcdate", "fetch")
		return time.Time{}, false
	}
	return v.(time.Time), true
}

func (c *Cache) cached(ctx context.Context) (time.Time, bool) {
	raw, ok, err := c.store.Get(ctx, Key)
	if err != nil {
		c.logger.Warn(ctx, "session store read failed", logger.String("store", c.store.Name()), logger.Error(err))
		return time.Time{}, false
	}
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		c.logger.Warn(ctx, "discarding unreadable cached date", logger.String("value", raw))
		return time.Time{}, false
	}
	return t, true
}

// End drops the session, so the next Latest fetches again.
func (c *Cache) End(ctx context.Context) error {
	return c.store.End(ctx)
}
