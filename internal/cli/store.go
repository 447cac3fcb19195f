package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/xcri/rankings/internal/adapters/session"
	"github.com/xcri/rankings/pkg/logger"
)

// sessionStore returns the injected store or builds the configured one. The
// returned function releases the connection of a Redis store.
func (a *App) sessionStore(ctx context.Context) (session.Store, func(), error) {
	if a.store != nil {
		return a.store, func() {}, nil
	}
	switch a.cfg.SessionStore {
	case session.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis session store at %s: %w", a.cfg.RedisAddr, err)
		}
		a.logger.Debug(ctx, "using redis session store", logger.String("addr", a.cfg.RedisAddr))
		return session.NewRedis(client, session.WithPrefix(a.cfg.RedisPrefix)), func() {
			if err := client.Close(); err != nil {
				a.logger.Warn(ctx, "closing redis client failed", logger.Error(err))
			}
		}, nil
	default:
		return session.NewMemory(), func() {}, nil
	}
}
