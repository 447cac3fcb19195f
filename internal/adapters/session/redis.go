package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "xcri:session"

// Redis keeps a session as one hash, so End is a single DEL and values can
// be shared by several processes that agree on the session id.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration

	mu sync.RWMutex
	id string
}

// NewRedis creates a session store on client.
func NewRedis(client redis.Cmdable, opts ...Option) *Redis {
	o := options{id: uuid.NewString(), prefix: defaultPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	return &Redis{client: client, prefix: o.prefix, ttl: o.ttl, id: o.id}
}

func (r *Redis) hashKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefix + ":" + r.id
}

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	v, err := r.client.HGet(ctx, r.hashKey(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session get %q: %w", key, err)
	}
	return v, true, nil
}

// SetIfAbsent stores value with HSETNX. A losing writer reads the winner's value.
func (r *Redis) SetIfAbsent(ctx context.Context, key, value string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	hk := r.hashKey()
	set, err := r.client.HSetNX(ctx, hk, key, value).Result()
	if err != nil {
		return "", false, fmt.Errorf("session set %q: %w", key, err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, hk, r.ttl).Err(); err != nil {
			return "", false, fmt.Errorf("session expire: %w", err)
		}
	}
	if set {
		return value, true, nil
	}
	stored, ok, err := r.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if !ok {
		// Expired or ended between the two commands.
		return value, false, nil
	}
	return stored, false, nil
}

// End deletes the session hash and rotates the id.
func (r *Redis) End(ctx context.Context) error {
	hk := r.hashKey()
	if err := r.client.Del(ctx, hk).Err(); err != nil {
		return fmt.Errorf("session end: %w", err)
	}
	r.mu.Lock()
	r.id = uuid.NewString()
	r.mu.Unlock()
	return nil
}

// ID identifies the current session.
func (r *Redis) ID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

// Name reports StoreRedis.
func (r *Redis) Name() string { return StoreRedis }
