// Package session holds values that live for one user session.
//
// A Store is write-once per key: the first writer wins and later writers get
// the stored value back. Values never expire on their own; End drops the whole
// session and starts a new one.
package session

import (
	"context"
	"errors"
)

// Store names reported in metrics and logs.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrEmptyKey is returned when a key is blank.
var ErrEmptyKey = errors.New("session: empty key")

// Store is a session-scoped key/value store.
type Store interface {
	// Get returns the value stored under key. ok is false when absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// SetIfAbsent stores value unless key already holds one. It returns the
	// value held after the call and whether this call stored it.
	SetIfAbsent(ctx context.Context, key, value string) (stored string, set bool, err error)

	// End drops every value of the current session and starts a new one.
	End(ctx context.Context) error

	// ID identifies the current session.
	ID() string

	// Name is the store implementation, for metrics.
	Name() string
}
