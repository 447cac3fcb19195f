package session

import "time"

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	id     string
	prefix string
	ttl    time.Duration
}

// WithID fixes the initial session id. A random id is used otherwise.
func WithID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.id = id
		}
	}
}

// WithPrefix sets the key prefix of the Redis store.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithTTL expires an idle Redis session after d. Zero keeps it until End.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.ttl = d
		}
	}
}
