// Package dedupe tracks intent ids so a re-emitted intent is applied at most once.
package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 1024

// Deduper records seen intent ids.
type Deduper interface {
	// SeenAndRecord reports whether id was already recorded, recording it if not.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id, for an intent that was recorded but never queued.
	Unrecord(ctx context.Context, id string)

	Size() int
}

// InMemory keeps the most recent ids in a ring. The oldest id is evicted
// once the ring is full.
type InMemory struct {
	mu   sync.Mutex
	seen map[string]int // id -> ring slot
	ring []string
	next int
}

// NewInMemory creates a bounded deduper.
func NewInMemory(opts ...Option) *InMemory {
	d := &InMemory{ring: make([]string, defaultMaxSize)}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int, len(d.ring))
	return d
}

// SeenAndRecord implements Deduper. Blank ids are never deduplicated.
func (d *InMemory) SeenAndRecord(_ context.Context, id string) bool {
	if id == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if old := d.ring[d.next]; old != "" {
		delete(d.seen, old)
	}
	d.ring[d.next] = id
	d.seen[id] = d.next
	d.next = (d.next + 1) % len(d.ring)
	return false
}

// Unrecord implements Deduper.
func (d *InMemory) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if slot, ok := d.seen[id]; ok {
		delete(d.seen, id)
		d.ring[slot] = ""
	}
}

// Size is the number of remembered ids.
func (d *InMemory) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
