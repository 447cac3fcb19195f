package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is a process-local Store.
type Memory struct {
	mu     sync.RWMutex
	id     string
	values map[string]string
}

// NewMemory creates an empty in-memory session.
func NewMemory(opts ...Option) *Memory {
	o := options{id: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Memory{id: o.id, values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// SetIfAbsent atomically checks key and records value if it is absent.
func (m *Memory) SetIfAbsent(_ context.Context, key, value string) (string, bool, error) {
	if key == "" {
		return "", false, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.values[key]; ok {
		return v, false, nil
	}
	m.values[key] = value
	return value, true, nil
}

// End clears the session and rotates its id.
func (m *Memory) End(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	m.id = uuid.NewString()
	return nil
}

// ID identifies the current session.
func (m *Memory) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.id
}

// Name reports StoreMemory.
func (m *Memory) Name() string { return StoreMemory }

// Len is the number of stored values.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
