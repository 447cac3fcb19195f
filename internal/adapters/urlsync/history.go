// Package urlsync keeps the shareable location of a rankings session.
package urlsync

import (
	"strings"
	"sync"
)

// History is an in-memory browser-style location. The controller only
// replaces the current entry; Push exists for navigations that should be
// reachable with Back.
type History struct {
	mu       sync.RWMutex
	base     string
	entries  []string
	replaced int
}

// New creates a history whose single entry is query. base is prepended by
// URL, e.g. "https://xcri.example/rankings".
func New(base, query string) *History {
	return &History{base: strings.TrimRight(base, "?"), entries: []string{normalize(query)}}
}

// Replace swaps the current entry for query.
func (h *History) Replace(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1] = normalize(query)
	h.replaced++
}

// Push appends a new entry.
func (h *History) Push(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, normalize(query))
}

// Back drops the current entry and returns the previous one. ok is false on
// the first entry.
func (h *History) Back() (query string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) < 2 {
		return h.entries[0], false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.entries[len(h.entries)-1], true
}

// Current is the query string of the current entry, without "?".
func (h *History) Current() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries[len(h.entries)-1]
}

// URL is base plus the current query.
func (h *History) URL() string {
	q := h.Current()
	if q == "" {
		return h.base
	}
	return h.base + "?" + q
}

// Len is the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// Replacements counts Replace calls.
func (h *History) Replacements() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.replaced
}

func normalize(query string) string {
	return strings.TrimPrefix(query, "?")
}
