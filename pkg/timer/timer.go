// Package timer provides cancellable one-shot timers used for debouncing.
//
// Each concern owns its own Timer. Scheduling replaces whatever was pending,
// so the callback of a replaced schedule never runs.
package timer

import (
	"sync"
	"time"
)

// Timer runs at most one pending callback.
type Timer interface {
	// Schedule replaces any pending callback with fn, to run after d.
	// It reports whether a pending callback was replaced.
	Schedule(fn func(), d time.Duration) bool

	// Cancel drops the pending callback, if any, and reports whether one existed.
	Cancel() bool

	// Pending reports whether a callback is waiting to run.
	Pending() bool
}

// Factory creates timers. Production code uses Real; tests use a Manual clock.
type Factory interface {
	NewTimer() Timer
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func() Timer

// NewTimer implements Factory.
func (f FactoryFunc) NewTimer() Timer { return f() }

// Real is a Factory backed by time.AfterFunc.
var Real Factory = FactoryFunc(func() Timer { return &afterFunc{} }) //nolint:gochecknoglobals // stateless factory

type afterFunc struct {
	mu  sync.Mutex
	t   *time.Timer
	gen uint64
}

func (a *afterFunc) Schedule(fn func(), d time.Duration) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	replaced := a.stopLocked()
	a.gen++
	gen := a.gen
	a.t = time.AfterFunc(d, func() {
		a.mu.Lock()
		// A Schedule or Cancel that raced with the fire wins.
		if a.gen != gen || a.t == nil {
			a.mu.Unlock()
			return
		}
		a.t = nil
		a.mu.Unlock()
		fn()
	})
	return replaced
}

func (a *afterFunc) Cancel() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopLocked()
}

func (a *afterFunc) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.t != nil
}

func (a *afterFunc) stopLocked() bool {
	if a.t == nil {
		return false
	}
	a.t.Stop()
	a.t = nil
	a.gen++
	return true
}
