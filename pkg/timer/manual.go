package timer

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic clock for tests. Timers created from it only fire
// when Advance moves the clock past their deadline.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

// NewManual returns a Manual clock at zero.
func NewManual() *Manual {
	return &Manual{}
}

// NewTimer implements Factory.
func (m *Manual) NewTimer() Timer {
	t := &manualTimer{clock: m}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

// Now returns the elapsed manual time.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward and runs every callback whose deadline was
// reached, in deadline order. Callbacks run on the caller's goroutine.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var due []*manualTimer
		for _, t := range m.timers {
			if t.fn != nil && t.deadline <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			m.now = target
			m.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].deadline == due[j].deadline {
				return due[i].seq < due[j].seq
			}
			return due[i].deadline < due[j].deadline
		})
		next := due[0]
		fn := next.fn
		next.fn = nil
		if next.deadline > m.now {
			m.now = next.deadline
		}
		m.mu.Unlock()
		fn()
	}
}

type manualTimer struct {
	clock    *Manual
	fn       func()
	deadline time.Duration
	seq      uint64
}

func (t *manualTimer) Schedule(fn func(), d time.Duration) bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	replaced := t.fn != nil
	t.clock.seq++
	t.seq = t.clock.seq
	t.fn = fn
	t.deadline = t.clock.now + d
	return replaced
}

func (t *manualTimer) Cancel() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	replaced := t.fn != nil
	t.fn = nil
	return replaced
}

func (t *manualTimer) Pending() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.fn != nil
}
