package app_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
	"github.com/xcri/rankings/pkg/timer"
)

// call records one backend request made by the controller.
type call struct {
	endpoint string
	list     rankingsapi.ListQuery
	ko       rankingsapi.KnockoutQuery
	date     string
}

// fakeFetcher answers list requests from memory. A gate registered for a
// division holds that request until the gate is closed.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []call
	gates    map[int]chan struct{}
	lists    map[string][]rankings.Record
	knockout []knockout.TeamRecord
	err      error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{gates: map[int]chan struct{}{}, lists: map[string][]rankings.Record{}}
}

func (f *fakeFetcher) gate(division int) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[division] = ch
	return ch
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeFetcher) setList(endpoint string, rows []rankings.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists[endpoint] = rows
}

func (f *fakeFetcher) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// wait records c and blocks on the division gate, ignoring ctx so that a
// superseded request still completes late.
func (f *fakeFetcher) wait(c call, division int) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	g := f.gates[division]
	f.mu.Unlock()
	if g != nil {
		<-g
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeFetcher) list(endpoint string, q rankingsapi.ListQuery, date string) (rankingsapi.ListResponse, error) {
	if err := f.wait(call{endpoint: endpoint, list: q, date: date}, q.Division); err != nil {
		return rankingsapi.ListResponse{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []rankings.Record
	for _, r := range f.lists[endpoint] {
		if r.Division != 0 && r.Division != q.Division {
			continue
		}
		if q.Region != "" && r.Region != q.Region {
			continue
		}
		if q.Conference != "" && r.Conference != q.Conference {
			continue
		}
		rows = append(rows, r)
	}
	return rankingsapi.ListResponse{Total: len(rows), Limit: q.Limit, Results: rows}, nil
}

func (f *fakeFetcher) Athletes(_ context.Context, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error) {
	return f.list(rankingsapi.EndpointAthletes, q, "")
}

func (f *fakeFetcher) Teams(_ context.Context, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error) {
	return f.list(rankingsapi.EndpointTeams, q, "")
}

func (f *fakeFetcher) SnapshotAthletes(_ context.Context, date string, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error) {
	return f.list(rankingsapi.EndpointSnapshotAthletes, q, date)
}

func (f *fakeFetcher) SnapshotTeams(_ context.Context, date string, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error) {
	return f.list(rankingsapi.EndpointSnapshotTeams, q, date)
}

func (f *fakeFetcher) KnockoutAll(_ context.Context, q rankingsapi.KnockoutQuery, _ int) ([]knockout.TeamRecord, int, error) {
	if err := f.wait(call{endpoint: rankingsapi.EndpointKnockout, ko: q}, q.Division); err != nil {
		return nil, 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]knockout.TeamRecord(nil), f.knockout...), len(f.knockout), nil
}

// athletes builds n athlete rows for division. Every tenth athlete is a Smith.
func athletes(division, n int) []rankings.Record {
	regions := []string{"West", "South", "Northeast"}
	out := make([]rankings.Record, n)
	for i := range out {
		last := fmt.Sprintf("Runner%03d", i)
		if i%10 == 0 {
			last = "Smith"
		}
		out[i] = rankings.Record{
			Kind:        rankings.KindAthlete,
			RankingID:   int64(division*10_000 + i + 1),
			Division:    division,
			FirstName:   fmt.Sprintf("Ath%d", i),
			LastName:    last,
			TeamName:    fmt.Sprintf("College %d", i%25),
			Region:      regions[i%len(regions)],
			Conference:  fmt.Sprintf("Conf %d", i%4),
			AthleteRank: i + 1,
		}
	}
	return out
}

// heldTimers hands out timers that never fire on their own. Every scheduled
// callback is kept, so a test can run one after it was replaced, the way a
// real timer callback that already fired can still be waiting for a lock.
type heldTimers struct {
	mu     sync.Mutex
	timers []*heldTimer
}

func (h *heldTimers) NewTimer() timer.Timer {
	h.mu.Lock()
	defer h.mu.Unlock()
	t := &heldTimer{}
	h.timers = append(h.timers, t)
	return t
}

// network returns the controller's network timer, the first one created.
func (h *heldTimers) network() *heldTimer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.timers[0]
}

type heldTimer struct {
	mu      sync.Mutex
	fns     []func()
	pending bool
}

func (t *heldTimer) Schedule(fn func(), _ time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	replaced := t.pending
	t.fns = append(t.fns, fn)
	t.pending = true
	return replaced
}

func (t *heldTimer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := t.pending
	t.pending = false
	return was
}

func (t *heldTimer) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// run invokes the i-th scheduled callback regardless of later schedules.
func (t *heldTimer) run(i int) {
	t.mu.Lock()
	fn := t.fns[i]
	t.pending = false
	t.mu.Unlock()
	fn()
}
