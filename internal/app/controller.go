// Package app is the rankings data controller.
//
// The Controller owns the filter selection, keeps the shareable URL in sync,
// schedules debounced backend fetches and materializes the visible page.
// All state lives behind one mutex; timer callbacks and fetch completions
// re-enter through it, and a response is applied only when the fetch key it
// was issued for still matches the current selection.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
	"github.com/xcri/rankings/pkg/logger"
	"github.com/xcri/rankings/pkg/metrics"
	"github.com/xcri/rankings/pkg/timer"
)

// Fetcher is the part of the backend client the controller reads lists from.
type Fetcher interface {
	Athletes(ctx context.Context, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error)
	Teams(ctx context.Context, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error)
	SnapshotAthletes(ctx context.Context, date string, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error)
	SnapshotTeams(ctx context.Context, date string, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error)
	KnockoutAll(ctx context.Context, q rankingsapi.KnockoutQuery, maxPages int) ([]knockout.TeamRecord, int, error)
}

// History receives the serialized filter. Replace must not add an entry.
type History interface {
	Replace(query string)
}

// Controller drives one rankings list.
type Controller struct {
	fetcher Fetcher
	history History
	timers  timer.Factory
	logger  logger.Logger

	seasonYear       int
	fetchLimit       int
	pageSize         int
	maxKnockoutPages int
	networkDebounce  time.Duration
	searchDebounce   time.Duration

	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu          sync.Mutex
	netTimer    timer.Timer
	searchTimer timer.Timer
	netGen      uint64 // bumped on every network schedule and cancel
	netArmed    bool
	state       filter.State
	search      string // search text the current page was built with
	hydrated    bool
	closed      bool

	data      []rankings.Record
	hasData   bool
	facets    rankings.FacetSet
	facetBase filter.FetchKey
	hasFacets bool
	page      rankings.Page
	loading   bool
	err       *FetchError

	seq       uint64
	cancelReq context.CancelFunc

	listeners map[int]func(View)
	nextID    int
}

// New creates a controller on the default selection. Call Hydrate to load
// the selection from a URL; the first fetch is scheduled then.
func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:          fetcher,
		timers:           timer.Real,
		logger:           logger.Get().Named("controller"),
		seasonYear:       defaultSeasonYear,
		fetchLimit:       defaultFetchLimit,
		pageSize:         defaultPageSize,
		maxKnockoutPages: defaultMaxKnockoutPages,
		networkDebounce:  defaultNetworkDebounce,
		searchDebounce:   defaultSearchDebounce,
		state:            filter.Default(),
		page:             rankings.Page{Results: []rankings.Record{}},
		listeners:        make(map[int]func(View)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.netTimer = c.timers.NewTimer()
	c.searchTimer = c.timers.NewTimer()
	c.root, c.stop = context.WithCancel(context.Background())
	return c
}

// Hydrate replaces the selection with the one encoded in query and schedules
// a fetch. Absent or unknown parameters fall back to defaults. The history
// sink is not written: query already is the location.
func (c *Controller) Hydrate(query string) error {
	st, err := filter.DecodeString(query)
	if err != nil {
		c.logger.Warn(c.root, "malformed query, using defaults", logger.String("query", query), logger.Error(err))
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	prev := c.state
	first := !c.hydrated
	c.hydrated = true
	c.state = st
	c.search = st.Search
	c.searchTimer.Cancel()
	if first || prev.FetchKey() != st.FetchKey() {
		c.scheduleFetchLocked()
	}
	c.materializeLocked()
	v, ls := c.viewLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(ls, v)
	return nil
}

// Update applies p atomically. An invalid patch leaves the state unchanged and
// returns the validation error. A patch that changes nothing is a no-op.
func (c *Controller) Update(p filter.Patch) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	next, err := filter.Apply(c.state, p)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if filter.Equal(next, c.state) && c.hydrated {
		c.mu.Unlock()
		return nil
	}

	prev := c.state
	first := !c.hydrated
	c.hydrated = true
	c.state = next
	if c.history != nil {
		c.history.Replace(filter.EncodeString(next))
	}

	if first || prev.FetchKey() != next.FetchKey() {
		c.scheduleFetchLocked()
	}
	if next.Search != prev.Search {
		if c.searchTimer.Schedule(c.applySearch, c.searchDebounce) {
			metrics.RecordDebounceCancelled("search")
		}
	} else if c.searchTimer.Cancel() {
		// Any other change applies pending search text right away, so the
		// page and the offset agree.
		c.search = next.Search
	}
	c.materializeLocked()
	v, ls := c.viewLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(ls, v)
	return nil
}

// applySearch runs when the search debounce elapses.
func (c *Controller) applySearch() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.search = c.state.Search
	c.materializeLocked()
	v, ls := c.viewLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(ls, v)
}

// State returns the current selection.
func (c *Controller) State() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// View returns what a renderer should draw now.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// OnChange registers fn to receive the view after every change. Calls happen
// outside the controller lock. The returned func unregisters fn.
func (c *Controller) OnChange(fn func(View)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Retry re-runs the fetch for the current selection immediately. It reports
// false when there is nothing to fetch.
func (c *Controller) Retry() bool {
	c.mu.Lock()
	if c.closed || !c.state.FetchKey().Fetchable() {
		c.mu.Unlock()
		return false
	}
	c.cancelNetLocked()
	c.err = nil
	c.setLoadingLocked(true)
	c.dispatchLocked()
	v, ls := c.viewLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(ls, v)
	return true
}

// Flush fires pending debounce windows now. It reports whether a fetch was
// dispatched.
func (c *Controller) Flush() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if c.searchTimer.Cancel() {
		c.search = c.state.Search
		c.materializeLocked()
	}
	fired := c.cancelNetLocked()
	if fired {
		c.dispatchLocked()
	}
	v, ls := c.viewLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(ls, v)
	return fired
}

// Wait blocks until every dispatched fetch has resolved. Fetches still in
// their debounce window are not waited for; call Flush first.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels both debounce timers and any in-flight fetch. No callback
// mutates state afterwards. Close waits for in-flight fetches to unwind.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelNetLocked()
	c.searchTimer.Cancel()
	c.stop()
	c.listeners = map[int]func(View){}
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Debug(context.Background(), "controller closed")
}

// scheduleFetchLocked restarts the network debounce for the current key and
// raises the loading flag immediately.
func (c *Controller) scheduleFetchLocked() {
	key := c.state.FetchKey()
	if !key.Fetchable() {
		if c.cancelNetLocked() {
			metrics.RecordDebounceCancelled("network")
		}
		c.data, c.hasData, c.err = nil, false, nil
		c.setLoadingLocked(false)
		return
	}
	c.setLoadingLocked(true)
	metrics.RecordFetchScheduled()
	c.netGen++
	gen := c.netGen
	if c.netTimer.Schedule(func() { c.fire(gen) }, c.networkDebounce) || c.netArmed {
		metrics.RecordDebounceCancelled("network")
	}
	c.netArmed = true
}

// cancelNetLocked drops the pending network debounce. A callback that already
// left the timer and waits for the lock sees the new generation and returns.
// It reports whether a fetch was waiting.
func (c *Controller) cancelNetLocked() bool {
	armed := c.netArmed
	c.netTimer.Cancel()
	c.netGen++
	c.netArmed = false
	return armed
}

// fire runs when the network debounce elapses. gen is the generation the
// window was scheduled with; a newer schedule or a cancel supersedes it.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.netGen {
		return
	}
	c.netArmed = false
	c.dispatchLocked()
}

// dispatchLocked starts the fetch for the current key in its own goroutine.
// The previous request is aborted; its response would be discarded anyway.
func (c *Controller) dispatchLocked() {
	key := c.state.FetchKey()
	if c.cancelReq != nil {
		c.cancelReq()
	}
	ctx, cancel := context.WithCancel(c.root)
	c.cancelReq = cancel
	c.seq++
	seq := c.seq

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.run(ctx, key, seq)
	}()
}

func (c *Controller) run(ctx context.Context, key filter.FetchKey, seq uint64) {
	start := time.Now()
	metrics.RecordFetchDispatched(string(key.View))
	c.logger.Debug(ctx, "fetch dispatched", logger.String("key", key.String()))

	res, err := c.fetch(ctx, key)
	metrics.RecordFetchLatency(float64(time.Since(start).Milliseconds()))

	c.resolve(key, seq, res, err)
}

// resolve applies a fetch outcome if key still matches the selection.
func (c *Controller) resolve(key filter.FetchKey, seq uint64, res dataset, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if key != c.state.FetchKey() || (err != nil && seq != c.seq) {
		metrics.RecordFetchStale()
		c.logger.Debug(c.root, "discarding stale response",
			logger.String("issued_for", key.String()),
			logger.String("current", c.state.FetchKey().String()),
		)
		c.mu.Unlock()
		return
	}

	if err != nil {
		c.err = newFetchError(key, err)
		metrics.RecordFetchFailed(string(c.err.Kind))
		metrics.RecordErrorByComponent("controller", string(c.err.Kind))
		c.logger.Warn(c.root, "fetch failed",
			logger.String("key", key.String()),
			logger.String("kind", string(c.err.Kind)),
			logger.Error(err),
		)
	} else {
		c.err = nil
		c.data = res.rows
		c.hasData = true
		c.updateFacetsLocked(key, res)
		metrics.UpdateDatasetSize(len(res.rows))
		c.materializeLocked()
		if res.truncated {
			c.logger.Warn(c.root, "knockout list truncated",
				logger.String("key", key.String()),
				logger.Int("fetched", len(res.all)),
				logger.Int("total", res.total),
			)
		}
	}
	// A newer change may be waiting out its debounce, or a newer request for
	// the same key may still be running.
	c.setLoadingLocked(c.netArmed || seq != c.seq)
	v, ls := c.viewLocked(), c.listenersLocked()
	c.mu.Unlock()

	notify(ls, v)
}

// updateFacetsLocked keeps the facet set derived from an unfiltered response.
// While a region or conference filter is active, the set of the last
// unfiltered response for the same division, gender and view is kept.
func (c *Controller) updateFacetsLocked(key filter.FetchKey, res dataset) {
	base := key.Base()
	switch {
	case res.unfiltered:
		c.facets = rankings.DeriveFacets(res.all)
		c.facetBase, c.hasFacets = base, true
	case c.hasFacets && c.facetBase == base:
	default:
		// Hydrated straight into a filtered selection: the best available
		// set, replaced by the next unfiltered response.
		c.facets = rankings.DeriveFacets(res.all)
		c.hasFacets = false
	}
}

func (c *Controller) materializeLocked() {
	start := time.Now()
	c.page = rankings.Materialize(c.data, c.search, c.state.Offset, c.pageSize)
	metrics.RecordMaterialize(float64(time.Since(start).Microseconds()), len(c.page.Results))
}

func (c *Controller) setLoadingLocked(loading bool) {
	c.loading = loading
	metrics.UpdateLoading(loading)
}

func (c *Controller) viewLocked() View {
	v := View{
		State:       c.state,
		Query:       filter.EncodeString(c.state),
		Results:     []rankings.Record{},
		Facets:      c.facets,
		Loading:     c.loading,
		Searching:   c.search != c.state.Search,
		Err:         c.err,
		DatasetSize: len(c.data),
	}
	if c.err == nil && c.hasData {
		v.Results = c.page.Results
		v.Total = c.page.Total
	}
	v.Pager = rankings.Pager{Total: v.Total, Limit: c.pageSize, Offset: c.state.Offset}

	switch {
	case !c.state.FetchKey().Fetchable():
		v.Empty = EmptyNoSnapshot
	case c.err != nil || !c.hasData || c.loading:
	case len(c.data) == 0:
		v.Empty = EmptyNoData
	case c.page.Total == 0:
		v.Empty = EmptyNoMatches
	}
	return v
}

func (c *Controller) listenersLocked() []func(View) {
	out := make([]func(View), 0, len(c.listeners))
	for id := 0; id < c.nextID; id++ {
		if fn, ok := c.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func notify(listeners []func(View), v View) {
	for _, fn := range listeners {
		fn(v)
	}
}
