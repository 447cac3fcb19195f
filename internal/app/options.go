package app

import (
	"time"

	"github.com/xcri/rankings/pkg/logger"
	"github.com/xcri/rankings/pkg/timer"
)

// Default controller configuration constants.
const (
	defaultSeasonYear       = 2025
	defaultFetchLimit       = 50_000
	defaultPageSize         = 100
	defaultMaxKnockoutPages = 20
	defaultNetworkDebounce  = 300 * time.Millisecond
	defaultSearchDebounce   = 150 * time.Millisecond
)

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHistory sets the sink that receives the serialized filter after every change.
func WithHistory(h History) Option {
	return func(c *Controller) {
		c.history = h
	}
}

// WithTimers sets the timer factory used for both debounce windows.
func WithTimers(f timer.Factory) Option {
	return func(c *Controller) {
		if f != nil {
			c.timers = f
		}
	}
}

// WithSeasonYear sets the live season.
func WithSeasonYear(year int) Option {
	return func(c *Controller) {
		if year > 0 {
			c.seasonYear = year
		}
	}
}

// WithFetchLimit sets the page size requested from list endpoints.
func WithFetchLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.fetchLimit = n
		}
	}
}

// WithPageSize sets the number of rows per rendered page.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxKnockoutPages bounds the pages pulled for one knockout fetch.
func WithMaxKnockoutPages(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxKnockoutPages = n
		}
	}
}

// WithNetworkDebounce sets the quiet period before a list fetch.
func WithNetworkDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.networkDebounce = d
		}
	}
}

// WithSearchDebounce sets the quiet period before search re-materializes the page.
func WithSearchDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.searchDebounce = d
		}
	}
}
