// Package worker applies queued intents to the rankings controller.
//
// Exactly one worker consumes a queue, so intents take effect in the order
// they were enqueued.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/xcri/rankings/internal/domain/model"
	"github.com/xcri/rankings/pkg/logger"
	"github.com/xcri/rankings/pkg/metrics"
)

// Intent abstracts what the worker reads off the queue.
type Intent = model.Intent

// Applier performs one intent.
type Applier interface {
	Apply(ctx context.Context, in Intent) error
}

// ApplierFunc adapts a function to Applier.
type ApplierFunc func(ctx context.Context, in Intent) error

// Apply calls f.
func (f ApplierFunc) Apply(ctx context.Context, in Intent) error { return f(ctx, in) }

// Queue defines how the worker receives intents.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Intent
}

// Worker consumes intents until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for a single in-process queue.
type InMemoryWorker struct {
	queue   Queue
	applier Applier
	name    string
	onError func(Intent, error)

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, applier Applier, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		applier:  applier,
		name:     "dispatcher",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("dispatcher"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "dispatcher" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns when ctx is done, Shutdown is
// called or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	intents := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case in, ok := <-intents:
			if !ok {
				return
			}
			if err := w.process(ctx, in); err != nil && w.onError != nil {
				w.onError(in, err)
			}
		}
	}
}

// Done is closed when Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, in Intent) error {
	start := time.Now()
	defer func() {
		metrics.RecordIntentProcessed(string(in.Kind), float64(time.Since(start).Milliseconds()))
	}()

	if err := w.applier.Apply(ctx, in); err != nil {
		metrics.RecordErrorByComponent("dispatcher", "intent_rejected")
		w.logger.Warn(ctx, "intent rejected",
			logger.String("intentID", in.ID),
			logger.String("kind", string(in.Kind)),
			logger.String("value", in.Value),
			logger.Error(err),
		)
		return fmt.Errorf("apply intent %s: %w", in.ID, err)
	}
	w.logger.Debug(ctx, "intent applied",
		logger.String("intentID", in.ID),
		logger.String("kind", string(in.Kind)),
	)
	return nil
}
