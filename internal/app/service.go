package app

import (
	"context"
	"sync"
	"time"

	eventqueue "github.com/xcri/rankings/internal/adapters/mq/queue"
	"github.com/xcri/rankings/internal/adapters/mq/worker"
	"github.com/xcri/rankings/internal/domain/dedupe"
	"github.com/xcri/rankings/internal/domain/model"
	"github.com/xcri/rankings/pkg/logger"
)

const defaultShutdownTimeout = 5 * time.Second

// Service feeds user intents to a Controller in arrival order through a
// bounded queue and a single dispatcher.
type Service struct {
	mu sync.RWMutex

	controller *Controller
	queue      *eventqueue.InMemoryQueue
	dispatcher *worker.InMemoryWorker
	seen       dedupe.Deduper
	queueSize  int
	onReject   func(model.Intent, error)

	waitMu  sync.Mutex
	waiters map[string]chan error

	started bool
	logger  logger.Logger
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithQueueSize sets the maximum number of pending intents.
func WithQueueSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRejectHandler is called for every intent the controller refused.
func WithRejectHandler(fn func(model.Intent, error)) ServiceOption {
	return func(s *Service) {
		s.onReject = fn
	}
}

// WithServiceLogger sets a custom logger for the service.
func WithServiceLogger(l logger.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService wraps c.
func NewService(c *Controller, opts ...ServiceOption) *Service {
	s := &Service{
		controller: c,
		queueSize:  256,
		waiters:    map[string]chan error{},
		seen:       dedupe.NewInMemory(),
		logger:     logger.Get().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the queue and runs the dispatcher.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.dispatcher = worker.NewInMemoryWorker(s.queue, worker.ApplierFunc(s.apply),
		worker.WithLogger(s.logger.Named("dispatcher")),
		worker.WithErrorHandler(s.onReject),
	)
	go s.dispatcher.Run(ctx)

	s.started = true
	s.logger.Info(ctx, "rankings service started", logger.Int("queueSize", s.queueSize))
	return nil
}

// Submit enqueues an intent without blocking. An intent whose id was
// already accepted is refused with ErrDuplicateIntent.
func (s *Service) Submit(ctx context.Context, in model.Intent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if s.seen.SeenAndRecord(ctx, in.ID) {
		return ErrDuplicateIntent
	}
	if !s.queue.Enqueue(ctx, in) {
		s.seen.Unrecord(ctx, in.ID)
		return ErrQueueFull
	}
	return nil
}

// SubmitWait enqueues an intent and blocks until the dispatcher applied it.
// It returns the controller's verdict on the intent.
func (s *Service) SubmitWait(ctx context.Context, in model.Intent) error {
	done := make(chan error, 1)
	s.waitMu.Lock()
	if _, waiting := s.waiters[in.ID]; waiting {
		s.waitMu.Unlock()
		return ErrDuplicateIntent
	}
	s.waiters[in.ID] = done
	s.waitMu.Unlock()
	defer func() {
		s.waitMu.Lock()
		delete(s.waiters, in.ID)
		s.waitMu.Unlock()
	}()

	if err := s.Submit(ctx, in); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) apply(ctx context.Context, in model.Intent) error {
	err := s.controller.Apply(ctx, in)
	s.waitMu.Lock()
	if done, ok := s.waiters[in.ID]; ok {
		done <- err
	}
	s.waitMu.Unlock()
	return err
}

// Drain stops accepting intents and waits until every queued intent was applied.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	_ = s.queue.Close()
	done := s.dispatcher.Done()
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains the queue, stops the dispatcher and closes the controller.
func (s *Service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.Drain(ctx); err != nil {
		s.logger.Warn(ctx, "intent queue not drained", logger.Error(err))
	}

	s.mu.Lock()
	if s.started {
		select {
		case <-s.dispatcher.Done():
		default:
			if err := s.dispatcher.Shutdown(ctx); err != nil {
				s.logger.Warn(ctx, "dispatcher shutdown failed", logger.Error(err))
			}
		}
		s.started = false
	}
	s.mu.Unlock()

	s.controller.Close()
	s.logger.Info(ctx, "rankings service stopped")
}

// Controller returns the wrapped controller.
func (s *Service) Controller() *Controller { return s.controller }

// QueueLen is the number of intents waiting to be applied.
func (s *Service) QueueLen(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.queue.Len(ctx)
}
