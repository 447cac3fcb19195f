// Package queue carries user intents from renderers to the dispatcher.
//
// The queue is bounded and FIFO: intents leave in the order they arrived,
// which is what lets a single consumer apply them in arrival order.
package queue

import (
	"context"
	"sync"

	"github.com/xcri/rankings/internal/domain/model"
	"github.com/xcri/rankings/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 256
)

// Intent is the payload type flowing through the queue.
type Intent = model.Intent

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an intent to the queue.
	// Returns false if the queue is full or closed and the intent was dropped.
	Enqueue(ctx context.Context, in Intent) bool

	// Dequeue returns a channel that receives intents in arrival order.
	// The channel is closed when the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan Intent

	// Len returns the current number of queued intents.
	Len(ctx context.Context) int

	// Close stops accepting intents. Queued intents are still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	intents  chan Intent
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.intents = make(chan Intent, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds an intent to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, in Intent) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}

	select {
	case q.intents <- in:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.intents))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive intents as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Intent {
	out := make(chan Intent)
	go func() {
		defer close(out)
		for in := range q.intents {
			select {
			case out <- in:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.intents))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued intents.
func (q *InMemoryQueue) Len(_ context.Context) int {
	size := len(q.intents)
	metrics.UpdateQueueSize(size)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.intents)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
