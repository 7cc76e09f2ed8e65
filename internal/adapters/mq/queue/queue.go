// Package queue defines the contract for enqueuing and consuming scouting submissions.
//
// The in-memory implementation is a bounded channel; a full queue rejects
// rather than blocks so callers can report backpressure.
package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Submission is the payload flowing through the queue.
type Submission = model.Submission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission. Returns ErrFull or ErrClosed when the
	// submission was not accepted.
	Enqueue(ctx context.Context, s Submission) error

	// Dequeue returns the channel submissions are delivered on. The
	// channel is closed once the queue is closed and drained.
	Dequeue() <-chan Submission

	// Len returns the current number of queued submissions.
	Len() int

	// Capacity returns the maximum number of queued submissions.
	Capacity() int

	// Close stops accepting submissions. Already queued submissions are
	// still delivered.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Submission
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Submission, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// Enqueue adds a submission to the queue without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, s Submission) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		q.reject("context_cancelled")
		return fmt.Errorf("enqueue: %w", err)
	}

	select {
	case q.items <- s:
		q.observe()
		return nil
	default:
		q.reject("queue_full")
		return ErrFull
	}
}

// Dequeue returns the delivery channel.
func (q *InMemoryQueue) Dequeue() <-chan Submission {
	return q.items
}

// Len returns the current number of queued submissions.
func (q *InMemoryQueue) Len() int {
	return q.observe()
}

// Capacity returns the configured capacity.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting submissions.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	// Closing under the write lock keeps Enqueue from sending on a closed channel.
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

func (q *InMemoryQueue) observe() int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

func (q *InMemoryQueue) reject(kind string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", kind)
}
