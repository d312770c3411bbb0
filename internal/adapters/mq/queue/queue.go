// Package queue buffers interactions between the batch ingestion endpoint and
// the worker pool.
package queue

import (
	"context"
	"sync"

	"github.com/okian/discovery/internal/domain/model"
	"github.com/okian/discovery/pkg/metrics"
)

const defaultQueueCapacity = 10000

// Rejection reasons reported to metrics.
const (
	reasonClosed   = "closed"
	reasonFull     = "full"
	reasonCanceled = "canceled"
)

// Interaction is the payload flowing through the queue.
type Interaction = model.Interaction

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds an interaction. It returns false if the queue is full or
	// closed.
	Enqueue(ctx context.Context, in Interaction) bool

	// Dequeue returns the receive side of the queue. It is closed by Close
	// once drained.
	Dequeue(ctx context.Context) <-chan Interaction

	Len(ctx context.Context) int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Interaction
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Interaction, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an interaction without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, in Interaction) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected(reasonClosed)
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueRejected(reasonCanceled)
		return false
	}

	select {
	case q.items <- in:
		metrics.UpdateQueueSize(len(q.items))
		return true
	default:
		metrics.RecordQueueRejected(reasonFull)
		return false
	}
}

// EnqueueAll enqueues interactions in order and stops at the first
// rejection. It returns how many were accepted.
func (q *InMemoryQueue) EnqueueAll(ctx context.Context, ins []Interaction) int {
	for i, in := range ins {
		if !q.Enqueue(ctx, in) {
			return i
		}
	}
	return len(ins)
}

// Dequeue returns the receive side of the queue.
func (q *InMemoryQueue) Dequeue(context.Context) <-chan Interaction {
	return q.items
}

// Len returns the number of queued interactions.
func (q *InMemoryQueue) Len(context.Context) int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	return size
}

// Capacity returns the queue bound.
func (q *InMemoryQueue) Capacity() int { return q.capacity }

// Close stops accepting interactions. Queued ones stay readable until drained.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
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
