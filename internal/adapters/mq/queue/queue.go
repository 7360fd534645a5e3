// Package queue defines the contract for publishing and consuming import
// notifications.
//
// The queue stands in for the message broker of a real ingestion pipeline:
// the ingest flow publishes one notification per uploaded raw-event batch,
// and the processing workers consume them.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultQueueCapacity = 1024
	defaultBufferSize    = 1024
)

// Notification tells a worker that a batch of raw events is waiting in the
// lake for processing under the given import job.
type Notification struct {
	JobID      string `json:"job_id"`
	LakeURI    string `json:"lake_uri"`
	EventCount int    `json:"event_count"`
}

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a notification to the queue.
	// Returns false if the queue is full and the notification was not enqueued.
	Enqueue(ctx context.Context, n Notification) bool

	// Dequeue returns a channel that will receive notifications as they
	// become available. The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Notification

	// Len returns the current number of queued notifications.
	Len(ctx context.Context) int

	// Close gracefully shuts down the queue.
	// After closing, no new notifications can be enqueued and the dequeue
	// channel will be closed.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	notifications chan Notification
	capacity      int
	bufferSize    int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity:   defaultQueueCapacity,
		bufferSize: defaultBufferSize,
	}

	// Apply all options
	for _, opt := range opts {
		opt(q)
	}

	// Initialize the channel with the configured buffer size
	q.notifications = make(chan Notification, q.bufferSize)

	// Initialize metrics
	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)

	return q
}

// Enqueue adds a notification to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) bool {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordQueueProcessingLatency(float64(latency))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	// Check if we're at capacity
	if len(q.notifications) >= q.capacity {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.notifications <- n:
		metrics.RecordQueueEnqueue()
		// Update queue size and utilization
		currentSize := len(q.notifications)
		metrics.UpdateQueueSize(currentSize)
		utilization := float64(currentSize) / float64(q.capacity)
		metrics.UpdateQueueUtilization(utilization)
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false // context cancelled
	default:
		metrics.RecordQueueEnqueueError()
		return false // queue is full
	}
}

// Dequeue returns a channel that will receive notifications as they become
// available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Notification {
	// Wrap the channel to track dequeue metrics
	dequeueChan := make(chan Notification)
	go func() {
		defer close(dequeueChan)
		for n := range q.notifications {
			select {
			case dequeueChan <- n:
				metrics.RecordQueueDequeue()
				// Update queue size and utilization after dequeue
				currentSize := len(q.notifications)
				metrics.UpdateQueueSize(currentSize)
				utilization := float64(currentSize) / float64(q.capacity)
				metrics.UpdateQueueUtilization(utilization)
			case <-ctx.Done():
				return
			}
		}
	}()
	return dequeueChan
}

// Len returns the current number of queued notifications.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	size := len(q.notifications)
	metrics.UpdateQueueSize(size)
	utilization := float64(size) / float64(q.capacity)
	metrics.UpdateQueueUtilization(utilization)
	return size
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil // already closed
	}

	// Close the channel to signal consumers to stop
	close(q.notifications)
	q.closed = true

	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
