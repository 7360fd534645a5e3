// Package dedupe tracks vendor insert ids so reprocessed export batches
// stay idempotent.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen insert ids to ensure at-most-once warehouse writes.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	// Thread-safe and atomic.
	SeenAndRecord(ctx context.Context, id string) bool

	// Size returns the current number of tracked ids.
	Size() int64
}

// node is a single entry in the eviction list.
type node struct {
	id   string
	next *node
}

func (n *node) reset() {
	n.id = ""
	n.next = nil
}

// inMemoryDeduper implements Deduper with a bounded in-memory set.
// In bounded mode (maxSize > 0) a linked list gives LIFO eviction once the
// cap is reached; unbounded mode (maxSize <= 0) is a plain map.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node // id -> node in bounded mode, nil values otherwise
	head     *node            // most recently recorded id
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates an in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 500_000, // default max size
	}

	// Apply all options
	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*node)

	if d.maxSize > 0 {
		d.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *inMemoryDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true // already seen
	}

	if d.maxSize > 0 {
		// Evict before adding so the cap holds.
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}

		n := d.nodePool.Get().(*node)
		n.id = id
		n.next = d.head

		d.head = n
		d.seen[id] = n
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false // newly recorded
}

// evictOldest removes the tail of the list from the map.
// Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if len(d.seen) == 0 || d.head == nil {
		return
	}

	var prev *node
	current := d.head

	// Single entry: drop it and clear the list.
	if current.next == nil {
		delete(d.seen, current.id)
		current.reset()
		d.nodePool.Put(current)
		d.head = nil
		d.size.Add(-1)
		return
	}

	for current.next != nil {
		prev = current
		current = current.next
	}

	if prev != nil {
		prev.next = nil
		delete(d.seen, current.id)
		current.reset()
		d.nodePool.Put(current)
		d.size.Add(-1)
	}
}

// Size returns the current number of tracked ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
