package warehouse

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// row pins an event to the import job that produced it so per-job deletes
// stay cheap.
type row struct {
	jobID string
	event model.NormalizedEvent
}

// MemoryStore is an in-memory Store for demos and tests. All reads return
// copies; rows are never mutated after append.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   []row
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// WriteEvents appends a batch of normalized events attributed to an import job.
func (s *MemoryStore) WriteEvents(ctx context.Context, jobID string, events []model.NormalizedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, e := range events {
		s.rows = append(s.rows, row{jobID: jobID, event: e})
	}

	metrics.RecordWarehouseWriteLatency(float64(time.Since(start).Milliseconds()))
	return nil
}

// EventsForPlayer returns every event carrying the player's identifier.
func (s *MemoryStore) EventsForPlayer(ctx context.Context, playerID string) ([]model.NormalizedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]model.NormalizedEvent, 0)
	for _, r := range s.rows {
		if r.event.PlayerID == playerID && playerID != "" {
			out = append(out, r.event)
		}
	}

	metrics.RecordWarehouseQueryLatency(float64(time.Since(start).Milliseconds()))
	return out, nil
}

// PlayerIDs returns the distinct player identifiers across all events.
func (s *MemoryStore) PlayerIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	seen := make(map[string]struct{})
	for _, r := range s.rows {
		if r.event.PlayerID != "" {
			seen[r.event.PlayerID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// DeleteJob removes all events attributed to an import job.
func (s *MemoryStore) DeleteJob(ctx context.Context, jobID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	kept := s.rows[:0]
	removed := 0
	for _, r := range s.rows {
		if r.jobID == jobID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}

// Count returns the number of events held.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.rows), nil
}

// EventTypeCounts returns event counts grouped by normalized type.
func (s *MemoryStore) EventTypeCounts(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	counts := make(map[string]int)
	for _, r := range s.rows {
		counts[r.event.EventType]++
	}
	return counts, nil
}

// Sample returns up to n events in insertion order.
func (s *MemoryStore) Sample(ctx context.Context, n int) ([]model.NormalizedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []model.NormalizedEvent{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if n > len(s.rows) {
		n = len(s.rows)
	}
	out := make([]model.NormalizedEvent, 0, n)
	for _, r := range s.rows[:n] {
		out = append(out, r.event)
	}
	return out, nil
}

// Close releases the store. Further operations return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rows = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
