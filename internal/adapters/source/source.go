// Package source defines vendor export connectors that produce raw events
// for ingestion.
package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
)

// DateLayout is the calendar-day granularity accepted by export windows.
const DateLayout = "2006-01-02"

// Connector exports raw events for a date window from one configured
// vendor account.
type Connector interface {
	// Name identifies the configured connector instance.
	Name() string

	// Export returns every raw event recorded inside [start, end] at
	// day granularity.
	Export(ctx context.Context, start, end time.Time) ([]model.RawEvent, error)
}

// Registry resolves connectors by name at ingest time.
type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
}

// NewRegistry creates a registry over the given connectors.
func NewRegistry(connectors ...Connector) *Registry {
	r := &Registry{connectors: make(map[string]Connector, len(connectors))}
	for _, c := range connectors {
		r.connectors[c.Name()] = c
	}
	return r
}

// Add registers a connector, replacing any previous one with the same name.
func (r *Registry) Add(c Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connectors[c.Name()] = c
}

// Get resolves a connector by name.
func (r *Registry) Get(name string) (Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connectors[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, name)
	}
	return c, nil
}

// Names returns the registered connector names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.connectors))
	for name := range r.connectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseWindow parses and validates a date window.
func ParseWindow(startDate, endDate string) (start, end time.Time, err error) {
	start, err = time.Parse(DateLayout, strings.TrimSpace(startDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date %q", ErrBadWindow, startDate)
	}
	end, err = time.Parse(DateLayout, strings.TrimSpace(endDate))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date %q", ErrBadWindow, endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date precedes start_date", ErrBadWindow)
	}
	return start, end, nil
}
