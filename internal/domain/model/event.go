// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"time"
)

// Event time layouts accepted at parse. Vendor exports use a
// microsecond-precision layout without a zone; newer connectors emit RFC3339.
const (
	EventTimeLayout       = "2006-01-02 15:04:05.000000"
	EventTimeLayoutCoarse = "2006-01-02 15:04:05"
)

// ErrBadEventTime reports an event timestamp in no accepted layout.
var ErrBadEventTime = errors.New("unparseable event time")

// RawEvent represents a vendor-format analytics event as exported
// by a source connector. Immutable once ingested.
type RawEvent struct {
	EventType       string         `json:"event_type"`
	EventTime       string         `json:"event_time"`
	UserID          string         `json:"user_id"`
	EventProperties map[string]any `json:"event_properties,omitempty"`
	UserProperties  map[string]any `json:"user_properties,omitempty"`
	InsertID        string         `json:"insert_id,omitempty"` // vendor idempotency key
}

// NormalizedEvent is a RawEvent after taxonomy rewriting, carrying the
// resolved player identifier. Events whose PlayerID is empty are excluded
// from all profile aggregates.
type NormalizedEvent struct {
	EventType       string         `json:"event_type"`
	EventTime       string         `json:"event_time"`
	PlayerID        string         `json:"player_id"`
	EventProperties map[string]any `json:"event_properties,omitempty"`
	UserProperties  map[string]any `json:"user_properties,omitempty"`
	InsertID        string         `json:"insert_id,omitempty"`
}

// ParseEventTime parses an event timestamp in any accepted layout,
// returning the instant in UTC.
func ParseEventTime(s string) (time.Time, error) {
	for _, layout := range []string{EventTimeLayout, EventTimeLayoutCoarse, time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, ErrBadEventTime
}

// Time parses the event's timestamp.
func (e NormalizedEvent) Time() (time.Time, error) {
	return ParseEventTime(e.EventTime)
}
