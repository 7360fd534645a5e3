// Package normalize rewrites raw analytics events onto the canonical taxonomy.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
)

// Rules hold the rewrite tables for event names and property keys.
// The JSON shape matches the on-disk rule cache.
type Rules struct {
	EventNames   map[string]string `json:"event_name_map"`
	PropertyKeys map[string]string `json:"property_key_map"`
}

// DefaultRules returns the built-in rewrite tables covering the vendor
// taxonomy we see most often.
func DefaultRules() Rules {
	return Rules{
		EventNames: map[string]string{
			"start_session": "session_started",
			"purchase":      "item_purchased",
		},
		PropertyKeys: map[string]string{
			"item_ID": "item_id",
			"value":   "revenue_usd",
		},
	}
}

// clone deep-copies the rule tables.
func (r Rules) clone() Rules {
	out := Rules{
		EventNames:   make(map[string]string, len(r.EventNames)),
		PropertyKeys: make(map[string]string, len(r.PropertyKeys)),
	}
	for k, v := range r.EventNames {
		out.EventNames[k] = v
	}
	for k, v := range r.PropertyKeys {
		out.PropertyKeys[k] = v
	}
	return out
}

// Apply rewrites a batch of raw events. Order is preserved and no event is
// dropped. The player identifier is resolved from the vendor user id; events
// without one keep an empty PlayerID and are excluded later, at profiling.
func Apply(events []model.RawEvent, rules Rules) []model.NormalizedEvent {
	if len(events) == 0 {
		return []model.NormalizedEvent{}
	}
	out := make([]model.NormalizedEvent, 0, len(events))
	for _, e := range events {
		out = append(out, Rewrite(e, rules))
	}
	return out
}

// Rewrite normalizes a single event: the event type via the name table and
// each property key via the key table, identity when a name is unmapped.
func Rewrite(e model.RawEvent, rules Rules) model.NormalizedEvent {
	return model.NormalizedEvent{
		EventType:       rewriteName(e.EventType, rules.EventNames),
		EventTime:       e.EventTime,
		PlayerID:        e.UserID,
		EventProperties: rewriteKeys(e.EventProperties, rules.PropertyKeys),
		UserProperties:  rewriteKeys(e.UserProperties, rules.PropertyKeys),
		InsertID:        e.InsertID,
	}
}

func rewriteName(name string, table map[string]string) string {
	if mapped, ok := table[name]; ok {
		return mapped
	}
	return name
}

func rewriteKeys(props map[string]any, table map[string]string) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if mapped, ok := table[k]; ok {
			k = mapped
		}
		out[k] = v
	}
	return out
}

// looseEvent defers property decoding so malformed payloads degrade per
// field instead of failing the batch.
type looseEvent struct {
	EventType       string          `json:"event_type"`
	EventTime       string          `json:"event_time"`
	UserID          string          `json:"user_id"`
	EventProperties json.RawMessage `json:"event_properties"`
	UserProperties  json.RawMessage `json:"user_properties"`
	InsertID        string          `json:"insert_id"`
}

// DecodeRawEvents decodes a JSON array of vendor events. Property payloads
// that are not JSON objects are treated as empty properties.
func DecodeRawEvents(data []byte) ([]model.RawEvent, error) {
	var loose []looseEvent
	if err := json.Unmarshal(data, &loose); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	out := make([]model.RawEvent, 0, len(loose))
	for _, le := range loose {
		out = append(out, model.RawEvent{
			EventType:       le.EventType,
			EventTime:       le.EventTime,
			UserID:          le.UserID,
			EventProperties: decodeProps(le.EventProperties),
			UserProperties:  decodeProps(le.UserProperties),
			InsertID:        le.InsertID,
		})
	}
	return out, nil
}

func decodeProps(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}
