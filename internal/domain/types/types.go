// Package types contains common types used across the application
package types

// Pattern is one event type with its occurrence count for a player.
// Pattern lists are ordered by count descending.
type Pattern struct {
	EventType string `json:"event_type"`
	Count     int    `json:"count"`
}
