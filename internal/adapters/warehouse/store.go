// Package warehouse defines the normalized event store interface and errors.
package warehouse

import (
	"context"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
)

// Store provides read/write access to normalized events grouped by import job.
type Store interface {
	// WriteEvents appends a batch of normalized events attributed to an import job.
	WriteEvents(ctx context.Context, jobID string, events []model.NormalizedEvent) error

	// EventsForPlayer returns every event carrying the player's identifier.
	// Returns an empty slice when the player is unknown, never an error for absence.
	EventsForPlayer(ctx context.Context, playerID string) ([]model.NormalizedEvent, error)

	// PlayerIDs returns the distinct player identifiers across all events,
	// sorted ascending. Events without a resolvable identifier are not represented.
	PlayerIDs(ctx context.Context) ([]string, error)

	// DeleteJob removes all events attributed to an import job and returns
	// the number of rows removed. Unknown jobs remove zero rows.
	DeleteJob(ctx context.Context, jobID string) (int, error)

	// Count returns the number of events held.
	Count(ctx context.Context) (int, error)

	// EventTypeCounts returns event counts grouped by normalized type.
	EventTypeCounts(ctx context.Context) (map[string]int, error)

	// Sample returns up to n events in insertion order, for data glances.
	Sample(ctx context.Context, n int) ([]model.NormalizedEvent, error)

	// Close releases the store's resources.
	Close() error
}
