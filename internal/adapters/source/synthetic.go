package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
)

// Default synthetic connector configuration constants.
const (
	defaultSyntheticName    = "synthetic"
	defaultSyntheticPlayers = 25
	defaultSyntheticSeed    = 42
	defaultPurchaseRate     = 0.15

	maxSessionsPerDay = 3
	maxEventsBurst    = 8
	burstSpacing      = 2 * time.Minute
)

// Vendor-format event names emitted by the generator. Deliberately raw so
// the normalization rules have something to rewrite.
var syntheticEventNames = []string{
	"level_completed",
	"tutorial_step",
	"achievement_unlocked",
	"settings_opened",
}

// Synthetic generates deterministic, session-shaped raw events so the whole
// pipeline can run with no vendor account configured.
type Synthetic struct {
	name         string
	players      int
	seed         int64
	purchaseRate float64

	mu sync.Mutex
}

// NewSynthetic creates a synthetic export connector.
func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		name:         defaultSyntheticName,
		players:      defaultSyntheticPlayers,
		seed:         defaultSyntheticSeed,
		purchaseRate: defaultPurchaseRate,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name identifies this connector instance.
func (s *Synthetic) Name() string {
	return s.name
}

// Export fabricates events for every synthetic player across the window.
// The same window and seed always produce the same batch.
func (s *Synthetic) Export(ctx context.Context, start, end time.Time) ([]model.RawEvent, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end precedes start", ErrBadWindow)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("export cancelled: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Window-derived seed keeps repeat exports of the same window identical.
	rng := rand.New(rand.NewSource(s.seed ^ start.Unix())) //nolint:gosec // deterministic generator, not security sensitive

	days := int(end.Sub(start)/(24*time.Hour)) + 1
	events := make([]model.RawEvent, 0, s.players*days*maxEventsBurst)

	for p := 0; p < s.players; p++ {
		playerID := fmt.Sprintf("player-%03d", p+1)

		// Not every player plays every day; later players taper off so the
		// cohort rules have dormant and at-risk material to work with.
		activeChance := 1.0 - float64(p)/float64(s.players+1)

		for d := 0; d < days; d++ {
			if rng.Float64() > activeChance {
				continue
			}
			day := start.AddDate(0, 0, d)
			sessions := 1 + rng.Intn(maxSessionsPerDay)
			for sess := 0; sess < sessions; sess++ {
				// Sessions start at scattered times; events inside a session
				// stay well under the session-gap threshold.
				at := day.Add(time.Duration(rng.Intn(24*60)) * time.Minute)
				events = append(events, s.event("start_session", playerID, at, rng, nil))

				burst := 1 + rng.Intn(maxEventsBurst)
				for i := 0; i < burst; i++ {
					at = at.Add(time.Duration(1+rng.Intn(int(burstSpacing/time.Minute))) * time.Minute)
					name := syntheticEventNames[rng.Intn(len(syntheticEventNames))]
					var props map[string]any
					if name == "level_completed" {
						props = map[string]any{"level": 1 + rng.Intn(60)}
					}
					events = append(events, s.event(name, playerID, at, rng, props))
				}

				if rng.Float64() < s.purchaseRate {
					at = at.Add(time.Duration(1+rng.Intn(3)) * time.Minute)
					events = append(events, s.event("purchase", playerID, at, rng, map[string]any{
						"item_ID": fmt.Sprintf("pack_%d", 1+rng.Intn(5)),
						"value":   float64(1+rng.Intn(20)) - 0.01,
					}))
				}
			}
		}
	}
	return events, nil
}

func (s *Synthetic) event(name, playerID string, at time.Time, rng *rand.Rand, props map[string]any) model.RawEvent {
	return model.RawEvent{
		EventType:       name,
		EventTime:       at.UTC().Format(model.EventTimeLayout),
		UserID:          playerID,
		EventProperties: props,
		UserProperties:  map[string]any{"platform": []string{"ios", "android"}[rng.Intn(2)]},
		InsertID:        uuid.NewString(),
	}
}

var _ Connector = (*Synthetic)(nil)
