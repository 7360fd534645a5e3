package notify

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// feedbackNotes marks simulated outcomes so consumers don't mistake them
// for tracked data.
const feedbackNotes = "This is a simulated result. In a real pipeline, this would be actual tracked data."

// Outcome weights for the simulated player response.
const (
	weightOpened  = 0.4
	weightIgnored = 0.5
	// returned_to_game takes the remaining 0.1.
)

// Feedback simulates the player's response to a dispatched action.
type Feedback struct {
	now func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFeedback creates a feedback simulator with configuration options.
func NewFeedback(opts ...FeedbackOption) *Feedback {
	f := &Feedback{
		now: time.Now,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // simulation, not security
	}

	// Apply all options
	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Result simulates how the player responded to the action: opened,
// ignored, or returned to the game, weighted toward ignoring.
func (f *Feedback) Result(_ context.Context, playerID, actionID string) model.Feedback {
	f.mu.Lock()
	roll := f.rng.Float64()
	f.mu.Unlock()

	response := model.ResponseReturnedToGame
	switch {
	case roll < weightOpened:
		response = model.ResponseOpened
	case roll < weightOpened+weightIgnored:
		response = model.ResponseIgnored
	}

	metrics.RecordFeedback(response)
	return model.Feedback{
		ActionID:   actionID,
		PlayerID:   playerID,
		Response:   response,
		Notes:      feedbackNotes,
		RecordedAt: f.now().UTC(),
	}
}
