// Package notify dispatches engagement actions over simulated channels and
// keeps a bounded history of everything sent.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/logger"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// defaultHistorySize bounds the in-memory action history.
const defaultHistorySize = 1000

// defaultEmailSubject is used when an email action carries no subject.
const defaultEmailSubject = "A message from your game"

// Executor routes ACT decisions to their channel and records every
// dispatch in a bounded newest-first history.
type Executor struct {
	historySize int
	log         logger.Logger
	now         func() time.Time

	mu      sync.RWMutex
	history []model.Action // ring, oldest first
}

// NewExecutor creates an engagement executor with configuration options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		historySize: defaultHistorySize,
		log:         logger.Get().Named("notify"),
		now:         time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute dispatches the action on its channel. Nil or non-ACT actions are
// a no-op, as are unsupported channels. Returns the assigned action id, or
// "" when nothing was sent.
func (e *Executor) Execute(ctx context.Context, action *model.Action) (string, error) {
	if action == nil || action.Decision != model.DecisionAct {
		return "", nil
	}

	actionID := uuid.NewString()
	sent := *action
	sent.ID = actionID
	sent.CreatedAt = e.now().UTC()

	switch action.Channel {
	case model.ChannelPush:
		e.log.Info(ctx, "push notification sent",
			logger.String("action_id", actionID),
			logger.String("player_id", action.PlayerID),
			logger.String("content", action.Content))
	case model.ChannelEmail:
		if sent.Subject == "" {
			sent.Subject = defaultEmailSubject
		}
		e.log.Info(ctx, "email sent",
			logger.String("action_id", actionID),
			logger.String("player_id", action.PlayerID),
			logger.String("subject", sent.Subject),
			logger.String("body", action.Content))
	default:
		e.log.Warn(ctx, "channel not supported, no action taken",
			logger.String("channel", action.Channel),
			logger.String("player_id", action.PlayerID))
		metrics.RecordActionFailure()
		return "", nil
	}

	e.record(sent)
	metrics.RecordActionDispatched(sent.Channel)
	return actionID, nil
}

// History returns dispatched actions, newest first.
func (e *Executor) History(ctx context.Context) []model.Action {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]model.Action, 0, len(e.history))
	for i := len(e.history) - 1; i >= 0; i-- {
		out = append(out, e.history[i])
	}
	return out
}

func (e *Executor) record(action model.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, action)
	if len(e.history) > e.historySize {
		e.history = e.history[len(e.history)-e.historySize:]
	}
}
