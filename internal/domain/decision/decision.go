// Package decision chooses the next engagement action for a player from
// their profile and churn estimate.
package decision

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kairyx-ai/kairyx/internal/adapters/ai"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/logger"
)

// ObjectiveReduceChurn is the only growth objective implemented today.
const ObjectiveReduceChurn = "reduce_churn"

// Canonical no-action reasons. Dashboards match on these strings.
const (
	lowRiskReason  = "AI analysis indicates player is already engaged and has low churn risk."
	fallbackReason = "Failed to generate a valid action from the AI model."
)

const actionPrompt = `As a world-class AI Growth Operator for a mobile game, your goal is to reduce player churn.
Based on the player's profile and churn analysis, devise the best engagement action.

Generate a personalized, concise, and engaging message for a push notification. The message should be friendly and enticing.

Provide your response as a JSON object with three keys: "decision" (string: "ACT"), "channel" (string: "push_notification"), and "content" (string: the message you generated).

Player Profile:
%s

Churn Analysis:
%s`

// Engine decides the next best action for a player given a growth objective.
type Engine struct {
	client ai.Client
	log    logger.Logger
	now    func() time.Time
}

// NewEngine creates a decision engine over the given model client.
func NewEngine(client ai.Client, opts ...Option) *Engine {
	e := &Engine{
		client: client,
		log:    logger.Get().Named("decision"),
		now:    time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// DecideNextAction determines whether to act, on which channel, and with
// what content. Returns (nil, nil) when either input is absent or the
// objective is not recognized. Model failures degrade to a NO_ACTION
// record; they never surface as errors.
func (e *Engine) DecideNextAction(ctx context.Context, prof *model.PlayerProfile, estimate *model.ChurnEstimate, objective string) (*model.Action, error) {
	if prof == nil || estimate == nil {
		return nil, nil
	}

	if objective != ObjectiveReduceChurn {
		e.log.Warn(ctx, "objective not recognized, no action taken",
			logger.String("objective", objective))
		return nil, nil
	}

	return e.decideChurnReduction(ctx, prof, estimate)
}

func (e *Engine) decideChurnReduction(ctx context.Context, prof *model.PlayerProfile, estimate *model.ChurnEstimate) (*model.Action, error) {
	if estimate.Risk == model.RiskLow {
		return &model.Action{
			PlayerID:  prof.PlayerID,
			Decision:  model.DecisionNoAction,
			Reason:    lowRiskReason,
			CreatedAt: e.now().UTC(),
		}, nil
	}

	profJSON, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize profile: %w", err)
	}
	estimateJSON, err := json.MarshalIndent(estimate, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize churn estimate: %w", err)
	}

	reply, err := e.client.Response(ctx, fmt.Sprintf(actionPrompt, profJSON, estimateJSON))
	if err != nil {
		e.log.Warn(ctx, "model call failed, falling back to no action",
			logger.String("player_id", prof.PlayerID),
			logger.Error(err))
		return e.fallbackAction(prof.PlayerID), nil
	}

	var parsed struct {
		Decision string `json:"decision"`
		Channel  string `json:"channel"`
		Content  string `json:"content"`
	}
	if err := json.Unmarshal([]byte(ai.StripFences(reply)), &parsed); err != nil {
		e.log.Warn(ctx, "model reply not parseable, falling back to no action",
			logger.String("player_id", prof.PlayerID),
			logger.Error(err))
		return e.fallbackAction(prof.PlayerID), nil
	}
	if parsed.Decision == "" {
		return e.fallbackAction(prof.PlayerID), nil
	}

	return &model.Action{
		PlayerID:  prof.PlayerID,
		Decision:  parsed.Decision,
		Channel:   parsed.Channel,
		Content:   parsed.Content,
		Timing:    model.TimingImmediate,
		CreatedAt: e.now().UTC(),
	}, nil
}

func (e *Engine) fallbackAction(playerID string) *model.Action {
	return &model.Action{
		PlayerID:  playerID,
		Decision:  model.DecisionNoAction,
		Reason:    fallbackReason,
		CreatedAt: e.now().UTC(),
	}
}
