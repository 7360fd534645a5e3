// Package report generates CSV reports of players predicted to churn,
// with the prediction reason and the suggested engagement action.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/kairyx-ai/kairyx/internal/domain/decision"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/logger"
)

// defaultLimit caps the number of at-risk players per report.
const defaultLimit = 5

// noAction fills the suggested_action column when no content was produced.
const noAction = "N/A"

// Modeler supplies per-player profiles and churn estimates.
type Modeler interface {
	BuildProfile(ctx context.Context, playerID string) (*model.PlayerProfile, error)
	EstimateChurnRisk(ctx context.Context, playerID string, prof *model.PlayerProfile) (*model.ChurnEstimate, error)
}

// Decider proposes the next engagement action for an at-risk player.
type Decider interface {
	DecideNextAction(ctx context.Context, prof *model.PlayerProfile, estimate *model.ChurnEstimate, objective string) (*model.Action, error)
}

// Reporter writes churn reports as CSV.
type Reporter struct {
	modeler Modeler
	decider Decider
	limit   int
	log     logger.Logger
}

// NewReporter creates a churn reporter over the given engines.
func NewReporter(modeler Modeler, decider Decider, opts ...Option) *Reporter {
	r := &Reporter{
		modeler: modeler,
		decider: decider,
		limit:   defaultLimit,
		log:     logger.Get().Named("report"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Generate analyzes players in order and writes a CSV row for each with
// medium or high churn risk, stopping once the report limit is reached.
// Returns the number of players reported.
func (r *Reporter) Generate(ctx context.Context, playerIDs []string, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"player_id", "churn_risk", "reason", "suggested_action"}); err != nil {
		return 0, fmt.Errorf("write report header: %w", err)
	}

	reported := 0
	for _, playerID := range playerIDs {
		if reported >= r.limit {
			r.log.Info(ctx, "report limit reached, halting analysis",
				logger.Int("limit", r.limit))
			break
		}
		if err := ctx.Err(); err != nil {
			return reported, fmt.Errorf("report cancelled: %w", err)
		}

		prof, err := r.modeler.BuildProfile(ctx, playerID)
		if err != nil {
			return reported, fmt.Errorf("build profile for %s: %w", playerID, err)
		}
		if prof == nil {
			continue
		}

		estimate, err := r.modeler.EstimateChurnRisk(ctx, playerID, prof)
		if err != nil {
			return reported, fmt.Errorf("estimate churn for %s: %w", playerID, err)
		}
		if estimate == nil || (estimate.Risk != model.RiskMedium && estimate.Risk != model.RiskHigh) {
			continue
		}

		suggested := noAction
		action, err := r.decider.DecideNextAction(ctx, prof, estimate, decision.ObjectiveReduceChurn)
		if err != nil {
			return reported, fmt.Errorf("decide action for %s: %w", playerID, err)
		}
		if action != nil && action.Content != "" {
			suggested = action.Content
		}

		row := []string{playerID, string(estimate.Risk), estimate.Reason, suggested}
		if err := cw.Write(row); err != nil {
			return reported, fmt.Errorf("write report row: %w", err)
		}
		reported++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return reported, fmt.Errorf("flush report: %w", err)
	}

	r.log.Info(ctx, "churn report generated",
		logger.Int("analyzed", len(playerIDs)),
		logger.Int("reported", reported))
	return reported, nil
}
