// Package cohort segments the player base into behavioral cohorts using
// profiles and churn estimates built by the modeling engine.
package cohort

import (
	"context"
	"sync"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/pkg/logger"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// defaultConcurrency bounds the per-player fan-out.
const defaultConcurrency = 8

// Modeler supplies per-player profiles and churn estimates.
type Modeler interface {
	ListPlayerIDs(ctx context.Context) ([]string, error)
	BuildProfile(ctx context.Context, playerID string) (*model.PlayerProfile, error)
	EstimateChurnRisk(ctx context.Context, playerID string, prof *model.PlayerProfile) (*model.ChurnEstimate, error)
}

// Member is one player's profile as placed in a cohort, annotated with
// the predicted churn risk used during segmentation.
type Member struct {
	model.PlayerProfile
	PredictedChurnRisk model.ChurnRisk `json:"predicted_churn_risk"`
}

// Result is the outcome of one segmentation run. Unassigned counts
// players whose profile matched no rule; they are not bucketed.
type Result struct {
	Cohorts    map[string][]Member `json:"cohorts"`
	Unassigned int                 `json:"unassigned"`
}

// rule pairs a cohort name with its membership predicate. Rules are
// evaluated in order and the first match wins.
type rule struct {
	name  string
	match func(p *model.PlayerProfile) bool
}

var rules = []rule{
	{model.CohortNewPlayers, func(p *model.PlayerProfile) bool {
		return p.DaysSinceLastSeen <= 3 && p.TotalSessions <= 5
	}},
	{model.CohortActiveSpenders, func(p *model.PlayerProfile) bool {
		return p.TotalRevenue > 0 && p.DaysSinceLastSeen <= 14
	}},
	{model.CohortAtRiskOfChurn, func(p *model.PlayerProfile) bool {
		return p.DaysSinceLastSeen > 14 && p.DaysSinceLastSeen <= 30
	}},
	{model.CohortDormantPlayers, func(p *model.PlayerProfile) bool {
		return p.DaysSinceLastSeen > 30
	}},
}

// Segmenter groups players into cohorts.
type Segmenter struct {
	modeler     Modeler
	concurrency int
	log         logger.Logger
}

// NewSegmenter creates a segmenter over the given modeler.
func NewSegmenter(modeler Modeler, opts ...Option) *Segmenter {
	s := &Segmenter{
		modeler:     modeler,
		concurrency: defaultConcurrency,
		log:         logger.Get().Named("cohort"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Segment builds a profile and churn estimate for every known player and
// assigns each to the first cohort whose rule matches. Players whose
// profile build or estimate fails are logged and skipped; players matching
// no rule are counted as unassigned but never bucketed.
func (s *Segmenter) Segment(ctx context.Context) (*Result, error) {
	playerIDs, err := s.modeler.ListPlayerIDs(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]Member, 0, len(playerIDs))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.concurrency)
	)
	for _, playerID := range playerIDs {
		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			prof, err := s.modeler.BuildProfile(ctx, playerID)
			if err != nil {
				s.log.Warn(ctx, "profile build failed, skipping player",
					logger.String("player_id", playerID),
					logger.Error(err))
				return
			}
			if prof == nil {
				return
			}

			estimate, err := s.modeler.EstimateChurnRisk(ctx, playerID, prof)
			if err != nil {
				s.log.Warn(ctx, "churn estimate failed, skipping player",
					logger.String("player_id", playerID),
					logger.Error(err))
				return
			}
			risk := model.RiskUnknown
			if estimate != nil {
				risk = estimate.Risk
			}

			mu.Lock()
			members = append(members, Member{PlayerProfile: *prof, PredictedChurnRisk: risk})
			mu.Unlock()
		}(playerID)
	}
	wg.Wait()

	result := &Result{Cohorts: make(map[string][]Member, len(rules))}
	for _, name := range model.CohortNames() {
		result.Cohorts[name] = []Member{}
	}

	for _, m := range members {
		name, ok := assign(&m.PlayerProfile)
		if !ok {
			result.Unassigned++
			s.log.Warn(ctx, "player matched no cohort rule",
				logger.String("player_id", m.PlayerID),
				logger.Int("days_since_last_seen", m.DaysSinceLastSeen),
				logger.Int("total_sessions", m.TotalSessions),
				logger.Float64("total_revenue", m.TotalRevenue))
			continue
		}
		result.Cohorts[name] = append(result.Cohorts[name], m)
	}

	for name, cohortMembers := range result.Cohorts {
		metrics.UpdateCohortSize(name, len(cohortMembers))
	}
	if result.Unassigned > 0 {
		metrics.RecordCohortUnassigned(result.Unassigned)
	}
	metrics.RecordSegmentationRun()

	s.log.Info(ctx, "segmentation complete",
		logger.Int("players", len(playerIDs)),
		logger.Int("profiled", len(members)),
		logger.Int("unassigned", result.Unassigned))
	return result, nil
}

// assign returns the first cohort whose rule matches the profile.
func assign(p *model.PlayerProfile) (string, bool) {
	for _, r := range rules {
		if r.match(p) {
			return r.name, true
		}
	}
	return "", false
}
