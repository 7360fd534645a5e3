// Package profile builds behavioral player profiles and churn estimates
// from normalized events.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/kairyx-ai/kairyx/internal/adapters/ai"
	"github.com/kairyx-ai/kairyx/internal/adapters/warehouse"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/domain/types"
	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// defaultSessionGap is the inactivity threshold that closes a session.
const defaultSessionGap = 15 * time.Minute

// Churn prompt and fallback wording. The reason strings are part of the
// API surface; dashboards match on them.
const (
	churnPrompt = `As a world-class mobile game analyst, analyze the following player profile and estimate their churn risk.
Provide your response as a JSON object with two keys: "churn_risk" (string: "low", "medium", or "high") and "reason" (string: a brief justification for your analysis).

Player Profile:
%s`

	fallbackReason   = "Failed to get a valid analysis from the AI model."
	missingKeyReason = "AI analysis failed."
)

// Engine analyzes player event data to build intelligence profiles,
// churn estimates, and engagement patterns.
type Engine struct {
	store  warehouse.Store
	client ai.Client

	sessionGap time.Duration
	now        func() time.Time
}

// NewEngine creates a modeling engine over the given event store and model
// client. Both are required.
func NewEngine(store warehouse.Store, client ai.Client, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		client:     client,
		sessionGap: defaultSessionGap,
		now:        time.Now,
	}

	// Apply all options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ListPlayerIDs returns all distinct player identifiers known to the store.
func (e *Engine) ListPlayerIDs(ctx context.Context) ([]string, error) {
	return e.store.PlayerIDs(ctx)
}

// BuildProfile computes the profile for one player. Returns (nil, nil) when
// the player has no events; absence is not an error.
func (e *Engine) BuildProfile(ctx context.Context, playerID string) (*model.PlayerProfile, error) {
	start := time.Now()

	events, err := e.store.EventsForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetch player events: %w", err)
	}

	// Events with unparseable timestamps cannot participate in session or
	// recency math, so they are excluded from the profile entirely.
	type timed struct {
		ts    time.Time
		event model.NormalizedEvent
	}
	ordered := make([]timed, 0, len(events))
	for _, ev := range events {
		ts, err := ev.Time()
		if err != nil {
			continue
		}
		ordered = append(ordered, timed{ts: ts, event: ev})
	}
	if len(ordered) == 0 {
		return nil, nil
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ts.Before(ordered[j].ts) })

	// A new session begins at the first event and whenever the gap to the
	// previous event exceeds the session threshold.
	totalSessions := 1
	for i := 1; i < len(ordered); i++ {
		if ordered[i].ts.Sub(ordered[i-1].ts) > e.sessionGap {
			totalSessions++
		}
	}

	var totalRevenue float64
	for _, t := range ordered {
		if t.event.EventType != "item_purchased" {
			continue
		}
		totalRevenue += numberValue(t.event.EventProperties["revenue_usd"])
	}

	firstSeen := ordered[0].ts
	lastSeen := ordered[len(ordered)-1].ts
	days := int(e.now().UTC().Sub(lastSeen) / (24 * time.Hour))

	profile := &model.PlayerProfile{
		PlayerID:          playerID,
		FirstSeen:         firstSeen,
		LastSeen:          lastSeen,
		TotalSessions:     totalSessions,
		TotalEvents:       len(ordered),
		TotalRevenue:      totalRevenue,
		DaysSinceLastSeen: days,
	}

	metrics.RecordProfileBuilt()
	metrics.RecordProfileLatency(float64(time.Since(start).Milliseconds()))
	return profile, nil
}

// EstimateChurnRisk asks the model to classify the player's churn risk,
// building the profile first unless the caller supplies one. Model failures
// degrade to an unknown classification; they never surface as errors.
// Returns (nil, nil) when the player has no events.
func (e *Engine) EstimateChurnRisk(ctx context.Context, playerID string, prof *model.PlayerProfile) (*model.ChurnEstimate, error) {
	if prof == nil {
		var err error
		prof, err = e.BuildProfile(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if prof == nil {
			return nil, nil
		}
	}

	serialized, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize profile: %w", err)
	}

	reply, err := e.client.Response(ctx, fmt.Sprintf(churnPrompt, serialized))
	if err != nil {
		return e.fallbackEstimate(playerID), nil
	}

	var analysis struct {
		ChurnRisk *string `json:"churn_risk"`
		Reason    *string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(ai.StripFences(reply)), &analysis); err != nil {
		return e.fallbackEstimate(playerID), nil
	}

	risk := model.RiskUnknown
	if analysis.ChurnRisk != nil {
		risk = model.ParseChurnRisk(*analysis.ChurnRisk)
	}
	reason := missingKeyReason
	if analysis.Reason != nil {
		reason = *analysis.Reason
	}

	metrics.RecordChurnEstimate(string(risk))
	return &model.ChurnEstimate{
		PlayerID: playerID,
		Risk:     risk,
		Reason:   reason,
	}, nil
}

// EngagementPatterns counts the player's events by type, ordered by count
// descending (ties broken by type name). Returns (nil, nil) for unknown
// players.
func (e *Engine) EngagementPatterns(ctx context.Context, playerID string) ([]types.Pattern, error) {
	events, err := e.store.EventsForPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("fetch player events: %w", err)
	}
	if len(events) == 0 {
		return nil, nil
	}

	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.EventType]++
	}
	patterns := make([]types.Pattern, 0, len(counts))
	for eventType, count := range counts {
		patterns = append(patterns, types.Pattern{EventType: eventType, Count: count})
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Count != patterns[j].Count {
			return patterns[i].Count > patterns[j].Count
		}
		return patterns[i].EventType < patterns[j].EventType
	})
	return patterns, nil
}

func (e *Engine) fallbackEstimate(playerID string) *model.ChurnEstimate {
	metrics.RecordAIFallback()
	metrics.RecordChurnEstimate(string(model.RiskUnknown))
	return &model.ChurnEstimate{
		PlayerID: playerID,
		Risk:     model.RiskUnknown,
		Reason:   fallbackReason,
	}
}

// numberValue coerces a property value to float64, defaulting to zero for
// absent or non-numeric values.
func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
