package profile

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kairyx-ai/kairyx/internal/adapters/warehouse"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/domain/types"
)

// stubClient returns a canned reply or error and records the last prompt.
type stubClient struct {
	reply      string
	err        error
	lastPrompt string
}

func (s *stubClient) Response(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubClient) Model() string { return "stub" }

func eventAt(playerID, eventType string, ts time.Time, props map[string]any) model.NormalizedEvent {
	return model.NormalizedEvent{
		EventType:       eventType,
		EventTime:       ts.UTC().Format(model.EventTimeLayout),
		PlayerID:        playerID,
		EventProperties: props,
	}
}

func newEngine(t *testing.T, events []model.NormalizedEvent, client *stubClient, now time.Time) *Engine {
	t.Helper()
	store := warehouse.NewMemoryStore()
	if err := store.WriteEvents(context.Background(), "job-test", events); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return NewEngine(store, client, WithNow(func() time.Time { return now }))
}

func TestBuildProfile(t *testing.T) {
	Convey("Given a player's event history", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		base := now.Add(-10 * 24 * time.Hour)

		events := []model.NormalizedEvent{
			eventAt("player-1", "session_started", base, nil),
			eventAt("player-1", "level_completed", base.Add(5*time.Minute), nil),
			eventAt("player-1", "item_purchased", base.Add(21*time.Minute), map[string]any{"revenue_usd": 5.0}),
			eventAt("player-1", "item_purchased", base.Add(22*time.Minute), map[string]any{"revenue_usd": 2.5}),
		}
		engine := newEngine(t, events, &stubClient{}, now)

		Convey("When building the profile", func() {
			prof, err := engine.BuildProfile(ctx, "player-1")

			Convey("Then a 16 minute gap splits the history into two sessions", func() {
				So(err, ShouldBeNil)
				So(prof, ShouldNotBeNil)
				So(prof.TotalSessions, ShouldEqual, 2)
			})

			Convey("And revenue sums only purchase events", func() {
				So(prof.TotalRevenue, ShouldEqual, 7.5)
			})

			Convey("And recency counts whole days", func() {
				// The last event is 10 days minus 22 minutes before now.
				So(prof.DaysSinceLastSeen, ShouldEqual, 9)
				So(prof.TotalEvents, ShouldEqual, 4)
				So(prof.FirstSeen.Equal(base), ShouldBeTrue)
				So(prof.LastSeen.Equal(base.Add(22*time.Minute)), ShouldBeTrue)
			})
		})

		Convey("When the last event is exactly ten days old", func() {
			single := []model.NormalizedEvent{
				eventAt("player-2", "session_started", now.Add(-10*24*time.Hour), nil),
			}
			engine := newEngine(t, single, &stubClient{}, now)
			prof, err := engine.BuildProfile(ctx, "player-2")

			Convey("Then days since last seen is ten", func() {
				So(err, ShouldBeNil)
				So(prof.DaysSinceLastSeen, ShouldEqual, 10)
			})
		})

		Convey("When a gap is exactly the session threshold", func() {
			boundary := []model.NormalizedEvent{
				eventAt("player-3", "session_started", base, nil),
				eventAt("player-3", "level_completed", base.Add(15*time.Minute), nil),
			}
			engine := newEngine(t, boundary, &stubClient{}, now)
			prof, err := engine.BuildProfile(ctx, "player-3")

			Convey("Then it does not open a new session", func() {
				So(err, ShouldBeNil)
				So(prof.TotalSessions, ShouldEqual, 1)
			})
		})

		Convey("When events arrive out of order", func() {
			shuffled := []model.NormalizedEvent{
				eventAt("player-4", "level_completed", base.Add(30*time.Minute), nil),
				eventAt("player-4", "session_started", base, nil),
			}
			engine := newEngine(t, shuffled, &stubClient{}, now)
			prof, err := engine.BuildProfile(ctx, "player-4")

			Convey("Then ordering is recovered before session math", func() {
				So(err, ShouldBeNil)
				So(prof.FirstSeen.Equal(base), ShouldBeTrue)
				So(prof.LastSeen.Equal(base.Add(30*time.Minute)), ShouldBeTrue)
				So(prof.TotalSessions, ShouldEqual, 2)
			})
		})

		Convey("When some timestamps cannot be parsed", func() {
			mixed := []model.NormalizedEvent{
				eventAt("player-5", "session_started", base, nil),
				{EventType: "level_completed", EventTime: "not-a-time", PlayerID: "player-5"},
			}
			engine := newEngine(t, mixed, &stubClient{}, now)
			prof, err := engine.BuildProfile(ctx, "player-5")

			Convey("Then unparseable events are excluded from the profile", func() {
				So(err, ShouldBeNil)
				So(prof.TotalEvents, ShouldEqual, 1)
			})
		})

		Convey("When the player has no events", func() {
			prof, err := engine.BuildProfile(ctx, "nobody")

			Convey("Then absence returns nil without error", func() {
				So(err, ShouldBeNil)
				So(prof, ShouldBeNil)
			})
		})

		Convey("When revenue properties are absent or non-numeric", func() {
			odd := []model.NormalizedEvent{
				eventAt("player-6", "item_purchased", base, nil),
				eventAt("player-6", "item_purchased", base.Add(time.Minute), map[string]any{"revenue_usd": "free"}),
				eventAt("player-6", "item_purchased", base.Add(2*time.Minute), map[string]any{"revenue_usd": 3}),
			}
			engine := newEngine(t, odd, &stubClient{}, now)
			prof, err := engine.BuildProfile(ctx, "player-6")

			Convey("Then they default to zero", func() {
				So(err, ShouldBeNil)
				So(prof.TotalRevenue, ShouldEqual, 3.0)
			})
		})
	})
}

func TestEstimateChurnRisk(t *testing.T) {
	Convey("Given a player with history", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		events := []model.NormalizedEvent{
			eventAt("player-1", "session_started", now.Add(-48*time.Hour), nil),
		}

		Convey("When the model replies with fenced JSON", func() {
			client := &stubClient{reply: "```json\n{\"churn_risk\": \"low\", \"reason\": \"Active recently.\"}\n```"}
			engine := newEngine(t, events, client, now)

			estimate, err := engine.EstimateChurnRisk(ctx, "player-1", nil)

			Convey("Then the fenced payload parses", func() {
				So(err, ShouldBeNil)
				So(estimate, ShouldNotBeNil)
				So(estimate.Risk, ShouldEqual, model.RiskLow)
				So(estimate.Reason, ShouldEqual, "Active recently.")
				So(estimate.PlayerID, ShouldEqual, "player-1")
			})

			Convey("And the prompt carries the serialized profile", func() {
				So(client.lastPrompt, ShouldContainSubstring, "churn_risk")
				So(client.lastPrompt, ShouldContainSubstring, `"player_id": "player-1"`)
			})
		})

		Convey("When the model invents a risk level", func() {
			client := &stubClient{reply: `{"churn_risk": "catastrophic", "reason": "Doom."}`}
			engine := newEngine(t, events, client, now)

			estimate, err := engine.EstimateChurnRisk(ctx, "player-1", nil)

			Convey("Then the label collapses to unknown", func() {
				So(err, ShouldBeNil)
				So(estimate.Risk, ShouldEqual, model.RiskUnknown)
				So(estimate.Reason, ShouldEqual, "Doom.")
			})
		})

		Convey("When the reply omits keys", func() {
			client := &stubClient{reply: `{"churn_risk": "medium"}`}
			engine := newEngine(t, events, client, now)

			estimate, err := engine.EstimateChurnRisk(ctx, "player-1", nil)

			Convey("Then missing keys get their documented defaults", func() {
				So(err, ShouldBeNil)
				So(estimate.Risk, ShouldEqual, model.RiskMedium)
				So(estimate.Reason, ShouldEqual, "AI analysis failed.")
			})
		})

		Convey("When the reply is not JSON", func() {
			client := &stubClient{reply: "This player seems fine to me."}
			engine := newEngine(t, events, client, now)

			estimate, err := engine.EstimateChurnRisk(ctx, "player-1", nil)

			Convey("Then the estimate degrades instead of erroring", func() {
				So(err, ShouldBeNil)
				So(estimate.Risk, ShouldEqual, model.RiskUnknown)
				So(estimate.Reason, ShouldEqual, "Failed to get a valid analysis from the AI model.")
			})
		})

		Convey("When the model call fails outright", func() {
			client := &stubClient{err: errors.New("connection refused")}
			engine := newEngine(t, events, client, now)

			estimate, err := engine.EstimateChurnRisk(ctx, "player-1", nil)

			Convey("Then the same fallback applies", func() {
				So(err, ShouldBeNil)
				So(estimate.Risk, ShouldEqual, model.RiskUnknown)
				So(estimate.Reason, ShouldEqual, "Failed to get a valid analysis from the AI model.")
			})
		})

		Convey("When the player has no events", func() {
			client := &stubClient{reply: `{"churn_risk": "low", "reason": "n/a"}`}
			engine := newEngine(t, events, client, now)

			estimate, err := engine.EstimateChurnRisk(ctx, "nobody", nil)

			Convey("Then absence returns nil without error", func() {
				So(err, ShouldBeNil)
				So(estimate, ShouldBeNil)
			})
		})

		Convey("When the caller supplies a prebuilt profile", func() {
			client := &stubClient{reply: `{"churn_risk": "high", "reason": "Long absence."}`}
			engine := newEngine(t, events, client, now)

			prebuilt := &model.PlayerProfile{
				PlayerID:          "player-1",
				TotalSessions:     3,
				DaysSinceLastSeen: 40,
			}
			estimate, err := engine.EstimateChurnRisk(ctx, "player-1", prebuilt)

			Convey("Then the supplied profile feeds the prompt", func() {
				So(err, ShouldBeNil)
				So(estimate.Risk, ShouldEqual, model.RiskHigh)
				So(client.lastPrompt, ShouldContainSubstring, `"days_since_last_seen": 40`)
			})
		})
	})
}

func TestEngagementPatterns(t *testing.T) {
	Convey("Given a player with varied events", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		base := now.Add(-24 * time.Hour)

		events := []model.NormalizedEvent{
			eventAt("player-1", "level_completed", base, nil),
			eventAt("player-1", "level_completed", base.Add(time.Minute), nil),
			eventAt("player-1", "level_completed", base.Add(2*time.Minute), nil),
			eventAt("player-1", "session_started", base.Add(3*time.Minute), nil),
			eventAt("player-1", "item_purchased", base.Add(4*time.Minute), nil),
			eventAt("player-1", "session_started", base.Add(5*time.Minute), nil),
		}
		engine := newEngine(t, events, &stubClient{}, now)

		Convey("When listing engagement patterns", func() {
			patterns, err := engine.EngagementPatterns(ctx, "player-1")

			Convey("Then counts order descending with stable ties", func() {
				So(err, ShouldBeNil)
				So(patterns, ShouldResemble, []types.Pattern{
					{EventType: "level_completed", Count: 3},
					{EventType: "session_started", Count: 2},
					{EventType: "item_purchased", Count: 1},
				})
			})
		})

		Convey("When the player is unknown", func() {
			patterns, err := engine.EngagementPatterns(ctx, "nobody")

			Convey("Then absence returns nil without error", func() {
				So(err, ShouldBeNil)
				So(patterns, ShouldBeNil)
			})
		})
	})
}

func TestListPlayerIDs(t *testing.T) {
	Convey("Given events from several players", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		events := []model.NormalizedEvent{
			eventAt("player-b", "session_started", now.Add(-time.Hour), nil),
			eventAt("player-a", "session_started", now.Add(-time.Hour), nil),
			eventAt("player-b", "level_completed", now.Add(-30*time.Minute), nil),
		}
		engine := newEngine(t, events, &stubClient{}, now)

		Convey("When listing player ids", func() {
			ids, err := engine.ListPlayerIDs(ctx)

			Convey("Then ids are distinct and sorted", func() {
				So(err, ShouldBeNil)
				So(ids, ShouldResemble, []string{"player-a", "player-b"})
			})
		})
	})
}

func TestSessionGapOption(t *testing.T) {
	Convey("Given a custom session gap", t, func() {
		ctx := context.Background()
		now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
		base := now.Add(-time.Hour)

		events := []model.NormalizedEvent{
			eventAt("player-1", "session_started", base, nil),
			eventAt("player-1", "level_completed", base.Add(10*time.Minute), nil),
		}
		store := warehouse.NewMemoryStore()
		So(store.WriteEvents(ctx, "job-test", events), ShouldBeNil)

		engine := NewEngine(store, &stubClient{},
			WithNow(func() time.Time { return now }),
			WithSessionGap(5*time.Minute),
		)

		Convey("When the gap exceeds the tightened threshold", func() {
			prof, err := engine.BuildProfile(ctx, "player-1")

			Convey("Then the history splits into two sessions", func() {
				So(err, ShouldBeNil)
				So(prof.TotalSessions, ShouldEqual, 2)
			})
		})
	})
}

func TestPromptWording(t *testing.T) {
	Convey("Given the churn prompt template", t, func() {
		Convey("Then it instructs a JSON reply with both keys", func() {
			So(churnPrompt, ShouldContainSubstring, "world-class mobile game analyst")
			So(strings.Count(churnPrompt, "%s"), ShouldEqual, 1)
			So(churnPrompt, ShouldContainSubstring, `"churn_risk"`)
			So(churnPrompt, ShouldContainSubstring, `"reason"`)
		})
	})
}
