package warehouse

import (
	"context"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/kairyx-ai/kairyx/internal/domain/model"
)

func seedEvents() []model.NormalizedEvent {
	return []model.NormalizedEvent{
		{
			EventType: "session_started",
			EventTime: "2025-03-01 10:00:00.000000",
			PlayerID:  "player-1",
		},
		{
			EventType: "item_purchased",
			EventTime: "2025-03-01 10:05:00.000000",
			PlayerID:  "player-1",
			EventProperties: map[string]any{
				"item_id":     "sword_3",
				"revenue_usd": 4.99,
			},
		},
		{
			EventType: "session_started",
			EventTime: "2025-03-01 11:00:00.000000",
			PlayerID:  "player-2",
		},
		{
			EventType: "level_completed",
			EventTime: "2025-03-01 11:10:00.000000",
			PlayerID:  "", // no resolvable player
		},
	}
}

func TestStores(t *testing.T) {
	cases := []struct {
		name string
		make func(t *testing.T) Store
	}{
		{
			name: "memory",
			make: func(t *testing.T) Store { return NewMemoryStore() },
		},
		{
			name: "sqlite",
			make: func(t *testing.T) Store {
				s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "events.db"))
				if err != nil {
					t.Fatalf("open sqlite store: %v", err)
				}
				return s
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			Convey("Given a "+tc.name+" store with two jobs loaded", t, func() {
				ctx := context.Background()
				store := tc.make(t)
				defer store.Close()

				So(store.WriteEvents(ctx, "job-a", seedEvents()), ShouldBeNil)
				So(store.WriteEvents(ctx, "job-b", []model.NormalizedEvent{
					{EventType: "session_started", EventTime: "2025-03-02 09:00:00.000000", PlayerID: "player-3"},
				}), ShouldBeNil)

				Convey("When counting events", func() {
					n, err := store.Count(ctx)

					Convey("Then all rows are visible", func() {
						So(err, ShouldBeNil)
						So(n, ShouldEqual, 5)
					})
				})

				Convey("When fetching one player's events", func() {
					events, err := store.EventsForPlayer(ctx, "player-1")

					Convey("Then only that player's rows return", func() {
						So(err, ShouldBeNil)
						So(events, ShouldHaveLength, 2)
						So(events[0].EventType, ShouldEqual, "session_started")
						So(events[1].EventType, ShouldEqual, "item_purchased")
					})

					Convey("And property payloads survive the round trip", func() {
						So(err, ShouldBeNil)
						So(events[1].EventProperties["item_id"], ShouldEqual, "sword_3")
						So(events[1].EventProperties["revenue_usd"], ShouldEqual, 4.99)
					})
				})

				Convey("When fetching an unknown player", func() {
					events, err := store.EventsForPlayer(ctx, "nobody")

					Convey("Then absence is an empty slice, not an error", func() {
						So(err, ShouldBeNil)
						So(events, ShouldBeEmpty)
					})
				})

				Convey("When fetching with an empty player id", func() {
					events, err := store.EventsForPlayer(ctx, "")

					Convey("Then unattributed rows stay invisible", func() {
						So(err, ShouldBeNil)
						So(events, ShouldBeEmpty)
					})
				})

				Convey("When listing player ids", func() {
					ids, err := store.PlayerIDs(ctx)

					Convey("Then ids are distinct, sorted, and exclude the empty id", func() {
						So(err, ShouldBeNil)
						So(ids, ShouldResemble, []string{"player-1", "player-2", "player-3"})
					})
				})

				Convey("When counting event types", func() {
					counts, err := store.EventTypeCounts(ctx)

					Convey("Then counts group by normalized type", func() {
						So(err, ShouldBeNil)
						So(counts["session_started"], ShouldEqual, 3)
						So(counts["item_purchased"], ShouldEqual, 1)
						So(counts["level_completed"], ShouldEqual, 1)
					})
				})

				Convey("When sampling a handful of events", func() {
					sample, err := store.Sample(ctx, 3)

					Convey("Then the first rows come back in insertion order", func() {
						So(err, ShouldBeNil)
						So(sample, ShouldHaveLength, 3)
						So(sample[0].EventType, ShouldEqual, "session_started")
						So(sample[1].EventType, ShouldEqual, "item_purchased")
					})
				})

				Convey("When sampling more than is stored", func() {
					sample, err := store.Sample(ctx, 100)

					Convey("Then everything returns without error", func() {
						So(err, ShouldBeNil)
						So(sample, ShouldHaveLength, 5)
					})
				})

				Convey("When sampling zero events", func() {
					sample, err := store.Sample(ctx, 0)

					Convey("Then the result is empty", func() {
						So(err, ShouldBeNil)
						So(sample, ShouldBeEmpty)
					})
				})

				Convey("When deleting one job", func() {
					removed, err := store.DeleteJob(ctx, "job-a")

					Convey("Then only that job's rows go away", func() {
						So(err, ShouldBeNil)
						So(removed, ShouldEqual, 4)

						n, err := store.Count(ctx)
						So(err, ShouldBeNil)
						So(n, ShouldEqual, 1)

						ids, err := store.PlayerIDs(ctx)
						So(err, ShouldBeNil)
						So(ids, ShouldResemble, []string{"player-3"})
					})
				})

				Convey("When deleting an unknown job", func() {
					removed, err := store.DeleteJob(ctx, "job-x")

					Convey("Then nothing is removed and no error is raised", func() {
						So(err, ShouldBeNil)
						So(removed, ShouldEqual, 0)
					})
				})
			})
		})
	}
}

func TestMemoryStoreClosed(t *testing.T) {
	Convey("Given a closed memory store", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()
		So(store.Close(), ShouldBeNil)

		Convey("When using it afterwards", func() {
			err := store.WriteEvents(ctx, "job", seedEvents())

			Convey("Then operations report the closed state", func() {
				So(err, ShouldEqual, ErrClosed)

				_, err = store.EventsForPlayer(ctx, "player-1")
				So(err, ShouldEqual, ErrClosed)

				_, err = store.Count(ctx)
				So(err, ShouldEqual, ErrClosed)
			})
		})
	})
}

func TestSQLiteStoreValidation(t *testing.T) {
	Convey("Given sqlite store construction", t, func() {
		Convey("When the path is blank", func() {
			_, err := NewSQLiteStore("   ")

			Convey("Then it is rejected", func() {
				So(err, ShouldEqual, ErrNoPath)
			})
		})

		Convey("When reopening an existing database", func() {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "events.db")

			first, err := NewSQLiteStore(path)
			So(err, ShouldBeNil)
			So(first.WriteEvents(ctx, "job-a", seedEvents()), ShouldBeNil)
			So(first.Close(), ShouldBeNil)

			Convey("Then previously written rows are still there", func() {
				second, err := NewSQLiteStore(path)
				So(err, ShouldBeNil)
				defer second.Close()

				n, err := second.Count(ctx)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 4)
			})
		})
	})
}
