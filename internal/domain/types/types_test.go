package types_test

import (
	"encoding/json"
	"sort"
	"testing"

	types "github.com/kairyx-ai/kairyx/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPattern(t *testing.T) {
	Convey("Given a Pattern struct", t, func() {
		Convey("When creating a new pattern", func() {
			pattern := types.Pattern{
				EventType: "level_completed",
				Count:     12,
			}

			Convey("Then it should have the correct values", func() {
				So(pattern.EventType, ShouldEqual, "level_completed")
				So(pattern.Count, ShouldEqual, 12)
			})
		})

		Convey("When serializing a pattern to JSON", func() {
			data, err := json.Marshal(types.Pattern{EventType: "purchase", Count: 3})

			Convey("Then it should use the wire field names", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, `{"event_type":"purchase","count":3}`)
			})
		})

		Convey("When ordering a pattern list", func() {
			patterns := []types.Pattern{
				{EventType: "settings_opened", Count: 1},
				{EventType: "start_session", Count: 9},
				{EventType: "purchase", Count: 4},
			}
			sort.Slice(patterns, func(i, j int) bool {
				return patterns[i].Count > patterns[j].Count
			})

			Convey("Then the most frequent event type should come first", func() {
				So(patterns[0].EventType, ShouldEqual, "start_session")
				So(patterns[2].EventType, ShouldEqual, "settings_opened")
			})
		})
	})
}
