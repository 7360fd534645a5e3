package seedevents_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kairyx-ai/kairyx/internal/adapters/source"
	"github.com/kairyx-ai/kairyx/internal/seedevents"
	"github.com/kairyx-ai/kairyx/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init("text"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestRun(t *testing.T) {
	Convey("Given a generator configuration", t, func() {
		ctx := context.Background()

		Convey("When generating an export", func() {
			dir := t.TempDir()
			path, count, err := seedevents.Run(ctx, &seedevents.Config{
				Players:      5,
				Days:         7,
				Seed:         42,
				PurchaseRate: 0.2,
				Out:          dir,
			})

			Convey("Then it should write a gzipped JSON-lines file", func() {
				So(err, ShouldBeNil)
				So(count, ShouldBeGreaterThan, 0)
				So(strings.HasSuffix(path, ".json.gz"), ShouldBeTrue)
				info, statErr := os.Stat(path)
				So(statErr, ShouldBeNil)
				So(info.Size(), ShouldBeGreaterThan, 0)
			})

			Convey("And the export-file connector should read it back", func() {
				So(err, ShouldBeNil)
				connector, connErr := source.NewExportFile(dir)
				So(connErr, ShouldBeNil)

				end := time.Now().UTC().Truncate(24 * time.Hour)
				start := end.AddDate(0, 0, -6)
				events, readErr := connector.Export(ctx, start, end)
				So(readErr, ShouldBeNil)
				// Session bursts can spill past midnight of the last day,
				// so a handful of events may fall outside the window.
				So(len(events), ShouldBeGreaterThan, 0)
				So(len(events), ShouldBeLessThanOrEqualTo, count)
			})
		})

		Convey("When the player count is invalid", func() {
			_, _, err := seedevents.Run(ctx, &seedevents.Config{Players: 0, Days: 7, Out: t.TempDir()})

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When the day count is invalid", func() {
			_, _, err := seedevents.Run(ctx, &seedevents.Config{Players: 5, Days: 0, Out: t.TempDir()})

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
