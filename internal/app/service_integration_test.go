package service_test

import (
	"context"
	"os"
	"testing"
	"time"

	service "github.com/kairyx-ai/kairyx/internal/app"
	"github.com/kairyx-ai/kairyx/internal/domain/model"
	"github.com/kairyx-ai/kairyx/internal/jobs"
	. "github.com/smartystreets/goconvey/convey"
)

// waitForStatus polls the job list until the named job leaves the
// processing state or the deadline passes.
func waitForStatus(ctx context.Context, svc *service.Service, name string) (jobs.Job, bool) {
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		list, err := svc.ListImports(ctx)
		if err != nil {
			return jobs.Job{}, false
		}
		for _, job := range list {
			if job.Name == name && job.Status != jobs.StatusProcessing {
				return job, true
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return jobs.Job{}, false
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service with a synthetic source", t, func() {
		svc := service.New(newTestConfig(t), service.WithAIClient(&scriptedModel{}))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When importing a two-week window end-to-end", func() {
			job, err := svc.StartImport(ctx, "synthetic", "2025-11-01", "2025-11-14")
			So(err, ShouldBeNil)
			So(job.Name, ShouldNotBeEmpty)

			done, ok := waitForStatus(ctx, svc, job.Name)
			So(ok, ShouldBeTrue)

			Convey("Then the job should land in the ready state", func() {
				So(done.Status, ShouldEqual, jobs.StatusReady)
			})

			Convey("And the warehouse should hold normalized events", func() {
				stats := svc.GetStats()
				So(stats["totalEvents"], ShouldBeGreaterThan, 0)
				So(stats["totalPlayers"], ShouldBeGreaterThan, 0)
			})

			Convey("And the data glance should summarize the warehouse", func() {
				glance, err := svc.SandboxGlance(ctx)
				So(err, ShouldBeNil)
				So(glance.Job, ShouldNotBeNil)
				So(glance.Job.Name, ShouldEqual, job.Name)
				So(glance.TotalEvents, ShouldBeGreaterThan, 0)
				So(len(glance.Sample), ShouldBeLessThanOrEqualTo, 3)
				So(glance.EventTypeCounts, ShouldContainKey, "session_started")
			})

			Convey("And cohort segmentation should bucket every player", func() {
				result, err := svc.CreateCohorts(ctx)
				So(err, ShouldBeNil)
				So(result.Message, ShouldEqual, "Cohorts created successfully")
				// The window is months in the past, so everyone is dormant.
				So(len(result.Cohorts["dormant_players"]), ShouldBeGreaterThan, 0)
				So(result.Unassigned, ShouldEqual, 0)
				So(result.EventNames, ShouldContain, "session_started")
				So(len(result.DataGlance), ShouldBeLessThanOrEqualTo, 3)
			})

			Convey("And analyzing a player should close the engagement loop", func() {
				analysis, err := svc.AnalyzePlayer(ctx, "player-001")
				So(err, ShouldBeNil)
				So(analysis.PlayerProfile, ShouldNotBeNil)
				So(analysis.PlayerProfile.PlayerID, ShouldEqual, "player-001")
				So(analysis.PlayerProfile.TotalSessions, ShouldBeGreaterThan, 0)
				So(analysis.ChurnEstimate, ShouldNotBeNil)
				So(analysis.ChurnEstimate.Risk, ShouldEqual, model.RiskHigh)
				So(analysis.ActionTaken, ShouldNotBeNil)
				So(analysis.ActionTaken.Channel, ShouldEqual, "push_notification")
				So(analysis.ActionTaken.ID, ShouldNotBeEmpty)
				So(analysis.Feedback, ShouldNotBeNil)
				So(analysis.Feedback.ActionID, ShouldEqual, analysis.ActionTaken.ID)

				history, err := svc.ActionHistory(ctx)
				So(err, ShouldBeNil)
				So(len(history), ShouldBeGreaterThan, 0)
				So(history[0].PlayerID, ShouldEqual, "player-001")
			})

			Convey("And engagement patterns should rank event types", func() {
				patterns, err := svc.Patterns(ctx, "player-001")
				So(err, ShouldBeNil)
				So(len(patterns), ShouldBeGreaterThan, 0)
				for i := 1; i < len(patterns); i++ {
					So(patterns[i].Count, ShouldBeLessThanOrEqualTo, patterns[i-1].Count)
				}
			})

			Convey("And churn predictions should cover the imported players", func() {
				predictions, err := svc.PredictChurn(ctx, job.Name)
				So(err, ShouldBeNil)
				So(len(predictions), ShouldBeGreaterThan, 0)
				So(predictions[0].PredictedChurnRisk, ShouldEqual, model.RiskHigh)
				So(predictions[0].SuggestedAction, ShouldEqual, "We miss you! Here are 50 gems.")

				Convey("And a repeat request should serve the cached table", func() {
					again, err := svc.PredictChurn(ctx, job.Name)
					So(err, ShouldBeNil)
					So(len(again), ShouldEqual, len(predictions))
				})
			})

			Convey("And generating a churn report should write a CSV", func() {
				path, rows, err := svc.GenerateChurnReport(ctx, 3)
				So(err, ShouldBeNil)
				So(rows, ShouldEqual, 3)
				contents, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(contents), ShouldContainSubstring, "player_id,churn_risk,reason,suggested_action")
				So(string(contents), ShouldContainSubstring, "high")
			})

			Convey("And deleting the import should clear its data", func() {
				So(svc.DeleteImport(ctx, job.Name), ShouldBeNil)

				list, err := svc.ListImports(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldBeEmpty)

				stats := svc.GetStats()
				So(stats["totalEvents"], ShouldEqual, 0)
			})
		})

		Convey("When importing and stopping a job that already finished", func() {
			job, err := svc.StartImport(ctx, "synthetic", "2025-11-01", "2025-11-02")
			So(err, ShouldBeNil)

			done, ok := waitForStatus(ctx, svc, job.Name)
			So(ok, ShouldBeTrue)
			So(done.Status, ShouldEqual, jobs.StatusReady)

			Convey("Then stopping a ready job should fail", func() {
				So(svc.StopImport(ctx, job.Name), ShouldNotBeNil)
			})
		})
	})
}
