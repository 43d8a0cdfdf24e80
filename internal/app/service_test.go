package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/rostrumhq/rostrum/internal/app"
	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/internal/domain/ranking"
	"github.com/rostrumhq/rostrum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// startedService spins up a service with a small footprint for tests.
func startedService(ctx context.Context, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithDedupeSize(100),
	}
	svc := service.New(append(base, opts...)...)
	_ = svc.Start(ctx)
	return svc
}

// seedEvent registers an event with a roster and a panel.
func seedEvent(ctx context.Context, svc *service.Service) {
	_ = svc.CreateEvent(ctx, model.Event{EventID: "ev1", Name: "Finals"})
	for _, p := range []model.Participant{
		{ID: "A", Name: "Alice"}, {ID: "B", Name: "Bruno"}, {ID: "C", Name: "Chen"},
	} {
		_ = svc.AddParticipant(ctx, "ev1", p)
	}
	for _, j := range []model.Judge{
		{ID: "J1", Name: "Janet"}, {ID: "J2", Name: "Jon"},
	} {
		_ = svc.AddJudge(ctx, "ev1", j)
	}
}

// submitAll enqueues submissions and waits for the workers to apply them.
func submitAll(ctx context.Context, svc *service.Service, subs []model.Submission) bool {
	for _, sub := range subs {
		if !svc.Enqueue(ctx, sub) {
			return false
		}
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if stats := svc.GetStats(); stats["scores"] == len(subs) && stats["queueLength"] == 0 {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func fullPanelSubmissions() []model.Submission {
	subs := make([]model.Submission, 0, 6)
	values := map[string]map[string]float64{
		"J1": {"A": 90, "B": 90, "C": 80},
		"J2": {"A": 70, "B": 60, "C": 60},
	}
	i := 0
	for judgeID, byStudent := range values {
		for studentID, v := range byStudent {
			i++
			subs = append(subs, model.Submission{
				SubmissionID: fmt.Sprintf("sub-%d", i),
				EventID:      "ev1",
				StudentID:    studentID,
				JudgeID:      judgeID,
				Value:        v,
			})
		}
	}
	return subs
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a configured service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := startedService(ctx)
		defer svc.Stop()

		Convey("When started twice", func() {
			err := svc.Start(ctx)

			Convey("Then the second start is a no-op", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldBeTrue)
			})
		})

		Convey("When stopped", func() {
			svc.Stop()

			Convey("Then stats report not started", func() {
				So(svc.GetStats()["started"], ShouldBeFalse)
			})

			Convey("And stopping again is safe", func() {
				svc.Stop()
			})
		})
	})
}

func TestServiceRankingPipeline(t *testing.T) {
	Convey("Given a started service with a seeded event", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := startedService(ctx)
		defer svc.Stop()
		seedEvent(ctx, svc)

		Convey("When the full panel's scores flow through the queue", func() {
			So(submitAll(ctx, svc, fullPanelSubmissions()), ShouldBeTrue)

			Convey("Then the spearman ranking is computed with judge names attached", func() {
				rows, err := svc.Ranking(ctx, "ev1", "spearman")
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)

				So(rows[0].ParticipantID, ShouldEqual, "A")
				So(rows[0].FinalRank, ShouldEqual, 1)
				So(rows[0].RankSum, ShouldEqual, 2.5)
				So(rows[1].ParticipantID, ShouldEqual, "B")
				So(rows[1].RankSum, ShouldEqual, 4.0)
				So(rows[2].ParticipantID, ShouldEqual, "C")
				So(rows[2].RankSum, ShouldEqual, 5.5)

				So(rows[0].PerJudgeRanks[0].JudgeName, ShouldEqual, "Janet")
				So(rows[0].PerJudgeRanks[1].JudgeName, ShouldEqual, "Jon")
			})

			Convey("And the general ranking uses integer per-judge ranks", func() {
				rows, err := svc.Ranking(ctx, "ev1", "general")
				So(err, ShouldBeNil)
				So(rows[0].RankSum, ShouldEqual, 2)
				So(rows[1].RankSum, ShouldEqual, 3)
				So(rows[2].RankSum, ShouldEqual, 5)
			})

			Convey("And an empty method falls back to the configured default", func() {
				rows, err := svc.Ranking(ctx, "ev1", "")
				So(err, ShouldBeNil)
				So(rows[0].RankSum, ShouldEqual, 2.5) // spearman default
			})

			Convey("And an unknown method is rejected", func() {
				_, err := svc.Ranking(ctx, "ev1", "borda")
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a re-scored pair flows through", func() {
			subs := fullPanelSubmissions()
			So(submitAll(ctx, svc, subs), ShouldBeTrue)
			// J2 corrects their score for A downward.
			So(svc.Enqueue(ctx, model.Submission{
				SubmissionID: "sub-fix",
				EventID:      "ev1",
				StudentID:    "A",
				JudgeID:      "J2",
				Value:        10,
			}), ShouldBeTrue)

			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				if svc.GetStats()["queueLength"] == 0 {
					break
				}
				time.Sleep(5 * time.Millisecond)
			}
			time.Sleep(20 * time.Millisecond) // let the in-flight apply land

			Convey("Then the replacement demotes the participant", func() {
				rows, err := svc.Ranking(ctx, "ev1", "spearman")
				So(err, ShouldBeNil)
				// A now holds J2's worst score; B takes the lead.
				So(rows[0].ParticipantID, ShouldEqual, "B")
			})
		})
	})
}

func TestServiceDefaultMethodOption(t *testing.T) {
	Convey("Given a service defaulting to the general method", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := startedService(ctx, service.WithDefaultMethod(ranking.MethodGeneral))
		defer svc.Stop()
		seedEvent(ctx, svc)

		Convey("When ranking without naming a method", func() {
			So(submitAll(ctx, svc, fullPanelSubmissions()), ShouldBeTrue)
			rows, err := svc.Ranking(ctx, "ev1", "")

			Convey("Then the general rules apply", func() {
				So(err, ShouldBeNil)
				So(rows[0].RankSum, ShouldEqual, 2) // integer skip-ranks
			})
		})
	})
}

func TestServiceDeduplication(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := startedService(ctx)
		defer svc.Stop()

		Convey("When a submission id is recorded twice", func() {
			first := svc.SeenAndRecord(ctx, "sub-1")
			second := svc.SeenAndRecord(ctx, "sub-1")

			Convey("Then only the second sighting is a duplicate", func() {
				So(first, ShouldBeFalse)
				So(second, ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 1)
			})

			Convey("And unrecording allows a retry", func() {
				svc.Unrecord(ctx, "sub-1")
				So(svc.SeenAndRecord(ctx, "sub-1"), ShouldBeFalse)
			})
		})
	})
}

func TestServiceRankingUnknownEvent(t *testing.T) {
	Convey("Given a started service with no events", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := startedService(ctx)
		defer svc.Stop()

		Convey("When ranking an unknown event", func() {
			_, err := svc.Ranking(ctx, "nope", "")

			Convey("Then the store's not-found error surfaces", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "not found")
			})
		})
	})
}

func TestServiceBeforeStart(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc := service.New()

		Convey("When a ranking is requested", func() {
			_, err := svc.Ranking(ctx, "ev1", "")

			Convey("Then it fails with ErrNotStarted instead of panicking", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When registration reads and writes are attempted", func() {
			Convey("Then they are refused with ErrNotStarted", func() {
				So(errors.Is(svc.CreateEvent(ctx, model.Event{EventID: "ev1"}), service.ErrNotStarted), ShouldBeTrue)
				_, err := svc.ListEvents(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				_, err = svc.GetEvent(ctx, "ev1")
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When a score is submitted", func() {
			Convey("Then the ingestion surface stays total", func() {
				So(svc.SeenAndRecord(ctx, "s1"), ShouldBeFalse)
				So(svc.Enqueue(ctx, model.Submission{SubmissionID: "s1"}), ShouldBeFalse)
				So(func() { svc.Unrecord(ctx, "s1") }, ShouldNotPanic)
			})
		})
	})
}
