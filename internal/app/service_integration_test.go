package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	repository "github.com/okian/scoutrank/internal/adapters/repository"
	service "github.com/okian/scoutrank/internal/app"
	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with several workers", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(1000),
			service.WithDedupeSize(500),
		)
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.RegisterEvent(ctx, event(), []string{"100", "200", "300", "400"}), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When two full alliances submit many matches concurrently", func() {
			const matches = 25
			slots := []struct {
				team     string
				alliance types.Alliance
				record   model.MatchRecord
			}{
				{"100", types.AllianceRed, recordA},
				{"200", types.AllianceRed, recordB},
				{"300", types.AllianceBlue, recordB},
				{"400", types.AllianceBlue, recordA},
			}

			var wg sync.WaitGroup
			errs := make(chan error, matches*len(slots))
			for m := 1; m <= matches; m++ {
				for _, sl := range slots {
					wg.Add(1)
					go func(m int, team string, a types.Alliance, rec model.MatchRecord) {
						defer wg.Done()
						sub := submission(team, m, rec)
						sub.Alliance = a
						if _, err := svc.Submit(ctx, sub); err != nil {
							errs <- err
						}
					}(m, sl.team, sl.alliance, sl.record)
				}
			}
			wg.Wait()
			close(errs)
			So(len(errs), ShouldEqual, 0)
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then every match is folded exactly once and partners agree", func() {
				rows, err := svc.Standings(ctx, "ev1", repository.Query{})
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 4)
				for _, row := range rows {
					So(row.MatchesPlayed, ShouldEqual, matches)
					So(row.RankingPoints, ShouldEqual, 4*matches)
					So(row.RPUpdated, ShouldBeTrue)
					So(row.Rank, ShouldEqual, 1)
				}
			})

			Convey("And averages reflect only the team's own record", func() {
				st, err := svc.Stats(ctx, "ev1", "200")
				So(err, ShouldBeNil)
				So(st.AutonAverage, ShouldAlmostEqual, 6, 1e-9)
				So(st.TeleopAverage, ShouldAlmostEqual, 26, 1e-9)
				So(st.DepotAverage, ShouldAlmostEqual, 2, 1e-9)
				So(st.ClassifiedAverage, ShouldAlmostEqual, 9, 1e-9)
			})
		})
	})
}
