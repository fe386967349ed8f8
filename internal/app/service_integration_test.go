package service_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/skilltree/internal/adapters/repository"
	service "github.com/okian/skilltree/internal/app"
	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_OwnedSQLiteStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service configured with a sqlite database", t, func() {
		path := filepath.Join(t.TempDir(), "skilltree.db")
		svc := service.New(
			service.WithDatabase(repository.DriverSQLite, path),
			service.WithAutoMigrate(true),
		)
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("Then the schema is migrated and seeded with defaults", func() {
			So(svc.Ping(ctx), ShouldBeNil)
			So(svc.GetStats()["owns_store"], ShouldEqual, true)

			settings, err := svc.Settings(ctx)
			So(err, ShouldBeNil)
			So(len(settings), ShouldEqual, 1)
			So(settings[0].Key, ShouldEqual, repository.SettingNotAssessedHandling)
			So(string(svc.DefaultNotAssessed(ctx)), ShouldEqual, "exclude")
		})

		Convey("Then an empty organisation yields an empty forest", func() {
			forest, err := svc.Hierarchy(ctx, filter.Params{}, adminCaller)
			So(err, ShouldBeNil)
			So(forest, ShouldBeEmpty)
		})
	})
}

func TestService_EndToEnd(t *testing.T) {
	ctx := context.Background()

	Convey("Given a populated sqlite store", t, func() {
		st, err := repository.Open(ctx, repository.DriverSQLite, filepath.Join(t.TempDir(), "skilltree.db"))
		So(err, ShouldBeNil)
		Reset(func() { _ = st.Close() })
		So(st.Migrate(ctx), ShouldBeNil)

		insert := func(e model.Employee) int64 {
			id, err := st.InsertEmployee(ctx, e)
			So(err, ShouldBeNil)
			return id
		}
		vp := insert(model.Employee{FirstName: "Vera", LastName: "Park", Email: "vera@example.com", Department: ptr("Engineering")})
		lead := insert(model.Employee{FirstName: "Liam", LastName: "Ortiz", Email: "liam@example.com", Department: ptr("Engineering"), ManagerID: &vp})
		dev := insert(model.Employee{FirstName: "Dana", LastName: "Ng", Email: "dana@example.com", Department: ptr("Engineering"), ManagerID: &lead})
		insert(model.Employee{FirstName: "Sam", LastName: "Ruiz", Email: "sam@example.com", Department: ptr("Sales"), ManagerID: &vp})

		goSkill, err := st.InsertSkill(ctx, model.Skill{Name: "Go", Category: "Languages"})
		So(err, ShouldBeNil)

		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		for _, o := range []model.ScoreObservation{
			{EmployeeID: lead, SkillID: goSkill, Score: 50, AssessedAt: at},
			{EmployeeID: lead, SkillID: goSkill, Score: 90, AssessedAt: at.Add(24 * time.Hour)},
			{EmployeeID: dev, SkillID: goSkill, Score: 70, AssessedAt: at},
		} {
			_, err := st.RecordScore(ctx, o)
			So(err, ShouldBeNil)
		}

		svc := service.New(service.WithStore(st))
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When the lead signs in", func() {
			caller, err := svc.ResolveCaller(ctx, "LIAM@example.com", "")
			So(err, ShouldBeNil)

			forest, err := svc.Hierarchy(ctx, filter.Params{}, caller)
			So(err, ShouldBeNil)

			Convey("Then they see their own subtree with latest scores", func() {
				So(len(forest), ShouldEqual, 1)
				So(forest[0].Name, ShouldEqual, "Liam Ortiz")
				So(forest[0].DirectReportCount, ShouldEqual, 1)
				g, ok := forest[0].ScoreFor(goSkill)
				So(ok, ShouldBeTrue)
				So(*g.Score, ShouldEqual, 80)
				So(g.AssessedCount, ShouldEqual, 2)
			})
		})

		Convey("When an admin switches the default to count_as_zero", func() {
			_, err := svc.UpdateSetting(ctx, adminCaller, repository.SettingNotAssessedHandling, json.RawMessage(`{"mode":"count_as_zero"}`))
			So(err, ShouldBeNil)

			forest, err := svc.Hierarchy(ctx, filter.Params{ScoringMode: "coverage"}, adminCaller)
			So(err, ShouldBeNil)

			Convey("Then unassessed members pull the root's coverage down", func() {
				So(len(forest), ShouldEqual, 1)
				g, _ := forest[0].ScoreFor(goSkill)
				So(g.TotalCount, ShouldEqual, 4)
				So(*g.Score, ShouldEqual, 50)
			})
		})

		Convey("When an admin requests the summary", func() {
			sum, err := svc.Summary(ctx, filter.Params{Roles: "Sales"}, adminCaller)
			So(err, ShouldBeNil)

			Convey("Then the role filter only narrows the filtered view", func() {
				So(sum.HasFilters, ShouldBeTrue)
				So(sum.Overall.TotalEmployees, ShouldEqual, 4)
				So(sum.Filtered.TotalEmployees, ShouldEqual, 1)
				So(sum.Filtered.Score, ShouldBeNil)
				So(len(sum.RecentAssessments), ShouldEqual, 3)
				So(sum.RecentAssessments[0].Score, ShouldEqual, 90)
			})
		})
	})
}
