package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/skilltree/internal/adapters/repository"
	service "github.com/okian/skilltree/internal/app"
	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestService_SavedViews(t *testing.T) {
	ctx := context.Background()
	ben := model.Caller{Email: "ben@example.com", Role: model.RoleUser, EmployeeID: ptr[int64](2)}
	cy := model.Caller{Email: "cy@example.com", Role: model.RoleUser, EmployeeID: ptr[int64](3)}

	Convey("Given a started service", t, func() {
		svc := startedService(newFakeStore())

		Convey("When creating a view", func() {
			v, err := svc.CreateView(ctx, ben, model.SavedView{
				OwnerEmail: "someone@else.com",
				Name:       "  Go coverage  ",
				State:      model.ViewState{ScoringMode: "coverage", Skills: []int64{10}},
			})

			Convey("Then the caller owns it and the name is trimmed", func() {
				So(err, ShouldBeNil)
				So(v.ID, ShouldBeGreaterThan, 0)
				So(v.OwnerEmail, ShouldEqual, "ben@example.com")
				So(v.Name, ShouldEqual, "Go coverage")
			})
		})

		Convey("When the view has no name", func() {
			_, err := svc.CreateView(ctx, ben, model.SavedView{Name: "   "})

			Convey("Then it is rejected", func() {
				So(errors.Is(err, service.ErrInvalidView), ShouldBeTrue)
			})
		})

		Convey("When the stored filters are invalid", func() {
			_, err := svc.CreateView(ctx, ben, model.SavedView{Name: "x", State: model.ViewState{ScoringMode: "best"}})

			Convey("Then the filter error is kept", func() {
				So(errors.Is(err, service.ErrInvalidView), ShouldBeTrue)
				So(errors.Is(err, scoring.ErrInvalidMode), ShouldBeTrue)
			})
		})
	})

	Convey("Given views owned by ada and ben", t, func() {
		svc := startedService(newFakeStore())
		private, err := svc.CreateView(ctx, adminCaller, model.SavedView{Name: "Ada only"})
		So(err, ShouldBeNil)
		shared, err := svc.CreateView(ctx, adminCaller, model.SavedView{
			Name:     "Ben's team on Go",
			IsShared: true,
			State:    model.ViewState{ScoringMode: "coverage", Skills: []int64{10}, ManagerID: ptr[int64](2)},
		})
		So(err, ShouldBeNil)
		own, err := svc.CreateView(ctx, ben, model.SavedView{Name: "Mine"})
		So(err, ShouldBeNil)

		Convey("When ben lists views", func() {
			views, err := svc.Views(ctx, ben)

			Convey("Then he sees his own and the shared one", func() {
				So(err, ShouldBeNil)
				ids := []int64{}
				for _, v := range views {
					ids = append(ids, v.ID)
				}
				So(ids, ShouldResemble, []int64{shared.ID, own.ID})
			})
		})

		Convey("When ben edits ada's shared view", func() {
			_, err := svc.UpdateView(ctx, ben, shared.ID, model.ViewPatch{Name: ptr("Hijacked")})

			Convey("Then only the owner may", func() {
				So(errors.Is(err, service.ErrNotOwner), ShouldBeTrue)
			})
		})

		Convey("When ben deletes ada's view", func() {
			err := svc.DeleteView(ctx, ben, private.ID)

			Convey("Then only the owner may", func() {
				So(errors.Is(err, service.ErrNotOwner), ShouldBeTrue)
			})
		})

		Convey("When ben updates his own view", func() {
			updated, err := svc.UpdateView(ctx, ben, own.ID, model.ViewPatch{
				Name:  ptr(" Renamed "),
				State: &model.ViewState{NotAssessed: "count_as_zero"},
			})

			Convey("Then the patch is applied", func() {
				So(err, ShouldBeNil)
				So(updated.Name, ShouldEqual, "Renamed")
				So(updated.State.NotAssessed, ShouldEqual, "count_as_zero")
			})
		})

		Convey("When an update carries invalid values", func() {
			_, blank := svc.UpdateView(ctx, ben, own.ID, model.ViewPatch{Name: ptr(" ")})
			_, badState := svc.UpdateView(ctx, ben, own.ID, model.ViewPatch{State: &model.ViewState{NotAssessed: "skip"}})

			Convey("Then both are rejected", func() {
				So(errors.Is(blank, service.ErrInvalidView), ShouldBeTrue)
				So(errors.Is(badState, scoring.ErrInvalidNotAssessed), ShouldBeTrue)
			})
		})

		Convey("When ben deletes his own view", func() {
			So(svc.DeleteView(ctx, ben, own.ID), ShouldBeNil)

			Convey("Then it is gone", func() {
				err := svc.DeleteView(ctx, ben, own.ID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an admin opens the shared view", func() {
			forest, err := svc.ViewHierarchy(ctx, adminCaller, shared.ID)

			Convey("Then its manager and skill filters apply", func() {
				So(err, ShouldBeNil)
				So(len(forest), ShouldEqual, 1)
				So(forest[0].ID, ShouldEqual, 2)
				So(len(forest[0].SkillScores), ShouldEqual, 1)
				So(*forest[0].SkillScores[0].Score, ShouldEqual, 50)
			})
		})

		Convey("When a user below the view's manager opens it", func() {
			forest, err := svc.ViewHierarchy(ctx, cy, shared.ID)

			Convey("Then the user stays scoped to their own subtree", func() {
				So(err, ShouldBeNil)
				So(len(forest), ShouldEqual, 1)
				So(forest[0].ID, ShouldEqual, 3)
				So(*forest[0].SkillScores[0].Score, ShouldEqual, 0)
			})
		})

		Convey("When ben opens ada's private view", func() {
			_, err := svc.ViewHierarchy(ctx, ben, private.ID)

			Convey("Then it looks like it does not exist", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Managers(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with three active employees", t, func() {
		st := newFakeStore()
		svc := startedService(st)

		Convey("When listing manager choices", func() {
			managers, err := svc.Managers(ctx)

			Convey("Then every active employee is offered in fetch order", func() {
				So(err, ShouldBeNil)
				So(len(managers), ShouldEqual, 3)
				So(managers[0].FullName, ShouldEqual, "Ada Root")
				So(*managers[2].Department, ShouldEqual, "Sales")
			})
		})

		Convey("When the store fails", func() {
			st.fetchErr = errors.New("connection reset")
			_, err := svc.Managers(ctx)

			Convey("Then the error is returned", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "connection reset")
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithStore(newFakeStore()))

		Convey("Then saved view operations report it", func() {
			_, err := svc.Managers(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Views(ctx, adminCaller)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.UpdateView(ctx, adminCaller, 1, model.ViewPatch{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}
