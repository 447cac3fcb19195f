package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/app"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/model"
)

func submitAll(s *app.Service, lines ...string) {
	for _, line := range lines {
		in, err := model.Parse(line)
		So(err, ShouldBeNil)
		So(s.Submit(context.Background(), in), ShouldBeNil)
	}
}

func TestService(t *testing.T) {
	Convey("Given a service over a loaded controller", t, func() {
		h := newHarness(t, "")
		h.fetcher.setList(rankingsapi.EndpointAthletes, append(athletes(2030, 250), athletes(2031, 120)...))
		So(h.ctrl.Hydrate(""), ShouldBeNil)
		h.settle()

		var mu sync.Mutex
		var rejected []error
		svc := app.NewService(h.ctrl, app.WithQueueSize(32), app.WithRejectHandler(func(_ model.Intent, err error) {
			mu.Lock()
			defer mu.Unlock()
			rejected = append(rejected, err)
		}))

		Convey("When intents are submitted before Start", func() {
			err := svc.Submit(context.Background(), model.New(model.KindNext, ""))

			Convey("Then they are refused", func() {
				So(err, ShouldEqual, app.ErrNotStarted)
			})
		})

		Convey("When a sequence of intents is applied", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			submitAll(svc, "next", "next", "prev", "region West", "division D2", "gender f")
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then they take effect in arrival order", func() {
				st := h.ctrl.State()
				So(st.Division, ShouldEqual, 2031)
				So(st.Gender, ShouldEqual, "F")
				So(st.Region, ShouldBeNil)
				So(st.Offset, ShouldEqual, 0)
				So(svc.QueueLen(context.Background()), ShouldEqual, 0)
			})
		})

		Convey("When paging intents are applied", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			submitAll(svc, "next", "next", "next", "prev")
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then next stops at the last page", func() {
				So(h.ctrl.State().Offset, ShouldEqual, 100)
			})
		})

		Convey("When a page number is applied", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			submitAll(svc, "page 9")
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then it is clamped to the last page", func() {
				So(h.ctrl.State().Offset, ShouldEqual, 200)
			})
		})

		Convey("When intents are submitted one at a time and awaited", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			errNext := svc.SubmitWait(ctx, model.New(model.KindNext, ""))
			offset := h.ctrl.State().Offset
			errBad := svc.SubmitWait(ctx, model.New(model.KindView, "podium"))

			Convey("Then each call returns once its intent was applied", func() {
				So(errNext, ShouldBeNil)
				So(offset, ShouldEqual, 100)
				So(errors.Is(errBad, filter.ErrUnknownView), ShouldBeTrue)
			})
		})

		Convey("When the same intent is submitted twice", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			in := model.New(model.KindNext, "")
			first := svc.Submit(context.Background(), in)
			second := svc.Submit(context.Background(), in)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then it is applied once", func() {
				So(first, ShouldBeNil)
				So(second, ShouldEqual, app.ErrDuplicateIntent)
				So(h.ctrl.State().Offset, ShouldEqual, 100)
			})
		})

		Convey("When an intent is invalid", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			submitAll(svc, "division D9", "view podium", "snapshot yesterday", "gender F")
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			So(svc.Drain(ctx), ShouldBeNil)

			Convey("Then it is rejected and later intents still apply", func() {
				mu.Lock()
				defer mu.Unlock()
				So(rejected, ShouldHaveLength, 3)
				So(errors.Is(rejected[0], filter.ErrUnknownDivision), ShouldBeTrue)
				So(errors.Is(rejected[1], filter.ErrUnknownView), ShouldBeTrue)
				So(errors.Is(rejected[2], filter.ErrInvalidSnapshot), ShouldBeTrue)
				So(h.ctrl.State().Gender, ShouldEqual, "F")
			})
		})

		Convey("When the service stops", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			svc.Stop()

			Convey("Then the controller is closed", func() {
				So(h.ctrl.Update(filter.Patch{Gender: filter.Ptr("F")}), ShouldEqual, app.ErrClosed)
				So(svc.Submit(context.Background(), model.New(model.KindNext, "")), ShouldEqual, app.ErrNotStarted)
			})
		})
	})
}

func TestControllerApplyIntents(t *testing.T) {
	Convey("Given a hydrated controller", t, func() {
		h := newHarness(t, "")
		So(h.ctrl.Hydrate("region=West&search=smith"), ShouldBeNil)
		ctx := context.Background()

		Convey("When facet and search intents have no value", func() {
			So(h.ctrl.Apply(ctx, model.New(model.KindRegion, "")), ShouldBeNil)
			So(h.ctrl.Apply(ctx, model.New(model.KindSearch, "")), ShouldBeNil)

			Convey("Then they clear the field", func() {
				st := h.ctrl.State()
				So(st.Region, ShouldBeNil)
				So(st.Search, ShouldEqual, "")
			})
		})

		Convey("When historical and live intents are applied", func() {
			So(h.ctrl.Apply(ctx, model.New(model.KindHistorical, "2025-10-12")), ShouldBeNil)
			So(h.ctrl.State().Historical, ShouldBeTrue)
			So(*h.ctrl.State().SnapshotDate, ShouldEqual, "2025-10-12")
			So(h.ctrl.Apply(ctx, model.New(model.KindLive, "")), ShouldBeNil)

			Convey("Then leaving historical mode drops the snapshot", func() {
				So(h.ctrl.State().Historical, ShouldBeFalse)
				So(h.ctrl.State().SnapshotDate, ShouldBeNil)
			})
		})

		Convey("When retry has nothing to fetch", func() {
			So(h.ctrl.Apply(ctx, model.New(model.KindHistorical, "")), ShouldBeNil)
			err := h.ctrl.Apply(ctx, model.New(model.KindRetry, ""))

			Convey("Then it is reported as unsupported", func() {
				So(errors.Is(err, app.ErrUnsupportedIntent), ShouldBeTrue)
			})
		})
	})
}
