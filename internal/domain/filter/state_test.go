package filter_test

import (
	"errors"
	"testing"

	"github.com/xcri/rankings/internal/domain/filter"
	. "github.com/smartystreets/goconvey/convey"
)

func withFacets(t *testing.T) filter.State {
	t.Helper()
	s, err := filter.Apply(filter.Default(), filter.Patch{
		Region:     filter.Ptr("Mid-Atlantic"),
		Conference: filter.Ptr("Patriot"),
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	s, err = filter.Apply(s, filter.Patch{Offset: filter.Ptr(200)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return s
}

func TestDefault(t *testing.T) {
	Convey("Given the default state", t, func() {
		s := filter.Default()

		Convey("Then it selects the first division and gender on the athletes view", func() {
			So(s.Division, ShouldEqual, 2030)
			So(s.Gender, ShouldEqual, "M")
			So(s.View, ShouldEqual, filter.ViewAthletes)
			So(s.Region, ShouldBeNil)
			So(s.Conference, ShouldBeNil)
			So(s.Offset, ShouldEqual, 0)
			So(s.Search, ShouldBeEmpty)
		})
	})
}

func TestApplyResets(t *testing.T) {
	Convey("Given a state with region, conference and a later page", t, func() {
		s := withFacets(t)
		So(*s.Region, ShouldEqual, "Mid-Atlantic")
		So(s.Offset, ShouldEqual, 200)

		Convey("When the division changes", func() {
			next, err := filter.Apply(s, filter.Patch{Division: filter.Ptr(2031)})

			Convey("Then region, conference and offset reset", func() {
				So(err, ShouldBeNil)
				So(next.Division, ShouldEqual, 2031)
				So(next.Region, ShouldBeNil)
				So(next.Conference, ShouldBeNil)
				So(next.Offset, ShouldEqual, 0)
			})

			Convey("Then the input state is untouched", func() {
				So(s.Division, ShouldEqual, 2030)
				So(*s.Region, ShouldEqual, "Mid-Atlantic")
				So(s.Offset, ShouldEqual, 200)
			})
		})

		Convey("When the gender changes together with a new region", func() {
			next, err := filter.Apply(s, filter.Patch{Gender: filter.Ptr("f"), Region: filter.Ptr("West")})

			Convey("Then the facet filters are still cleared", func() {
				So(err, ShouldBeNil)
				So(next.Gender, ShouldEqual, "F")
				So(next.Region, ShouldBeNil)
				So(next.Conference, ShouldBeNil)
			})
		})

		Convey("When only the offset changes", func() {
			next, err := filter.Apply(s, filter.Patch{Offset: filter.Ptr(300)})

			Convey("Then nothing else moves", func() {
				So(err, ShouldBeNil)
				So(next.Offset, ShouldEqual, 300)
				So(*next.Region, ShouldEqual, "Mid-Atlantic")
			})
		})

		Convey("When the search text changes", func() {
			next, _ := filter.Apply(s, filter.Patch{Search: filter.Ptr("smith")})

			Convey("Then the offset resets but facets stay", func() {
				So(next.Offset, ShouldEqual, 0)
				So(*next.Conference, ShouldEqual, "Patriot")
			})
		})

		Convey("When the view changes and an offset is requested in the same patch", func() {
			next, _ := filter.Apply(s, filter.Patch{View: filter.Ptr(filter.ViewKnockout), Offset: filter.Ptr(100)})

			Convey("Then the offset still resets", func() {
				So(next.View, ShouldEqual, filter.ViewKnockout)
				So(next.Offset, ShouldEqual, 0)
			})
		})

		Convey("When a patch sets values equal to the current ones", func() {
			next, _ := filter.Apply(s, filter.Patch{Division: filter.Ptr(2030), Search: filter.Ptr("")})

			Convey("Then it is not a change and nothing resets", func() {
				So(filter.Equal(next, s), ShouldBeTrue)
			})
		})

		Convey("When the region is cleared", func() {
			next, _ := filter.Apply(s, filter.Patch{ClearRegion: true})

			Convey("Then only the region goes away", func() {
				So(next.Region, ShouldBeNil)
				So(next.Conference, ShouldNotBeNil)
				So(next.Offset, ShouldEqual, 0)
			})
		})

		Convey("When an empty region name is set", func() {
			next, _ := filter.Apply(s, filter.Patch{Region: filter.Ptr("")})

			Convey("Then it means no region filter", func() {
				So(next.Region, ShouldBeNil)
			})
		})
	})
}

func TestApplyHistorical(t *testing.T) {
	Convey("Given historical mode with a snapshot", t, func() {
		s, err := filter.Apply(filter.Default(), filter.Patch{
			Historical:   filter.Ptr(true),
			SnapshotDate: filter.Ptr("2025-10-12"),
		})
		So(err, ShouldBeNil)
		tm, ok := s.SnapshotTime()
		So(ok, ShouldBeTrue)
		So(tm.Year(), ShouldEqual, 2025)

		Convey("When historical mode is switched off", func() {
			next, _ := filter.Apply(s, filter.Patch{Historical: filter.Ptr(false)})

			Convey("Then the snapshot date is dropped", func() {
				So(next.SnapshotDate, ShouldBeNil)
				_, ok := next.SnapshotTime()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a malformed date is given", func() {
			next, err := filter.Apply(s, filter.Patch{SnapshotDate: filter.Ptr("12/10/2025")})

			Convey("Then the patch is rejected as a whole", func() {
				So(errors.Is(err, filter.ErrInvalidSnapshot), ShouldBeTrue)
				So(filter.Equal(next, s), ShouldBeTrue)
			})
		})
	})
}

func TestApplyValidation(t *testing.T) {
	Convey("Given invalid patches", t, func() {
		s := filter.Default()

		_, err := filter.Apply(s, filter.Patch{Division: filter.Ptr(9999)})
		So(errors.Is(err, filter.ErrUnknownDivision), ShouldBeTrue)

		_, err = filter.Apply(s, filter.Patch{Gender: filter.Ptr("X")})
		So(errors.Is(err, filter.ErrUnknownGender), ShouldBeTrue)

		_, err = filter.Apply(s, filter.Patch{View: filter.Ptr(filter.View("podium"))})
		So(errors.Is(err, filter.ErrUnknownView), ShouldBeTrue)

		_, err = filter.Apply(s, filter.Patch{Offset: filter.Ptr(-100)})
		So(errors.Is(err, filter.ErrInvalidOffset), ShouldBeTrue)
	})
}

func TestFetchKey(t *testing.T) {
	Convey("Given two states that differ only in search and offset", t, func() {
		a := withFacets(t)
		b, _ := filter.Apply(a, filter.Patch{Search: filter.Ptr("jones")})

		Convey("Then their fetch keys are equal", func() {
			So(a.FetchKey(), ShouldResemble, b.FetchKey())
			So(a.FetchKey() == b.FetchKey(), ShouldBeTrue)
		})

		Convey("Then the base key drops the facets", func() {
			So(a.FetchKey().Faceted(), ShouldBeTrue)
			So(a.FetchKey().Base().Faceted(), ShouldBeFalse)
			So(a.FetchKey().Base() == filter.Default().FetchKey(), ShouldBeTrue)
		})
	})

	Convey("Given historical mode without a date", t, func() {
		s, _ := filter.Apply(filter.Default(), filter.Patch{Historical: filter.Ptr(true)})

		Convey("Then the key is not fetchable", func() {
			So(s.FetchKey().Fetchable(), ShouldBeFalse)
			So(filter.Default().FetchKey().Fetchable(), ShouldBeTrue)
			So(s.FetchKey().String(), ShouldContainSubstring, "snapshot=")
		})
	})
}
