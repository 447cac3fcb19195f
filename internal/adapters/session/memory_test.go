package session_test

import (
	"context"
	"strconv"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/xcri/rankings/internal/adapters/session"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new memory session", t, func() {
		s := session.NewMemory(session.WithID("abc"))

		Convey("Then it should be empty and identified", func() {
			So(s.ID(), ShouldEqual, "abc")
			So(s.Name(), ShouldEqual, session.StoreMemory)
			_, ok, err := s.Get(ctx, "latest")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When a value is set", func() {
			stored, set, err := s.SetIfAbsent(ctx, "latest", "2025-11-02T06:15:00Z")
			So(err, ShouldBeNil)

			Convey("Then the first writer wins", func() {
				So(set, ShouldBeTrue)
				So(stored, ShouldEqual, "2025-11-02T06:15:00Z")

				again, set2, err := s.SetIfAbsent(ctx, "latest", "2030-01-01T00:00:00Z")
				So(err, ShouldBeNil)
				So(set2, ShouldBeFalse)
				So(again, ShouldEqual, "2025-11-02T06:15:00Z")

				v, ok, _ := s.Get(ctx, "latest")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "2025-11-02T06:15:00Z")
			})

			Convey("And the session ends", func() {
				So(s.End(ctx), ShouldBeNil)

				Convey("Then values are dropped and the id rotates", func() {
					_, ok, _ := s.Get(ctx, "latest")
					So(ok, ShouldBeFalse)
					So(s.ID(), ShouldNotEqual, "abc")
					So(s.Len(), ShouldEqual, 0)
				})
			})
		})

		Convey("When the key is blank", func() {
			_, _, err := s.SetIfAbsent(ctx, "", "x")

			Convey("Then it should be rejected", func() {
				So(err, ShouldEqual, session.ErrEmptyKey)
			})
		})

		Convey("When many writers race for one key", func() {
			var wg sync.WaitGroup
			var mu sync.Mutex
			winners := 0
			results := map[string]int{}
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					stored, set, err := s.SetIfAbsent(ctx, "latest", strconv.Itoa(i))
					if err != nil {
						return
					}
					mu.Lock()
					defer mu.Unlock()
					if set {
						winners++
					}
					results[stored]++
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one write is kept and everyone sees it", func() {
				So(winners, ShouldEqual, 1)
				So(len(results), ShouldEqual, 1)
			})
		})
	})
}
