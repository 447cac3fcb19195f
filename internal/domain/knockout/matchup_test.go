package knockout_test

import (
	"errors"
	"testing"

	"github.com/xcri/rankings/internal/domain/knockout"
	. "github.com/smartystreets/goconvey/convey"
)

func matchup(id, a, b int64, scoreA, scoreB int, winner int64) knockout.Matchup {
	return knockout.Matchup{
		ID:         id,
		TeamAID:    a,
		TeamAName:  name(a),
		TeamAScore: scoreA,
		TeamBID:    b,
		TeamBName:  name(b),
		TeamBScore: scoreB,
		WinnerID:   winner,
	}
}

func name(id int64) string {
	return map[int64]string{1: "Arkansas", 2: "BYU", 3: "Colorado", 4: "Duke"}[id]
}

func TestAggregate(t *testing.T) {
	Convey("Given team 1 with two wins and one loss", t, func() {
		ms := []knockout.Matchup{
			matchup(10, 1, 2, 40, 55, 1),
			matchup(11, 3, 1, 30, 61, 3),
			matchup(12, 1, 4, 22, 90, 1),
		}

		stats, err := knockout.Aggregate(1, ms)

		Convey("Then the record is 2-1 at 66.7%", func() {
			So(err, ShouldBeNil)
			So(stats.Wins, ShouldEqual, 2)
			So(stats.Losses, ShouldEqual, 1)
			So(stats.Total, ShouldEqual, 3)
			So(stats.WinPct, ShouldEqual, 66.7)
			So(stats.String(), ShouldEqual, "2-1 (66.7%)")
		})

		Convey("Then the opponent sees the mirror record", func() {
			s3, err := knockout.Aggregate(3, ms[1:2])
			So(err, ShouldBeNil)
			So(s3.String(), ShouldEqual, "1-0 (100.0%)")
		})
	})

	Convey("Given no matchups", t, func() {
		stats, err := knockout.Aggregate(1, nil)

		Convey("Then the record is 0-0 (0.0%)", func() {
			So(err, ShouldBeNil)
			So(stats.String(), ShouldEqual, "0-0 (0.0%)")
		})
	})

	Convey("Given a matchup whose winner disagrees with the scores", t, func() {
		ms := []knockout.Matchup{matchup(20, 1, 2, 80, 20, 1)}

		stats, err := knockout.Aggregate(1, ms)

		Convey("Then the winner identity decides", func() {
			So(err, ShouldBeNil)
			So(stats.Wins, ShouldEqual, 1)
		})
	})

	Convey("Given a tied matchup", t, func() {
		ms := []knockout.Matchup{matchup(30, 1, 2, 50, 50, 1)}

		_, err := knockout.Aggregate(1, ms)

		Convey("Then a data-integrity error is returned", func() {
			So(errors.Is(err, knockout.ErrDataIntegrity), ShouldBeTrue)
			So(errors.Is(err, knockout.ErrTiedMatchup), ShouldBeTrue)
		})
	})

	Convey("Given a matchup the team was not in", t, func() {
		_, err := knockout.Aggregate(4, []knockout.Matchup{matchup(40, 1, 2, 10, 20, 1)})

		Convey("Then it is rejected", func() {
			So(errors.Is(err, knockout.ErrNotParticipant), ShouldBeTrue)
		})
	})

	Convey("Given a winner outside the pair", t, func() {
		m := matchup(50, 1, 2, 10, 20, 3)

		Convey("Then validation fails", func() {
			So(errors.Is(m.Validate(), knockout.ErrUnknownWinner), ShouldBeTrue)
		})
	})
}

func TestAnnotate(t *testing.T) {
	Convey("Given matchups from team 2's side", t, func() {
		rank := 4
		m := matchup(10, 1, 2, 40, 55, 1)
		m.TeamBRank = &rank
		results, err := knockout.Annotate(2, []knockout.Matchup{m})

		Convey("Then scores and ranks are swapped to the team's perspective", func() {
			So(err, ShouldBeNil)
			So(results[0].Won, ShouldBeFalse)
			So(results[0].OpponentName, ShouldEqual, "Arkansas")
			So(results[0].OwnScore, ShouldEqual, 55)
			So(results[0].OpponentScore, ShouldEqual, 40)
			So(*results[0].OwnRank, ShouldEqual, 4)
		})
	})
}

func TestCount(t *testing.T) {
	Convey("Given annotated results of team 1", t, func() {
		ms := []knockout.Matchup{
			matchup(10, 1, 2, 40, 55, 1),
			matchup(11, 3, 1, 30, 61, 3),
			matchup(12, 1, 4, 22, 90, 1),
		}
		results, err := knockout.Annotate(1, ms)
		So(err, ShouldBeNil)

		Convey("Then the count matches Aggregate over the same matchups", func() {
			want, err := knockout.Aggregate(1, ms)
			So(err, ShouldBeNil)
			So(knockout.Count(results), ShouldResemble, want)
			So(knockout.Count(results).String(), ShouldEqual, "2-1 (66.7%)")
		})

		Convey("Then no results count as an empty record", func() {
			So(knockout.Count(nil), ShouldResemble, knockout.Stats{})
		})
	})
}

func TestTally(t *testing.T) {
	Convey("Given shared history of teams 1 and 2", t, func() {
		ms := []knockout.Matchup{
			matchup(1, 1, 2, 30, 40, 1),
			matchup(2, 2, 1, 30, 40, 2),
			matchup(3, 1, 2, 20, 40, 1),
		}

		a, b, err := knockout.Tally(1, 2, ms)

		Convey("Then wins are counted per side", func() {
			So(err, ShouldBeNil)
			So(a, ShouldEqual, 2)
			So(b, ShouldEqual, 1)
		})

		Convey("Then the same team twice is rejected", func() {
			_, _, err := knockout.Tally(1, 1, ms)
			So(errors.Is(err, knockout.ErrSameTeam), ShouldBeTrue)
		})

		Convey("Then a foreign matchup is rejected", func() {
			_, _, err := knockout.Tally(1, 2, append(ms, matchup(4, 1, 3, 10, 20, 1)))
			So(errors.Is(err, knockout.ErrNotParticipant), ShouldBeTrue)
		})
	})
}

func TestWinPct(t *testing.T) {
	Convey("Given win percentages", t, func() {
		So(knockout.WinPct(1, 3), ShouldEqual, 33.3)
		So(knockout.WinPct(2, 3), ShouldEqual, 66.7)
		So(knockout.WinPct(0, 0), ShouldEqual, 0)
		So(knockout.WinPct(5, 5), ShouldEqual, 100)
		So(knockout.FormatRecord(7, 2), ShouldEqual, "7-2")
	})
}
