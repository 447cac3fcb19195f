package knockout_test

import (
	"testing"

	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOrdering(t *testing.T) {
	Convey("Given knockout rows out of order", t, func() {
		rows := []knockout.TeamRecord{
			{TeamID: 1, Wins: 10, Losses: 2, TeamFiveRank: 3, KnockoutRank: 4},
			{TeamID: 2, Wins: 12, Losses: 0, TeamFiveRank: 5, KnockoutRank: 1},
			{TeamID: 3, Wins: 9, Losses: 2, TeamFiveRank: 1, KnockoutRank: 3},
			{TeamID: 4, Wins: 10, Losses: 2, TeamFiveRank: 2, KnockoutRank: 2},
			{TeamID: 5, Wins: 10, Losses: 2, TeamFiveRank: 0, KnockoutRank: 5},
		}

		sorted := knockout.Sort(rows)

		Convey("Then fewer losses, more wins, then secondary rank decide", func() {
			ids := []int64{}
			for _, r := range sorted {
				ids = append(ids, r.TeamID)
			}
			So(ids, ShouldResemble, []int64{2, 4, 1, 5, 3})
		})

		Convey("Then the input is not reordered", func() {
			So(rows[0].TeamID, ShouldEqual, 1)
		})

		Convey("Then discrepancies with the backend ranks are reported", func() {
			d := knockout.OrderDiscrepancies(rows)
			So(len(d), ShouldEqual, 3)
			So(d[0].TeamID, ShouldEqual, 1)
			So(d[0].ServerRank, ShouldEqual, 4)
			So(d[0].LocalRank, ShouldEqual, 3)
		})
	})

	Convey("Given rows that agree with the backend", t, func() {
		rows := []knockout.TeamRecord{
			{TeamID: 7, Wins: 3, Losses: 0, KnockoutRank: 1},
			{TeamID: 8, Wins: 2, Losses: 1, KnockoutRank: 2},
		}
		So(knockout.OrderDiscrepancies(rows), ShouldBeEmpty)
	})
}

func TestTeamRecord(t *testing.T) {
	Convey("Given a knockout row", t, func() {
		pct := 75.0
		row := knockout.TeamRecord{TeamID: 42, TeamName: "Iowa State", Region: "Midwest", KnockoutRank: 6, Wins: 6, Losses: 2, WinPct: &pct}

		Convey("Then it converts to a team list record", func() {
			rec := row.Record()
			So(rec.Kind, ShouldEqual, rankings.KindTeam)
			So(rec.DisplayName(), ShouldEqual, "Iowa State")
			So(rec.Rank(), ShouldEqual, 6)
			So(rec.H2HWins, ShouldEqual, 6)
			So(len(knockout.Records([]knockout.TeamRecord{row})), ShouldEqual, 1)
		})
	})
}

func TestHeadToHeadHelpers(t *testing.T) {
	Convey("Given a head-to-head summary", t, func() {
		h := knockout.HeadToHead{TeamAID: 1, TeamAName: "A", TeamBID: 2, TeamBName: "B", TeamAWins: 1, TeamBWins: 3, LatestWinnerID: 2}
		So(h.LatestWinnerName(), ShouldEqual, "B")
		So(h.Leader(), ShouldEqual, "B")

		e := knockout.Empty(1, 2)
		So(e.Total, ShouldEqual, 0)
		So(e.Leader(), ShouldBeEmpty)
		So(e.LatestWinnerName(), ShouldBeEmpty)
	})

	Convey("Given common opponent rows", t, func() {
		c := knockout.CommonOpponents{Opponents: []knockout.CommonOpponent{
			{OpponentID: 9, TeamAWins: 1, TeamBLosses: 1},
			{OpponentID: 10, TeamAWins: 2, TeamALosses: 1, TeamBWins: 1},
		}}
		c.Summarize()

		So(c.Total, ShouldEqual, 2)
		So(c.TeamARecord, ShouldEqual, "3-1")
		So(c.TeamBRecord, ShouldEqual, "1-1")
		So(knockout.NoCommonOpponents(1, 2).TeamARecord, ShouldEqual, "0-0")
	})
}
