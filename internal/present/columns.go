// Package present turns controller views and matchup results into text.
//
// Each view is described by a table of columns. One renderer draws every
// table, so adding a column never touches rendering code.
package present

import (
	"strconv"

	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
)

// Action names what selecting a cell leads to. Renderers without
// interaction ignore it.
type Action string

// Cell actions.
const (
	ActionNone         Action = ""
	ActionTeamProfile  Action = "team-profile"
	ActionMatchups     Action = "matchup-history"
	ActionAthleteLink  Action = "athlete-link"
	ActionHeadToHead   Action = "head-to-head"
	ActionScoreDetails Action = "score-details"
)

// Column describes one table column over rows of type T.
type Column[T any] struct {
	ID     string
	Label  string
	Value  func(*T) any
	Format func(any) string
	Action Action
}

// Cell renders the column for row.
func (c Column[T]) Cell(row *T) string {
	v := c.Value(row)
	if c.Format != nil {
		return c.Format(v)
	}
	return formatText(v)
}

// RecordColumn is a column of a ranking list.
type RecordColumn = Column[rankings.Record]

// ResultColumn is a column of a matchup history.
type ResultColumn = Column[knockout.Result]

// MatchupColumn is a column of a head-to-head or meet listing.
type MatchupColumn = Column[knockout.Matchup]

// OpponentColumn is a column of a common-opponents comparison.
type OpponentColumn = Column[knockout.CommonOpponent]

func regionColumn() RecordColumn {
	return RecordColumn{ID: "region", Label: "Region", Value: func(r *rankings.Record) any { return r.Region }}
}

func conferenceColumn() RecordColumn {
	return RecordColumn{ID: "conference", Label: "Conference", Value: func(r *rankings.Record) any { return r.Conference }}
}

func latestRaceColumn() RecordColumn {
	return RecordColumn{
		ID:     "latest_race",
		Label:  "Latest Race",
		Value:  func(r *rankings.Record) any { return r.MostRecentRace },
		Format: formatMonthDay,
	}
}

// AthleteColumns lists the athletes view. Score details are only reachable
// for live rankings.
func AthleteColumns(historical bool) []RecordColumn {
	scoreAction := ActionScoreDetails
	if historical {
		scoreAction = ActionNone
	}
	return []RecordColumn{
		{ID: "xcri_rank", Label: "XCRI Rank", Value: func(r *rankings.Record) any { return r.AthleteRank }, Format: formatRank},
		{ID: "athlete", Label: "Athlete", Value: func(r *rankings.Record) any { return r.DisplayName() }, Action: ActionAthleteLink},
		{ID: "team", Label: "Team", Value: func(r *rankings.Record) any { return r.TeamName }, Action: ActionTeamProfile},
		regionColumn(),
		conferenceColumn(),
		{ID: "scs_score", Label: "SCS Score", Value: func(r *rankings.Record) any { return r.SCSScore }, Format: formatFixed2, Action: scoreAction},
		{ID: "scs_rank", Label: "SCS Rank", Value: func(r *rankings.Record) any { return r.SCSRank }, Format: formatOptionalRank},
		{ID: "races", Label: "Races", Value: func(r *rankings.Record) any { return r.RacesCount }, Format: formatCount},
	}
}

// TeamScoreColumns lists the team score view. The latest race is only
// meaningful for live rankings.
func TeamScoreColumns(historical bool) []RecordColumn {
	cols := []RecordColumn{
		{ID: "xcri_rank", Label: "XCRI Rank", Value: func(r *rankings.Record) any { return r.TeamRank }, Format: formatRank},
		{ID: "team", Label: "Team", Value: func(r *rankings.Record) any { return r.TeamName }, Action: ActionTeamProfile},
		{ID: "team_score", Label: "Team Score", Value: func(r *rankings.Record) any { return r.TeamXCRIScore }, Format: formatFloor},
		regionColumn(),
		conferenceColumn(),
	}
	if !historical {
		cols = append(cols, latestRaceColumn())
	}
	return cols
}

// KnockoutColumns lists the team knockout view.
func KnockoutColumns() []RecordColumn {
	return []RecordColumn{
		{ID: "knockout_rank", Label: "KO Rank", Value: func(r *rankings.Record) any { return r.KnockoutRank }, Format: formatRank},
		{ID: "team", Label: "Team", Value: func(r *rankings.Record) any { return r.TeamName }},
		regionColumn(),
		conferenceColumn(),
		{
			ID:     "record",
			Label:  "Record (W-L)",
			Value:  func(r *rankings.Record) any { return Record(r.H2HWins, r.H2HLosses) },
			Action: ActionMatchups,
		},
		{ID: "team_five_rank", Label: "Team Five Rk", Value: func(r *rankings.Record) any { return r.TeamFiveRank }, Format: formatRank},
		latestRaceColumn(),
	}
}

// ColumnsFor picks the table of a view.
func ColumnsFor(view filter.View, historical bool) []RecordColumn {
	switch view {
	case filter.ViewTeamScore:
		return TeamScoreColumns(historical)
	case filter.ViewKnockout:
		return KnockoutColumns()
	default:
		return AthleteColumns(historical)
	}
}

// HistoryColumns lists one team's matchups from that team's side.
func HistoryColumns() []ResultColumn {
	return []ResultColumn{
		{ID: "date", Label: "Date", Value: func(r *knockout.Result) any { return r.Matchup.Date }, Format: formatMonthDay},
		{ID: "meet", Label: "Meet", Value: func(r *knockout.Result) any { return r.Matchup.MeetName }},
		{ID: "opponent", Label: "Opponent", Value: func(r *knockout.Result) any { return r.OpponentName }, Action: ActionHeadToHead},
		{ID: "opponent_rank", Label: "Opp Rank", Value: func(r *knockout.Result) any { return r.OpponentRank }, Format: formatOptionalOrdinal},
		{ID: "result", Label: "Result", Value: func(r *knockout.Result) any {
			if r.Won {
				return "W"
			}
			return "L"
		}},
		{ID: "score", Label: "Score", Value: func(r *knockout.Result) any {
			return strconv.Itoa(r.OwnScore) + "-" + strconv.Itoa(r.OpponentScore)
		}},
	}
}

// MatchupColumns lists matchups between named teams.
func MatchupColumns() []MatchupColumn {
	return []MatchupColumn{
		{ID: "date", Label: "Date", Value: func(m *knockout.Matchup) any { return m.Date }, Format: formatMonthDay},
		{ID: "meet", Label: "Meet", Value: func(m *knockout.Matchup) any { return m.MeetName }},
		{ID: "team_a", Label: "Team A", Value: func(m *knockout.Matchup) any { return m.TeamAName }},
		{ID: "team_a_score", Label: "Score", Value: func(m *knockout.Matchup) any { return strconv.Itoa(m.TeamAScore) }},
		{ID: "team_b", Label: "Team B", Value: func(m *knockout.Matchup) any { return m.TeamBName }},
		{ID: "team_b_score", Label: "Score", Value: func(m *knockout.Matchup) any { return strconv.Itoa(m.TeamBScore) }},
		{ID: "winner", Label: "Winner", Value: func(m *knockout.Matchup) any { return winnerName(m) }},
	}
}

// OpponentColumns lists the opponents two teams share.
func OpponentColumns() []OpponentColumn {
	return []OpponentColumn{
		{ID: "opponent", Label: "Opponent", Value: func(o *knockout.CommonOpponent) any { return o.OpponentName }},
		{ID: "team_a", Label: "Team A vs", Value: func(o *knockout.CommonOpponent) any {
			return knockout.FormatRecord(o.TeamAWins, o.TeamALosses)
		}},
		{ID: "team_b", Label: "Team B vs", Value: func(o *knockout.CommonOpponent) any {
			return knockout.FormatRecord(o.TeamBWins, o.TeamBLosses)
		}},
	}
}

func winnerName(m *knockout.Matchup) string {
	switch {
	case m.WinnerName != "":
		return m.WinnerName
	case m.WinnerID == m.TeamAID:
		return m.TeamAName
	case m.WinnerID == m.TeamBID:
		return m.TeamBName
	default:
		return ""
	}
}

func formatOptionalOrdinal(v any) string {
	if n, ok := v.(*int); ok && n != nil {
		return Ordinal(*n)
	}
	return Placeholder
}
