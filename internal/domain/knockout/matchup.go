// Package knockout models Team Knockout rankings: pairwise team matchups,
// win/loss aggregation and the head-to-head ordering of teams.
//
// Win/loss attribution always uses the winner identity carried by the
// matchup. Scores are shown but never compared to decide a result, except to
// reject ties, which the ranking rules do not allow.
package knockout

import (
	"fmt"
	"math"
)

// Matchup is one pairwise result between two teams at a race. Lower score wins.
type Matchup struct {
	ID         int64  `json:"matchup_id"`
	RaceID     int64  `json:"race_hnd"`
	Date       string `json:"race_date"`
	MeetName   string `json:"meet_name"`
	TeamAID    int64  `json:"team_a_id"`
	TeamAName  string `json:"team_a_name"`
	TeamARank  *int   `json:"team_a_rank"`
	TeamAScore int    `json:"team_a_score"`
	TeamBID    int64  `json:"team_b_id"`
	TeamBName  string `json:"team_b_name"`
	TeamBRank  *int   `json:"team_b_rank"`
	TeamBScore int    `json:"team_b_score"`
	WinnerID   int64  `json:"winner_team_id"`
	WinnerName string `json:"winner_team_name"`
	Checkpoint string `json:"checkpoint_date,omitempty"`
	SeasonYear int    `json:"season_year,omitempty"`
}

// Validate checks the invariants of a single matchup.
func (m *Matchup) Validate() error {
	if m.TeamAScore == m.TeamBScore {
		return fmt.Errorf("%w: %w: matchup %d scored %d-%d", ErrDataIntegrity, ErrTiedMatchup, m.ID, m.TeamAScore, m.TeamBScore)
	}
	if m.WinnerID != m.TeamAID && m.WinnerID != m.TeamBID {
		return fmt.Errorf("%w: %w: matchup %d winner %d", ErrDataIntegrity, ErrUnknownWinner, m.ID, m.WinnerID)
	}
	return nil
}

// Involves reports whether team took part in m.
func (m *Matchup) Involves(team int64) bool {
	return m.TeamAID == team || m.TeamBID == team
}

// Result is a matchup seen from one team's side.
type Result struct {
	Matchup       Matchup
	TeamID        int64
	Won           bool
	OpponentID    int64
	OpponentName  string
	OwnScore      int
	OpponentScore int
	OwnRank       *int
	OpponentRank  *int
}

// For returns m from team's perspective.
func (m *Matchup) For(team int64) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, err
	}
	r := Result{Matchup: *m, TeamID: team, Won: m.WinnerID == team}
	switch team {
	case m.TeamAID:
		r.OpponentID, r.OpponentName = m.TeamBID, m.TeamBName
		r.OwnScore, r.OpponentScore = m.TeamAScore, m.TeamBScore
		r.OwnRank, r.OpponentRank = m.TeamARank, m.TeamBRank
	case m.TeamBID:
		r.OpponentID, r.OpponentName = m.TeamAID, m.TeamAName
		r.OwnScore, r.OpponentScore = m.TeamBScore, m.TeamAScore
		r.OwnRank, r.OpponentRank = m.TeamBRank, m.TeamARank
	default:
		return Result{}, fmt.Errorf("%w: team %d, matchup %d", ErrNotParticipant, team, m.ID)
	}
	return r, nil
}

// Stats is a win/loss summary.
type Stats struct {
	Total  int     `json:"total_matchups"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	WinPct float64 `json:"win_pct"`
}

// Aggregate counts team's wins and losses over matchups. Every matchup must
// involve team and be valid; the first violation is returned.
func Aggregate(team int64, matchups []Matchup) (Stats, error) {
	var s Stats
	for i := range matchups {
		r, err := matchups[i].For(team)
		if err != nil {
			return Stats{}, err
		}
		if r.Won {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	s.Total = s.Wins + s.Losses
	s.WinPct = WinPct(s.Wins, s.Total)
	return s, nil
}

// Count summarizes results that were already annotated for one team.
func Count(results []Result) Stats {
	var s Stats
	for i := range results {
		if results[i].Won {
			s.Wins++
		} else {
			s.Losses++
		}
	}
	s.Total = s.Wins + s.Losses
	s.WinPct = WinPct(s.Wins, s.Total)
	return s
}

// Annotate returns every matchup from team's perspective, keeping order.
func Annotate(team int64, matchups []Matchup) ([]Result, error) {
	out := make([]Result, 0, len(matchups))
	for i := range matchups {
		r, err := matchups[i].For(team)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Tally counts wins of each side over the matchups two teams share.
func Tally(teamA, teamB int64, matchups []Matchup) (aWins, bWins int, err error) {
	if teamA == teamB {
		return 0, 0, ErrSameTeam
	}
	for i := range matchups {
		m := &matchups[i]
		if !m.Involves(teamA) || !m.Involves(teamB) {
			return 0, 0, fmt.Errorf("%w: matchup %d is not %d vs %d", ErrNotParticipant, m.ID, teamA, teamB)
		}
		if err := m.Validate(); err != nil {
			return 0, 0, err
		}
		if m.WinnerID == teamA {
			aWins++
		} else {
			bWins++
		}
	}
	return aWins, bWins, nil
}

// WinPct is wins/total as a percentage rounded to one decimal. Zero when total is zero.
func WinPct(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(wins)*1000/float64(total)) / 10
}

// FormatRecord renders "W-L".
func FormatRecord(wins, losses int) string {
	return fmt.Sprintf("%d-%d", wins, losses)
}

// String renders "W-L (x.x%)".
func (s Stats) String() string {
	return fmt.Sprintf("%s (%.1f%%)", FormatRecord(s.Wins, s.Losses), s.WinPct)
}
