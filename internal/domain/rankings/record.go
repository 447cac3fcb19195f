// Package rankings models ranked athlete and team rows as the backend returns
// them, and the client-side steps applied to a fetched list: text search,
// offset pagination and facet derivation.
package rankings

import (
	"strconv"
	"strings"
	"time"
)

// Kind tells athlete rows from team rows.
type Kind int

// Record kinds.
const (
	KindAthlete Kind = iota
	KindTeam
)

// Record is one flat ranking row. Athlete, team-score, snapshot and knockout
// rows all decode into it; fields a row does not carry stay zero or nil.
type Record struct {
	Kind Kind `json:"-"`

	RankingID  int64  `json:"ranking_id,omitempty"`
	SeasonYear int    `json:"season_year,omitempty"`
	Division   int    `json:"division_code,omitempty"`
	Gender     string `json:"gender_code,omitempty"`
	Checkpoint string `json:"checkpoint_date,omitempty"`

	AthleteID   int64  `json:"anet_athlete_hnd,omitempty"`
	FirstName   string `json:"athlete_name_first,omitempty"`
	LastName    string `json:"athlete_name_last,omitempty"`
	AthleteName string `json:"athlete_name,omitempty"`

	TeamID     int64  `json:"anet_team_hnd,omitempty"`
	TeamName   string `json:"team_name,omitempty"`
	Region     string `json:"regl_group_name,omitempty"`
	Conference string `json:"conf_group_name,omitempty"`

	AthleteRank  int `json:"athlete_rank,omitempty"`
	TeamRank     int `json:"team_rank,omitempty"`
	KnockoutRank int `json:"knockout_rank,omitempty"`
	TeamFiveRank int `json:"team_five_rank,omitempty"`

	XCRIScore     *float64 `json:"xcri_score,omitempty"`
	TeamXCRIScore *float64 `json:"team_xcri_score,omitempty"`
	SCSScore      *float64 `json:"scs_score,omitempty"`
	SCSRank       *int     `json:"scs_rank,omitempty"`

	RacesCount      *int     `json:"races_count,omitempty"`
	SeasonAverage   *float64 `json:"season_average,omitempty"`
	BestPerformance *float64 `json:"best_performance,omitempty"`
	MostRecentRace  string   `json:"most_recent_race_date,omitempty"`

	AthletesCount *int     `json:"athletes_count,omitempty"`
	Top5Average   *float64 `json:"top5_average,omitempty"`
	Top7Average   *float64 `json:"top7_average,omitempty"`

	H2HWins    int      `json:"h2h_wins,omitempty"`
	H2HLosses  int      `json:"h2h_losses,omitempty"`
	H2HWinPct  *float64 `json:"h2h_win_pct,omitempty"`
	RankGroup  int      `json:"rank_group_fk,omitempty"`
	Calculated string   `json:"calculated_at,omitempty"`
}

// DisplayName is the athlete full name, or the team name for team rows.
func (r *Record) DisplayName() string {
	if r.Kind == KindTeam {
		return r.TeamName
	}
	if r.AthleteName != "" {
		return r.AthleteName
	}
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Rank is the position the backend assigned in the current view.
func (r *Record) Rank() int {
	switch {
	case r.KnockoutRank > 0:
		return r.KnockoutRank
	case r.Kind == KindTeam:
		return r.TeamRank
	default:
		return r.AthleteRank
	}
}

// Key identifies the row: ranking id, else athlete handle, else team handle.
func (r *Record) Key() string {
	switch {
	case r.RankingID != 0:
		return "r" + strconv.FormatInt(r.RankingID, 10)
	case r.Kind == KindAthlete && r.AthleteID != 0:
		return "a" + strconv.FormatInt(r.AthleteID, 10)
	default:
		return "t" + strconv.FormatInt(r.TeamID, 10)
	}
}

// CalculatedAt parses the calculation timestamp. ok is false when absent or malformed.
func (r *Record) CalculatedAt() (time.Time, bool) {
	return ParseTimestamp(r.Calculated)
}

// ParseTimestamp accepts RFC 3339 with or without a zone, as the backend
// emits naive ISO timestamps for some tables.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// WithKind stamps every record with k. The slice is modified in place and returned.
func WithKind(records []Record, k Kind) []Record {
	for i := range records {
		records[i].Kind = k
	}
	return records
}
