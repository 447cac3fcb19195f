package rankings

import "sort"

// Resume is the season resume the backend publishes for a team.
type Resume struct {
	ID         int64  `json:"group_resume_id"`
	SeasonYear int    `json:"season_year"`
	TeamID     int64  `json:"anet_group_hnd"`
	Division   int    `json:"division_code"`
	Gender     string `json:"gender_code"`
	HTML       string `json:"resume_html"`
	Updated    string `json:"updated_at,omitempty"`
}

// Components breaks an athlete's SCS down into its parts.
type Components struct {
	RankingID  int64  `json:"ranking_id"`
	SeasonYear int    `json:"season_year"`
	Division   int    `json:"division_code"`
	Gender     string `json:"gender_code"`
	AthleteID  int64  `json:"anet_athlete_hnd"`
	FirstName  string `json:"athlete_name_first"`
	LastName   string `json:"athlete_name_last"`
	TeamName   string `json:"team_name"`

	SAGAScore *float64 `json:"saga_score"`
	SAGARank  *int     `json:"saga_rank"`
	SEWRScore *float64 `json:"sewr_score"`
	SEWRRank  *int     `json:"sewr_rank"`
	OSMAScore *float64 `json:"osma_score"`
	OSMARank  *int     `json:"osma_rank"`
	XCRIScore *float64 `json:"xcri_score"`
	XCRIRank  *int     `json:"xcri_rank"`

	RacesUsed        *int     `json:"races_used"`
	BestAGS          *float64 `json:"best_ags"`
	AvgAGS           *float64 `json:"avg_ags"`
	WorstAGS         *float64 `json:"worst_ags"`
	BestCPR          *float64 `json:"best_cpr"`
	AvgCPR           *float64 `json:"avg_cpr"`
	WorstCPR         *float64 `json:"worst_cpr"`
	AvgRaceQuality   *float64 `json:"avg_race_quality"`
	TotalOpponents   *int     `json:"total_opponents"`
	AvgOpponentCount *float64 `json:"avg_opponent_count"`
}

// Name is the athlete's full name.
func (c *Components) Name() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// RankPoint is a team's standing in one snapshot.
type RankPoint struct {
	Date     string
	Rank     int
	Score    *float64
	Athletes *int
}

// PointIn finds team in the team rows of the snapshot taken on date. Rows of
// the other gender sharing the handle are skipped when gender is set.
func PointIn(date string, rows []Record, team int64, gender string) (RankPoint, bool) {
	for i := range rows {
		r := &rows[i]
		if r.TeamID != team || (gender != "" && r.Gender != "" && r.Gender != gender) {
			continue
		}
		return RankPoint{Date: date, Rank: r.TeamRank, Score: r.TeamXCRIScore, Athletes: r.AthletesCount}, true
	}
	return RankPoint{}, false
}

// SortPoints orders points oldest first, in place.
func SortPoints(points []RankPoint) {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
}
