package knockout

// HeadToHead is the shared history of two teams.
type HeadToHead struct {
	TeamAID        int64     `json:"team_a_id"`
	TeamAName      string    `json:"team_a_name"`
	TeamBID        int64     `json:"team_b_id"`
	TeamBName      string    `json:"team_b_name"`
	Total          int       `json:"total_matchups"`
	TeamAWins      int       `json:"team_a_wins"`
	TeamBWins      int       `json:"team_b_wins"`
	LatestDate     string    `json:"latest_matchup_date"`
	LatestWinnerID int64     `json:"latest_winner_id"`
	Matchups       []Matchup `json:"matchups"`
}

// Empty is a head-to-head with no shared races.
func Empty(teamA, teamB int64) HeadToHead {
	return HeadToHead{TeamAID: teamA, TeamBID: teamB, Matchups: []Matchup{}}
}

// LatestWinnerName resolves LatestWinnerID to a team name.
func (h *HeadToHead) LatestWinnerName() string {
	switch h.LatestWinnerID {
	case 0:
		return ""
	case h.TeamAID:
		return h.TeamAName
	case h.TeamBID:
		return h.TeamBName
	default:
		return ""
	}
}

// Leader names the team with more wins, or "" when level.
func (h *HeadToHead) Leader() string {
	switch {
	case h.TeamAWins > h.TeamBWins:
		return h.TeamAName
	case h.TeamBWins > h.TeamAWins:
		return h.TeamBName
	default:
		return ""
	}
}

// CommonOpponent is one opponent both teams have raced.
type CommonOpponent struct {
	OpponentID   int64  `json:"opponent_id"`
	OpponentName string `json:"opponent_name"`
	TeamAWins    int    `json:"team_a_wins"`
	TeamALosses  int    `json:"team_a_losses"`
	TeamBWins    int    `json:"team_b_wins"`
	TeamBLosses  int    `json:"team_b_losses"`
}

// CommonOpponents compares two teams through the opponents they share.
type CommonOpponents struct {
	TeamAID     int64            `json:"team_a_id"`
	TeamAName   string           `json:"team_a_name"`
	TeamBID     int64            `json:"team_b_id"`
	TeamBName   string           `json:"team_b_name"`
	Total       int              `json:"total_common_opponents"`
	TeamARecord string           `json:"team_a_record_vs_common"`
	TeamBRecord string           `json:"team_b_record_vs_common"`
	Opponents   []CommonOpponent `json:"common_opponents"`
}

// NoCommonOpponents is the result for two teams without shared opponents.
func NoCommonOpponents(teamA, teamB int64) CommonOpponents {
	return CommonOpponents{
		TeamAID:     teamA,
		TeamBID:     teamB,
		TeamARecord: FormatRecord(0, 0),
		TeamBRecord: FormatRecord(0, 0),
		Opponents:   []CommonOpponent{},
	}
}

// Summarize recomputes the summary records from the opponent rows.
func (c *CommonOpponents) Summarize() {
	var aw, al, bw, bl int
	for _, o := range c.Opponents {
		aw += o.TeamAWins
		al += o.TeamALosses
		bw += o.TeamBWins
		bl += o.TeamBLosses
	}
	c.Total = len(c.Opponents)
	c.TeamARecord = FormatRecord(aw, al)
	c.TeamBRecord = FormatRecord(bw, bl)
}

// MeetMatchups lists every pairwise result of one race.
type MeetMatchups struct {
	RaceID   int64     `json:"race_hnd"`
	MeetName string    `json:"meet_name"`
	Date     string    `json:"race_date"`
	Total    int       `json:"total_matchups"`
	Matchups []Matchup `json:"matchups"`
}
