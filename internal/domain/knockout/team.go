package knockout

import (
	"sort"

	"github.com/xcri/rankings/internal/domain/rankings"
)

// TeamRecord is one row of the Team Knockout ranking.
type TeamRecord struct {
	TeamID            int64    `json:"team_id"`
	TeamName          string   `json:"team_name"`
	Region            string   `json:"regl_group_name"`
	Conference        string   `json:"conf_group_name"`
	KnockoutRank      int      `json:"knockout_rank"`
	TeamFiveRank      int      `json:"team_five_rank"`
	EliminationMethod string   `json:"elimination_method"`
	Wins              int      `json:"h2h_wins"`
	Losses            int      `json:"h2h_losses"`
	WinPct            *float64 `json:"h2h_win_pct"`
	TeamSize          *int     `json:"team_size"`
	MostRecentRace    string   `json:"most_recent_race_date"`
	Checkpoint        string   `json:"checkpoint_date"`
	SeasonYear        int      `json:"season_year"`
	RankGroup         int      `json:"rank_group_fk"`
	Gender            string   `json:"gender_code"`
}

// SecondaryRank breaks ties between teams with the same record.
// Zero means unranked.
func (t *TeamRecord) SecondaryRank() int { return t.TeamFiveRank }

// Record converts the row into the flat list record used by the list views.
func (t *TeamRecord) Record() rankings.Record {
	r := rankings.Record{
		Kind:           rankings.KindTeam,
		TeamID:         t.TeamID,
		TeamName:       t.TeamName,
		Region:         t.Region,
		Conference:     t.Conference,
		KnockoutRank:   t.KnockoutRank,
		TeamFiveRank:   t.TeamFiveRank,
		H2HWins:        t.Wins,
		H2HLosses:      t.Losses,
		H2HWinPct:      t.WinPct,
		MostRecentRace: t.MostRecentRace,
		Checkpoint:     t.Checkpoint,
		SeasonYear:     t.SeasonYear,
		Division:       t.RankGroup,
		Gender:         t.Gender,
		RankGroup:      t.RankGroup,
	}
	return r
}

// Records converts a whole knockout list, keeping the backend order.
func Records(rows []TeamRecord) []rankings.Record {
	out := make([]rankings.Record, len(rows))
	for i := range rows {
		out[i] = rows[i].Record()
	}
	return out
}

// Less orders teams by fewer losses, then more wins, then the secondary rank
// (unranked last), then team id so the order is total.
func Less(a, b *TeamRecord) bool {
	if a.Losses != b.Losses {
		return a.Losses < b.Losses
	}
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	as, bs := a.SecondaryRank(), b.SecondaryRank()
	if as != bs {
		switch {
		case as == 0:
			return false
		case bs == 0:
			return true
		default:
			return as < bs
		}
	}
	return a.TeamID < b.TeamID
}

// Sort returns a copy of rows in local record order. The backend knockout
// rank stays authoritative for display; this order is for diagnostics.
func Sort(rows []TeamRecord) []TeamRecord {
	out := append([]TeamRecord(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return Less(&out[i], &out[j]) })
	return out
}

// Discrepancy is a team whose backend rank differs from its local position.
type Discrepancy struct {
	TeamID     int64
	ServerRank int
	LocalRank  int
}

// OrderDiscrepancies compares the backend ranks of rows with the local
// record ordering. An empty result means both agree.
func OrderDiscrepancies(rows []TeamRecord) []Discrepancy {
	sorted := Sort(rows)
	var out []Discrepancy
	for i := range sorted {
		if sorted[i].KnockoutRank != i+1 {
			out = append(out, Discrepancy{TeamID: sorted[i].TeamID, ServerRank: sorted[i].KnockoutRank, LocalRank: i + 1})
		}
	}
	return out
}
