package present

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xcri/rankings/internal/app/profile"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/rankings"
)

// AthleteURL is the public results page of an athlete.
func AthleteURL(id int64) string {
	return "https://www.athletic.net/athlete/" + strconv.FormatInt(id, 10) + "/cross-country/"
}

// Target resolves the action of a cell on row r to what follows it: a
// command line for this tool or an external link. It is empty when the row
// lacks the id the action needs.
func Target(a Action, r *rankings.Record) string {
	switch a {
	case ActionTeamProfile:
		if r.TeamID > 0 {
			return "team -team " + strconv.FormatInt(r.TeamID, 10)
		}
	case ActionMatchups:
		if r.TeamID > 0 {
			return "matchups -team " + strconv.FormatInt(r.TeamID, 10)
		}
	case ActionScoreDetails:
		if r.AthleteID > 0 {
			return "scs -athlete " + strconv.FormatInt(r.AthleteID, 10)
		}
	case ActionAthleteLink:
		if r.AthleteID > 0 {
			return AthleteURL(r.AthleteID)
		}
	}
	return ""
}

// PointColumn is a column of a team's rank history.
type PointColumn = Column[rankings.RankPoint]

// RosterColumns lists a team's athletes.
func RosterColumns() []RecordColumn {
	return []RecordColumn{
		{ID: "xcri_rank", Label: "XCRI Rank", Value: func(r *rankings.Record) any { return r.AthleteRank }, Format: formatRank},
		{ID: "athlete", Label: "Athlete", Value: func(r *rankings.Record) any { return r.DisplayName() }, Action: ActionAthleteLink},
		{ID: "scs_score", Label: "SCS Score", Value: func(r *rankings.Record) any { return r.SCSScore }, Format: formatFixed2, Action: ActionScoreDetails},
		{ID: "races", Label: "Races", Value: func(r *rankings.Record) any { return r.RacesCount }, Format: formatCount},
	}
}

// RankHistoryColumns lists a team's standing per snapshot.
func RankHistoryColumns() []PointColumn {
	return []PointColumn{
		{ID: "date", Label: "Snapshot", Value: func(p *rankings.RankPoint) any { return p.Date }},
		{ID: "rank", Label: "Rank", Value: func(p *rankings.RankPoint) any { return p.Rank }, Format: formatRank},
		{ID: "team_score", Label: "Team Score", Value: func(p *rankings.RankPoint) any { return p.Score }, Format: formatFloor},
		{ID: "athletes", Label: "Athletes", Value: func(p *rankings.RankPoint) any { return p.Athletes }, Format: formatCount},
	}
}

// TeamProfile writes a team's profile. Sections without data are left out.
func TeamProfile(w io.Writer, p profile.Team) error {
	t := &p.Team
	fmt.Fprintln(w, t.DisplayName())
	parts := []string{}
	if d, ok := filter.DivisionByCode(t.Division); ok {
		parts = append(parts, d.Name)
	}
	if g, ok := filter.GenderByCode(t.Gender); ok {
		parts = append(parts, g.Label)
	}
	if t.Region != "" {
		parts = append(parts, t.Region)
	}
	if t.Conference != "" {
		parts = append(parts, t.Conference)
	}
	if len(parts) > 0 {
		fmt.Fprintln(w, strings.Join(parts, " / "))
	}
	fmt.Fprintf(w, "XCRI rank: %s   Team score: %s\n", formatRank(t.TeamRank), formatFloor(t.TeamXCRIScore))

	fmt.Fprintln(w, "\nRoster")
	if len(p.Roster) == 0 {
		fmt.Fprintln(w, "No ranked athletes.")
	} else if err := Table(w, RosterColumns(), p.Roster); err != nil {
		return err
	}

	if len(p.History) > 0 {
		fmt.Fprintln(w, "\nRanking history")
		if err := Table(w, RankHistoryColumns(), p.History); err != nil {
			return err
		}
	}

	if p.Resume != nil {
		if text := ResumeText(p.Resume.HTML); text != "" {
			fmt.Fprintln(w, "\nSeason resume")
			fmt.Fprintln(w, text)
		}
	}
	return nil
}

var (
	breakTags = regexp.MustCompile(`(?i)<\s*(br|/p|/div|/li|/tr|/h[1-6])\s*/?>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
	blankRuns = regexp.MustCompile(`\n[ \t]*(\n[ \t]*)+`)
)

// ResumeText flattens resume markup to plain lines.
func ResumeText(markup string) string {
	s := breakTags.ReplaceAllString(markup, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRuns.ReplaceAllString(s, "\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Components writes an athlete's SCS breakdown.
func Components(w io.Writer, c rankings.Components) error {
	fmt.Fprintln(w, c.Name())
	if c.TeamName != "" {
		fmt.Fprintln(w, c.TeamName)
	}
	rows := []struct {
		label string
		score *float64
		rank  *int
	}{
		{"SAGA (season adjusted gap average)", c.SAGAScore, c.SAGARank},
		{"SEWR (season equal-weight rating)", c.SEWRScore, c.SEWRRank},
		{"OSMA (opponent strength)", c.OSMAScore, c.OSMARank},
		{"SCS", c.XCRIScore, c.XCRIRank},
	}
	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s %8s  rank %s\n", r.label, formatFixed2(r.score), formatOptionalRank(r.rank))
	}
	fmt.Fprintf(w, "\nRaces used: %s   Opponents: %s\n", formatCount(c.RacesUsed), formatCount(c.TotalOpponents))
	_, err := fmt.Fprintf(w, "AGS best/avg/worst: %s / %s / %s\n", formatFixed2(c.BestAGS), formatFixed2(c.AvgAGS), formatFixed2(c.WorstAGS))
	return err
}
