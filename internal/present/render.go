package present

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/xcri/rankings/internal/app"
	"github.com/xcri/rankings/internal/app/matchups"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
)

// Table writes rows under cols as aligned text.
func Table[T any](w io.Writer, cols []Column[T], rows []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))
	cells := make([]string, len(cols))
	for i := range rows {
		for j, c := range cols {
			cells[j] = c.Cell(&rows[i])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// Heading describes the selection of s, e.g. "NCAA Division I / Men / Athletes".
func Heading(s filter.State) string {
	parts := make([]string, 0, 6)
	if d, ok := filter.DivisionByCode(s.Division); ok {
		parts = append(parts, d.Name)
	}
	if g, ok := filter.GenderByCode(s.Gender); ok {
		parts = append(parts, g.Label)
	}
	parts = append(parts, s.View.Label())
	if s.Region != nil {
		parts = append(parts, "region "+*s.Region)
	}
	if s.Conference != nil {
		parts = append(parts, "conference "+*s.Conference)
	}
	h := strings.Join(parts, " / ")
	switch {
	case s.Historical && s.SnapshotDate != nil:
		h += " (snapshot " + *s.SnapshotDate + ")"
	case s.Historical:
		h += " (historical)"
	}
	if s.Search != "" {
		h += fmt.Sprintf(" matching %q", s.Search)
	}
	return h
}

// PagerLine renders "Page 2 of 3 (250 results)".
func PagerLine(p rankings.Pager) string {
	noun := "results"
	if p.Total == 1 {
		noun = "result"
	}
	return fmt.Sprintf("Page %d of %d (%d %s)", p.Page(), p.Pages(), p.Total, noun)
}

// View writes a controller view: heading, status, table and pager.
func View(w io.Writer, v app.View) error {
	fmt.Fprintln(w, Heading(v.State))
	switch {
	case v.Err != nil:
		_, err := fmt.Fprintf(w, "Error: %v\nType \"retry\" to try again.\n", v.Err)
		return err
	case v.Loading && len(v.Results) == 0:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case v.Empty != app.NotEmpty:
		_, err := fmt.Fprintln(w, v.Empty.String())
		return err
	}
	if err := Table(w, ColumnsFor(v.State.View, v.State.Historical), v.Results); err != nil {
		return err
	}
	line := PagerLine(v.Pager)
	if v.Loading {
		line += " updating..."
	}
	if v.Searching {
		line += " searching..."
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// History writes one page of a team's matchups.
func History(w io.Writer, h matchups.History) error {
	fmt.Fprintf(w, "Record: %s\n", h.Stats)
	if len(h.Results) == 0 {
		_, err := fmt.Fprintln(w, "No matchups.")
		return err
	}
	if err := Table(w, HistoryColumns(), h.Results); err != nil {
		return err
	}
	p := rankings.Pager{Total: h.Total, Limit: h.Limit, Offset: h.Offset}
	_, err := fmt.Fprintln(w, PagerLine(p))
	return err
}

// HeadToHead writes the shared history of two teams.
func HeadToHead(w io.Writer, h knockout.HeadToHead) error {
	a, b := teamLabel(h.TeamAName, h.TeamAID), teamLabel(h.TeamBName, h.TeamBID)
	if h.Total == 0 {
		_, err := fmt.Fprintf(w, "%s and %s have not met.\n", a, b)
		return err
	}
	record := knockout.FormatRecord(h.TeamAWins, h.TeamBWins)
	switch leader := h.Leader(); leader {
	case "":
		fmt.Fprintf(w, "%s vs %s: series tied %s\n", a, b, record)
	case h.TeamAName:
		fmt.Fprintf(w, "%s vs %s: %s leads %s\n", a, b, leader, record)
	default:
		fmt.Fprintf(w, "%s vs %s: %s leads %s\n", a, b, leader, knockout.FormatRecord(h.TeamBWins, h.TeamAWins))
	}
	if name := h.LatestWinnerName(); name != "" {
		fmt.Fprintf(w, "Most recent: %s won on %s\n", name, MonthDay(h.LatestDate))
	}
	return Table(w, MatchupColumns(), h.Matchups)
}

// CommonOpponents writes two teams' records against shared opponents.
func CommonOpponents(w io.Writer, c knockout.CommonOpponents) error {
	a, b := teamLabel(c.TeamAName, c.TeamAID), teamLabel(c.TeamBName, c.TeamBID)
	if c.Total == 0 {
		_, err := fmt.Fprintf(w, "%s and %s have no common opponents.\n", a, b)
		return err
	}
	fmt.Fprintf(w, "%d common opponents. %s: %s, %s: %s\n", c.Total, a, c.TeamARecord, b, c.TeamBRecord)
	return Table(w, OpponentColumns(), c.Opponents)
}

// Meet writes every matchup of one race.
func Meet(w io.Writer, m knockout.MeetMatchups) error {
	name := m.MeetName
	if name == "" {
		name = fmt.Sprintf("Race %d", m.RaceID)
	}
	fmt.Fprintf(w, "%s (%s): %d matchups\n", name, MonthDay(m.Date), m.Total)
	return Table(w, MatchupColumns(), m.Matchups)
}

// Snapshots writes the snapshot catalog.
func Snapshots(w io.Writer, list []rankings.Snapshot) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No snapshots published.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Date\tSeason\tName")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", s.Date, s.Season, s.DisplayName)
	}
	return tw.Flush()
}

func teamLabel(name string, id int64) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("team %d", id)
}
