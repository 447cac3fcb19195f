package rankingsapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
)

// Endpoint labels used for metrics and logs.
const (
	EndpointAthletes         = "athletes"
	EndpointTeams            = "teams"
	EndpointSnapshots        = "snapshots"
	EndpointSnapshotAthletes = "snapshot_athletes"
	EndpointSnapshotTeams    = "snapshot_teams"
	EndpointKnockout         = "knockout"
	EndpointKnockoutTeam     = "knockout_team"
	EndpointMatchups         = "matchups"
	EndpointHeadToHead       = "head_to_head"
	EndpointCommonOpponents  = "common_opponents"
	EndpointMeetMatchups     = "meet_matchups"
	EndpointLatestDate       = "latest_calculation"
)

// Knockout ranking group type for division-level rankings.
const rankGroupDivision = "D"

// Default page size of the matchup history endpoint.
const defaultMatchupLimit = 50

// ListQuery selects an athlete or team ranking list.
type ListQuery struct {
	SeasonYear int
	Division   int
	Gender     string
	Region     string
	Conference string
	Limit      int
	Offset     int
}

func (q ListQuery) values(withSeason bool) url.Values {
	v := url.Values{}
	if withSeason && q.SeasonYear > 0 {
		v.Set("season_year", strconv.Itoa(q.SeasonYear))
	}
	v.Set("division", strconv.Itoa(q.Division))
	v.Set("gender", q.Gender)
	if q.Region != "" {
		v.Set("region", q.Region)
	}
	if q.Conference != "" {
		v.Set("conference", q.Conference)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	v.Set("offset", strconv.Itoa(q.Offset))
	return v
}

// ListResponse is one page of a ranking list.
type ListResponse struct {
	Total   int               `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
	Results []rankings.Record `json:"results"`
}

// Athletes lists live athlete rankings.
func (c *Client) Athletes(ctx context.Context, q ListQuery) (ListResponse, error) {
	var out ListResponse
	if err := c.get(ctx, EndpointAthletes, "/athletes/", q.values(true), &out); err != nil {
		return ListResponse{}, err
	}
	rankings.WithKind(out.Results, rankings.KindAthlete)
	return out, nil
}

// Teams lists live team-score rankings.
func (c *Client) Teams(ctx context.Context, q ListQuery) (ListResponse, error) {
	var out ListResponse
	if err := c.get(ctx, EndpointTeams, "/teams/", q.values(true), &out); err != nil {
		return ListResponse{}, err
	}
	rankings.WithKind(out.Results, rankings.KindTeam)
	return out, nil
}

// SnapshotAthletes lists athlete rankings frozen at a snapshot date.
func (c *Client) SnapshotAthletes(ctx context.Context, date string, q ListQuery) (ListResponse, error) {
	var out ListResponse
	path := "/snapshots/" + url.PathEscape(date) + "/athletes"
	if err := c.get(ctx, EndpointSnapshotAthletes, path, q.values(false), &out); err != nil {
		return ListResponse{}, err
	}
	rankings.WithKind(out.Results, rankings.KindAthlete)
	return out, nil
}

// SnapshotTeams lists team rankings frozen at a snapshot date.
func (c *Client) SnapshotTeams(ctx context.Context, date string, q ListQuery) (ListResponse, error) {
	var out ListResponse
	path := "/snapshots/" + url.PathEscape(date) + "/teams"
	if err := c.get(ctx, EndpointSnapshotTeams, path, q.values(false), &out); err != nil {
		return ListResponse{}, err
	}
	rankings.WithKind(out.Results, rankings.KindTeam)
	return out, nil
}

// Snapshots lists the published snapshot dates, most recent first.
func (c *Client) Snapshots(ctx context.Context) ([]rankings.Snapshot, error) {
	var out struct {
		Total     int                 `json:"total"`
		Snapshots []rankings.Snapshot `json:"snapshots"`
	}
	if err := c.get(ctx, EndpointSnapshots, "/snapshots/", url.Values{}, &out); err != nil {
		return nil, err
	}
	return out.Snapshots, nil
}

// KnockoutQuery selects a Team Knockout list or a matchup listing.
type KnockoutQuery struct {
	SeasonYear int
	Division   int
	Gender     string
	Checkpoint string
	Limit      int
	Offset     int
}

func (q KnockoutQuery) values() url.Values {
	v := url.Values{}
	if q.SeasonYear > 0 {
		v.Set("season_year", strconv.Itoa(q.SeasonYear))
	}
	v.Set("rank_group_type", rankGroupDivision)
	if q.Division > 0 {
		v.Set("rank_group_fk", strconv.Itoa(q.Division))
	}
	if q.Gender != "" {
		v.Set("gender_code", q.Gender)
	}
	if q.Checkpoint != "" {
		v.Set("checkpoint_date", q.Checkpoint)
	}
	return v
}

// KnockoutPage is one page of the Team Knockout ranking.
type KnockoutPage struct {
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	Results []knockout.TeamRecord `json:"results"`
}

// Knockout fetches one page of the Team Knockout ranking. The limit is
// clamped to the server ceiling.
func (c *Client) Knockout(ctx context.Context, q KnockoutQuery) (KnockoutPage, error) {
	v := q.values()
	v.Set("limit", strconv.Itoa(clamp(q.Limit, 1, c.knockoutPageLimit, c.knockoutPageLimit)))
	v.Set("offset", strconv.Itoa(max(q.Offset, 0)))

	var out KnockoutPage
	if err := c.get(ctx, EndpointKnockout, "/team-knockout/", v, &out); err != nil {
		return KnockoutPage{}, err
	}
	return out, nil
}

// KnockoutAll pages through the Team Knockout ranking until total is reached
// or maxPages pages were read. The rows keep the backend order.
func (c *Client) KnockoutAll(ctx context.Context, q KnockoutQuery, maxPages int) ([]knockout.TeamRecord, int, error) {
	q.Limit = c.knockoutPageLimit
	q.Offset = 0
	var rows []knockout.TeamRecord
	total := 0
	for page := 0; maxPages <= 0 || page < maxPages; page++ {
		p, err := c.Knockout(ctx, q)
		if err != nil {
			return nil, 0, err
		}
		total = p.Total
		rows = append(rows, p.Results...)
		if len(p.Results) == 0 || len(rows) >= total {
			break
		}
		q.Offset += len(p.Results)
	}
	if rows == nil {
		rows = []knockout.TeamRecord{}
	}
	return rows, total, nil
}

// KnockoutTeam fetches the knockout row of one team. found is false on 404.
func (c *Client) KnockoutTeam(ctx context.Context, teamID int64, q KnockoutQuery) (row knockout.TeamRecord, found bool, err error) {
	path := "/team-knockout/" + strconv.FormatInt(teamID, 10)
	if err := c.get(ctx, EndpointKnockoutTeam, path, q.values(), &row); err != nil {
		if errors.Is(err, ErrNotFound) {
			return knockout.TeamRecord{}, false, nil
		}
		return knockout.TeamRecord{}, false, err
	}
	return row, true, nil
}

// TeamMatchups is a page of one team's matchup history with season stats.
type TeamMatchups struct {
	Total    int                `json:"total"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
	Stats    knockout.Stats     `json:"stats"`
	Matchups []knockout.Matchup `json:"matchups"`
}

// Matchups fetches a team's matchup history, most recent first.
func (c *Client) Matchups(ctx context.Context, teamID int64, q KnockoutQuery) (TeamMatchups, error) {
	v := q.values()
	v.Set("team_id", strconv.FormatInt(teamID, 10))
	v.Set("limit", strconv.Itoa(clamp(q.Limit, 1, c.knockoutPageLimit, defaultMatchupLimit)))
	v.Set("offset", strconv.Itoa(max(q.Offset, 0)))

	var out TeamMatchups
	if err := c.get(ctx, EndpointMatchups, "/team-knockout/matchups", v, &out); err != nil {
		return TeamMatchups{}, err
	}
	if out.Matchups == nil {
		out.Matchups = []knockout.Matchup{}
	}
	return out, nil
}

// HeadToHead fetches the shared history of two teams. The backend answers
// 404 when they never met; that is returned as an empty result.
func (c *Client) HeadToHead(ctx context.Context, teamA, teamB int64, q KnockoutQuery) (knockout.HeadToHead, error) {
	if teamA == teamB {
		return knockout.HeadToHead{}, knockout.ErrSameTeam
	}
	v := q.values()
	v.Set("team_a_id", strconv.FormatInt(teamA, 10))
	v.Set("team_b_id", strconv.FormatInt(teamB, 10))

	var out knockout.HeadToHead
	if err := c.get(ctx, EndpointHeadToHead, "/team-knockout/matchups/head-to-head", v, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return knockout.Empty(teamA, teamB), nil
		}
		return knockout.HeadToHead{}, err
	}
	if out.Matchups == nil {
		out.Matchups = []knockout.Matchup{}
	}
	return out, nil
}

// CommonOpponents fetches the opponents both teams have raced. A 404 means
// none and is returned as an empty result.
func (c *Client) CommonOpponents(ctx context.Context, teamA, teamB int64, q KnockoutQuery) (knockout.CommonOpponents, error) {
	if teamA == teamB {
		return knockout.CommonOpponents{}, knockout.ErrSameTeam
	}
	v := q.values()
	v.Set("team_a_id", strconv.FormatInt(teamA, 10))
	v.Set("team_b_id", strconv.FormatInt(teamB, 10))

	var out knockout.CommonOpponents
	if err := c.get(ctx, EndpointCommonOpponents, "/team-knockout/matchups/common-opponents", v, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return knockout.NoCommonOpponents(teamA, teamB), nil
		}
		return knockout.CommonOpponents{}, err
	}
	if out.Opponents == nil {
		out.Opponents = []knockout.CommonOpponent{}
	}
	return out, nil
}

// MeetMatchups fetches every matchup of one race. A 404 is an empty result.
func (c *Client) MeetMatchups(ctx context.Context, raceID int64, q KnockoutQuery) (knockout.MeetMatchups, error) {
	v := url.Values{}
	if q.SeasonYear > 0 {
		v.Set("season_year", strconv.Itoa(q.SeasonYear))
	}
	if q.Checkpoint != "" {
		v.Set("checkpoint_date", q.Checkpoint)
	}
	path := "/team-knockout/matchups/meet/" + strconv.FormatInt(raceID, 10)

	var out knockout.MeetMatchups
	if err := c.get(ctx, EndpointMeetMatchups, path, v, &out); err != nil {
		if errors.Is(err, ErrNotFound) {
			return knockout.MeetMatchups{RaceID: raceID, Matchups: []knockout.Matchup{}}, nil
		}
		return knockout.MeetMatchups{}, err
	}
	if out.Matchups == nil {
		out.Matchups = []knockout.Matchup{}
	}
	return out, nil
}

// LatestCalculation returns when the rankings were last calculated.
func (c *Client) LatestCalculation(ctx context.Context) (time.Time, error) {
	var out struct {
		CalculatedAt string `json:"calculated_at"`
	}
	if err := c.get(ctx, EndpointLatestDate, "/metadata/latest/date", url.Values{}, &out); err != nil {
		return time.Time{}, err
	}
	t, ok := rankings.ParseTimestamp(out.CalculatedAt)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w: calculated_at %q", EndpointLatestDate, ErrDecode, out.CalculatedAt)
	}
	return t, nil
}

// clamp bounds v to [lo, hi], using def when v is not positive.
func clamp(v, lo, hi, def int) int {
	if v <= 0 {
		v = def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
