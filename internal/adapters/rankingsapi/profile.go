package rankingsapi

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/xcri/rankings/internal/domain/rankings"
)

// Endpoint labels of the team profile and athlete detail reads.
const (
	EndpointTeamDetail        = "team_detail"
	EndpointRoster            = "roster"
	EndpointTeamResume        = "team_resume"
	EndpointAthleteComponents = "athlete_components"
)

// Default roster page size.
const defaultRosterLimit = 100

// TeamQuery scopes a single-team or single-athlete read. Zero fields are
// left to the backend defaults.
type TeamQuery struct {
	SeasonYear int
	Division   int
	Gender     string
}

func (q TeamQuery) values() url.Values {
	v := url.Values{}
	if q.SeasonYear > 0 {
		v.Set("season_year", strconv.Itoa(q.SeasonYear))
	}
	if q.Division > 0 {
		v.Set("division", strconv.Itoa(q.Division))
	}
	if q.Gender != "" {
		v.Set("gender", q.Gender)
	}
	return v
}

// RosterQuery pages through a team's athletes.
type RosterQuery struct {
	SeasonYear int
	Gender     string
	Limit      int
}

// TeamDetail fetches one team's live ranking row.
func (c *Client) TeamDetail(ctx context.Context, teamID int64, q TeamQuery) (rankings.Record, error) {
	var out rankings.Record
	path := "/teams/" + strconv.FormatInt(teamID, 10)
	if err := c.get(ctx, EndpointTeamDetail, path, q.values(), &out); err != nil {
		return rankings.Record{}, err
	}
	out.Kind = rankings.KindTeam
	return out, nil
}

// Roster lists the ranked athletes of one team.
func (c *Client) Roster(ctx context.Context, teamID int64, q RosterQuery) (ListResponse, error) {
	v := url.Values{}
	if q.SeasonYear > 0 {
		v.Set("season_year", strconv.Itoa(q.SeasonYear))
	}
	if q.Gender != "" {
		v.Set("gender", q.Gender)
	}
	v.Set("limit", strconv.Itoa(clamp(q.Limit, 1, defaultRosterLimit*5, defaultRosterLimit)))
	path := "/athletes/team/" + strconv.FormatInt(teamID, 10) + "/roster"

	var out ListResponse
	if err := c.get(ctx, EndpointRoster, path, v, &out); err != nil {
		return ListResponse{}, err
	}
	if out.Results == nil {
		out.Results = []rankings.Record{}
	}
	rankings.WithKind(out.Results, rankings.KindAthlete)
	return out, nil
}

// TeamResume fetches a team's season resume. found is false on 404; many
// teams have none.
func (c *Client) TeamResume(ctx context.Context, teamID int64, q TeamQuery) (r rankings.Resume, found bool, err error) {
	path := "/teams/" + strconv.FormatInt(teamID, 10) + "/resume"
	if err := c.get(ctx, EndpointTeamResume, path, q.values(), &r); err != nil {
		if errors.Is(err, ErrNotFound) {
			return rankings.Resume{}, false, nil
		}
		return rankings.Resume{}, false, err
	}
	return r, true, nil
}

// AthleteComponents fetches the SCS breakdown of one athlete.
func (c *Client) AthleteComponents(ctx context.Context, athleteID int64, q TeamQuery) (rankings.Components, error) {
	var out rankings.Components
	path := "/scs/athletes/" + strconv.FormatInt(athleteID, 10) + "/components"
	if err := c.get(ctx, EndpointAthleteComponents, path, q.values(), &out); err != nil {
		return rankings.Components{}, err
	}
	return out, nil
}
