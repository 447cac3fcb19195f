package cli

import (
	"context"
	"fmt"

	"github.com/xcri/rankings/internal/app/profile"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/present"
)

func (a *App) profileService() (*profile.Service, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return profile.New(client, profile.WithLogger(a.logger.Named("profile"))), nil
}

// profileQuery reads the season, division and gender of the scope flags.
// The checkpoint flag does not apply to profiles.
func profileQuery(sc scope) (profile.Query, error) {
	if *sc.checkpoint != "" {
		return profile.Query{}, fmt.Errorf("%w: -checkpoint does not apply here", ErrUsage)
	}
	q, err := sc.query()
	if err != nil {
		return profile.Query{}, err
	}
	return profile.Query{SeasonYear: q.SeasonYear, Division: q.Division, Gender: q.Gender}, nil
}

func (a *App) runTeam(ctx context.Context, args []string) error {
	fs := a.newFlagSet("team")
	team := fs.Int64("team", 0, "team id")
	sc := a.scopeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID("team", *team); err != nil {
		return err
	}
	q, err := profileQuery(sc)
	if err != nil {
		return err
	}
	svc, err := a.profileService()
	if err != nil {
		return err
	}
	p, err := svc.Team(ctx, *team, q)
	if err != nil {
		return err
	}
	return present.TeamProfile(a.out, p)
}

func (a *App) runSCS(ctx context.Context, args []string) error {
	fs := a.newFlagSet("scs")
	athlete := fs.Int64("athlete", 0, "athlete id")
	sc := a.scopeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID("athlete", *athlete); err != nil {
		return err
	}
	q, err := profileQuery(sc)
	if err != nil {
		return err
	}
	if q.Gender == "" {
		q.Gender = filter.Default().Gender
	}
	svc, err := a.profileService()
	if err != nil {
		return err
	}
	c, err := svc.Athlete(ctx, *athlete, q)
	if err != nil {
		return err
	}
	return present.Components(a.out, c)
}
