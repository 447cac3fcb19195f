package cli

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/app"
	"github.com/xcri/rankings/internal/app/matchups"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/rankings"
	"github.com/xcri/rankings/internal/present"
	"github.com/xcri/rankings/pkg/logger"
)

const defaultMatchupLimit = 50

func (a *App) controller(f app.Fetcher, h app.History) *app.Controller {
	opts := []app.Option{
		app.WithLogger(a.logger.Named("controller")),
		app.WithSeasonYear(a.cfg.SeasonYear),
		app.WithFetchLimit(a.cfg.FetchLimit),
		app.WithPageSize(a.cfg.PageSize),
		app.WithMaxKnockoutPages(a.cfg.MaxKnockoutPages),
		app.WithNetworkDebounce(a.cfg.NetworkDebounce()),
		app.WithSearchDebounce(a.cfg.SearchDebounce()),
	}
	if h != nil {
		opts = append(opts, app.WithHistory(h))
	}
	return app.New(f, opts...)
}

// listQuery merges the -query string with the individual filter flags.
func listQuery(raw string, flags map[string]string, historical bool) (url.Values, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return nil, fmt.Errorf("%w: -query: %v", ErrUsage, err)
	}
	if v := flags[filter.ParamDivision]; v != "" {
		d, ok := filter.ParseDivision(v)
		if !ok {
			return nil, fmt.Errorf("%w: %q", filter.ErrUnknownDivision, v)
		}
		q.Set(filter.ParamDivision, strconv.Itoa(d.Code))
	}
	if v := flags[filter.ParamGender]; v != "" {
		g, ok := filter.GenderByCode(v)
		if !ok {
			return nil, fmt.Errorf("%w: %q", filter.ErrUnknownGender, v)
		}
		q.Set(filter.ParamGender, g.Code)
	}
	if v := flags[filter.ParamView]; v != "" {
		view, ok := filter.ParseView(v)
		if !ok {
			return nil, fmt.Errorf("%w: %q", filter.ErrUnknownView, v)
		}
		q.Set(filter.ParamView, string(view))
	}
	if v := flags[filter.ParamSnapshot]; v != "" {
		if _, err := time.Parse(filter.SnapshotLayout, v); err != nil {
			return nil, fmt.Errorf("%w: %q", filter.ErrInvalidSnapshot, v)
		}
		q.Set(filter.ParamSnapshot, v)
	}
	for _, p := range []string{filter.ParamRegion, filter.ParamConference, filter.ParamSearch} {
		if v := flags[p]; v != "" {
			q.Set(p, v)
		}
	}
	if historical {
		q.Set(filter.ParamHistorical, "true")
	}
	return q, nil
}

func (a *App) runList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	query := fs.String("query", "", "shareable query string to start from, e.g. division=2031&gender=F")
	flags := map[string]*string{
		filter.ParamDivision:   fs.String("division", "", "division code or short name (D1, D2, NAIA, ...)"),
		filter.ParamGender:     fs.String("gender", "", "M or F"),
		filter.ParamView:       fs.String("view", "", "athletes, teamScore or knockout"),
		filter.ParamRegion:     fs.String("region", "", "region filter"),
		filter.ParamConference: fs.String("conference", "", "conference filter"),
		filter.ParamSearch:     fs.String("search", "", "athlete or team name search"),
		filter.ParamSnapshot:   fs.String("snapshot", "", "historical snapshot date (YYYY-MM-DD)"),
	}
	historical := fs.Bool("historical", false, "historical rankings; without -snapshot the season's latest snapshot is used")
	page := fs.Int("page", 1, "page number")
	if err := parseFlags(fs, args); err != nil {
		return err
	}

	values := make(map[string]string, len(flags))
	for k, v := range flags {
		values[k] = *v
	}
	q, err := listQuery(*query, values, *historical)
	if err != nil {
		return err
	}

	client, err := a.client()
	if err != nil {
		return err
	}
	ctrl := a.controller(client, nil)
	defer ctrl.Close()

	if err := ctrl.Hydrate(q.Encode()); err != nil {
		return err
	}
	a.selectLatestSnapshot(ctx, client, ctrl)
	ctrl.Flush()
	ctrl.Wait()
	if *page > 1 {
		if err := ctrl.Update(filter.Patch{Offset: filter.Ptr(ctrl.View().Pager.OffsetOf(*page))}); err != nil {
			return err
		}
	}

	a.printCalcDate(ctx, client)
	v := ctrl.View()
	if err := present.View(a.out, v); err != nil {
		return err
	}
	if v.Err != nil {
		return v.Err
	}
	return nil
}

// selectLatestSnapshot picks a date when historical mode is on without one:
// the latest snapshot of the configured season, else the most recent one.
func (a *App) selectLatestSnapshot(ctx context.Context, client *rankingsapi.Client, ctrl *app.Controller) {
	st := ctrl.State()
	if !st.Historical || st.SnapshotDate != nil {
		return
	}
	date, ok := a.latestSnapshot(ctx, client)
	if !ok {
		return
	}
	if err := ctrl.Update(filter.Patch{SnapshotDate: filter.Ptr(date)}); err != nil {
		a.logger.Warn(ctx, "snapshot date rejected", logger.String("date", date), logger.Error(err))
	}
}

func (a *App) latestSnapshot(ctx context.Context, client *rankingsapi.Client) (string, bool) {
	list, err := client.Snapshots(ctx)
	if err != nil {
		a.logger.Warn(ctx, "snapshot catalog unavailable", logger.Error(err))
		return "", false
	}
	s, ok := rankings.LatestForSeason(list, a.cfg.SeasonYear)
	if !ok {
		seasons := rankings.Seasons(list)
		if len(seasons) == 0 {
			return "", false
		}
		s, ok = rankings.LatestForSeason(list, seasons[0])
	}
	return s.Date, ok
}

func (a *App) printCalcDate(ctx context.Context, client *rankingsapi.Client) {
	cache, release, err := a.calcCache(ctx, client)
	if err != nil {
		a.logger.Warn(ctx, "session store unavailable", logger.Error(err))
		return
	}
	defer release()
	if t, ok := cache.Latest(ctx); ok {
		fmt.Fprintf(a.out, "Rankings calculated %s\n", present.Calculated(t))
	}
}

func (a *App) runSnapshots(ctx context.Context, args []string) error {
	fs := a.newFlagSet("snapshots")
	season := fs.Int("season", 0, "only list snapshots of this season")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	list, err := client.Snapshots(ctx)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	if *season > 0 {
		kept := list[:0]
		for _, s := range list {
			if s.Season == *season {
				kept = append(kept, s)
			}
		}
		list = kept
	}
	return present.Snapshots(a.out, list)
}

// scope holds the flags shared by the matchup commands.
type scope struct {
	season     *int
	division   *string
	gender     *string
	checkpoint *string
}

func (a *App) scopeFlags(fs *flag.FlagSet) scope {
	return scope{
		season:     fs.Int("season", a.cfg.SeasonYear, "season year"),
		division:   fs.String("division", "", "division code or short name"),
		gender:     fs.String("gender", "", "M or F"),
		checkpoint: fs.String("checkpoint", "", "snapshot date (YYYY-MM-DD); live when empty"),
	}
}

func (s scope) query() (matchups.Query, error) {
	q := matchups.Query{SeasonYear: *s.season, Checkpoint: *s.checkpoint}
	if *s.division != "" {
		d, ok := filter.ParseDivision(*s.division)
		if !ok {
			return q, fmt.Errorf("%w: %q", filter.ErrUnknownDivision, *s.division)
		}
		q.Division = d.Code
	}
	if *s.gender != "" {
		g, ok := filter.GenderByCode(*s.gender)
		if !ok {
			return q, fmt.Errorf("%w: %q", filter.ErrUnknownGender, *s.gender)
		}
		q.Gender = g.Code
	}
	if q.Checkpoint != "" {
		if _, err := time.Parse(filter.SnapshotLayout, q.Checkpoint); err != nil {
			return q, fmt.Errorf("%w: %q", filter.ErrInvalidSnapshot, q.Checkpoint)
		}
	}
	return q, nil
}

func (a *App) matchupService() (*matchups.Service, error) {
	client, err := a.client()
	if err != nil {
		return nil, err
	}
	return matchups.New(client, matchups.WithLogger(a.logger.Named("matchups"))), nil
}

func requireID(name string, v int64) error {
	if v <= 0 {
		return fmt.Errorf("%w: -%s is required", ErrUsage, name)
	}
	return nil
}

func (a *App) runMatchups(ctx context.Context, args []string) error {
	fs := a.newFlagSet("matchups")
	team := fs.Int64("team", 0, "team id")
	limit := fs.Int("limit", defaultMatchupLimit, "matchups per page")
	offset := fs.Int("offset", 0, "matchups to skip")
	sc := a.scopeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID("team", *team); err != nil {
		return err
	}
	q, err := sc.query()
	if err != nil {
		return err
	}
	svc, err := a.matchupService()
	if err != nil {
		return err
	}
	h, err := svc.History(ctx, *team, matchups.HistoryQuery{Query: q, Limit: *limit, Offset: *offset})
	if err != nil {
		return err
	}
	return present.History(a.out, h)
}

func (a *App) pairFlags(fs *flag.FlagSet) (teamA, teamB *int64) {
	return fs.Int64("a", 0, "first team id"), fs.Int64("b", 0, "second team id")
}

func (a *App) runHeadToHead(ctx context.Context, args []string) error {
	fs := a.newFlagSet("h2h")
	teamA, teamB := a.pairFlags(fs)
	sc := a.scopeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID("a", *teamA); err != nil {
		return err
	}
	if err := requireID("b", *teamB); err != nil {
		return err
	}
	q, err := sc.query()
	if err != nil {
		return err
	}
	svc, err := a.matchupService()
	if err != nil {
		return err
	}
	h, err := svc.HeadToHead(ctx, *teamA, *teamB, q)
	if err != nil {
		return err
	}
	return present.HeadToHead(a.out, h)
}

func (a *App) runCommon(ctx context.Context, args []string) error {
	fs := a.newFlagSet("common")
	teamA, teamB := a.pairFlags(fs)
	sc := a.scopeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID("a", *teamA); err != nil {
		return err
	}
	if err := requireID("b", *teamB); err != nil {
		return err
	}
	q, err := sc.query()
	if err != nil {
		return err
	}
	svc, err := a.matchupService()
	if err != nil {
		return err
	}
	c, err := svc.CommonOpponents(ctx, *teamA, *teamB, q)
	if err != nil {
		return err
	}
	return present.CommonOpponents(a.out, c)
}

func (a *App) runMeet(ctx context.Context, args []string) error {
	fs := a.newFlagSet("meet")
	race := fs.Int64("race", 0, "race id")
	sc := a.scopeFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := requireID("race", *race); err != nil {
		return err
	}
	q, err := sc.query()
	if err != nil {
		return err
	}
	svc, err := a.matchupService()
	if err != nil {
		return err
	}
	m, err := svc.MeetMatchups(ctx, *race, q)
	if err != nil {
		return err
	}
	return present.Meet(a.out, m)
}

func (a *App) runCalcDate(ctx context.Context, args []string) error {
	fs := a.newFlagSet("calc-date")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	cache, release, err := a.calcCache(ctx, client)
	if err != nil {
		return err
	}
	defer release()
	t, ok := cache.Latest(ctx)
	if !ok {
		_, err := fmt.Fprintln(a.out, "Calculation date unknown.")
		return err
	}
	_, err = fmt.Fprintln(a.out, t.UTC().Format(time.RFC3339))
	return err
}
