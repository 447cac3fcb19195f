// Package profile assembles the team profile and athlete score detail pages:
// the team's ranking row and roster, its season resume and its rank in every
// snapshot of the season, and an athlete's SCS breakdown.
//
// The team row and roster are required. The resume and the rank history are
// optional; failures there are logged and leave the field empty.
package profile

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/domain/rankings"
	"github.com/xcri/rankings/pkg/logger"
	"github.com/xcri/rankings/pkg/metrics"
)

const (
	defaultRosterLimit   = 100
	defaultSnapshotLimit = 500
	defaultParallel      = 4
)

// Source is the part of the backend client this package reads from.
type Source interface {
	TeamDetail(ctx context.Context, teamID int64, q rankingsapi.TeamQuery) (rankings.Record, error)
	Roster(ctx context.Context, teamID int64, q rankingsapi.RosterQuery) (rankingsapi.ListResponse, error)
	TeamResume(ctx context.Context, teamID int64, q rankingsapi.TeamQuery) (rankings.Resume, bool, error)
	AthleteComponents(ctx context.Context, athleteID int64, q rankingsapi.TeamQuery) (rankings.Components, error)
	Snapshots(ctx context.Context) ([]rankings.Snapshot, error)
	SnapshotTeams(ctx context.Context, date string, q rankingsapi.ListQuery) (rankingsapi.ListResponse, error)
}

// Query scopes a profile lookup.
type Query struct {
	SeasonYear int
	Division   int
	Gender     string
}

func (q Query) api() rankingsapi.TeamQuery {
	return rankingsapi.TeamQuery{SeasonYear: q.SeasonYear, Division: q.Division, Gender: q.Gender}
}

// Team is everything the profile page shows about one team.
type Team struct {
	Team    rankings.Record
	Roster  []rankings.Record
	Resume  *rankings.Resume
	History []rankings.RankPoint
}

// Service reads profiles.
type Service struct {
	src      Source
	logger   logger.Logger
	parallel int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithParallel bounds how many snapshots are read at once.
func WithParallel(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallel = n
		}
	}
}

// New creates a Service on src.
func New(src Source, opts ...Option) *Service {
	s := &Service{src: src, logger: logger.Get().Named("profile"), parallel: defaultParallel}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Team fetches the profile of teamID.
func (s *Service) Team(ctx context.Context, teamID int64, q Query) (Team, error) {
	team, err := s.src.TeamDetail(ctx, teamID, q.api())
	if err != nil {
		return Team{}, fmt.Errorf("team %d: %w", teamID, err)
	}
	if team.SeasonYear == 0 {
		team.SeasonYear = q.SeasonYear
	}
	if team.Division == 0 {
		team.Division = q.Division
	}
	if team.Gender == "" {
		team.Gender = q.Gender
	}

	roster, err := s.src.Roster(ctx, teamID, rankingsapi.RosterQuery{
		SeasonYear: team.SeasonYear,
		Gender:     team.Gender,
		Limit:      defaultRosterLimit,
	})
	if err != nil {
		return Team{}, fmt.Errorf("roster of team %d: %w", teamID, err)
	}

	out := Team{Team: team, Roster: roster.Results}
	scope := Query{SeasonYear: team.SeasonYear, Division: team.Division, Gender: team.Gender}
	out.Resume = s.resume(ctx, teamID, scope)
	out.History = s.history(ctx, teamID, scope)
	return out, nil
}

func (s *Service) resume(ctx context.Context, teamID int64, q Query) *rankings.Resume {
	r, found, err := s.src.TeamResume(ctx, teamID, q.api())
	if err != nil {
		metrics.RecordErrorByComponent("profile", "resume")
		s.logger.Warn(ctx, "season resume unavailable",
			logger.Int("team_id", int(teamID)),
			logger.Error(err),
		)
		return nil
	}
	if !found {
		return nil
	}
	return &r
}

// history reads the team's rank in every snapshot of the season, oldest
// first. Snapshots that fail or do not list the team are skipped.
func (s *Service) history(ctx context.Context, teamID int64, q Query) []rankings.RankPoint {
	list, err := s.src.Snapshots(ctx)
	if err != nil {
		metrics.RecordErrorByComponent("profile", "snapshots")
		s.logger.Warn(ctx, "snapshot list unavailable", logger.Error(err))
		return []rankings.RankPoint{}
	}

	var (
		mu     sync.Mutex
		points = []rankings.RankPoint{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)
	for _, snap := range list {
		if !inSeason(snap, q.SeasonYear) {
			continue
		}
		date := snap.Date
		g.Go(func() error {
			resp, err := s.src.SnapshotTeams(gctx, date, rankingsapi.ListQuery{
				Division: q.Division,
				Gender:   q.Gender,
				Limit:    defaultSnapshotLimit,
			})
			if err != nil {
				s.logger.Debug(gctx, "snapshot skipped",
					logger.String("date", date),
					logger.Error(err),
				)
				return nil
			}
			if p, ok := rankings.PointIn(date, resp.Results, teamID, q.Gender); ok {
				mu.Lock()
				points = append(points, p)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	rankings.SortPoints(points)
	return points
}

func inSeason(s rankings.Snapshot, season int) bool {
	if season <= 0 {
		return true
	}
	if s.Season != 0 {
		return s.Season == season
	}
	return strings.HasPrefix(s.Date, strconv.Itoa(season))
}

// Athlete fetches the SCS breakdown of athleteID.
func (s *Service) Athlete(ctx context.Context, athleteID int64, q Query) (rankings.Components, error) {
	c, err := s.src.AthleteComponents(ctx, athleteID, q.api())
	if err != nil {
		return rankings.Components{}, fmt.Errorf("score components of athlete %d: %w", athleteID, err)
	}
	return c, nil
}
