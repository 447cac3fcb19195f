// Package matchups answers Team Knockout detail questions: a team's matchup
// history, head-to-head records and common opponents.
//
// Every call goes to the backend; nothing is cached. Wins and losses follow
// the winner the backend recorded for each matchup.
package matchups

import (
	"context"
	"fmt"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/pkg/logger"
)

// Source is the part of the backend client this package reads from.
type Source interface {
	Matchups(ctx context.Context, teamID int64, q rankingsapi.KnockoutQuery) (rankingsapi.TeamMatchups, error)
	HeadToHead(ctx context.Context, teamA, teamB int64, q rankingsapi.KnockoutQuery) (knockout.HeadToHead, error)
	CommonOpponents(ctx context.Context, teamA, teamB int64, q rankingsapi.KnockoutQuery) (knockout.CommonOpponents, error)
	MeetMatchups(ctx context.Context, raceID int64, q rankingsapi.KnockoutQuery) (knockout.MeetMatchups, error)
}

// Query scopes a matchup lookup to a ranking group and checkpoint.
type Query struct {
	SeasonYear int
	Division   int
	Gender     string
	Checkpoint string
}

func (q Query) api() rankingsapi.KnockoutQuery {
	return rankingsapi.KnockoutQuery{
		SeasonYear: q.SeasonYear,
		Division:   q.Division,
		Gender:     q.Gender,
		Checkpoint: q.Checkpoint,
	}
}

// HistoryQuery pages through one team's matchups.
type HistoryQuery struct {
	Query
	Limit  int
	Offset int
}

// History is one page of a team's matchups, most recent first, seen from
// that team's side, with season-wide stats.
type History struct {
	TeamID  int64
	Stats   knockout.Stats
	Total   int
	Limit   int
	Offset  int
	Results []knockout.Result
}

// Service reads matchup details.
type Service struct {
	src    Source
	logger logger.Logger
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

// New creates a Service on src.
func New(src Source, opts ...Option) *Service {
	s := &Service{src: src, logger: logger.Get().Named("matchups")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History fetches a page of teamID's matchups. The stats cover the whole
// season, not only the page.
func (s *Service) History(ctx context.Context, teamID int64, q HistoryQuery) (History, error) {
	aq := q.api()
	aq.Limit, aq.Offset = q.Limit, q.Offset

	page, err := s.src.Matchups(ctx, teamID, aq)
	if err != nil {
		return History{}, fmt.Errorf("matchup history of team %d: %w", teamID, err)
	}
	results, err := knockout.Annotate(teamID, page.Matchups)
	if err != nil {
		return History{}, fmt.Errorf("matchup history of team %d: %w", teamID, err)
	}

	stats := page.Stats
	if page.Offset == 0 && len(page.Matchups) >= page.Total {
		// The page holds the whole season; the local count must agree.
		local := knockout.Count(results)
		if local.Wins != stats.Wins || local.Losses != stats.Losses {
			s.logger.Warn(ctx, "backend stats disagree with matchups",
				logger.Int("team_id", int(teamID)),
				logger.String("backend", stats.String()),
				logger.String("local", local.String()),
			)
			stats = local
		}
	}
	if stats.Total == 0 {
		stats.Total = stats.Wins + stats.Losses
	}
	stats.WinPct = knockout.WinPct(stats.Wins, stats.Total)

	return History{
		TeamID:  teamID,
		Stats:   stats,
		Total:   page.Total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		Results: results,
	}, nil
}

// HeadToHead fetches the shared history of two teams. Teams that never met
// yield a zero result. Win counts are recomputed from the matchups.
func (s *Service) HeadToHead(ctx context.Context, teamA, teamB int64, q Query) (knockout.HeadToHead, error) {
	h, err := s.src.HeadToHead(ctx, teamA, teamB, q.api())
	if err != nil {
		return knockout.HeadToHead{}, fmt.Errorf("head-to-head %d vs %d: %w", teamA, teamB, err)
	}
	aWins, bWins, err := knockout.Tally(teamA, teamB, h.Matchups)
	if err != nil {
		return knockout.HeadToHead{}, fmt.Errorf("head-to-head %d vs %d: %w", teamA, teamB, err)
	}
	if len(h.Matchups) > 0 && (aWins != h.TeamAWins || bWins != h.TeamBWins) {
		s.logger.Warn(ctx, "backend head-to-head counts disagree with matchups",
			logger.String("backend", knockout.FormatRecord(h.TeamAWins, h.TeamBWins)),
			logger.String("local", knockout.FormatRecord(aWins, bWins)),
		)
	}
	if len(h.Matchups) > 0 {
		h.TeamAWins, h.TeamBWins, h.Total = aWins, bWins, len(h.Matchups)
	}
	return h, nil
}

// CommonOpponents compares two teams through the opponents both have raced.
func (s *Service) CommonOpponents(ctx context.Context, teamA, teamB int64, q Query) (knockout.CommonOpponents, error) {
	c, err := s.src.CommonOpponents(ctx, teamA, teamB, q.api())
	if err != nil {
		return knockout.CommonOpponents{}, fmt.Errorf("common opponents %d and %d: %w", teamA, teamB, err)
	}
	if c.TeamARecord == "" || c.TeamBRecord == "" || c.Total != len(c.Opponents) {
		c.Summarize()
	}
	return c, nil
}

// MeetMatchups lists every pairwise result of one race.
func (s *Service) MeetMatchups(ctx context.Context, raceID int64, q Query) (knockout.MeetMatchups, error) {
	m, err := s.src.MeetMatchups(ctx, raceID, q.api())
	if err != nil {
		return knockout.MeetMatchups{}, fmt.Errorf("matchups of race %d: %w", raceID, err)
	}
	for i := range m.Matchups {
		if err := m.Matchups[i].Validate(); err != nil {
			return knockout.MeetMatchups{}, fmt.Errorf("matchups of race %d: %w", raceID, err)
		}
	}
	if m.Total == 0 {
		m.Total = len(m.Matchups)
	}
	return m, nil
}
