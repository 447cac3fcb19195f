package app

import (
	"context"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/domain/filter"
	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
	"github.com/xcri/rankings/pkg/logger"
)

// dataset is one resolved list fetch.
type dataset struct {
	rows []rankings.Record // rows for the selection
	all  []rankings.Record // rows before client-side facet filtering; facets come from here
	// unfiltered is true when all was not narrowed by region or conference.
	unfiltered bool
	total      int
	truncated  bool
}

// fetch routes key to its endpoint.
//
//	live athletes        GET /athletes/
//	live team score      GET /teams/
//	historical lists     GET /snapshots/{date}/athletes|teams
//	knockout             GET /team-knockout/ (paged, facets filtered locally)
func (c *Controller) fetch(ctx context.Context, key filter.FetchKey) (dataset, error) {
	if key.View == filter.ViewKnockout {
		return c.fetchKnockout(ctx, key)
	}

	q := rankingsapi.ListQuery{
		SeasonYear: c.seasonYear,
		Division:   key.Division,
		Gender:     key.Gender,
		Region:     key.Region,
		Conference: key.Conference,
		Limit:      c.fetchLimit,
	}

	var (
		resp rankingsapi.ListResponse
		err  error
	)
	switch {
	case key.Historical && key.View == filter.ViewTeamScore:
		resp, err = c.fetcher.SnapshotTeams(ctx, key.Snapshot, q)
	case key.Historical:
		resp, err = c.fetcher.SnapshotAthletes(ctx, key.Snapshot, q)
	case key.View == filter.ViewTeamScore:
		resp, err = c.fetcher.Teams(ctx, q)
	default:
		resp, err = c.fetcher.Athletes(ctx, q)
	}
	if err != nil {
		return dataset{}, err
	}
	rows := resp.Results
	if rows == nil {
		rows = []rankings.Record{}
	}
	return dataset{
		rows:       rows,
		all:        rows,
		unfiltered: !key.Faceted(),
		total:      resp.Total,
	}, nil
}

// fetchKnockout pulls the whole knockout ranking. The endpoint takes ranking
// group parameters instead of division and gender, has no facet filters and
// caps its page size, so paging and facet filtering happen here.
func (c *Controller) fetchKnockout(ctx context.Context, key filter.FetchKey) (dataset, error) {
	q := rankingsapi.KnockoutQuery{
		SeasonYear: c.seasonYear,
		Division:   key.Division,
		Gender:     key.Gender,
	}
	if key.Historical {
		q.Checkpoint = key.Snapshot
		if t, ok := rankings.ParseTimestamp(key.Snapshot); ok {
			q.SeasonYear = t.Year()
		}
	}

	rows, total, err := c.fetcher.KnockoutAll(ctx, q, c.maxKnockoutPages)
	if err != nil {
		return dataset{}, err
	}
	if ds := knockout.OrderDiscrepancies(rows); len(ds) > 0 {
		c.logger.Debug(ctx, "knockout order differs from local tie-break",
			logger.Int("discrepancies", len(ds)),
		)
	}
	all := knockout.Records(rows)
	return dataset{
		rows:       rankings.FilterFacets(all, key.Region, key.Conference),
		all:        all,
		unfiltered: true,
		total:      total,
		truncated:  total > len(rows),
	}, nil
}
