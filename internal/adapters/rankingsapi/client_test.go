package rankingsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts = append([]Option{WithRetryInterval(time.Millisecond)}, opts...)
	c, err := New(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}

func TestAthletes_SendsFilterParams(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(t, w, http.StatusOK, map[string]any{
			"total": 2, "limit": 50000, "offset": 0,
			"results": []map[string]any{
				{"ranking_id": 1, "athlete_name_first": "Ana", "athlete_name_last": "Lee", "team_name": "Stanford", "athlete_rank": 1, "xcri_score": 812.5},
				{"ranking_id": 2, "athlete_name_first": "Bo", "athlete_name_last": "Ray", "team_name": "BYU", "athlete_rank": 2},
			},
		})
	})

	resp, err := c.Athletes(context.Background(), ListQuery{SeasonYear: 2025, Division: 2030, Gender: "M", Region: "West", Limit: 50000})
	require.NoError(t, err)

	assert.Equal(t, "/athletes/", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "2025", q.Get("season_year"))
	assert.Equal(t, "2030", q.Get("division"))
	assert.Equal(t, "M", q.Get("gender"))
	assert.Equal(t, "West", q.Get("region"))
	assert.False(t, q.Has("conference"))
	assert.Equal(t, "50000", q.Get("limit"))
	assert.NotEmpty(t, got.Header.Get(RequestIDHeader))

	require.Len(t, resp.Results, 2)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, rankings.KindAthlete, resp.Results[0].Kind)
	assert.Equal(t, "Ana Lee", resp.Results[0].DisplayName())
	require.NotNil(t, resp.Results[0].XCRIScore)
	assert.InDelta(t, 812.5, *resp.Results[0].XCRIScore, 0.001)
	assert.Nil(t, resp.Results[1].XCRIScore)
}

func TestSnapshotTeams_UsesDatePath(t *testing.T) {
	var path string
	var hasSeason bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		hasSeason = r.URL.Query().Has("season_year")
		writeJSON(t, w, http.StatusOK, map[string]any{"total": 1, "results": []map[string]any{{"anet_team_hnd": 9, "team_name": "Iowa State", "team_rank": 3}}})
	})

	resp, err := c.SnapshotTeams(context.Background(), "2025-10-12", ListQuery{SeasonYear: 2025, Division: 2030, Gender: "F"})
	require.NoError(t, err)
	assert.Equal(t, "/snapshots/2025-10-12/teams", path)
	assert.False(t, hasSeason)
	assert.Equal(t, rankings.KindTeam, resp.Results[0].Kind)
	assert.Equal(t, 3, resp.Results[0].Rank())
}

func TestGet_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(t, w, http.StatusServiceUnavailable, map[string]string{"detail": "warming up"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"total": 0, "results": []any{}})
	}, WithMaxRetries(2))

	_, err := c.Teams(context.Background(), ListQuery{Division: 2030, Gender: "M"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusBadGateway, map[string]string{"detail": "down"})
	}, WithMaxRetries(1))

	_, err := c.Teams(context.Background(), ListQuery{Division: 2030, Gender: "M"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, http.StatusBadGateway, StatusCode(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "limit too large"}}})
	}, WithMaxRetries(3))

	_, err := c.Athletes(context.Background(), ListQuery{Division: 2030, Gender: "M"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
	assert.Contains(t, err.Error(), "limit too large")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGet_MalformedPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"total": "many"`))
	})

	_, err := c.Athletes(context.Background(), ListQuery{Division: 2030, Gender: "M"})
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestGet_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]any{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Athletes(ctx, ListQuery{Division: 2030, Gender: "M"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestKnockoutAll_PagesAtServerCeiling(t *testing.T) {
	const total = 1100
	var limits []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limits = append(limits, q.Get("limit"))
		assert.Equal(t, "D", q.Get("rank_group_type"))
		assert.Equal(t, "2031", q.Get("rank_group_fk"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		var rows []map[string]any
		for i := offset; i < offset+limit && i < total; i++ {
			rows = append(rows, map[string]any{"team_id": i + 1, "team_name": "T" + strconv.Itoa(i+1), "knockout_rank": i + 1})
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"total": total, "limit": limit, "offset": offset, "results": rows})
	})

	rows, got, err := c.KnockoutAll(context.Background(), KnockoutQuery{SeasonYear: 2025, Division: 2031, Gender: "F"}, 10)
	require.NoError(t, err)
	assert.Equal(t, total, got)
	assert.Len(t, rows, total)
	assert.Equal(t, []string{"500", "500", "500"}, limits)
	assert.Equal(t, 1100, rows[len(rows)-1].KnockoutRank)
}

func TestKnockoutAll_RespectsPageBound(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		rows := make([]map[string]any, 500)
		for i := range rows {
			rows[i] = map[string]any{"team_id": i}
		}
		writeJSON(t, w, http.StatusOK, map[string]any{"total": 100000, "results": rows})
	})

	rows, _, err := c.KnockoutAll(context.Background(), KnockoutQuery{Division: 2030}, 2)
	require.NoError(t, err)
	assert.Len(t, rows, 1000)
	assert.Equal(t, int32(2), calls.Load())
}

func TestKnockout_ClampsLimit(t *testing.T) {
	var limit string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		limit = r.URL.Query().Get("limit")
		writeJSON(t, w, http.StatusOK, map[string]any{"total": 0, "results": []any{}})
	})

	_, err := c.Knockout(context.Background(), KnockoutQuery{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, "500", limit)
}

func TestMatchups_DecodesStats(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		writeJSON(t, w, http.StatusOK, map[string]any{
			"total": 3, "limit": 50, "offset": 0,
			"stats": map[string]any{"total_matchups": 3, "wins": 2, "losses": 1, "win_pct": 66.7},
			"matchups": []map[string]any{
				{"matchup_id": 1, "race_date": "2025-10-31", "team_a_id": 7, "team_b_id": 8, "team_a_score": 40, "team_b_score": 60, "winner_team_id": 7},
			},
		})
	})

	out, err := c.Matchups(context.Background(), 7, KnockoutQuery{SeasonYear: 2025, Division: 2030, Gender: "M"})
	require.NoError(t, err)
	assert.Equal(t, "/team-knockout/matchups", got.URL.Path)
	assert.Equal(t, "7", got.URL.Query().Get("team_id"))
	assert.Equal(t, "50", got.URL.Query().Get("limit"))
	assert.Equal(t, knockout.Stats{Total: 3, Wins: 2, Losses: 1, WinPct: 66.7}, out.Stats)
	assert.Len(t, out.Matchups, 1)
}

func TestHeadToHead_NotFoundIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "No matchups found"})
	})

	h, err := c.HeadToHead(context.Background(), 1, 2, KnockoutQuery{})
	require.NoError(t, err)
	assert.Equal(t, 0, h.Total)
	assert.Equal(t, int64(1), h.TeamAID)
	assert.NotNil(t, h.Matchups)
}

func TestHeadToHead_SameTeamSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := c.HeadToHead(context.Background(), 5, 5, KnockoutQuery{})
	assert.True(t, errors.Is(err, knockout.ErrSameTeam))
	_, err = c.CommonOpponents(context.Background(), 5, 5, KnockoutQuery{})
	assert.True(t, errors.Is(err, knockout.ErrSameTeam))
	assert.Equal(t, int32(0), calls.Load())
}

func TestCommonOpponents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("team_b_id") == "3" {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "none"})
			return
		}
		writeJSON(t, w, http.StatusOK, map[string]any{
			"team_a_id": 1, "team_b_id": 2, "total_common_opponents": 1,
			"team_a_record_vs_common": "2-0", "team_b_record_vs_common": "1-1",
			"common_opponents": []map[string]any{{"opponent_id": 9, "opponent_name": "Utah", "team_a_wins": 2, "team_b_wins": 1, "team_b_losses": 1}},
		})
	})

	out, err := c.CommonOpponents(context.Background(), 1, 2, KnockoutQuery{})
	require.NoError(t, err)
	assert.Equal(t, "2-0", out.TeamARecord)
	require.Len(t, out.Opponents, 1)
	assert.Equal(t, "Utah", out.Opponents[0].OpponentName)

	none, err := c.CommonOpponents(context.Background(), 1, 3, KnockoutQuery{})
	require.NoError(t, err)
	assert.Equal(t, "0-0", none.TeamARecord)
	assert.Empty(t, none.Opponents)
}

func TestMeetMatchups(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		writeJSON(t, w, http.StatusOK, map[string]any{"race_hnd": 77, "meet_name": "Pre-Nats", "total_matchups": 0})
	})

	out, err := c.MeetMatchups(context.Background(), 77, KnockoutQuery{SeasonYear: 2025})
	require.NoError(t, err)
	assert.Equal(t, "/team-knockout/matchups/meet/77", path)
	assert.Equal(t, "Pre-Nats", out.MeetName)
	assert.NotNil(t, out.Matchups)
}

func TestKnockoutTeam_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "missing"})
	})

	_, found, err := c.KnockoutTeam(context.Background(), 4, KnockoutQuery{})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSnapshotsAndLatestCalculation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/snapshots/":
			writeJSON(t, w, http.StatusOK, map[string]any{"total": 1, "snapshots": []map[string]any{{"date": "2025-11-01", "season": 2025, "display_name": "Nov 1"}}})
		case "/metadata/latest/date":
			writeJSON(t, w, http.StatusOK, map[string]string{"calculated_at": "2025-11-02T06:15:00"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	snaps, err := c.Snapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "2025-11-01", snaps[0].Date)

	at, err := c.LatestCalculation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2025, at.Year())
	assert.Equal(t, 6, at.Hour())
}

func TestAPIError(t *testing.T) {
	assert.True(t, errors.Is(&APIError{StatusCode: 404}, ErrNotFound))
	assert.True(t, errors.Is(&APIError{StatusCode: 429}, ErrUpstream))
	assert.True(t, errors.Is(&APIError{StatusCode: 400}, ErrBadRequest))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.Equal(t, "not_found", getErrorType(404))
	assert.Equal(t, "high", getErrorSeverity(503))
}
