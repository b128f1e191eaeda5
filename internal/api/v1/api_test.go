package v1

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/migrations"
	"github.com/vmunix/autoani/internal/mikan"
	"github.com/vmunix/autoani/internal/scheduler"
	"github.com/vmunix/autoani/internal/subscription"
	"github.com/vmunix/autoani/pkg/release"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Apply(db)
	require.NoError(t, err)
	return db
}

type fakeScheduler struct {
	intervals map[string]int
	triggered []string
	limit     int
	runErr    string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{intervals: scheduler.DefaultIntervals()}
}

func (f *fakeScheduler) Status() []scheduler.TaskStatus {
	out := make([]scheduler.TaskStatus, 0, len(scheduler.TaskKeys))
	for _, k := range scheduler.TaskKeys {
		out = append(out, scheduler.TaskStatus{Name: k, IntervalMinutes: f.intervals[k]})
	}
	return out
}

func (f *fakeScheduler) Trigger(_ context.Context, name string, opts scheduler.RunOptions) (*scheduler.RunStatus, error) {
	if _, ok := f.intervals[name]; !ok {
		return nil, fmt.Errorf("%w: %q", scheduler.ErrUnknownTask, name)
	}
	f.triggered = append(f.triggered, name)
	f.limit = opts.Limit
	return &scheduler.RunStatus{RunID: "run-1", Manual: true, Error: f.runErr, Summary: scheduler.Summary{"submitted": 1}}, nil
}

func (f *fakeScheduler) Intervals() (map[string]int, error) {
	return f.intervals, nil
}

func (f *fakeScheduler) SetInterval(name string, minutes int) error {
	if _, ok := f.intervals[name]; !ok {
		return fmt.Errorf("%w: %q", scheduler.ErrUnknownTask, name)
	}
	if minutes < 1 {
		return scheduler.ErrInvalidInterval
	}
	f.intervals[name] = minutes
	return nil
}

func (f *fakeScheduler) ResetIntervals() (map[string]int, error) {
	f.intervals = scheduler.DefaultIntervals()
	return f.intervals, nil
}

// fakeSubscriptions delegates to the store where that is all the real
// tracker would do.
type fakeSubscriptions struct {
	store    *library.Store
	addErr   error
	added    string
	deleted  []bool
	removals int
}

func (f *fakeSubscriptions) AddByFeedURL(_ context.Context, feedURL string) (*library.Series, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = feedURL
	sr := &library.Series{ID: 2002, Title: "新番", Name: "新番", FeedURL: feedURL}
	return sr, f.store.AddSeries(sr)
}

func (f *fakeSubscriptions) Delete(_ context.Context, id int64, deleteRemote bool) (int, error) {
	f.deleted = append(f.deleted, deleteRemote)
	if err := f.store.DeleteSeries(id); err != nil {
		return 0, err
	}
	if deleteRemote {
		return f.removals, nil
	}
	return 0, nil
}

func (f *fakeSubscriptions) Stats(id int64) (map[library.Status]int, error) {
	if _, err := f.store.GetSeries(id); err != nil {
		return nil, err
	}
	return f.store.EpisodeStats(id)
}

func (f *fakeSubscriptions) Resubscribe(id int64) error {
	return f.store.ResetPreference(id)
}

type testEnv struct {
	store *library.Store
	sched *fakeScheduler
	subs  *fakeSubscriptions
	h     http.Handler
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	store := library.NewStore(db)
	history := events.NewLog(db, nil)
	store.OnTransition(history.Handler())
	env := &testEnv{
		store: store,
		sched: newFakeScheduler(),
		subs:  &fakeSubscriptions{store: store, removals: 3},
	}
	srv, err := NewWithDeps(ServerDeps{
		Library:       store,
		Scheduler:     env.sched,
		Subscriptions: env.subs,
		History:       history,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "autoani_up 1\n")
		}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	env.h = srv.Router()
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seedSeries(t *testing.T, store *library.Store) {
	t.Helper()
	require.NoError(t, store.AddSeries(&library.Series{
		ID: 1001, Title: "示例番剧", Name: "示例番剧", TotalEpisodes: ptr(12),
		FeedURL: "https://mikanani.me/RSS/Bangumi?bangumiId=3736", Subtitle: release.SubtitleSimplified,
	}))
	require.NoError(t, store.AddSeries(&library.Series{ID: 1002, Title: "完结番", Name: "完结番", Status: library.SeriesInactive}))
	for n := 1; n <= 3; n++ {
		_, err := store.UpsertEpisode(&library.Episode{
			SeriesID: 1001, Number: n, Subtitle: release.SubtitleSimplified,
			Title: fmt.Sprintf("[Group] 示例番剧 - %02d", n), TorrentLink: "https://example.com/t", Status: library.StatusPending,
		})
		require.NoError(t, err)
	}
	_, err := store.UpsertEpisode(&library.Episode{
		SeriesID: 1001, Number: 4, Subtitle: release.SubtitleTraditional,
		Title: "[Group] 示例番剧 - 04 [繁体]", TorrentLink: "https://example.com/t4", Status: library.StatusMismatched,
	})
	require.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}

func TestNewWithDeps_Validates(t *testing.T) {
	_, err := NewWithDeps(ServerDeps{})
	assert.Error(t, err)
}

func TestGetStatus(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/v1/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[statusResponse](t, rec)
	assert.Len(t, resp.Tasks, len(scheduler.TaskKeys))
	assert.Equal(t, 2, resp.Series)
	assert.Equal(t, 3, resp.Episodes["pending"])
	assert.Equal(t, 1, resp.Episodes["mismatched"])
	assert.Equal(t, 0, resp.Episodes["downloading"])
}

func TestRunTask(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPost, "/api/v1/tasks/push/run?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[runResponse](t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "run-1", resp.Run.RunID)
	assert.Equal(t, []string{"push"}, env.sched.triggered)
	assert.Equal(t, 2, env.sched.limit)

	env.sched.runErr = "openlist down"
	rec = env.do(t, http.MethodPost, "/api/v1/tasks/check/run", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[runResponse](t, rec).OK)

	rec = env.do(t, http.MethodPost, "/api/v1/tasks/backup/run", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/tasks/push/run?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIntervals(t *testing.T) {
	env := setupServer(t)

	rec := env.do(t, http.MethodPut, "/api/v1/intervals/scrape", setIntervalRequest{Minutes: 90})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, decode[intervalsResponse](t, rec).Intervals["scrape"])

	rec = env.do(t, http.MethodPut, "/api/v1/intervals/scrape", setIntervalRequest{Minutes: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/intervals/backup", setIntervalRequest{Minutes: 5})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/intervals/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 60, decode[intervalsResponse](t, rec).Intervals["scrape"])

	rec = env.do(t, http.MethodGet, "/api/v1/intervals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scheduler.DefaultIntervals(), decode[intervalsResponse](t, rec).Intervals)
}

func TestListSeries(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/v1/series", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[listSeriesResponse](t, rec).Total)

	rec = env.do(t, http.MethodGet, "/api/v1/series?status=active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[listSeriesResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "示例番剧", resp.Items[0].Name)
	assert.Equal(t, "chs", resp.Items[0].Subtitle)

	rec = env.do(t, http.MethodGet, "/api/v1/series?status=paused", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSeries(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/v1/series/1001", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 12, *decode[seriesResponse](t, rec).TotalEpisodes)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/v1/series/9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/series/abc", nil).Code)
}

func TestAddSeries(t *testing.T) {
	env := setupServer(t)
	const feedURL = "https://mikanani.me/RSS/Bangumi?bangumiId=9&subgroupid=1"

	rec := env.do(t, http.MethodPost, "/api/v1/series", addSeriesRequest{FeedURL: feedURL})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(2002), decode[seriesResponse](t, rec).ID)
	assert.Equal(t, feedURL, env.subs.added)

	tests := []struct {
		err  error
		code int
	}{
		{mikan.ErrInvalidFeedURL, http.StatusBadRequest},
		{fmt.Errorf("%q: %w", "新番", subscription.ErrAlreadySubscribed), http.StatusConflict},
		{subscription.ErrNoMatch, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusBadGateway},
	}
	for _, tt := range tests {
		env.subs.addErr = tt.err
		rec := env.do(t, http.MethodPost, "/api/v1/series", addSeriesRequest{FeedURL: feedURL})
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())
	}

	rec = env.do(t, http.MethodPost, "/api/v1/series", addSeriesRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSeries(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	rec := env.do(t, http.MethodDelete, "/api/v1/series/1001?delete_files=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, deleteSeriesResponse{Deleted: true, FilesRemoved: 3}, decode[deleteSeriesResponse](t, rec))
	assert.Equal(t, []bool{true}, env.subs.deleted)

	rec = env.do(t, http.MethodDelete, "/api/v1/series/1001", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeriesStats(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/v1/series/1001/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[statsResponse](t, rec)
	assert.Equal(t, 4, resp.Total)
	assert.Equal(t, 3, resp.Counts["pending"])
	assert.Equal(t, 1, resp.Counts["mismatched"])
	assert.Equal(t, 0, resp.Counts["completed"])
}

func TestResubscribe(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)
	require.NoError(t, env.store.MarkScraped(1001, time.Now()))

	rec := env.do(t, http.MethodPost, "/api/v1/series/1001/resubscribe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[seriesResponse](t, rec)
	assert.Empty(t, resp.Subtitle)
	assert.Nil(t, resp.LastScrapedAt)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/v1/series/9/resubscribe", nil).Code)
}

func TestListEpisodes(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	rec := env.do(t, http.MethodGet, "/api/v1/episodes?series=1001&status=mismatched", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[listEpisodesResponse](t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 4, resp.Items[0].Episode)
	assert.Equal(t, "cht", resp.Items[0].Subtitle)

	rec = env.do(t, http.MethodGet, "/api/v1/episodes?limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[listEpisodesResponse](t, rec).Items, 2)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/episodes?status=lost", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/episodes?series=x", nil).Code)
}

func TestMetricsRoute(t *testing.T) {
	env := setupServer(t)
	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "autoani_up 1")
}

func TestListHistory(t *testing.T) {
	env := setupServer(t)
	seedSeries(t, env.store)

	pending, err := env.store.EpisodesByStatus(library.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.NoError(t, env.store.Transition(pending[0], library.StatusDownloading))
	require.NoError(t, env.store.Transition(pending[0], library.StatusOpenlistExists))
	require.NoError(t, env.store.Transition(pending[1], library.StatusOpenlistExists))

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/history?episode=%d", pending[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[historyResponse](t, rec)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, library.StatusOpenlistExists, resp.Items[0].To)
	assert.Equal(t, library.StatusPending, resp.Items[1].From)

	rec = env.do(t, http.MethodGet, "/api/v1/history?series=1001&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[historyResponse](t, rec).Items, 1)

	rec = env.do(t, http.MethodGet, "/api/v1/history?series=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[historyResponse](t, rec).Total)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/history?episode=x", nil).Code)
}
