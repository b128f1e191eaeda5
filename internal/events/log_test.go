package events

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/migrations"
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

func ev(episodeID, seriesID int64, from, to library.Status, at time.Time) library.TransitionEvent {
	return library.TransitionEvent{EpisodeID: episodeID, SeriesID: seriesID, Episode: int(episodeID), From: from, To: to, At: at}
}

func TestLog_AppendAndList(t *testing.T) {
	log := NewLog(setupTestDB(t), nil)
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	id, err := log.Append(ev(1, 10, library.StatusPending, library.StatusDownloading, at))
	require.NoError(t, err)
	assert.Positive(t, id)
	_, err = log.Append(ev(1, 10, library.StatusDownloading, library.StatusOpenlistExists, at.Add(time.Hour)))
	require.NoError(t, err)

	records, err := log.List(Filter{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	assert.Equal(t, library.StatusOpenlistExists, records[0].To)
	assert.Equal(t, library.StatusDownloading, records[1].To)
	assert.Equal(t, int64(10), records[1].SeriesID)
	assert.True(t, at.Equal(records[1].OccurredAt))
}

func TestLog_ListFilters(t *testing.T) {
	log := NewLog(setupTestDB(t), nil)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	for i, e := range []library.TransitionEvent{
		ev(1, 10, library.StatusPending, library.StatusDownloading, base),
		ev(2, 10, library.StatusPending, library.StatusDownloading, base.Add(time.Hour)),
		ev(3, 20, library.StatusPending, library.StatusOpenlistExists, base.Add(2*time.Hour)),
	} {
		_, err := log.Append(e)
		require.NoError(t, err, "event %d", i)
	}

	series := int64(10)
	records, err := log.List(Filter{SeriesID: &series})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	episode := int64(3)
	records, err = log.List(Filter{EpisodeID: &episode})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(20), records[0].SeriesID)

	since := base.Add(30 * time.Minute)
	records, err = log.List(Filter{Since: &since})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = log.List(Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].EpisodeID)
}

func TestLog_Prune(t *testing.T) {
	log := NewLog(setupTestDB(t), nil)
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	_, err := log.Append(ev(1, 10, library.StatusPending, library.StatusDownloading, base))
	require.NoError(t, err)
	_, err = log.Append(ev(2, 10, library.StatusPending, library.StatusDownloading, base.Add(48*time.Hour)))
	require.NoError(t, err)

	n, err := log.Prune(base.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	records, err := log.List(Filter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].EpisodeID)
}

func TestLog_HandlerRecordsStoreTransitions(t *testing.T) {
	db := setupTestDB(t)
	log := NewLog(db, nil)
	store := library.NewStore(db)
	store.OnTransition(log.Handler())

	require.NoError(t, store.AddSeries(&library.Series{ID: 10, Title: "示例番剧", Name: "示例番剧", FeedURL: "https://mikanani.me/RSS/Bangumi?bangumiId=1"}))
	ep := &library.Episode{SeriesID: 10, Number: 1, Title: "[Group] 示例番剧 - 01", TorrentLink: "https://mikanani.me/Download/a.torrent", Status: library.StatusPending}
	_, err := store.UpsertEpisode(ep)
	require.NoError(t, err)

	require.NoError(t, store.Transition(ep, library.StatusDownloading))

	records, err := log.List(Filter{EpisodeID: &ep.ID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, library.StatusPending, records[0].From)
	assert.Equal(t, library.StatusDownloading, records[0].To)
	assert.Equal(t, 1, records[0].Episode)
}
