package download_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/autoani/internal/download"
	"github.com/vmunix/autoani/internal/download/mocks"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/migrations"
	"github.com/vmunix/autoani/internal/notify"
	"github.com/vmunix/autoani/internal/openlist"
	"github.com/vmunix/autoani/internal/tmdb"
	"github.com/vmunix/autoani/pkg/release"
	"go.uber.org/mock/gomock"
	_ "modernc.org/sqlite"
)

const root = "/anime"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *library.Store {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = migrations.Apply(db)
	require.NoError(t, err)
	return library.NewStore(db)
}

func addSeries(t *testing.T, store *library.Store, id int64, name string) {
	t.Helper()
	require.NoError(t, store.AddSeries(&library.Series{ID: id, Title: name, Name: name}))
}

func addEpisode(t *testing.T, store *library.Store, seriesID int64, n int) *library.Episode {
	t.Helper()
	ep := &library.Episode{
		SeriesID:    seriesID,
		Number:      n,
		Subtitle:    release.SubtitleSimplified,
		Title:       fmt.Sprintf("[Group] 示例番剧 - %02d [1080p]", n),
		TorrentLink: fmt.Sprintf("https://mikanani.me/Download/%d-%d.torrent", seriesID, n),
		Status:      library.StatusPending,
	}
	_, err := store.UpsertEpisode(ep)
	require.NoError(t, err)
	return ep
}

// markDownloading moves a pending episode into downloading.
func markDownloading(t *testing.T, store *library.Store, ep *library.Episode) {
	t.Helper()
	require.NoError(t, store.Transition(ep, library.StatusDownloading))
}

func remoteFile(name string) openlist.File {
	return openlist.File{Path: root + "/" + name, Name: name, Size: 300 << 20, Modified: time.Date(2025, 10, 5, 0, 0, 0, 0, time.UTC)}
}

func statusOf(t *testing.T, store *library.Store, id int64) library.Status {
	t.Helper()
	ep, err := store.GetEpisode(id)
	require.NoError(t, err)
	return ep.Status
}

type recordingNotifier struct {
	calls [][]notify.Completed
	err   error
}

func (n *recordingNotifier) NotifyCompleted(_ context.Context, items []notify.Completed) error {
	n.calls = append(n.calls, items)
	return n.err
}

func TestRescan_ClassifiesFiles(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	require.NoError(t, store.AddAlias(1001, "Example Show"))

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return([]openlist.File{
		remoteFile("[Group] 示例番剧 - 05 [1080p].mkv"),
		remoteFile("[Group] Example Show - 06 [1080p].mp4"),
		remoteFile("[Group] 別の番組 - 01 [1080p].mkv"),
		remoteFile("random clip.mkv"),
	}, nil)

	var total, classified int
	engine := download.NewEngine(store, remote, root, testLogger(),
		download.WithIndexObserver(func(t, c int) { total, classified = t, c }))

	idx, err := engine.Rescan(context.Background())
	require.NoError(t, err)

	assert.True(t, idx.Has(1001, 5))
	assert.True(t, idx.Has(1001, 6), "alias should classify")
	assert.False(t, idx.Has(1001, 1))
	assert.Equal(t, 4, total)
	assert.Equal(t, 2, classified)

	unclassified, err := store.ListRemoteFiles(library.RemoteFileFilter{Unclassified: true})
	require.NoError(t, err)
	assert.Len(t, unclassified, 2)
}

func TestRescan_ResolverCachedPerRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return([]openlist.File{
		remoteFile("[Group] Sample Anime - 01 [1080p].mkv"),
		remoteFile("[Group] Sample Anime - 02 [1080p].mkv"),
		remoteFile("[Group] Nobody Knows - 01 [1080p].mkv"),
	}, nil)

	resolver := mocks.NewMockMetadataResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "Sample Anime").Return(&tmdb.Match{ID: 1001}, nil).Times(1)
	resolver.EXPECT().Resolve(gomock.Any(), "Nobody Knows").Return(nil, tmdb.ErrNotFound).Times(1)

	engine := download.NewEngine(store, remote, root, testLogger(), download.WithResolver(resolver))
	idx, err := engine.Rescan(context.Background())
	require.NoError(t, err)

	assert.True(t, idx.Has(1001, 1))
	assert.True(t, idx.Has(1001, 2))
}

func TestRescan_ScanFailureKeepsIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")

	remote := mocks.NewMockRemoteStore(ctrl)
	gomock.InOrder(
		remote.EXPECT().Scan(gomock.Any(), root).Return([]openlist.File{remoteFile("[Group] 示例番剧 - 05.mkv")}, nil),
		remote.EXPECT().Scan(gomock.Any(), root).Return(nil, openlist.ErrAuth),
	)

	engine := download.NewEngine(store, remote, root, testLogger())
	_, err := engine.Rescan(context.Background())
	require.NoError(t, err)

	_, err = engine.Rescan(context.Background())
	require.ErrorIs(t, err, openlist.ErrAuth)

	idx, err := store.LoadIndex()
	require.NoError(t, err)
	assert.True(t, idx.Has(1001, 5), "previous snapshot must survive a failed scan")
}

func TestPushMissing_RespectsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	var eps []*library.Episode
	for n := 1; n <= 5; n++ {
		eps = append(eps, addEpisode(t, store, 1001, n))
	}

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return(nil, nil)
	remote.EXPECT().AddOfflineDownload(gomock.Any(), gomock.Len(1), root, "qBittorrent").Return(nil).Times(2)

	engine := download.NewEngine(store, remote, root, testLogger(), download.WithTool("qBittorrent"))
	report, err := engine.PushMissing(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Missing)
	assert.Equal(t, 2, report.Submitted)
	assert.Empty(t, report.Failures)

	downloading, err := store.EpisodesByStatus(library.StatusDownloading)
	require.NoError(t, err)
	assert.Len(t, downloading, 2)
	assert.Equal(t, library.StatusPending, statusOf(t, store, eps[4].ID))
}

func TestPushMissing_PromotesPresentEpisodes(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	present := addEpisode(t, store, 1001, 1)
	missing := addEpisode(t, store, 1001, 2)

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return([]openlist.File{remoteFile("[Group] 示例番剧 - 01 [1080p].mkv")}, nil)

	magnets := mocks.NewMockMagnetConverter(ctrl)
	magnets.EXPECT().Magnet(gomock.Any(), missing.TorrentLink).Return("magnet:?xt=urn:btih:abc", nil)
	remote.EXPECT().AddOfflineDownload(gomock.Any(), []string{"magnet:?xt=urn:btih:abc"}, root, "").Return(nil)

	engine := download.NewEngine(store, remote, root, testLogger(), download.WithMagnetConverter(magnets))
	report, err := engine.PushMissing(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Synced)
	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, library.StatusOpenlistExists, statusOf(t, store, present.ID))
	assert.Equal(t, library.StatusDownloading, statusOf(t, store, missing.ID))
}

func TestPushMissing_SubmitFailureContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	first := addEpisode(t, store, 1001, 1)
	second := addEpisode(t, store, 1001, 2)

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return(nil, nil)

	// Conversion failure falls back to the torrent link.
	magnets := mocks.NewMockMagnetConverter(ctrl)
	magnets.EXPECT().Magnet(gomock.Any(), gomock.Any()).Return("", errors.New("bad torrent")).Times(2)
	remote.EXPECT().AddOfflineDownload(gomock.Any(), []string{first.TorrentLink}, root, "").Return(openlist.ErrRequest)
	remote.EXPECT().AddOfflineDownload(gomock.Any(), []string{second.TorrentLink}, root, "").Return(nil)

	engine := download.NewEngine(store, remote, root, testLogger(), download.WithMagnetConverter(magnets))
	report, err := engine.PushMissing(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Submitted)
	require.Len(t, report.Failures, 1)

	var epErr *download.EpisodeError
	require.ErrorAs(t, report.Failures[0], &epErr)
	assert.Equal(t, "submit", epErr.Op)
	assert.Equal(t, 1, epErr.Episode)
	assert.Equal(t, "示例番剧", epErr.Series)
	assert.ErrorIs(t, report.Failures[0], download.ErrSubmit)
	assert.ErrorIs(t, report.Failures[0], openlist.ErrRequest)

	assert.Equal(t, library.StatusPending, statusOf(t, store, first.ID))
	assert.Equal(t, library.StatusDownloading, statusOf(t, store, second.ID))
}

func TestPushMissing_AuthFailureAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	ep := addEpisode(t, store, 1001, 1)

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return(nil, openlist.ErrAuth)

	engine := download.NewEngine(store, remote, root, testLogger())
	_, err := engine.PushMissing(context.Background(), 0)
	require.ErrorIs(t, err, openlist.ErrAuth)
	assert.Equal(t, library.StatusPending, statusOf(t, store, ep.ID))
}

func TestCheckDownloadingStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	arrived := addEpisode(t, store, 1001, 1)
	lost := addEpisode(t, store, 1001, 2)
	markDownloading(t, store, arrived)
	markDownloading(t, store, lost)

	remote := mocks.NewMockRemoteStore(ctrl)
	remote.EXPECT().Scan(gomock.Any(), root).Return([]openlist.File{remoteFile("[Group] 示例番剧 - 01 [1080p].mkv")}, nil)

	notifier := &recordingNotifier{err: notify.ErrDelivery}
	engine := download.NewEngine(store, remote, root, testLogger(), download.WithNotifier(notifier))

	report, err := engine.CheckDownloadingStatus(context.Background())
	require.NoError(t, err, "notification failures are not fatal")

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, 1, report.Completed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, library.StatusOpenlistExists, statusOf(t, store, arrived.ID))
	assert.Equal(t, library.StatusPending, statusOf(t, store, lost.ID))

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []notify.Completed{{SeriesID: 1001, Series: "示例番剧", Episode: 1}}, notifier.calls[0])
}

func TestCheckDownloadingStatus_NothingDownloading(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := setupTestStore(t)
	addSeries(t, store, 1001, "示例番剧")
	addEpisode(t, store, 1001, 1)

	// No Scan expected.
	remote := mocks.NewMockRemoteStore(ctrl)
	engine := download.NewEngine(store, remote, root, testLogger())

	report, err := engine.CheckDownloadingStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
}

func TestCheckTimedOutDownloads(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		present bool
		want    library.Status
		scanned bool
	}{
		{"absent after a day", 25 * time.Hour, false, library.StatusPending, true},
		{"present after a day", 25 * time.Hour, true, library.StatusOpenlistExists, true},
		{"absent but fresh", 2 * time.Hour, false, library.StatusDownloading, false},
		{"exactly the timeout", 24 * time.Hour, false, library.StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := setupTestStore(t)
			addSeries(t, store, 1001, "示例番剧")
			ep := addEpisode(t, store, 1001, 3)
			markDownloading(t, store, ep)

			remote := mocks.NewMockRemoteStore(ctrl)
			if tt.scanned {
				var files []openlist.File
				if tt.present {
					files = append(files, remoteFile("[Group] 示例番剧 - 03 [1080p].mkv"))
				}
				remote.EXPECT().Scan(gomock.Any(), root).Return(files, nil)
			}

			now := ep.StatusChangedAt.Add(tt.elapsed)
			engine := download.NewEngine(store, remote, root, testLogger(),
				download.WithClock(func() time.Time { return now }))

			report, err := engine.CheckTimedOutDownloads(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, report.Checked)
			assert.Equal(t, tt.want, statusOf(t, store, ep.ID))
		})
	}
}
