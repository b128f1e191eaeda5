// Package library persists subscribed series, their episodes and the
// snapshot of files present at the remote store.
package library

import (
	"time"

	"github.com/vmunix/autoani/pkg/release"
)

// SeriesStatus tracks whether a series still needs attention.
type SeriesStatus string

const (
	SeriesActive   SeriesStatus = "active"
	SeriesInactive SeriesStatus = "inactive"
)

// SourceMikan marks series discovered through Mikan feeds.
const SourceMikan = "mikan"

// Series is a subscribed show, identified by its TMDB id.
type Series struct {
	ID            int64  // TMDB id
	Title         string // display name
	Name          string // canonical series name; dedup and blocking key
	Aliases       []string
	TotalEpisodes *int // nil until known
	FeedURL       string
	PosterURL     string
	FirstAirDate  string
	SeasonTag     string
	Subtitle      release.Subtitle // SubtitleNone until the first successful scrape
	FansubGroup   string
	Status        SeriesStatus
	Source        string
	LastScrapedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPreference reports whether the subtitle preference has been decided.
func (s *Series) HasPreference() bool {
	return s.Subtitle != release.SubtitleNone
}

// Episode is one release of a series. The natural key is
// (SeriesID, Number, Subtitle).
type Episode struct {
	ID              int64
	SeriesID        int64
	Number          int
	Subtitle        release.Subtitle
	Title           string
	TorrentLink     string
	PageLink        string
	Size            int64
	PubDate         *time.Time
	Status          Status
	StatusChangedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RemoteFile is one video file seen by the last remote scan.
type RemoteFile struct {
	ID         int64
	Path       string
	Name       string
	SeriesID   *int64 // nil when classification failed
	Episode    *int
	Size       int64
	ModifiedAt *time.Time
	IndexedAt  time.Time
}

// Key returns the reconciliation key of f and whether it has one.
func (f *RemoteFile) Key() (IndexKey, bool) {
	if f.SeriesID == nil || f.Episode == nil {
		return IndexKey{}, false
	}
	return IndexKey{SeriesID: *f.SeriesID, Episode: *f.Episode}, true
}

// IndexKey identifies an episode in the remote index regardless of subtitle class.
type IndexKey struct {
	SeriesID int64
	Episode  int
}

// Index is a set of keys present at the remote store.
type Index map[IndexKey]struct{}

// Has reports whether the episode is present.
func (i Index) Has(seriesID int64, episode int) bool {
	_, ok := i[IndexKey{SeriesID: seriesID, Episode: episode}]
	return ok
}

// NewIndex builds the lookup set from classified files.
func NewIndex(files []*RemoteFile) Index {
	idx := make(Index, len(files))
	for _, f := range files {
		if k, ok := f.Key(); ok {
			idx[k] = struct{}{}
		}
	}
	return idx
}
