package v1

import (
	"time"

	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/scheduler"
)

// seriesResponse is the API representation of a series.
type seriesResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Name          string     `json:"name"`
	Aliases       []string   `json:"aliases,omitempty"`
	TotalEpisodes *int       `json:"total_episodes,omitempty"`
	FeedURL       string     `json:"feed_url"`
	PosterURL     string     `json:"poster_url,omitempty"`
	FirstAirDate  string     `json:"first_air_date,omitempty"`
	SeasonTag     string     `json:"season_tag,omitempty"`
	Subtitle      string     `json:"subtitle,omitempty"`
	FansubGroup   string     `json:"fansub_group,omitempty"`
	Status        string     `json:"status"`
	Source        string     `json:"source"`
	LastScrapedAt *time.Time `json:"last_scraped_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type listSeriesResponse struct {
	Items []seriesResponse `json:"items"`
	Total int              `json:"total"`
}

// episodeResponse is the API representation of an episode.
type episodeResponse struct {
	ID              int64      `json:"id"`
	SeriesID        int64      `json:"series_id"`
	Episode         int        `json:"episode"`
	Subtitle        string     `json:"subtitle,omitempty"`
	Title           string     `json:"title"`
	TorrentLink     string     `json:"torrent_link"`
	PageLink        string     `json:"page_link,omitempty"`
	Size            int64      `json:"size"`
	PubDate         *time.Time `json:"pub_date,omitempty"`
	Status          string     `json:"status"`
	StatusChangedAt time.Time  `json:"status_changed_at"`
}

type listEpisodesResponse struct {
	Items  []episodeResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type statsResponse struct {
	SeriesID int64          `json:"series_id"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
}

type statusResponse struct {
	Tasks    []scheduler.TaskStatus `json:"tasks"`
	Series   int                    `json:"series"`
	Episodes map[string]int         `json:"episodes"`
}

type runResponse struct {
	OK  bool                 `json:"ok"`
	Run *scheduler.RunStatus `json:"run"`
}

type intervalsResponse struct {
	Intervals map[string]int `json:"intervals"`
}

type setIntervalRequest struct {
	Minutes int `json:"minutes"`
}

type addSeriesRequest struct {
	FeedURL string `json:"feed_url"`
}

type deleteSeriesResponse struct {
	Deleted      bool `json:"deleted"`
	FilesRemoved int  `json:"files_removed"`
}

type historyResponse struct {
	Items []events.Record `json:"items"`
	Total int             `json:"total"`
}
