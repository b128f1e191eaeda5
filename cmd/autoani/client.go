package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/scheduler"
)

// Client wraps HTTP calls to the autoani daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new autoani API client.
// Manual task runs block until the task finishes, hence the long timeout.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

func (c *Client) do(method, path string, body, result any, okCodes ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !statusOK(resp.StatusCode, okCodes) {
		respBody, _ := io.ReadAll(resp.Body)
		return serverError(resp.StatusCode, respBody)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func statusOK(code int, okCodes []int) bool {
	if len(okCodes) == 0 {
		return code == http.StatusOK
	}
	for _, c := range okCodes {
		if code == c {
			return true
		}
	}
	return false
}

// serverError prefers the daemon's JSON error message over the raw body.
func serverError(code int, body []byte) error {
	var apiErr struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("server error %d (%s): %s", code, apiErr.Code, apiErr.Error)
	}
	return fmt.Errorf("server error %d: %s", code, string(body))
}

// API response types (mirror server types)

type StatusResponse struct {
	Tasks    []scheduler.TaskStatus `json:"tasks"`
	Series   int                    `json:"series"`
	Episodes map[string]int         `json:"episodes"`
}

type RunResponse struct {
	OK  bool                 `json:"ok"`
	Run *scheduler.RunStatus `json:"run"`
}

type IntervalsResponse struct {
	Intervals map[string]int `json:"intervals"`
}

type SeriesResponse struct {
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

type ListSeriesResponse struct {
	Items []SeriesResponse `json:"items"`
	Total int              `json:"total"`
}

type EpisodeResponse struct {
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

type ListEpisodesResponse struct {
	Items  []EpisodeResponse `json:"items"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

type StatsResponse struct {
	SeriesID int64          `json:"series_id"`
	Counts   map[string]int `json:"counts"`
	Total    int            `json:"total"`
}

type DeleteSeriesResponse struct {
	Deleted      bool `json:"deleted"`
	FilesRemoved int  `json:"files_removed"`
}

// Client methods

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(http.MethodGet, "/api/v1/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunTask triggers a task and waits for it to finish. A limit of 0 keeps
// the daemon's configured default.
func (c *Client) RunTask(task string, limit int) (*RunResponse, error) {
	path := "/api/v1/tasks/" + url.PathEscape(task) + "/run"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp RunResponse
	if err := c.do(http.MethodPost, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Intervals() (*IntervalsResponse, error) {
	var resp IntervalsResponse
	if err := c.do(http.MethodGet, "/api/v1/intervals", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SetInterval(task string, minutes int) (*IntervalsResponse, error) {
	var resp IntervalsResponse
	body := map[string]int{"minutes": minutes}
	if err := c.do(http.MethodPut, "/api/v1/intervals/"+url.PathEscape(task), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ResetIntervals() (*IntervalsResponse, error) {
	var resp IntervalsResponse
	if err := c.do(http.MethodPost, "/api/v1/intervals/reset", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListSeries(status string) (*ListSeriesResponse, error) {
	path := "/api/v1/series"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp ListSeriesResponse
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetSeries(id int64) (*SeriesResponse, error) {
	var resp SeriesResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/series/%d", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AddSeries(feedURL string) (*SeriesResponse, error) {
	var resp SeriesResponse
	body := map[string]string{"feed_url": feedURL}
	if err := c.do(http.MethodPost, "/api/v1/series", body, &resp, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteSeries(id int64, deleteFiles bool) (*DeleteSeriesResponse, error) {
	path := fmt.Sprintf("/api/v1/series/%d", id)
	if deleteFiles {
		path += "?delete_files=true"
	}
	var resp DeleteSeriesResponse
	if err := c.do(http.MethodDelete, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SeriesStats(id int64) (*StatsResponse, error) {
	var resp StatsResponse
	if err := c.do(http.MethodGet, fmt.Sprintf("/api/v1/series/%d/stats", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Resubscribe(id int64) (*SeriesResponse, error) {
	var resp SeriesResponse
	if err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/series/%d/resubscribe", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeQuery filters the episode listing. Zero values are omitted.
type EpisodeQuery struct {
	SeriesID int64
	Status   string
	Limit    int
	Offset   int
}

func (q EpisodeQuery) encode() string {
	v := url.Values{}
	if q.SeriesID > 0 {
		v.Set("series", strconv.FormatInt(q.SeriesID, 10))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (c *Client) ListEpisodes(q EpisodeQuery) (*ListEpisodesResponse, error) {
	var resp ListEpisodesResponse
	if err := c.do(http.MethodGet, "/api/v1/episodes"+q.encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type HistoryResponse struct {
	Items []events.Record `json:"items"`
	Total int             `json:"total"`
}

func (c *Client) History(seriesID, episodeID int64, limit int) (*HistoryResponse, error) {
	v := url.Values{}
	if seriesID > 0 {
		v.Set("series", strconv.FormatInt(seriesID, 10))
	}
	if episodeID > 0 {
		v.Set("episode", strconv.FormatInt(episodeID, 10))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/v1/history"
	if len(v) > 0 {
		path += "?" + v.Encode()
	}

	var resp HistoryResponse
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
