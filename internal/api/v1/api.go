// Package v1 implements the daemon's control API.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/mikan"
	"github.com/vmunix/autoani/internal/scheduler"
	"github.com/vmunix/autoani/internal/subscription"
)

// Server is the v1 API server.
type Server struct {
	deps ServerDeps
	log  *slog.Logger
}

// NewWithDeps creates a server from explicit dependencies.
func NewWithDeps(deps ServerDeps) (*Server, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, log: log.With("component", "api")}, nil
}

// Router returns the HTTP handler serving every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// System
		r.Get("/status", s.getStatus)
		r.Post("/tasks/{task}/run", s.runTask)

		// Intervals
		r.Get("/intervals", s.getIntervals)
		r.Put("/intervals/{task}", s.setInterval)
		r.Post("/intervals/reset", s.resetIntervals)

		// Series
		r.Get("/series", s.listSeries)
		r.Post("/series", s.addSeries)
		r.Get("/series/{id}", s.getSeries)
		r.Delete("/series/{id}", s.deleteSeries)
		r.Get("/series/{id}/stats", s.seriesStats)
		r.Post("/series/{id}/resubscribe", s.resubscribe)

		// Episodes
		r.Get("/episodes", s.listEpisodes)
		if s.deps.History != nil {
			r.Get("/history", s.listHistory)
		}
	})
	return r
}

// Error response
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

// pathID extracts an integer ID from the URL path.
func pathID(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("missing path parameter: %s", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// queryInt extracts an optional integer from query string.
func queryInt(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

// queryString extracts an optional string from query string.
func queryString(r *http.Request, name string) *string {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	return &val
}

// writeStoreError maps store errors to responses.
func writeStoreError(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, library.ErrNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", what+" not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	series, err := s.deps.Library.ListSeries(library.SeriesFilter{})
	if err != nil {
		writeStoreError(w, err, "series")
		return
	}

	counts := make(map[string]int, len(library.AllStatuses))
	for _, st := range library.AllStatuses {
		eps, err := s.deps.Library.EpisodesByStatus(st)
		if err != nil {
			writeStoreError(w, err, "episodes")
			return
		}
		counts[string(st)] = len(eps)
	}

	writeJSON(w, http.StatusOK, statusResponse{
		Tasks:    s.deps.Scheduler.Status(),
		Series:   len(series),
		Episodes: counts,
	})
}

func (s *Server) runTask(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "task")
	opts := scheduler.RunOptions{Limit: queryInt(r, "limit", 0)}
	if opts.Limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must not be negative")
		return
	}

	run, err := s.deps.Scheduler.Trigger(r.Context(), name, opts)
	if err != nil {
		if errors.Is(err, scheduler.ErrUnknownTask) {
			writeError(w, http.StatusNotFound, "UNKNOWN_TASK", err.Error())
			return
		}
		writeError(w, http.StatusServiceUnavailable, "TRIGGER_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runResponse{OK: run.OK(), Run: run})
}

func (s *Server) getIntervals(w http.ResponseWriter, _ *http.Request) {
	intervals, err := s.deps.Scheduler.Intervals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERVALS_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, intervalsResponse{Intervals: intervals})
}

func (s *Server) setInterval(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "task")
	var req setIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	if err := s.deps.Scheduler.SetInterval(name, req.Minutes); err != nil {
		switch {
		case errors.Is(err, scheduler.ErrUnknownTask):
			writeError(w, http.StatusNotFound, "UNKNOWN_TASK", err.Error())
		case errors.Is(err, scheduler.ErrInvalidInterval):
			writeError(w, http.StatusBadRequest, "INVALID_INTERVAL", err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "INTERVALS_ERROR", err.Error())
		}
		return
	}
	s.getIntervals(w, r)
}

func (s *Server) resetIntervals(w http.ResponseWriter, _ *http.Request) {
	intervals, err := s.deps.Scheduler.ResetIntervals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERVALS_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, intervalsResponse{Intervals: intervals})
}

func (s *Server) listSeries(w http.ResponseWriter, r *http.Request) {
	var filter library.SeriesFilter
	if st := queryString(r, "status"); st != nil {
		status := library.SeriesStatus(*st)
		if status != library.SeriesActive && status != library.SeriesInactive {
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", "status must be 'active' or 'inactive'")
			return
		}
		filter.Status = &status
	}
	filter.Source = queryString(r, "source")

	items, err := s.deps.Library.ListSeries(filter)
	if err != nil {
		writeStoreError(w, err, "series")
		return
	}

	resp := listSeriesResponse{Items: make([]seriesResponse, len(items)), Total: len(items)}
	for i, sr := range items {
		resp.Items[i] = seriesToResponse(sr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	sr, err := s.deps.Library.GetSeries(id)
	if err != nil {
		writeStoreError(w, err, "series")
		return
	}
	writeJSON(w, http.StatusOK, seriesToResponse(sr))
}

func (s *Server) addSeries(w http.ResponseWriter, r *http.Request) {
	var req addSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.FeedURL == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FEED_URL", "feed_url is required")
		return
	}

	sr, err := s.deps.Subscriptions.AddByFeedURL(r.Context(), req.FeedURL)
	if err != nil {
		switch {
		case errors.Is(err, mikan.ErrInvalidFeedURL), errors.Is(err, subscription.ErrNoName):
			writeError(w, http.StatusBadRequest, "INVALID_FEED", err.Error())
		case errors.Is(err, subscription.ErrAlreadySubscribed), errors.Is(err, library.ErrDuplicate):
			writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
		case errors.Is(err, subscription.ErrNoMatch):
			writeError(w, http.StatusUnprocessableEntity, "NO_MATCH", err.Error())
		default:
			writeError(w, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, seriesToResponse(sr))
}

func (s *Server) deleteSeries(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	deleteFiles, _ := strconv.ParseBool(r.URL.Query().Get("delete_files"))

	removed, err := s.deps.Subscriptions.Delete(r.Context(), id, deleteFiles)
	if err != nil {
		writeStoreError(w, err, "series")
		return
	}
	writeJSON(w, http.StatusOK, deleteSeriesResponse{Deleted: true, FilesRemoved: removed})
}

func (s *Server) seriesStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	stats, err := s.deps.Subscriptions.Stats(id)
	if err != nil {
		writeStoreError(w, err, "series")
		return
	}

	resp := statsResponse{SeriesID: id, Counts: make(map[string]int, len(stats))}
	for st, n := range stats {
		resp.Counts[string(st)] = n
		resp.Total += n
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) resubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", err.Error())
		return
	}
	if err := s.deps.Subscriptions.Resubscribe(id); err != nil {
		writeStoreError(w, err, "series")
		return
	}
	sr, err := s.deps.Library.GetSeries(id)
	if err != nil {
		writeStoreError(w, err, "series")
		return
	}
	writeJSON(w, http.StatusOK, seriesToResponse(sr))
}

func (s *Server) listEpisodes(w http.ResponseWriter, r *http.Request) {
	filter := library.EpisodeFilter{
		Limit:  queryInt(r, "limit", 0),
		Offset: queryInt(r, "offset", 0),
	}
	if v := queryString(r, "series"); v != nil {
		id, err := strconv.ParseInt(*v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "series must be an integer")
			return
		}
		filter.SeriesID = &id
	}
	if v := queryString(r, "status"); v != nil {
		st, ok := library.ParseStatus(*v)
		if !ok {
			writeError(w, http.StatusBadRequest, "INVALID_STATUS", fmt.Sprintf("unknown status %q", *v))
			return
		}
		filter.Status = &st
	}

	items, err := s.deps.Library.ListEpisodes(filter)
	if err != nil {
		writeStoreError(w, err, "episodes")
		return
	}

	resp := listEpisodesResponse{
		Items:  make([]episodeResponse, len(items)),
		Total:  len(items),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i, e := range items {
		resp.Items[i] = episodeToResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	filter := events.Filter{Limit: queryInt(r, "limit", 100)}
	for param, dst := range map[string]**int64{"series": &filter.SeriesID, "episode": &filter.EpisodeID} {
		v := queryString(r, param)
		if v == nil {
			continue
		}
		id, err := strconv.ParseInt(*v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", param+" must be an integer")
			return
		}
		*dst = &id
	}

	records, err := s.deps.History.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	if records == nil {
		records = []events.Record{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Items: records, Total: len(records)})
}

func seriesToResponse(sr *library.Series) seriesResponse {
	return seriesResponse{
		ID:            sr.ID,
		Title:         sr.Title,
		Name:          sr.Name,
		Aliases:       sr.Aliases,
		TotalEpisodes: sr.TotalEpisodes,
		FeedURL:       sr.FeedURL,
		PosterURL:     sr.PosterURL,
		FirstAirDate:  sr.FirstAirDate,
		SeasonTag:     sr.SeasonTag,
		Subtitle:      string(sr.Subtitle),
		FansubGroup:   sr.FansubGroup,
		Status:        string(sr.Status),
		Source:        sr.Source,
		LastScrapedAt: sr.LastScrapedAt,
		CreatedAt:     sr.CreatedAt,
		UpdatedAt:     sr.UpdatedAt,
	}
}

func episodeToResponse(e *library.Episode) episodeResponse {
	return episodeResponse{
		ID:              e.ID,
		SeriesID:        e.SeriesID,
		Episode:         e.Number,
		Subtitle:        string(e.Subtitle),
		Title:           e.Title,
		TorrentLink:     e.TorrentLink,
		PageLink:        e.PageLink,
		Size:            e.Size,
		PubDate:         e.PubDate,
		Status:          string(e.Status),
		StatusChangedAt: e.StatusChangedAt,
	}
}
