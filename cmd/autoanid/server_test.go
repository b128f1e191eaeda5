package main

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/autoani/internal/config"
	"github.com/vmunix/autoani/internal/migrations"
	"github.com/vmunix/autoani/internal/scheduler"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestErrorStrings(t *testing.T) {
	assert.Equal(t, []string{}, errorStrings(nil))
	assert.Equal(t, []string{"a", "b"}, errorStrings([]error{errors.New("a"), errors.New("b")}))
}

func TestWire(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Database:  config.DatabaseConfig{Path: filepath.Join(dir, "autoani.db")},
		Mikan:     config.MikanConfig{BaseURL: "https://mikanani.me", RSSToken: "tok"},
		TMDB:      config.TMDBConfig{APIKey: "key"},
		OpenList:  config.OpenListConfig{URL: "http://openlist:5244", Username: "u", Password: "p"},
		Scheduler: config.SchedulerConfig{IntervalsFile: filepath.Join(dir, "intervals.toml")},
		Notifications: config.NotificationsConfig{
			Telegram: &config.TelegramConfig{BotToken: "123:abc", ChatIDs: []int64{1}},
		},
	}

	db, err := openDB(cfg.Database.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = migrations.Apply(db)
	require.NoError(t, err)

	a := wire(cfg, db, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, key := range scheduler.TaskKeys {
		assert.True(t, a.scheduler.Has(key), key)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
