package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/autoani/internal/api/v1"
	"github.com/vmunix/autoani/internal/config"
	"github.com/vmunix/autoani/internal/download"
	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/feed"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/metrics"
	"github.com/vmunix/autoani/internal/migrations"
	"github.com/vmunix/autoani/internal/mikan"
	"github.com/vmunix/autoani/internal/notify"
	"github.com/vmunix/autoani/internal/openlist"
	"github.com/vmunix/autoani/internal/scheduler"
	"github.com/vmunix/autoani/internal/scraper"
	"github.com/vmunix/autoani/internal/server"
	"github.com/vmunix/autoani/internal/subscription"
	"github.com/vmunix/autoani/internal/tmdb"
	"github.com/vmunix/autoani/internal/torrent"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another autoanid is running")

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openDB opens the SQLite database with the pragmas the daemon relies on.
// A single connection serializes writers, which keeps the compare-and-set
// status updates free of SQLITE_BUSY retries.
func openDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

func runServer(configPath string) error {
	source := config.Source("flag")
	if configPath == "" {
		p, src, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("%w (run 'autoani init' to write one)", err)
		}
		if err != nil {
			return err
		}
		configPath, source = p, src
	}

	cfg, err := config.LoadValidated(configPath)
	if err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			slog.Error("config rejected", "config", cfgErr)
		}
		return fmt.Errorf("config %s: %w", configPath, err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))
	logger.Info("config loaded", "path", configPath, "source", source)

	// One daemon per database.
	lock := flock.New(cfg.Database.Path + ".lock")
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s is locked", ErrAlreadyRunning, lock.Path())
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release daemon lock", "error", err)
		}
	}()

	db, err := openDB(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	schemaVersion, err := migrations.Apply(db)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("database ready", "path", cfg.Database.Path, "schema_version", schemaVersion)

	app := wire(cfg, db, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("autoanid starting", "version", version, "addr", cfg.Server.Addr(), "openlist_root", cfg.OpenList.Root)
	runner := server.NewRunner(server.Config{Addr: cfg.Server.Addr()}, app.scheduler, app.intervals, app.handler, logger)
	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("autoanid stopped")
	return nil
}

type app struct {
	scheduler *scheduler.Scheduler
	intervals *scheduler.IntervalStore
	handler   http.Handler
}

// wire builds every component from the configuration.
func wire(cfg *config.Config, db *sql.DB, logger *slog.Logger) *app {
	httpClient := &http.Client{Timeout: 60 * time.Second}
	m := metrics.New()

	store := library.NewStore(db)
	store.OnTransition(m.ObserveTransition)
	history := events.NewLog(db, logger)
	store.OnTransition(history.Handler())

	feeds := feed.NewReader(logger, feed.WithHTTPClient(httpClient))
	pages := mikan.New(logger, mikan.WithBaseURL(cfg.Mikan.BaseURL), mikan.WithHTTPClient(httpClient))

	tmdbOpts := []tmdb.Option{
		tmdb.WithCacheTTL(cfg.TMDB.CacheTTL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithHTTPClient(httpClient),
		tmdb.WithLogger(logger),
	}
	if cfg.TMDB.BaseURL != "" {
		tmdbOpts = append(tmdbOpts, tmdb.WithBaseURL(cfg.TMDB.BaseURL))
	}
	resolver := tmdb.NewClient(cfg.TMDB.APIKey, tmdbOpts...)

	remote := openlist.New(cfg.OpenList.URL, cfg.OpenList.Username, cfg.OpenList.Password, logger,
		openlist.WithHTTPClient(httpClient),
		openlist.WithPageSize(cfg.OpenList.PageSize),
		openlist.WithMaxDepth(cfg.OpenList.MaxDepth),
	)

	tracker := subscription.NewTracker(store, feeds, resolver, pages, remote, cfg.Mikan.FeedURL(), logger)
	scrape := scraper.New(store, feeds, logger, scraper.WithThrottle(cfg.Scheduler.ScrapeThrottle))

	engineOpts := []download.Option{
		download.WithMagnetConverter(torrent.NewConverter(httpClient, logger)),
		download.WithResolver(resolver),
		download.WithIndexObserver(m.ObserveIndex),
		download.WithTimeout(cfg.Scheduler.DownloadTimeout),
		download.WithTool(cfg.OpenList.DownloadTool),
	}
	if t := cfg.Notifications.Telegram; t != nil {
		engineOpts = append(engineOpts, download.WithNotifier(notify.NewTelegram(t.BotToken, t.ChatIDs, logger)))
	}
	engine := download.NewEngine(store, remote, cfg.OpenList.Root, logger, engineOpts...)

	intervals := scheduler.NewIntervalStore(cfg.Scheduler.IntervalsFile, logger)
	sched := scheduler.New(intervals, logger, scheduler.WithObserver(m))
	registerTasks(sched, tasks{
		tracker:   tracker,
		scraper:   scrape,
		engine:    engine,
		history:   history,
		retention: cfg.Scheduler.HistoryRetention,
		pushLimit: cfg.Scheduler.PushLimit,
	})

	api, err := v1.NewWithDeps(v1.ServerDeps{
		Library:       store,
		Scheduler:     sched,
		Subscriptions: tracker,
		History:       history,
		Metrics:       m.Handler(),
		Logger:        logger,
	})
	if err != nil {
		// All required dependencies are built above.
		panic(err)
	}

	return &app{scheduler: sched, intervals: intervals, handler: api.Router()}
}
