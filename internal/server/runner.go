// Package server runs the daemon's long-lived components side by side.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// Config for the daemon's components.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Scheduler runs periodic tasks until its context ends.
type Scheduler interface {
	Run(ctx context.Context) error
	Apply(intervals map[string]int)
}

// IntervalWatcher reports interval file changes until its context ends.
type IntervalWatcher interface {
	Watch(ctx context.Context, onChange func(map[string]int)) error
}

// Runner manages the scheduler, the interval watcher and the HTTP server.
type Runner struct {
	config    Config
	scheduler Scheduler
	watcher   IntervalWatcher
	handler   http.Handler
	logger    *slog.Logger
}

// NewRunner creates a new runner. The watcher may be nil.
func NewRunner(cfg Config, sched Scheduler, watcher IntervalWatcher, handler http.Handler, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Runner{
		config:    cfg,
		scheduler: sched,
		watcher:   watcher,
		handler:   handler,
		logger:    logger,
	}
}

// Run starts all components.
// It blocks until the context is canceled or a component fails; either way
// the others are stopped before it returns.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.scheduler.Run(ctx)
	})

	if r.watcher != nil {
		g.Go(func() error {
			return r.watcher.Watch(ctx, r.scheduler.Apply)
		})
	}

	srv := &http.Server{
		Addr:              r.config.Addr,
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		r.logger.Info("http server listening", "addr", r.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.config.ShutdownTimeout)
		defer cancel()
		r.logger.Info("http server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
