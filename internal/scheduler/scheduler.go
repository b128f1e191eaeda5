// Package scheduler runs the periodic tasks on per-task intervals and
// serves manual triggers.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
)

// RunOptions tunes a single run. Zero values mean the task's defaults.
type RunOptions struct {
	Limit int
}

// Summary is a task's JSON-friendly description of what a run did.
type Summary map[string]any

// TaskFunc is the body of a task.
type TaskFunc func(ctx context.Context, opts RunOptions) (Summary, error)

// RunObserver records finished runs, typically into metrics.
type RunObserver interface {
	ObserveRun(task string, d time.Duration, err error)
}

// RunStatus describes one finished run.
type RunStatus struct {
	RunID      string        `json:"run_id"`
	Manual     bool          `json:"manual"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
	Summary    Summary       `json:"summary,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// OK reports whether the run succeeded.
func (r *RunStatus) OK() bool {
	return r.Error == ""
}

// TaskStatus is a snapshot of one task for status displays.
type TaskStatus struct {
	Name            string     `json:"name"`
	IntervalMinutes int        `json:"interval_minutes"`
	Running         bool       `json:"running"`
	NextRun         *time.Time `json:"next_run,omitempty"`
	LastRun         *RunStatus `json:"last_run,omitempty"`
}

type task struct {
	name string
	fn   TaskFunc

	run sync.Mutex // held for the duration of a run

	mu       sync.Mutex // guards the fields below
	interval int
	job      *gocron.Job
	running  bool
	last     *RunStatus
}

// Scheduler runs registered tasks on their intervals.
type Scheduler struct {
	cron     *gocron.Scheduler
	repo     IntervalRepository
	observer RunObserver
	log      *slog.Logger

	mu    sync.Mutex // serializes schedule changes
	tasks map[string]*task
	order []string
	ctx   context.Context
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithObserver records every run.
func WithObserver(o RunObserver) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// New creates a scheduler reading intervals from repo.
func New(repo IntervalRepository, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:  gocron.NewScheduler(time.UTC),
		repo:  repo,
		log:   log.With("component", "scheduler"),
		tasks: make(map[string]*task),
		ctx:   context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a task. Tasks must be registered before Run.
func (s *Scheduler) Register(name string, fn TaskFunc) {
	s.tasks[name] = &task{name: name, fn: fn}
	s.order = append(s.order, name)
}

// Run schedules every registered task and blocks until ctx is cancelled.
// The first tick of each task comes one interval after start.
func (s *Scheduler) Run(ctx context.Context) error {
	intervals, err := s.repo.Load()
	if err != nil {
		return fmt.Errorf("load intervals: %w", err)
	}

	s.mu.Lock()
	s.ctx = ctx
	for _, name := range s.order {
		if err := s.schedule(s.tasks[name], intervals[name]); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	s.cron.StartAsync()
	s.log.Info("scheduler started", "tasks", len(s.order))

	<-ctx.Done()
	s.cron.Stop()
	s.log.Info("scheduler stopped")
	return nil
}

// schedule (re)creates the gocron job of t. Callers hold s.mu.
func (s *Scheduler) schedule(t *task, minutes int) error {
	if minutes < 1 {
		minutes = DefaultIntervals()[t.name]
	}
	if minutes < 1 {
		return fmt.Errorf("%w: task %s", ErrInvalidInterval, t.name)
	}

	_ = s.cron.RemoveByTag(t.name)
	job, err := s.cron.Every(time.Duration(minutes) * time.Minute).
		Tag(t.name).
		WaitForSchedule().
		Do(s.tick, t)
	if err != nil {
		return fmt.Errorf("schedule %s: %w", t.name, err)
	}

	t.mu.Lock()
	t.interval = minutes
	t.job = job
	t.mu.Unlock()

	s.log.Debug("task scheduled", "task", t.name, "minutes", minutes)
	return nil
}

// Apply reschedules every task whose interval differs from intervals.
func (s *Scheduler) Apply(intervals map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range s.order {
		t := s.tasks[name]
		minutes, ok := intervals[name]
		if !ok {
			continue
		}
		t.mu.Lock()
		same := t.interval == minutes
		t.mu.Unlock()
		if same {
			continue
		}
		if err := s.schedule(t, minutes); err != nil {
			s.log.Error("reschedule failed", "task", name, "error", err)
			continue
		}
		s.log.Info("task rescheduled", "task", name, "minutes", minutes)
	}
}

// SetInterval persists a new interval and reschedules the task.
func (s *Scheduler) SetInterval(name string, minutes int) error {
	if _, ok := s.tasks[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}
	if err := s.repo.Set(name, minutes); err != nil {
		return err
	}
	s.Apply(map[string]int{name: minutes})
	return nil
}

// ResetIntervals restores the default intervals.
func (s *Scheduler) ResetIntervals() (map[string]int, error) {
	intervals, err := s.repo.Reset()
	if err != nil {
		return nil, err
	}
	s.Apply(intervals)
	return intervals, nil
}

// Intervals returns the persisted intervals.
func (s *Scheduler) Intervals() (map[string]int, error) {
	return s.repo.Load()
}

// tick is the scheduled entry point. A tick that finds the task already
// running is skipped.
func (s *Scheduler) tick(t *task) {
	if !t.run.TryLock() {
		s.log.Debug("task still running, tick skipped", "task", t.name)
		return
	}
	defer t.run.Unlock()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.execute(ctx, t, RunOptions{}, false)
}

// Trigger runs a task now, waiting for an in-flight run to finish first.
// The returned status describes the manual run; a failed task body is
// reported through RunStatus.Error, not the error result.
//
// Once started, the body runs to completion even if ctx is cancelled.
// Only scheduler shutdown cancels it.
func (s *Scheduler) Trigger(ctx context.Context, name string, opts RunOptions) (*RunStatus, error) {
	t, ok := s.tasks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, name)
	}

	t.run.Lock()
	defer t.run.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	parent := s.ctx
	s.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(parent, cancel)
	defer stop()

	return s.execute(runCtx, t, opts, true), nil
}

func (s *Scheduler) execute(ctx context.Context, t *task, opts RunOptions, manual bool) *RunStatus {
	status := &RunStatus{
		RunID:     uuid.NewString(),
		Manual:    manual,
		StartedAt: time.Now().UTC(),
	}
	log := s.log.With("task", t.name, "run_id", status.RunID)

	t.mu.Lock()
	t.running = true
	t.mu.Unlock()

	log.Info("task started", "manual", manual)
	summary, err := safeRun(ctx, t.fn, opts)

	status.FinishedAt = time.Now().UTC()
	status.Duration = status.FinishedAt.Sub(status.StartedAt)
	status.Summary = summary
	if err != nil {
		status.Error = err.Error()
		log.Error("task failed", "duration_ms", status.Duration.Milliseconds(), "error", err)
	} else {
		log.Info("task finished", "duration_ms", status.Duration.Milliseconds())
	}
	if s.observer != nil {
		s.observer.ObserveRun(t.name, status.Duration, err)
	}

	t.mu.Lock()
	t.running = false
	t.last = status
	t.mu.Unlock()
	return status
}

func safeRun(ctx context.Context, fn TaskFunc, opts RunOptions) (summary Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()
	return fn(ctx, opts)
}

// Status returns a snapshot of every task in registration order.
func (s *Scheduler) Status() []TaskStatus {
	out := make([]TaskStatus, 0, len(s.order))
	for _, name := range s.order {
		t := s.tasks[name]
		t.mu.Lock()
		ts := TaskStatus{
			Name:            name,
			IntervalMinutes: t.interval,
			Running:         t.running,
			LastRun:         t.last,
		}
		if t.job != nil {
			if next := t.job.NextRun(); !next.IsZero() {
				ts.NextRun = &next
			}
		}
		t.mu.Unlock()
		out = append(out, ts)
	}
	return out
}

// Has reports whether a task is registered.
func (s *Scheduler) Has(name string) bool {
	_, ok := s.tasks[name]
	return ok
}
