package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// Task keys.
const (
	TaskDiscover = "discover"
	TaskScrape   = "scrape"
	TaskPush     = "push"
	TaskCheck    = "check"
	TaskTimeout  = "timeout"
)

// TaskKeys lists every task in display order.
var TaskKeys = []string{TaskDiscover, TaskScrape, TaskPush, TaskCheck, TaskTimeout}

// DefaultIntervals are the intervals in minutes used when nothing else is set.
func DefaultIntervals() map[string]int {
	return map[string]int{
		TaskDiscover: 30,
		TaskScrape:   60,
		TaskPush:     10,
		TaskCheck:    5,
		TaskTimeout:  60,
	}
}

// IntervalRepository persists task intervals in minutes.
type IntervalRepository interface {
	Load() (map[string]int, error)
	Set(task string, minutes int) error
	Reset() (map[string]int, error)
}

// IntervalStore keeps intervals in a TOML file. The file is created with
// the defaults on first load; unknown keys and values below one minute in
// the file are ignored in favour of the defaults.
type IntervalStore struct {
	path     string
	debounce time.Duration
	log      *slog.Logger
	mu       sync.Mutex
}

type intervalFile struct {
	Intervals map[string]int `toml:"intervals"`
}

// NewIntervalStore creates a store backed by path.
func NewIntervalStore(path string, log *slog.Logger) *IntervalStore {
	return &IntervalStore{
		path:     path,
		debounce: 500 * time.Millisecond,
		log:      log.With("component", "intervals"),
	}
}

// Path returns the backing file.
func (s *IntervalStore) Path() string {
	return s.path
}

// Load reads the intervals, creating the file with defaults if missing.
func (s *IntervalStore) Load() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *IntervalStore) load() (map[string]int, error) {
	intervals := DefaultIntervals()

	var f intervalFile
	_, err := toml.DecodeFile(s.path, &f)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return intervals, s.write(intervals)
	case err != nil:
		return nil, fmt.Errorf("read intervals %s: %w", s.path, err)
	}

	for task, minutes := range f.Intervals {
		if _, ok := intervals[task]; !ok {
			s.log.Warn("ignoring unknown task in intervals file", "task", task)
			continue
		}
		if minutes < 1 {
			s.log.Warn("ignoring invalid interval", "task", task, "minutes", minutes)
			continue
		}
		intervals[task] = minutes
	}
	return intervals, nil
}

// Set changes one task's interval and persists the result.
func (s *IntervalStore) Set(task string, minutes int) error {
	if _, ok := DefaultIntervals()[task]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	if minutes < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	intervals, err := s.load()
	if err != nil {
		return err
	}
	intervals[task] = minutes
	return s.write(intervals)
}

// Reset restores and persists the default intervals.
func (s *IntervalStore) Reset() (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intervals := DefaultIntervals()
	return intervals, s.write(intervals)
}

// write replaces the file atomically so watchers never read a partial file.
func (s *IntervalStore) write(intervals map[string]int) error {
	var buf bytes.Buffer
	buf.WriteString("# Task intervals in minutes. Edits are picked up while the daemon runs.\n\n")
	if err := toml.NewEncoder(&buf).Encode(intervalFile{Intervals: maps.Clone(intervals)}); err != nil {
		return fmt.Errorf("encode intervals: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create intervals dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write intervals: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace intervals: %w", err)
	}
	return nil
}

// Watch calls onChange with the reloaded intervals whenever the file is
// changed on disk. It blocks until ctx is cancelled. Bursts of events are
// debounced into one reload.
func (s *IntervalStore) Watch(ctx context.Context, onChange func(map[string]int)) error {
	// Run may not have loaded (and so created) the file yet.
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create intervals dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors and our own writes replace the file.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	reload := func() {
		intervals, err := s.Load()
		if err != nil {
			s.log.Warn("reload intervals failed", "error", err)
			return
		}
		onChange(intervals)
	}

	name := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(s.debounce, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("intervals watcher error", "error", err)
		}
	}
}
