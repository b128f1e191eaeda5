// Package download reconciles episode status against the remote store:
// it submits missing episodes for offline download and checks whether
// submitted ones have arrived.
package download

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/notify"
	"github.com/vmunix/autoani/internal/openlist"
	"github.com/vmunix/autoani/internal/tmdb"
)

// DefaultTimeout is how long an episode may stay downloading before the
// timeout check second-guesses it.
const DefaultTimeout = 24 * time.Hour

// RemoteStore is the part of the remote file store the engine needs.
type RemoteStore interface {
	Scan(ctx context.Context, root string) ([]openlist.File, error)
	AddOfflineDownload(ctx context.Context, urls []string, dir, tool string) error
}

// MagnetConverter turns a torrent link into a magnet URI.
type MagnetConverter interface {
	Magnet(ctx context.Context, link string) (string, error)
}

// MetadataResolver maps a series name to its metadata id; used for remote
// files whose name matches no subscribed series.
type MetadataResolver interface {
	Resolve(ctx context.Context, name string) (*tmdb.Match, error)
}

// IndexObserver receives the size of every rebuilt remote index.
type IndexObserver func(total, classified int)

// Engine reconciles episodes with the remote store.
type Engine struct {
	store    *library.Store
	remote   RemoteStore
	magnets  MagnetConverter
	resolver MetadataResolver
	notifier notify.Notifier
	observe  IndexObserver
	root     string
	tool     string
	timeout  time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMagnetConverter converts torrent links before submission.
func WithMagnetConverter(c MagnetConverter) Option {
	return func(e *Engine) {
		e.magnets = c
	}
}

// WithResolver enables metadata lookups for unrecognised remote files.
func WithResolver(r MetadataResolver) Option {
	return func(e *Engine) {
		e.resolver = r
	}
}

// WithNotifier sends completion notices.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithIndexObserver reports index sizes after every rescan.
func WithIndexObserver(fn IndexObserver) Option {
	return func(e *Engine) {
		e.observe = fn
	}
}

// WithTool selects the remote store's offline download tool.
func WithTool(tool string) Option {
	return func(e *Engine) {
		e.tool = tool
	}
}

// WithTimeout sets how long a download may run before the timeout check
// rolls it back.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an engine that scans and downloads into root.
func NewEngine(store *library.Store, remote RemoteStore, root string, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		remote:  remote,
		root:    root,
		timeout: DefaultTimeout,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log.With("component", "reconcile"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// seriesNames maps series ids to canonical names for reports and notices.
func (e *Engine) seriesNames() (map[int64]string, error) {
	all, err := e.store.ListSeries(library.SeriesFilter{})
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(all))
	for _, sr := range all {
		names[sr.ID] = sr.Name
	}
	return names, nil
}
