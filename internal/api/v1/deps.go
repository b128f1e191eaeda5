package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/scheduler"
)

// TaskScheduler is the scheduler surface the API drives.
type TaskScheduler interface {
	Status() []scheduler.TaskStatus
	Trigger(ctx context.Context, name string, opts scheduler.RunOptions) (*scheduler.RunStatus, error)
	Intervals() (map[string]int, error)
	SetInterval(name string, minutes int) error
	ResetIntervals() (map[string]int, error)
}

// Subscriptions manages subscribed series.
type Subscriptions interface {
	AddByFeedURL(ctx context.Context, feedURL string) (*library.Series, error)
	Delete(ctx context.Context, seriesID int64, deleteRemote bool) (int, error)
	Stats(seriesID int64) (map[library.Status]int, error)
	Resubscribe(seriesID int64) error
}

// History reads the transition log.
type History interface {
	List(f events.Filter) ([]events.Record, error)
}

// ServerDeps contains all dependencies for the API server.
// Required dependencies must be non-nil; optional dependencies may be nil.
type ServerDeps struct {
	// Required dependencies
	Library       *library.Store
	Scheduler     TaskScheduler
	Subscriptions Subscriptions

	// Optional dependencies
	History History      // /history answers 404 when nil
	Metrics http.Handler // served at /metrics when set
	Logger  *slog.Logger
}

// Validate checks that all required dependencies are provided.
func (d ServerDeps) Validate() error {
	if d.Library == nil {
		return errors.New("library store is required")
	}
	if d.Scheduler == nil {
		return errors.New("scheduler is required")
	}
	if d.Subscriptions == nil {
		return errors.New("subscriptions are required")
	}
	return nil
}
