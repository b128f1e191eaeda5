package scheduler

import "errors"

var (
	// ErrUnknownTask is returned for a task key that is not registered.
	ErrUnknownTask = errors.New("unknown task")
	// ErrInvalidInterval is returned for intervals below one minute.
	ErrInvalidInterval = errors.New("interval must be at least 1 minute")
	// ErrPanic wraps a panic recovered from a task body.
	ErrPanic = errors.New("task panicked")
)
