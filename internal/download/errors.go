package download

import (
	"errors"
	"fmt"
)

// ErrSubmit is returned when the remote store refused an offline download.
var ErrSubmit = errors.New("offline download not accepted")

// EpisodeError records a failure for one episode during a reconciliation run.
type EpisodeError struct {
	Op       string // "submit", "promote", "rollback"
	SeriesID int64
	Series   string
	Episode  int
	Err      error
}

func (e *EpisodeError) Error() string {
	return fmt.Sprintf("%s %s (%d) EP%02d: %v", e.Op, e.Series, e.SeriesID, e.Episode, e.Err)
}

func (e *EpisodeError) Unwrap() error {
	return e.Err
}
