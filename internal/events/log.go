// Package events keeps an append-only history of episode status
// transitions in SQLite.
package events

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmunix/autoani/internal/library"
)

// Record is one persisted transition.
type Record struct {
	ID         int64          `json:"id"`
	EpisodeID  int64          `json:"episode_id"`
	SeriesID   int64          `json:"series_id"`
	Episode    int            `json:"episode"`
	From       library.Status `json:"from"`
	To         library.Status `json:"to"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Filter narrows a history query. Nil fields are ignored.
type Filter struct {
	SeriesID  *int64
	EpisodeID *int64
	Since     *time.Time
	Limit     int
}

// Log persists transition events.
type Log struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewLog creates a new transition log.
func NewLog(db *sql.DB, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{db: db, logger: logger.With("component", "events")}
}

// Append persists a transition and returns its ID.
func (l *Log) Append(e library.TransitionEvent) (int64, error) {
	result, err := l.db.Exec(`
		INSERT INTO episode_events (episode_id, series_id, episode_number, from_status, to_status, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.EpisodeID, e.SeriesID, e.Episode, e.From, e.To, e.At.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	return result.LastInsertId()
}

// Handler returns a transition handler that appends every event.
// Persistence failures are logged; the transition itself already happened.
func (l *Log) Handler() library.TransitionHandler {
	return func(e library.TransitionEvent) {
		if _, err := l.Append(e); err != nil {
			l.logger.Error("failed to persist transition",
				"episode_id", e.EpisodeID, "from", e.From, "to", e.To, "error", err)
		}
	}
}

// List returns matching events, newest first.
func (l *Log) List(f Filter) ([]Record, error) {
	var conditions []string
	var args []any
	if f.SeriesID != nil {
		conditions = append(conditions, "series_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.EpisodeID != nil {
		conditions = append(conditions, "episode_id = ?")
		args = append(args, *f.EpisodeID)
	}
	if f.Since != nil {
		conditions = append(conditions, "occurred_at >= ?")
		args = append(args, f.Since.UTC())
	}

	query := `SELECT id, episode_id, series_id, episode_number, from_status, to_status, occurred_at FROM episode_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.EpisodeID, &r.SeriesID, &r.Episode, &r.From, &r.To, &r.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune removes events that occurred before cutoff.
func (l *Log) Prune(cutoff time.Time) (int64, error) {
	result, err := l.db.Exec(`DELETE FROM episode_events WHERE occurred_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return result.RowsAffected()
}
