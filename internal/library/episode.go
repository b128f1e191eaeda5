package library

import (
	"database/sql"
	"fmt"

	"github.com/vmunix/autoani/pkg/release"
)

const episodeColumns = `id, series_id, episode_number, subtitle_lang, title, torrent_link, page_link,
	file_size, pub_date, status, status_changed_at, created_at, updated_at`

func scanEpisode(row scanner) (*Episode, error) {
	e := &Episode{}
	var subtitle string
	var pubDate sql.NullTime
	err := row.Scan(&e.ID, &e.SeriesID, &e.Number, &subtitle, &e.Title, &e.TorrentLink, &e.PageLink,
		&e.Size, &pubDate, &e.Status, &e.StatusChangedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Subtitle = release.ParseSubtitle(subtitle)
	if pubDate.Valid {
		t := pubDate.Time
		e.PubDate = &t
	}
	return e, nil
}

// UpsertResult tells the caller what an upsert did.
type UpsertResult int

const (
	UpsertCreated UpsertResult = iota
	UpsertUpdated
)

// UpsertEpisode inserts an episode or refreshes the existing row with the
// same (series, number, subtitle) key.
//
// An existing row keeps its status unless it is still pending or
// mismatched, in which case e.Status is written. A status already advanced
// by reconciliation is never regressed here. On return e carries the stored
// id, status and timestamps.
func (s *Store) UpsertEpisode(e *Episode) (UpsertResult, error) {
	now := s.now()
	result := UpsertCreated

	err := s.inTx(func(tx *sql.Tx) error {
		var id int64
		var status Status
		err := tx.QueryRow(`
			SELECT id, status FROM episodes
			WHERE series_id = ? AND episode_number = ? AND subtitle_lang = ?`,
			e.SeriesID, e.Number, string(e.Subtitle),
		).Scan(&id, &status)

		switch {
		case err == sql.ErrNoRows:
			res, err := tx.Exec(`
				INSERT INTO episodes (series_id, episode_number, subtitle_lang, title, torrent_link, page_link,
					file_size, pub_date, status, status_changed_at, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				e.SeriesID, e.Number, string(e.Subtitle), e.Title, e.TorrentLink, e.PageLink,
				e.Size, e.PubDate, e.Status, now, now, now,
			)
			if err != nil {
				return fmt.Errorf("insert episode: %w", mapSQLiteError(err))
			}
			if e.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("get last insert id: %w", err)
			}
			e.StatusChangedAt = now
			e.CreatedAt = now
			e.UpdatedAt = now
			return nil

		case err != nil:
			return fmt.Errorf("find episode: %w", err)
		}

		result = UpsertUpdated
		newStatus := status
		if (status == StatusPending || status == StatusMismatched) && e.Status != "" {
			newStatus = e.Status
		}

		if _, err := tx.Exec(`
			UPDATE episodes SET title = ?, torrent_link = ?, page_link = ?, file_size = ?, pub_date = ?,
				status = ?, status_changed_at = CASE WHEN status = ? THEN status_changed_at ELSE ? END,
				updated_at = ?
			WHERE id = ?`,
			e.Title, e.TorrentLink, e.PageLink, e.Size, e.PubDate,
			newStatus, newStatus, now, now, id,
		); err != nil {
			return fmt.Errorf("update episode %d: %w", id, mapSQLiteError(err))
		}

		stored, err := scanEpisode(tx.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id))
		if err != nil {
			return fmt.Errorf("reload episode %d: %w", id, err)
		}
		*e = *stored
		return nil
	})
	return result, err
}

// GetEpisode retrieves an episode by ID.
// Returns ErrNotFound if the episode does not exist.
func (s *Store) GetEpisode(id int64) (*Episode, error) {
	e, err := scanEpisode(s.db.QueryRow(`SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get episode %d: %w", id, mapSQLiteError(err))
	}
	return e, nil
}

// ListEpisodes returns episodes matching the filter, ordered by series and
// episode number.
func (s *Store) ListEpisodes(f EpisodeFilter) ([]*Episode, error) {
	var conditions []string
	var args []any

	if f.SeriesID != nil {
		conditions = append(conditions, "series_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}

	query := "SELECT " + episodeColumns + " FROM episodes" + whereClause(conditions) + " ORDER BY series_id, episode_number, subtitle_lang"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Episode
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	return results, nil
}

// EpisodesByStatus is shorthand for listing every episode in one status.
func (s *Store) EpisodesByStatus(status Status) ([]*Episode, error) {
	return s.ListEpisodes(EpisodeFilter{Status: &status})
}

// Transition changes an episode's status with validation and event emission.
//
// The update only applies if the stored status still equals e.Status, so two
// tasks racing on the same episode cannot both move it. The loser gets
// ErrStaleStatus.
func (s *Store) Transition(e *Episode, to Status) error {
	if !e.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, to)
	}

	from := e.Status
	now := s.now()

	result, err := s.db.Exec(`
		UPDATE episodes SET status = ?, status_changed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		to, now, now, e.ID, from,
	)
	if err != nil {
		return fmt.Errorf("update episode %d: %w", e.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetEpisode(e.ID); err != nil {
			return fmt.Errorf("transition episode %d: %w", e.ID, err)
		}
		return fmt.Errorf("transition episode %d from %s: %w", e.ID, from, ErrStaleStatus)
	}

	e.Status = to
	e.StatusChangedAt = now
	e.UpdatedAt = now

	event := TransitionEvent{
		EpisodeID: e.ID,
		SeriesID:  e.SeriesID,
		Episode:   e.Number,
		From:      from,
		To:        to,
		At:        now,
	}
	for _, h := range s.handlers {
		h(event)
	}
	return nil
}

// EpisodeStats counts episodes per status for one series.
// Every status is present in the result, zero when unused.
func (s *Store) EpisodeStats(seriesID int64) (map[Status]int, error) {
	stats := make(map[Status]int, len(AllStatuses))
	for _, st := range AllStatuses {
		stats[st] = 0
	}

	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM episodes WHERE series_id = ? GROUP BY status`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("episode stats %d: %w", seriesID, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var st Status
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[st] = n
	}
	return stats, rows.Err()
}

// MaxEpisodeNumber returns the highest stored episode number of a series,
// or 0 if it has none.
func (s *Store) MaxEpisodeNumber(seriesID int64) (int, error) {
	var n sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(episode_number) FROM episodes WHERE series_id = ?`, seriesID).Scan(&n); err != nil {
		return 0, fmt.Errorf("max episode %d: %w", seriesID, err)
	}
	return int(n.Int64), nil
}
