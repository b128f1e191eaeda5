package library

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vmunix/autoani/pkg/release"
)

const seriesColumns = `id, title, series_name, total_episodes, feed_url, poster_url, first_air_date,
	season_tag, subtitle_lang, fansub_group, status, source, last_scraped_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSeries(row scanner) (*Series, error) {
	sr := &Series{}
	var total sql.NullInt64
	var subtitle string
	var lastScraped sql.NullTime
	err := row.Scan(&sr.ID, &sr.Title, &sr.Name, &total, &sr.FeedURL, &sr.PosterURL, &sr.FirstAirDate,
		&sr.SeasonTag, &subtitle, &sr.FansubGroup, &sr.Status, &sr.Source, &lastScraped, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if total.Valid {
		n := int(total.Int64)
		sr.TotalEpisodes = &n
	}
	if lastScraped.Valid {
		t := lastScraped.Time
		sr.LastScrapedAt = &t
	}
	sr.Subtitle = release.ParseSubtitle(subtitle)
	return sr, nil
}

// AddSeries inserts a new series together with its aliases.
// Returns ErrDuplicate if the id or the canonical name is already taken.
func (s *Store) AddSeries(sr *Series) error {
	now := s.now()
	if sr.Status == "" {
		sr.Status = SeriesActive
	}
	if sr.Source == "" {
		sr.Source = SourceMikan
	}

	err := s.inTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO series (id, title, series_name, total_episodes, feed_url, poster_url, first_air_date,
				season_tag, subtitle_lang, fansub_group, status, source, last_scraped_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sr.ID, sr.Title, sr.Name, sr.TotalEpisodes, sr.FeedURL, sr.PosterURL, sr.FirstAirDate,
			sr.SeasonTag, string(sr.Subtitle), sr.FansubGroup, sr.Status, sr.Source, sr.LastScrapedAt, now, now,
		)
		if err != nil {
			return fmt.Errorf("insert series %d: %w", sr.ID, mapSQLiteError(err))
		}
		for _, alias := range sr.Aliases {
			if err := addAlias(tx, sr.ID, sr.Name, alias); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	sr.CreatedAt = now
	sr.UpdatedAt = now
	return nil
}

func addAlias(q querier, seriesID int64, name, alias string) error {
	if alias == "" || alias == name {
		return nil
	}
	if _, err := q.Exec(`INSERT OR IGNORE INTO series_aliases (alias, series_id) VALUES (?, ?)`, alias, seriesID); err != nil {
		return fmt.Errorf("insert alias %q: %w", alias, mapSQLiteError(err))
	}
	return nil
}

// AddAlias records an extra name for a series so it is blocked from
// re-resolution. Adding an existing alias is a no-op.
func (s *Store) AddAlias(seriesID int64, alias string) error {
	return addAlias(s.db, seriesID, "", alias)
}

func (s *Store) loadAliases(sr *Series) error {
	rows, err := s.db.Query(`SELECT alias FROM series_aliases WHERE series_id = ? ORDER BY alias`, sr.ID)
	if err != nil {
		return fmt.Errorf("list aliases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sr.Aliases = nil
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return fmt.Errorf("scan alias: %w", err)
		}
		sr.Aliases = append(sr.Aliases, a)
	}
	return rows.Err()
}

// GetSeries retrieves a series by TMDB id.
// Returns ErrNotFound if the series does not exist.
func (s *Store) GetSeries(id int64) (*Series, error) {
	sr, err := scanSeries(s.db.QueryRow(`SELECT `+seriesColumns+` FROM series WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get series %d: %w", id, mapSQLiteError(err))
	}
	if err := s.loadAliases(sr); err != nil {
		return nil, err
	}
	return sr, nil
}

// FindSeriesByName looks a series up by canonical name or alias.
// Returns ErrNotFound if no series carries that name.
func (s *Store) FindSeriesByName(name string) (*Series, error) {
	sr, err := scanSeries(s.db.QueryRow(`
		SELECT `+seriesColumns+` FROM series
		WHERE series_name = ? OR id IN (SELECT series_id FROM series_aliases WHERE alias = ?)
		LIMIT 1`, name, name))
	if err != nil {
		return nil, fmt.Errorf("find series %q: %w", name, mapSQLiteError(err))
	}
	if err := s.loadAliases(sr); err != nil {
		return nil, err
	}
	return sr, nil
}

// IsBlocked reports whether a name is already known, either as a canonical
// series name or as an alias.
func (s *Store) IsBlocked(name string) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT (SELECT COUNT(*) FROM series WHERE series_name = ?) +
		       (SELECT COUNT(*) FROM series_aliases WHERE alias = ?)`, name, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check blocked %q: %w", name, err)
	}
	return n > 0, nil
}

// ListSeries returns series matching the filter, ordered by id.
func (s *Store) ListSeries(f SeriesFilter) ([]*Series, error) {
	var conditions []string
	var args []any

	if f.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *f.Status)
	}
	if f.Source != nil {
		conditions = append(conditions, "source = ?")
		args = append(args, *f.Source)
	}

	rows, err := s.db.Query("SELECT "+seriesColumns+" FROM series"+whereClause(conditions)+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Series
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		results = append(results, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}
	_ = rows.Close()

	for _, sr := range results {
		if err := s.loadAliases(sr); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// updateSeries runs a single-row update and maps a missing row to ErrNotFound.
func (s *Store) updateSeries(id int64, op, query string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("%s %d: %w", op, id, mapSQLiteError(err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s %d: %w", op, id, ErrNotFound)
	}
	return nil
}

// SetSubtitlePreference stores the decided subtitle class and, when known,
// the fansub group of a series.
func (s *Store) SetSubtitlePreference(id int64, sub release.Subtitle, group string) error {
	return s.updateSeries(id, "set subtitle preference",
		`UPDATE series SET subtitle_lang = ?, fansub_group = ?, updated_at = ? WHERE id = ?`,
		string(sub), group, s.now(), id)
}

// ResetPreference clears the subtitle preference and last-scrape time so the
// next scrape detects the preference again.
func (s *Store) ResetPreference(id int64) error {
	return s.updateSeries(id, "reset preference",
		`UPDATE series SET subtitle_lang = '', fansub_group = '', last_scraped_at = NULL, status = 'active', updated_at = ? WHERE id = ?`,
		s.now(), id)
}

// MarkScraped records the time of the last completed scrape.
func (s *Store) MarkScraped(id int64, at time.Time) error {
	return s.updateSeries(id, "mark scraped",
		`UPDATE series SET last_scraped_at = ?, updated_at = ? WHERE id = ?`,
		at.UTC(), s.now(), id)
}

// SetSeriesStatus changes the lifecycle status of a series.
func (s *Store) SetSeriesStatus(id int64, status SeriesStatus) error {
	return s.updateSeries(id, "set series status",
		`UPDATE series SET status = ?, updated_at = ? WHERE id = ?`,
		status, s.now(), id)
}

// DeactivateIfComplete marks an active series inactive once its highest
// stored episode number reaches the known episode total.
// Returns true if the series was deactivated by this call.
func (s *Store) DeactivateIfComplete(id int64) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE series SET status = 'inactive', updated_at = ?
		WHERE id = ? AND status = 'active'
		  AND total_episodes IS NOT NULL AND total_episodes > 0
		  AND (SELECT MAX(episode_number) FROM episodes WHERE series_id = series.id) >= total_episodes`,
		s.now(), id)
	if err != nil {
		return false, fmt.Errorf("deactivate series %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// DeleteSeries removes a series together with its aliases, episodes and
// remote index rows.
// Returns ErrNotFound if the series does not exist.
func (s *Store) DeleteSeries(id int64) error {
	return s.inTx(func(tx *sql.Tx) error {
		for _, q := range []string{
			`DELETE FROM remote_index WHERE series_id = ?`,
			`DELETE FROM episodes WHERE series_id = ?`,
			`DELETE FROM series_aliases WHERE series_id = ?`,
		} {
			if _, err := tx.Exec(q, id); err != nil {
				return fmt.Errorf("delete series %d dependents: %w", id, err)
			}
		}
		result, err := tx.Exec(`DELETE FROM series WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete series %d: %w", id, mapSQLiteError(err))
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete series %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
