package library

import (
	"database/sql"
	"fmt"
)

const remoteColumns = `id, path, name, series_id, episode_number, size, modified_at, indexed_at`

func scanRemoteFile(row scanner) (*RemoteFile, error) {
	f := &RemoteFile{}
	var seriesID, episode sql.NullInt64
	var modified sql.NullTime
	if err := row.Scan(&f.ID, &f.Path, &f.Name, &seriesID, &episode, &f.Size, &modified, &f.IndexedAt); err != nil {
		return nil, err
	}
	if seriesID.Valid {
		id := seriesID.Int64
		f.SeriesID = &id
	}
	if episode.Valid {
		n := int(episode.Int64)
		f.Episode = &n
	}
	if modified.Valid {
		t := modified.Time
		f.ModifiedAt = &t
	}
	return f, nil
}

// ReplaceRemoteIndex swaps the whole remote index for files in one
// transaction. Readers see either the previous snapshot or the new one.
// Duplicate paths keep the last occurrence.
func (s *Store) ReplaceRemoteIndex(files []*RemoteFile) error {
	now := s.now()
	return s.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM remote_index`); err != nil {
			return fmt.Errorf("clear remote index: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO remote_index (path, name, series_id, episode_number, size, modified_at, indexed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(path) DO UPDATE SET
				name = excluded.name, series_id = excluded.series_id, episode_number = excluded.episode_number,
				size = excluded.size, modified_at = excluded.modified_at, indexed_at = excluded.indexed_at`)
		if err != nil {
			return fmt.Errorf("prepare remote insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, f := range files {
			if _, err := stmt.Exec(f.Path, f.Name, f.SeriesID, f.Episode, f.Size, f.ModifiedAt, now); err != nil {
				return fmt.Errorf("insert remote file %q: %w", f.Path, mapSQLiteError(err))
			}
			f.IndexedAt = now
		}
		return nil
	})
}

// ListRemoteFiles returns indexed files matching the filter, ordered by path.
func (s *Store) ListRemoteFiles(f RemoteFileFilter) ([]*RemoteFile, error) {
	var conditions []string
	var args []any

	if f.SeriesID != nil {
		conditions = append(conditions, "series_id = ?")
		args = append(args, *f.SeriesID)
	}
	if f.Unclassified {
		conditions = append(conditions, "(series_id IS NULL OR episode_number IS NULL)")
	}

	rows, err := s.db.Query("SELECT "+remoteColumns+" FROM remote_index"+whereClause(conditions)+" ORDER BY path", args...)
	if err != nil {
		return nil, fmt.Errorf("list remote files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*RemoteFile
	for rows.Next() {
		rf, err := scanRemoteFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan remote file: %w", err)
		}
		results = append(results, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remote files: %w", err)
	}
	return results, nil
}

// LoadIndex builds the lookup set from the persisted snapshot.
func (s *Store) LoadIndex() (Index, error) {
	files, err := s.ListRemoteFiles(RemoteFileFilter{})
	if err != nil {
		return nil, err
	}
	return NewIndex(files), nil
}
