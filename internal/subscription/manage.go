package subscription

import (
	"context"
	"fmt"

	"github.com/vmunix/autoani/internal/library"
)

// Delete removes a series and everything tracked for it. With deleteRemote
// the series' indexed files are removed from the remote store first; it
// returns how many were removed. Remote failures are logged and do not
// stop the local deletion.
func (t *Tracker) Delete(ctx context.Context, seriesID int64, deleteRemote bool) (int, error) {
	sr, err := t.store.GetSeries(seriesID)
	if err != nil {
		return 0, err
	}

	removed := 0
	if deleteRemote && t.remote != nil {
		files, err := t.store.ListRemoteFiles(library.RemoteFileFilter{SeriesID: &seriesID})
		if err != nil {
			return 0, err
		}
		if len(files) > 0 {
			paths := make([]string, 0, len(files))
			for _, f := range files {
				paths = append(paths, f.Path)
			}
			var failed int
			removed, failed = t.remote.Remove(ctx, paths)
			if failed > 0 {
				t.log.Warn("some remote files not removed", "series", sr.Name, "removed", removed, "failed", failed)
			}
		}
	}

	if err := t.store.DeleteSeries(seriesID); err != nil {
		return removed, err
	}
	t.log.Info("series deleted", "series", sr.Name, "id", seriesID, "remote_files_removed", removed)
	return removed, nil
}

// Stats returns per-status episode counts of a series.
func (t *Tracker) Stats(seriesID int64) (map[library.Status]int, error) {
	if _, err := t.store.GetSeries(seriesID); err != nil {
		return nil, err
	}
	return t.store.EpisodeStats(seriesID)
}

// Resubscribe forgets the subtitle preference of a series and reactivates
// it, so the next scrape detects the preference again and re-derives the
// status of its pending and mismatched episodes.
func (t *Tracker) Resubscribe(seriesID int64) error {
	if err := t.store.ResetPreference(seriesID); err != nil {
		return fmt.Errorf("resubscribe: %w", err)
	}
	t.log.Info("series preference reset", "id", seriesID)
	return nil
}
