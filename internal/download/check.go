package download

import (
	"context"
	"fmt"

	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/notify"
)

// CheckReport summarizes one downloading-status check.
type CheckReport struct {
	Checked   int // downloading episodes considered
	Fresh     int // left alone because they are younger than the timeout
	Completed int
	Failed    int // rolled back to pending
	Failures  []error
}

// CheckDownloadingStatus rebuilds the remote index and settles every
// downloading episode: present ones become openlist_exists, absent ones go
// back to pending regardless of age. Nothing is scanned when no episode is
// downloading.
func (e *Engine) CheckDownloadingStatus(ctx context.Context) (*CheckReport, error) {
	downloading, err := e.store.EpisodesByStatus(library.StatusDownloading)
	if err != nil {
		return nil, err
	}
	report := &CheckReport{Checked: len(downloading)}
	if len(downloading) == 0 {
		return report, nil
	}
	return report, e.settle(ctx, downloading, report)
}

// CheckTimedOutDownloads is the conservative sibling of
// CheckDownloadingStatus: only episodes that entered downloading at least
// the timeout ago are settled. Younger ones are left downloading.
func (e *Engine) CheckTimedOutDownloads(ctx context.Context) (*CheckReport, error) {
	downloading, err := e.store.EpisodesByStatus(library.StatusDownloading)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var stale []*library.Episode
	for _, ep := range downloading {
		if now.Sub(ep.StatusChangedAt) >= e.timeout {
			stale = append(stale, ep)
		}
	}

	report := &CheckReport{Checked: len(downloading), Fresh: len(downloading) - len(stale)}
	if len(stale) == 0 {
		return report, nil
	}
	return report, e.settle(ctx, stale, report)
}

func (e *Engine) settle(ctx context.Context, episodes []*library.Episode, report *CheckReport) error {
	idx, err := e.Rescan(ctx)
	if err != nil {
		return fmt.Errorf("rescan: %w", err)
	}
	names, err := e.seriesNames()
	if err != nil {
		return err
	}

	var completed []notify.Completed
	for _, ep := range episodes {
		if idx.Has(ep.SeriesID, ep.Number) {
			if err := e.store.Transition(ep, library.StatusOpenlistExists); err != nil {
				report.Failures = append(report.Failures, e.episodeErr("promote", ep, names, err))
				continue
			}
			report.Completed++
			completed = append(completed, notify.Completed{SeriesID: ep.SeriesID, Series: names[ep.SeriesID], Episode: ep.Number})
			e.log.Info("download complete", "series", names[ep.SeriesID], "episode", ep.Number)
			continue
		}

		if err := e.store.Transition(ep, library.StatusPending); err != nil {
			report.Failures = append(report.Failures, e.episodeErr("rollback", ep, names, err))
			continue
		}
		report.Failed++
		e.log.Warn("download missing, back to pending", "series", names[ep.SeriesID], "episode", ep.Number)
	}

	if e.notifier != nil && len(completed) > 0 {
		if err := e.notifier.NotifyCompleted(ctx, completed); err != nil {
			e.log.Warn("completion notice failed", "episodes", len(completed), "error", err)
		}
	}

	e.log.Info("downloads checked", "checked", len(episodes), "completed", report.Completed, "failed", report.Failed)
	return nil
}
