package download

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/autoani/internal/library"
)

// PushReport summarizes one push run.
type PushReport struct {
	Synced    int // pending episodes found already present
	Missing   int // pending episodes absent from the remote store
	Submitted int
	Failures  []error
}

// PushMissing rebuilds the remote index, promotes pending episodes that are
// already present and submits the rest, at most limit of them when limit
// is positive. A failed submission leaves the episode pending and does not
// stop the batch.
func (e *Engine) PushMissing(ctx context.Context, limit int) (*PushReport, error) {
	idx, err := e.Rescan(ctx)
	if err != nil {
		return nil, fmt.Errorf("rescan: %w", err)
	}
	names, err := e.seriesNames()
	if err != nil {
		return nil, err
	}

	pending, err := e.store.EpisodesByStatus(library.StatusPending)
	if err != nil {
		return nil, err
	}

	report := &PushReport{}
	var missing []*library.Episode
	for _, ep := range pending {
		if !idx.Has(ep.SeriesID, ep.Number) {
			missing = append(missing, ep)
			continue
		}
		if err := e.store.Transition(ep, library.StatusOpenlistExists); err != nil {
			report.Failures = append(report.Failures, e.episodeErr("promote", ep, names, err))
			continue
		}
		report.Synced++
	}
	report.Missing = len(missing)

	if limit > 0 && len(missing) > limit {
		missing = missing[:limit]
	}

	for _, ep := range missing {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := e.submit(ctx, ep); err != nil {
			report.Failures = append(report.Failures, e.episodeErr("submit", ep, names, err))
			continue
		}
		if err := e.store.Transition(ep, library.StatusDownloading); err != nil {
			report.Failures = append(report.Failures, e.episodeErr("mark downloading", ep, names, err))
			continue
		}
		report.Submitted++
		e.log.Info("episode submitted", "series", names[ep.SeriesID], "episode", ep.Number)
	}

	e.log.Info("push complete", "synced", report.Synced, "missing", report.Missing,
		"submitted", report.Submitted, "failed", len(report.Failures))
	return report, nil
}

// submit sends one episode to the remote store's offline downloader.
// Torrent links are converted to magnets when possible; a failed
// conversion falls back to the original link.
func (e *Engine) submit(ctx context.Context, ep *library.Episode) error {
	link := ep.TorrentLink
	if link == "" {
		return fmt.Errorf("%w: no download link", ErrSubmit)
	}
	if e.magnets != nil {
		magnet, err := e.magnets.Magnet(ctx, link)
		if err != nil {
			e.log.Debug("magnet conversion failed, using torrent link", "link", link, "error", err)
		} else {
			link = magnet
		}
	}

	if err := e.remote.AddOfflineDownload(ctx, []string{link}, e.root, e.tool); err != nil {
		return fmt.Errorf("%w: %w", ErrSubmit, err)
	}
	return nil
}

func (e *Engine) episodeErr(op string, ep *library.Episode, names map[int64]string, err error) error {
	if errors.Is(err, library.ErrStaleStatus) {
		e.log.Debug("episode changed concurrently", "op", op, "episode_id", ep.ID)
	}
	return &EpisodeError{Op: op, SeriesID: ep.SeriesID, Series: names[ep.SeriesID], Episode: ep.Number, Err: err}
}
