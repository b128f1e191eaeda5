package main

import (
	"context"
	"time"

	"github.com/vmunix/autoani/internal/download"
	"github.com/vmunix/autoani/internal/events"
	"github.com/vmunix/autoani/internal/scheduler"
	"github.com/vmunix/autoani/internal/scraper"
	"github.com/vmunix/autoani/internal/subscription"
)

type tasks struct {
	tracker   *subscription.Tracker
	scraper   *scraper.Scraper
	engine    *download.Engine
	history   *events.Log
	retention time.Duration
	pushLimit int
}

func registerTasks(s *scheduler.Scheduler, t tasks) {
	s.Register(scheduler.TaskDiscover, t.discover)
	s.Register(scheduler.TaskScrape, t.scrape)
	s.Register(scheduler.TaskPush, t.push)
	s.Register(scheduler.TaskCheck, t.check)
	s.Register(scheduler.TaskTimeout, t.timeout)
}

func (t tasks) discover(ctx context.Context, _ scheduler.RunOptions) (scheduler.Summary, error) {
	r, err := t.tracker.Discover(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.Summary{
		"items":      r.Items,
		"candidates": r.Candidates,
		"added":      r.Added,
		"aliased":    r.Aliased,
		"failures":   errorStrings(r.Failures),
	}, nil
}

func (t tasks) scrape(ctx context.Context, _ scheduler.RunOptions) (scheduler.Summary, error) {
	r, err := t.scraper.ScrapeAll(ctx)
	if err != nil {
		return nil, err
	}
	var mismatched, deactivated int
	for _, res := range r.Results {
		mismatched += res.Mismatched
		if res.Deactivated {
			deactivated++
		}
	}
	return scheduler.Summary{
		"series":      r.Series,
		"scraped":     r.Scraped,
		"created":     r.Created,
		"mismatched":  mismatched,
		"deactivated": deactivated,
		"failures":    errorStrings(r.Failures),
	}, nil
}

func (t tasks) push(ctx context.Context, opts scheduler.RunOptions) (scheduler.Summary, error) {
	limit := t.pushLimit
	if opts.Limit > 0 {
		limit = opts.Limit
	}
	r, err := t.engine.PushMissing(ctx, limit)
	if err != nil {
		return nil, err
	}
	return scheduler.Summary{
		"limit":     limit,
		"synced":    r.Synced,
		"missing":   r.Missing,
		"submitted": r.Submitted,
		"failures":  errorStrings(r.Failures),
	}, nil
}

func (t tasks) check(ctx context.Context, _ scheduler.RunOptions) (scheduler.Summary, error) {
	r, err := t.engine.CheckDownloadingStatus(ctx)
	return checkSummary(r), err
}

// timeout also prunes transition history past its retention window.
func (t tasks) timeout(ctx context.Context, _ scheduler.RunOptions) (scheduler.Summary, error) {
	r, err := t.engine.CheckTimedOutDownloads(ctx)
	summary := checkSummary(r)
	if err != nil || t.history == nil || t.retention <= 0 {
		return summary, err
	}

	pruned, err := t.history.Prune(time.Now().Add(-t.retention))
	if err != nil {
		return summary, err
	}
	if summary == nil {
		summary = scheduler.Summary{}
	}
	summary["history_pruned"] = pruned
	return summary, nil
}

func checkSummary(r *download.CheckReport) scheduler.Summary {
	if r == nil {
		return nil
	}
	return scheduler.Summary{
		"checked":   r.Checked,
		"fresh":     r.Fresh,
		"completed": r.Completed,
		"failed":    r.Failed,
		"failures":  errorStrings(r.Failures),
	}
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}
