// Package scraper pulls each series' own feed and keeps its episode rows
// up to date.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmunix/autoani/internal/feed"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/pkg/release"
)

// DefaultThrottle is the minimum time between two scrapes of one series.
const DefaultThrottle = 7 * 24 * time.Hour

var (
	// ErrNoEpisodeNumber marks a feed item whose title has no episode number.
	ErrNoEpisodeNumber = errors.New("no episode number")

	// ErrNoLink marks a feed item without a download link.
	ErrNoLink = errors.New("no download link")
)

// FeedReader fetches syndication feeds.
type FeedReader interface {
	Fetch(ctx context.Context, url string) (*feed.Feed, error)
}

// Outcome says how far a scrape got.
type Outcome string

const (
	OutcomeScraped      Outcome = "scraped"
	OutcomeThrottled    Outcome = "throttled"
	OutcomeNoFeed       Outcome = "no_feed"
	OutcomeEmptyFeed    Outcome = "empty_feed"
	OutcomeNoPreference Outcome = "no_preference"
)

// Result describes the scrape of one series.
type Result struct {
	SeriesID    int64
	Series      string
	Outcome     Outcome
	Preference  release.Subtitle
	Created     int
	Updated     int
	Pending     int
	Mismatched  int
	Deactivated bool
	Skipped     []error // items that could not be stored
}

// Report summarizes a scrape of every active series.
type Report struct {
	Series   int
	Scraped  int
	Created  int
	Results  []*Result
	Failures []error
}

// Scraper derives episode rows from per-series feeds.
type Scraper struct {
	store    *library.Store
	feeds    FeedReader
	throttle time.Duration
	now      func() time.Time
	log      *slog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithThrottle overrides the minimum interval between scrapes of a series.
func WithThrottle(d time.Duration) Option {
	return func(s *Scraper) {
		s.throttle = d
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		s.now = now
	}
}

// New creates a scraper.
func New(store *library.Store, feeds FeedReader, log *slog.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		store:    store,
		feeds:    feeds,
		throttle: DefaultThrottle,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With("component", "scraper"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScrapeAll scrapes every active series. A failing series is recorded in
// the report and does not stop the others.
func (s *Scraper) ScrapeAll(ctx context.Context) (*Report, error) {
	status := library.SeriesActive
	series, err := s.store.ListSeries(library.SeriesFilter{Status: &status})
	if err != nil {
		return nil, err
	}

	report := &Report{Series: len(series)}
	for _, sr := range series {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := s.ScrapeOne(ctx, sr)
		if err != nil {
			report.Failures = append(report.Failures, fmt.Errorf("series %q (%d): %w", sr.Name, sr.ID, err))
			continue
		}
		report.Results = append(report.Results, res)
		if res.Outcome == OutcomeScraped {
			report.Scraped++
			report.Created += res.Created
		}
	}

	s.log.Info("scrape complete", "series", report.Series, "scraped", report.Scraped,
		"new_episodes", report.Created, "failed", len(report.Failures))
	return report, nil
}

// ScrapeOne refreshes the episodes of one series.
//
// The series is skipped when it was scraped within the throttle window or
// has no feed. On the first scrape the subtitle preference is decided from
// the feed; until one can be decided nothing is stored. Each item with an
// episode number and a download link is upserted as pending when its
// subtitle class matches the preference and mismatched otherwise.
func (s *Scraper) ScrapeOne(ctx context.Context, sr *library.Series) (*Result, error) {
	res := &Result{SeriesID: sr.ID, Series: sr.Name, Preference: sr.Subtitle}
	now := s.now()

	if sr.LastScrapedAt != nil && now.Sub(*sr.LastScrapedAt) < s.throttle {
		res.Outcome = OutcomeThrottled
		return res, nil
	}
	if sr.FeedURL == "" {
		res.Outcome = OutcomeNoFeed
		return res, nil
	}

	f, err := s.feeds.Fetch(ctx, sr.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if len(f.Items) == 0 {
		res.Outcome = OutcomeEmptyFeed
		return res, nil
	}

	if !sr.HasPreference() {
		sub, group, ok := detectPreference(f.Items)
		if !ok {
			s.log.Warn("subtitle preference undetectable, nothing stored", "series", sr.Name, "items", len(f.Items))
			res.Outcome = OutcomeNoPreference
			return res, nil
		}
		if err := s.store.SetSubtitlePreference(sr.ID, sub, group); err != nil {
			return nil, err
		}
		sr.Subtitle = sub
		sr.FansubGroup = group
		res.Preference = sub
		s.log.Info("subtitle preference set", "series", sr.Name, "subtitle", sub, "group", group)
	}

	for _, item := range f.Items {
		ep, err := s.upsertItem(sr, item)
		if err != nil {
			if errors.Is(err, ErrNoEpisodeNumber) || errors.Is(err, ErrNoLink) {
				res.Skipped = append(res.Skipped, err)
				continue
			}
			return nil, err
		}
		if ep.created {
			res.Created++
		} else {
			res.Updated++
		}
		switch ep.status {
		case library.StatusPending:
			res.Pending++
		case library.StatusMismatched:
			res.Mismatched++
		}
	}

	deactivated, err := s.store.DeactivateIfComplete(sr.ID)
	if err != nil {
		return nil, err
	}
	if deactivated {
		sr.Status = library.SeriesInactive
		res.Deactivated = true
		s.log.Info("series complete, deactivated", "series", sr.Name, "total_episodes", *sr.TotalEpisodes)
	}

	if err := s.store.MarkScraped(sr.ID, now); err != nil {
		return nil, err
	}
	sr.LastScrapedAt = &now

	res.Outcome = OutcomeScraped
	s.log.Debug("series scraped", "series", sr.Name, "created", res.Created, "updated", res.Updated,
		"pending", res.Pending, "mismatched", res.Mismatched, "skipped", len(res.Skipped))
	return res, nil
}

type upserted struct {
	created bool
	status  library.Status
}

func (s *Scraper) upsertItem(sr *library.Series, item feed.Item) (upserted, error) {
	number, ok := release.EpisodeNumber(item.Title)
	if !ok {
		return upserted{}, fmt.Errorf("%q: %w", item.Title, ErrNoEpisodeNumber)
	}
	if item.EnclosureURL == "" {
		return upserted{}, fmt.Errorf("%q: %w", item.Title, ErrNoLink)
	}

	sub := release.DetectSubtitle(item.Title)
	status := library.StatusMismatched
	if sub != release.SubtitleNone && sub == sr.Subtitle {
		status = library.StatusPending
	}

	e := &library.Episode{
		SeriesID:    sr.ID,
		Number:      number,
		Subtitle:    sub,
		Title:       item.Title,
		TorrentLink: item.EnclosureURL,
		PageLink:    item.Link,
		Size:        item.EnclosureLength,
		PubDate:     item.Published,
		Status:      status,
	}
	result, err := s.store.UpsertEpisode(e)
	if err != nil {
		return upserted{}, fmt.Errorf("upsert episode %d: %w", number, err)
	}
	return upserted{created: result == library.UpsertCreated, status: e.Status}, nil
}

// detectPreference tallies the subtitle classes of items and picks one.
// The fansub group is adopted only when every tagged item shares it.
func detectPreference(items []feed.Item) (release.Subtitle, string, bool) {
	counts := make(map[release.Subtitle]int)
	groups := make(map[string]bool)
	for _, item := range items {
		counts[release.DetectSubtitle(item.Title)]++
		if g, ok := release.FansubGroup(item.Title); ok {
			groups[g] = true
		}
	}

	sub, ok := release.ChoosePreference(counts)
	if !ok {
		return release.SubtitleNone, "", false
	}

	group := ""
	if len(groups) == 1 {
		for g := range groups {
			group = g
		}
	}
	return sub, group, true
}
