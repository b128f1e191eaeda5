// Package subscription discovers new series from the subscription feed
// and manages the subscribed set.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vmunix/autoani/internal/feed"
	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/mikan"
	"github.com/vmunix/autoani/internal/tmdb"
	"github.com/vmunix/autoani/pkg/release"
)

// FeedReader fetches syndication feeds.
type FeedReader interface {
	Fetch(ctx context.Context, url string) (*feed.Feed, error)
}

// MetadataResolver maps a series name to canonical metadata.
type MetadataResolver interface {
	Resolve(ctx context.Context, name string) (*tmdb.Match, error)
}

// PageScraper reads series details from Mikan pages.
type PageScraper interface {
	EpisodePage(ctx context.Context, link string) (*mikan.PageInfo, error)
	BangumiPage(ctx context.Context, bangumiID int) (*mikan.PageInfo, error)
}

// RemoteDeleter removes files from the remote store.
type RemoteDeleter interface {
	Remove(ctx context.Context, paths []string) (removed, failed int)
}

// Report summarizes one discovery run.
type Report struct {
	Items      int // feed items read
	Candidates int // unique unblocked names considered
	Added      int
	Aliased    int // names attached to an already known series
	Failures   []error
}

// Tracker turns feed items into subscribed series.
type Tracker struct {
	store    *library.Store
	feeds    FeedReader
	resolver MetadataResolver
	pages    PageScraper
	remote   RemoteDeleter
	feedURL  string
	log      *slog.Logger
}

// NewTracker creates a tracker reading the aggregate feed at feedURL.
// remote may be nil when remote deletion is not wanted.
func NewTracker(store *library.Store, feeds FeedReader, resolver MetadataResolver, pages PageScraper,
	remote RemoteDeleter, feedURL string, log *slog.Logger) *Tracker {
	return &Tracker{
		store:    store,
		feeds:    feeds,
		resolver: resolver,
		pages:    pages,
		remote:   remote,
		feedURL:  feedURL,
		log:      log.With("component", "tracker"),
	}
}

type candidate struct {
	name  string
	title string
	link  string
}

// Discover reads the subscription feed and adds every series not seen
// before. Only the first item per series name is considered. A candidate
// that cannot be resolved is recorded in the report and skipped.
func (t *Tracker) Discover(ctx context.Context) (*Report, error) {
	f, err := t.feeds.Fetch(ctx, t.feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription feed: %w", err)
	}

	report := &Report{Items: len(f.Items)}
	seen := make(map[string]bool)
	var candidates []candidate

	for _, item := range f.Items {
		name, ok := release.SeriesName(item.Title)
		if !ok {
			t.log.Debug("no series name in title", "title", item.Title)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		blocked, err := t.store.IsBlocked(name)
		if err != nil {
			return report, err
		}
		if blocked {
			continue
		}
		candidates = append(candidates, candidate{name: name, title: item.Title, link: item.Link})
	}
	report.Candidates = len(candidates)

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		aliased, err := t.addCandidate(ctx, c)
		switch {
		case err != nil:
			report.Failures = append(report.Failures, &CandidateError{Name: c.name, Err: err})
		case aliased:
			report.Aliased++
		default:
			report.Added++
		}
	}

	t.log.Info("discovery complete", "items", report.Items, "candidates", report.Candidates,
		"added", report.Added, "aliased", report.Aliased, "failed", len(report.Failures))
	return report, nil
}

// addCandidate resolves and stores one series. It returns true when the
// name turned out to belong to a series already subscribed under another
// name and was recorded as an alias.
func (t *Tracker) addCandidate(ctx context.Context, c candidate) (bool, error) {
	match, err := t.resolve(ctx, c.name)
	if err != nil {
		return false, err
	}

	if existing, err := t.store.GetSeries(match.ID); err == nil {
		if err := t.store.AddAlias(existing.ID, c.name); err != nil {
			return false, err
		}
		t.log.Info("alias added", "series", existing.Name, "alias", c.name, "id", existing.ID)
		return true, nil
	} else if !errors.Is(err, library.ErrNotFound) {
		return false, err
	}

	sr := newSeries(c.name, match)
	if c.link != "" {
		page, err := t.pages.EpisodePage(ctx, c.link)
		if err != nil {
			// The series is still worth tracking; the scraper skips it until
			// a feed URL is known.
			t.log.Warn("episode page scrape failed", "series", c.name, "link", c.link, "error", err)
		} else {
			sr.FeedURL = page.FeedURL
			if page.PosterURL != "" {
				sr.PosterURL = page.PosterURL
			}
		}
	}

	if err := t.store.AddSeries(sr); err != nil {
		return false, err
	}
	t.log.Info("series added", "series", sr.Name, "id", sr.ID, "total_episodes", derefInt(sr.TotalEpisodes), "feed", sr.FeedURL)
	return false, nil
}

// AddByFeedURL subscribes to the series behind a per-series feed URL.
// It fails closed: nothing is written unless the name can be read, is not
// yet known and resolves to a series not yet subscribed.
func (t *Tracker) AddByFeedURL(ctx context.Context, feedURL string) (*library.Series, error) {
	ref, err := mikan.ParseFeedURL(feedURL)
	if err != nil {
		return nil, err
	}

	f, err := t.feeds.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch series feed: %w", err)
	}
	name := mikan.SeriesNameFromChannel(f.Title)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", feedURL, ErrNoName)
	}

	blocked, err := t.store.IsBlocked(name)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, fmt.Errorf("%q: %w", name, ErrAlreadySubscribed)
	}

	match, err := t.resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, err := t.store.GetSeries(match.ID); err == nil {
		return nil, fmt.Errorf("%q resolves to series %d: %w", name, match.ID, ErrAlreadySubscribed)
	} else if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}

	sr := newSeries(name, match)
	sr.FeedURL = feedURL

	page, err := t.pages.BangumiPage(ctx, ref.BangumiID)
	if err != nil {
		t.log.Warn("series page scrape failed", "series", name, "bangumi_id", ref.BangumiID, "error", err)
	} else if page.PosterURL != "" {
		sr.PosterURL = page.PosterURL
	}

	if err := t.store.AddSeries(sr); err != nil {
		return nil, err
	}
	t.log.Info("series added by feed", "series", name, "id", sr.ID, "feed", feedURL)
	return sr, nil
}

func (t *Tracker) resolve(ctx context.Context, name string) (*tmdb.Match, error) {
	match, err := t.resolver.Resolve(ctx, name)
	if errors.Is(err, tmdb.ErrNotFound) {
		return nil, fmt.Errorf("%q: %w", name, ErrNoMatch)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", name, err)
	}
	return match, nil
}

func newSeries(name string, m *tmdb.Match) *library.Series {
	sr := &library.Series{
		ID:            m.ID,
		Title:         m.Name,
		Name:          name,
		TotalEpisodes: m.TotalEpisodes,
		PosterURL:     m.PosterURL,
		FirstAirDate:  m.FirstAirDate,
		Status:        library.SeriesActive,
		Source:        library.SourceMikan,
	}
	if sr.Title == "" {
		sr.Title = name
	}
	if tag, ok := release.SeasonTagFromDate(m.FirstAirDate); ok {
		sr.SeasonTag = tag
	}
	for _, alias := range []string{m.OriginalName, m.Name} {
		if alias != "" && alias != name {
			sr.Aliases = append(sr.Aliases, alias)
		}
	}
	return sr
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
