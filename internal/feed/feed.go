// Package feed fetches and normalizes RSS feeds.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

var (
	// ErrFetch is returned when the feed could not be downloaded.
	ErrFetch = errors.New("feed fetch failed")

	// ErrParse is returned when the body is not a readable feed.
	ErrParse = errors.New("feed parse failed")
)

// maxFeedBytes bounds how much of a response body is read.
const maxFeedBytes = 16 << 20

// Item is a normalized feed entry.
type Item struct {
	Title           string
	Link            string // episode page
	EnclosureURL    string // torrent link
	EnclosureLength int64
	Published       *time.Time
}

// Feed is a parsed feed with its channel title.
type Feed struct {
	Title string
	Items []Item
}

// Reader downloads and parses feeds.
type Reader struct {
	httpClient *http.Client
	userAgent  string
	log        *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(r *Reader) {
		r.httpClient = hc
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Reader) {
		r.userAgent = ua
	}
}

// NewReader creates a feed reader.
func NewReader(log *slog.Logger, opts ...Option) *Reader {
	if log == nil {
		log = slog.Default()
	}
	r := &Reader{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "autoani/1.0",
		log:        log.With("component", "feed"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch downloads url and parses it. A body that is not a readable feed
// yields an empty Feed; only transport failures and non-200 responses are
// returned as ErrFetch.
func (r *Reader) Fetch(ctx context.Context, url string) (*Feed, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}

	f, err := Parse(data)
	if err != nil {
		r.log.Warn("malformed feed, treating as empty", "url", url, "error", err)
		return &Feed{}, nil
	}

	r.log.Debug("feed fetched", "items", len(f.Items), "duration_ms", time.Since(start).Milliseconds())
	return f, nil
}

// Parse converts raw feed bytes into a Feed.
func Parse(data []byte) (*Feed, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	f := &Feed{
		Title: strings.TrimSpace(parsed.Title),
		Items: make([]Item, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		f.Items = append(f.Items, normalizeItem(it))
	}
	return f, nil
}

func normalizeItem(it *gofeed.Item) Item {
	item := Item{
		Title: strings.TrimSpace(it.Title),
		Link:  strings.TrimSpace(it.Link),
	}

	// RSS 2.0 allows a single enclosure; take the first.
	if len(it.Enclosures) > 0 && it.Enclosures[0] != nil {
		enc := it.Enclosures[0]
		item.EnclosureURL = strings.TrimSpace(enc.URL)
		if enc.Length != "" {
			if n, err := strconv.ParseInt(enc.Length, 10, 64); err == nil {
				item.EnclosureLength = n
			}
		}
	}

	switch {
	case it.PublishedParsed != nil:
		t := it.PublishedParsed.UTC()
		item.Published = &t
	default:
		item.Published = torrentPubDate(it.Extensions)
	}
	return item
}

// torrentPubDateLayouts are the formats Mikan uses inside its <torrent> element.
var torrentPubDateLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// torrentPubDate reads <torrent><pubDate> from a namespaced extension,
// which Mikan uses instead of the item's own pubDate.
func torrentPubDate(exts ext.Extensions) *time.Time {
	for _, byName := range exts {
		for _, torrent := range byName["torrent"] {
			for _, pd := range torrent.Children["pubDate"] {
				for _, layout := range torrentPubDateLayouts {
					if t, err := time.Parse(layout, strings.TrimSpace(pd.Value)); err == nil {
						t = t.UTC()
						return &t
					}
				}
			}
		}
	}
	return nil
}
