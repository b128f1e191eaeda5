// Package mikan scrapes series pages on Mikan Project.
package mikan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the public Mikan site.
const DefaultBaseURL = "https://mikanani.me"

var (
	// ErrFetch is returned when a page could not be downloaded.
	ErrFetch = errors.New("mikan fetch failed")

	// ErrInvalidFeedURL is returned when a feed URL carries no bangumiId.
	ErrInvalidFeedURL = errors.New("invalid mikan feed url")
)

// channelPrefix prefixes every Mikan feed title.
const channelPrefix = "Mikan Project - "

var posterStyleRegex = regexp.MustCompile(`url\(['"]?([^'")]+)['"]?\)`)

// PageInfo is what an episode or series page reveals.
type PageInfo struct {
	FeedURL   string
	PosterURL string
}

// FeedRef identifies a per-series feed.
type FeedRef struct {
	BangumiID  int
	SubgroupID int // 0 when the feed is not filtered by group
}

// Client fetches Mikan pages.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for mirrors or testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a Mikan client.
func New(log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With("component", "mikan"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured site root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MyBangumiURL builds the aggregate subscription feed URL for a token.
func MyBangumiURL(base, token string) string {
	return strings.TrimSuffix(base, "/") + "/RSS/MyBangumi?token=" + url.QueryEscape(token)
}

// ParseFeedURL extracts bangumiId and subgroupid from a series feed URL
// such as /RSS/Bangumi?bangumiId=3736&subgroupid=370.
func ParseFeedURL(raw string) (FeedRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return FeedRef{}, fmt.Errorf("%w: %v", ErrInvalidFeedURL, err)
	}
	q := u.Query()

	id, err := strconv.Atoi(q.Get("bangumiId"))
	if err != nil || id <= 0 {
		return FeedRef{}, fmt.Errorf("%w: %q", ErrInvalidFeedURL, raw)
	}
	ref := FeedRef{BangumiID: id}
	if sg := q.Get("subgroupid"); sg != "" {
		if n, err := strconv.Atoi(sg); err == nil {
			ref.SubgroupID = n
		}
	}
	return ref, nil
}

// SeriesNameFromChannel strips the site prefix from a feed channel title.
// A title that is only the prefix, with or without its trailing space,
// yields "".
func SeriesNameFromChannel(title string) string {
	title = strings.TrimSpace(title)
	title = strings.TrimPrefix(title, strings.TrimRight(channelPrefix, " "))
	return strings.TrimSpace(title)
}

// EpisodePage scrapes an episode page for the series feed link and poster.
func (c *Client) EpisodePage(ctx context.Context, link string) (*PageInfo, error) {
	doc, err := c.fetch(ctx, c.absolute(link))
	if err != nil {
		return nil, err
	}
	info := &PageInfo{
		FeedURL:   c.feedLink(doc),
		PosterURL: c.poster(doc),
	}
	c.log.Debug("episode page scraped", "link", link, "feed", info.FeedURL, "poster", info.PosterURL)
	return info, nil
}

// BangumiPage scrapes a series page for its poster. The feed URL of the
// returned info is empty; the series page lists one feed per group.
func (c *Client) BangumiPage(ctx context.Context, bangumiID int) (*PageInfo, error) {
	doc, err := c.fetch(ctx, fmt.Sprintf("%s/Home/Bangumi/%d", c.baseURL, bangumiID))
	if err != nil {
		return nil, err
	}
	return &PageInfo{PosterURL: c.poster(doc)}, nil
}

func (c *Client) fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; autoani)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", ErrFetch, pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrFetch, err)
	}
	return doc, nil
}

func (c *Client) feedLink(doc *goquery.Document) string {
	href, ok := doc.Find("p.bangumi-title a.mikan-rss").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	return c.absolute(href)
}

func (c *Client) poster(doc *goquery.Document) string {
	style, ok := doc.Find("div.bangumi-poster").First().Attr("style")
	if !ok {
		return ""
	}
	m := posterStyleRegex.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	path, _, _ := strings.Cut(m[1], "?")
	return c.absolute(path)
}

// absolute resolves ref against the base URL.
func (c *Client) absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
