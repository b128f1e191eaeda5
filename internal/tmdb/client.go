package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour
const defaultLanguage = "zh-CN"

var (
	// ErrNotFound is returned when a series doesn't exist in TMDB or a
	// search has no results.
	ErrNotFound = errors.New("series not found")

	// ErrUnavailable is returned on transport failures and non-2xx replies.
	ErrUnavailable = errors.New("tmdb unavailable")
)

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	cache      *cache.Cache
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.cache = cache.New(ttl, 2*ttl)
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLanguage sets the response language (default zh-CN).
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache: cache.New(defaultCacheTTL, 2*defaultCacheTTL),
		log:   slog.Default().With("component", "tmdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchTV searches TV shows by name. Results keep TMDB's relevance order.
// Returns ErrNotFound if nothing matched.
func (c *Client) SearchTV(ctx context.Context, name string) ([]SearchResult, error) {
	key := "search:" + name
	if v, ok := c.cache.Get(key); ok {
		return v.([]SearchResult), nil
	}

	var resp searchResponse
	if err := c.get(ctx, "/3/search/tv", url.Values{"query": {name}}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("search %q: %w", name, ErrNotFound)
	}

	c.cache.Set(key, resp.Results, cache.DefaultExpiration)
	return resp.Results, nil
}

// GetTV fetches series details by TMDB ID.
func (c *Client) GetTV(ctx context.Context, id int64) (*Series, error) {
	key := "tv:" + strconv.FormatInt(id, 10)
	if v, ok := c.cache.Get(key); ok {
		return v.(*Series), nil
	}

	var series Series
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d", id), nil, &series); err != nil {
		return nil, err
	}

	c.cache.Set(key, &series, cache.DefaultExpiration)
	return &series, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrUnavailable, path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
