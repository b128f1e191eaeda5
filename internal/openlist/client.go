// Package openlist is a client for the OpenList file store API.
package openlist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	defaultPageSize = 100
	defaultMaxDepth = 16
)

// Entry is one item of a directory listing.
type Entry struct {
	Name     string    `json:"name"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Listing is one page of a directory.
type Listing struct {
	Content []Entry `json:"content"`
	Total   int     `json:"total"`
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to an OpenList server. It logs in lazily and keeps the token
// until the server rejects it.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	pageSize   int
	maxDepth   int
	log        *slog.Logger

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithPageSize sets the listing page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxDepth bounds how many directory levels Scan descends.
func WithMaxDepth(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// New creates an OpenList client.
func New(baseURL, username, password string, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		pageSize:   defaultPageSize,
		maxDepth:   defaultMaxDepth,
		log:        log.With("component", "openlist"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login authenticates and stores the token for later calls.
func (c *Client) Login(ctx context.Context) error {
	var data struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"username": c.username, "password": c.password}
	if err := c.post(ctx, "/api/auth/login", "", payload, &data); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if data.Token == "" {
		return fmt.Errorf("%w: empty token", ErrAuth)
	}

	c.mu.Lock()
	c.token = data.Token
	c.mu.Unlock()
	c.log.Debug("logged in", "user", c.username)
	return nil
}

// List returns one page of a directory.
func (c *Client) List(ctx context.Context, dir string, page, perPage int) (*Listing, error) {
	var listing Listing
	payload := map[string]any{"path": dir, "page": page, "per_page": perPage, "refresh": false}
	if err := c.call(ctx, "/api/fs/list", payload, &listing); err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return &listing, nil
}

// AddOfflineDownload asks the server to fetch urls into dir with the given
// tool. An empty tool leaves the choice to the server.
func (c *Client) AddOfflineDownload(ctx context.Context, urls []string, dir, tool string) error {
	payload := map[string]any{"urls": urls, "path": dir}
	if tool != "" {
		payload["tool"] = tool
	}
	if err := c.call(ctx, "/api/fs/add_offline_download", payload, nil); err != nil {
		return fmt.Errorf("offline download to %s: %w", dir, err)
	}
	return nil
}

// call runs an authenticated request, logging in first if needed and once
// more if the server rejects the token.
func (c *Client) call(ctx context.Context, endpoint string, payload, out any) error {
	for attempt := 0; ; attempt++ {
		token, err := c.currentToken(ctx)
		if err != nil {
			return err
		}

		err = c.post(ctx, endpoint, token, payload, out)
		if !errors.Is(err, errUnauthorized) {
			return err
		}

		c.mu.Lock()
		if c.token == token {
			c.token = ""
		}
		c.mu.Unlock()

		if attempt > 0 {
			return fmt.Errorf("%w: token rejected", ErrAuth)
		}
		c.log.Debug("token rejected, logging in again", "endpoint", endpoint)
	}
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token, nil
	}

	if err := c.Login(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

var errUnauthorized = errors.New("unauthorized")

func (c *Client) post(ctx context.Context, endpoint, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %s", ErrUnavailable, endpoint, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	switch {
	case env.Code == http.StatusUnauthorized && token != "":
		return errUnauthorized
	case env.Code != http.StatusOK:
		return fmt.Errorf("%w: code %d: %s", ErrRequest, env.Code, env.Message)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
