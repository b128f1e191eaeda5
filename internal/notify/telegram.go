package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultTelegramURL = "https://api.telegram.org"

// ErrDelivery is returned when at least one chat could not be notified.
var ErrDelivery = errors.New("notification delivery failed")

// Telegram sends notices through the Bot API.
type Telegram struct {
	token      string
	chatIDs    []int64
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// TelegramOption configures a Telegram notifier.
type TelegramOption func(*Telegram)

// WithTelegramURL sets a custom API root (for testing).
func WithTelegramURL(u string) TelegramOption {
	return func(t *Telegram) {
		t.baseURL = strings.TrimSuffix(u, "/")
	}
}

// NewTelegram creates a notifier posting to every chat in chatIDs.
func NewTelegram(token string, chatIDs []int64, log *slog.Logger, opts ...TelegramOption) *Telegram {
	t := &Telegram{
		token:      token,
		chatIDs:    chatIDs,
		baseURL:    defaultTelegramURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log.With("component", "notify"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NotifyCompleted sends one message per chat. Every chat is attempted even
// if an earlier one fails.
func (t *Telegram) NotifyCompleted(ctx context.Context, items []Completed) error {
	if len(items) == 0 {
		return nil
	}
	text := FormatCompleted(items)

	var failed []string
	for _, chatID := range t.chatIDs {
		if err := t.send(ctx, chatID, text); err != nil {
			t.log.Warn("telegram send failed", "chat_id", chatID, "error", err)
			failed = append(failed, fmt.Sprint(chatID))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: chats %s", ErrDelivery, strings.Join(failed, ","))
	}
	t.log.Debug("completion notice sent", "episodes", len(items), "chats", len(t.chatIDs))
	return nil
}

func (t *Telegram) send(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(map[string]any{"chat_id": chatID, "text": text})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: %s", result.Description)
	}
	return nil
}
