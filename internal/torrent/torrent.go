// Package torrent turns .torrent links into magnet URIs.
package torrent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anacrolix/torrent/metainfo"
)

// maxTorrentBytes bounds the size of a downloaded .torrent file.
const maxTorrentBytes = 8 << 20

var (
	// ErrFetch is returned when the .torrent file could not be downloaded.
	ErrFetch = errors.New("torrent fetch failed")

	// ErrInvalid is returned when the payload is not a torrent.
	ErrInvalid = errors.New("invalid torrent")
)

// Converter downloads .torrent files and converts them to magnet links.
type Converter struct {
	httpClient *http.Client
	log        *slog.Logger
}

// NewConverter creates a converter. A nil client uses a 30s timeout client.
func NewConverter(hc *http.Client, log *slog.Logger) *Converter {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Converter{httpClient: hc, log: log.With("component", "torrent")}
}

// IsMagnet reports whether link is already a magnet URI.
func IsMagnet(link string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(link)), "magnet:")
}

// Magnet returns a magnet URI for link. Magnet links are returned as is.
func (c *Converter) Magnet(ctx context.Context, link string) (string, error) {
	if IsMagnet(link) {
		return link, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; autoani)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %d", ErrFetch, link, resp.StatusCode)
	}

	magnet, err := FromTorrent(io.LimitReader(resp.Body, maxTorrentBytes))
	if err != nil {
		return "", err
	}
	c.log.Debug("torrent converted", "link", link)
	return magnet, nil
}

// FromTorrent reads a bencoded .torrent and builds its magnet URI with the
// info hash, display name and every announce URL.
func FromTorrent(r io.Reader) (string, error) {
	mi, err := metainfo.Load(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(mi.InfoBytes) == 0 {
		return "", fmt.Errorf("%w: missing info dictionary", ErrInvalid)
	}

	m := metainfo.Magnet{InfoHash: mi.HashInfoBytes()}
	if info, err := mi.UnmarshalInfo(); err == nil {
		m.DisplayName = info.Name
	}

	seen := make(map[string]bool)
	for _, tier := range mi.UpvertedAnnounceList() {
		for _, tr := range tier {
			if tr != "" && !seen[tr] {
				seen[tr] = true
				m.Trackers = append(m.Trackers, tr)
			}
		}
	}
	return m.String(), nil
}
