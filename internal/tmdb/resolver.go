package tmdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/autoani/pkg/release"
)

// Match is a resolved series with the details needed to subscribe to it.
type Match struct {
	ID            int64
	Name          string
	OriginalName  string
	FirstAirDate  string
	TotalEpisodes *int // nil when TMDB does not know yet
	PosterURL     string
	Confidence    release.MatchConfidence
}

// Resolve searches for name, picks the result whose name or original name
// is closest to it and loads its details. Results earlier in TMDB's order
// win ties.
func (c *Client) Resolve(ctx context.Context, name string) (*Match, error) {
	results, err := c.SearchTV(ctx, name)
	if err != nil {
		return nil, err
	}

	candidates := make([]string, 0, 2*len(results))
	for _, r := range results {
		candidates = append(candidates, r.Name, r.OriginalName)
	}
	best := release.MatchTitle(name, candidates)
	picked := results[0]
	if best.Index >= 0 {
		picked = results[best.Index/2]
	}

	m := &Match{
		ID:           picked.ID,
		Name:         picked.Name,
		OriginalName: picked.OriginalName,
		FirstAirDate: picked.FirstAirDate,
		PosterURL:    PosterURL(picked.PosterPath, "w500"),
		Confidence:   best.Confidence,
	}

	details, err := c.GetTV(ctx, picked.ID)
	switch {
	case errors.Is(err, ErrNotFound):
		// Search knew the id; details may lag behind. Subscribe without a total.
		c.log.Debug("series details missing", "id", picked.ID, "name", name)
	case err != nil:
		return nil, fmt.Errorf("details %d: %w", picked.ID, err)
	default:
		if details.NumberOfEpisodes > 0 {
			n := details.NumberOfEpisodes
			m.TotalEpisodes = &n
		}
		if details.FirstAirDate != "" {
			m.FirstAirDate = details.FirstAirDate
		}
		if m.PosterURL == "" {
			m.PosterURL = PosterURL(details.PosterPath, "w500")
		}
	}

	c.log.Debug("series resolved", "name", name, "id", m.ID, "match", m.Name, "confidence", m.Confidence)
	return m, nil
}
