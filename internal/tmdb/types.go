// Package tmdb provides a client for The Movie Database TV API.
package tmdb

import "strconv"

// SearchResult is one entry of a TV search.
type SearchResult struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	FirstAirDate string `json:"first_air_date"` // "2025-10-04"
	PosterPath   string `json:"poster_path"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// Series is the detail record of a TV show.
type Series struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	OriginalName     string `json:"original_name"`
	FirstAirDate     string `json:"first_air_date"`
	NumberOfEpisodes int    `json:"number_of_episodes"`
	NumberOfSeasons  int    `json:"number_of_seasons"`
	Status           string `json:"status"` // "Returning Series", "Ended", ...
	PosterPath       string `json:"poster_path"`
}

// Year extracts the year from FirstAirDate.
func (s *Series) Year() int {
	if len(s.FirstAirDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(s.FirstAirDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// PosterURL returns the full poster image URL.
// Size can be: w92, w154, w185, w342, w500, w780, original
func PosterURL(path, size string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/" + size + path
}
