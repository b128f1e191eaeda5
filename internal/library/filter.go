package library

// SeriesFilter specifies criteria for listing series.
type SeriesFilter struct {
	Status *SeriesStatus
	Source *string
}

// EpisodeFilter specifies criteria for listing episodes.
type EpisodeFilter struct {
	SeriesID *int64
	Status   *Status
	Limit    int // 0 = no limit
	Offset   int
}

// RemoteFileFilter specifies criteria for listing indexed remote files.
type RemoteFileFilter struct {
	SeriesID     *int64
	Unclassified bool // only files without a series
}
