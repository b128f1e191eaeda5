// Package release parses fansub release titles: series name, episode number,
// fansub group, subtitle language and broadcast season.
package release

import "strconv"

// Info is everything that can be read from a single release title.
type Info struct {
	Title    string
	Series   string // empty when no name could be extracted
	Episode  int    // 0 when no episode number was found
	Group    string
	Subtitle Subtitle
}

// HasEpisode reports whether an episode number was found.
func (i *Info) HasEpisode() bool {
	return i.Episode > 0
}

// EpisodeString formats the episode as EP05, or "-" when unknown.
func (i *Info) EpisodeString() string {
	if !i.HasEpisode() {
		return "-"
	}
	return FormatEpisode(i.Episode)
}

// FormatEpisode renders an episode number the way notifications and the
// CLI show it.
func FormatEpisode(n int) string {
	if n < 10 {
		return "EP0" + strconv.Itoa(n)
	}
	return "EP" + strconv.Itoa(n)
}

// Parse extracts all known fields from a release title.
// It never fails; fields that cannot be determined are left empty.
func Parse(title string) *Info {
	info := &Info{Title: title}
	if name, ok := SeriesName(title); ok {
		info.Series = name
	}
	if ep, ok := EpisodeNumber(title); ok {
		info.Episode = ep
	}
	if group, ok := FansubGroup(title); ok {
		info.Group = group
	}
	info.Subtitle = DetectSubtitle(title)
	return info
}
