package release

import (
	"regexp"
	"strconv"
	"strings"
)

// leadingTagRegex matches the fansub tag at the start of a title, e.g. "[LoliHouse] " or "【喵萌奶茶屋】".
var leadingTagRegex = regexp.MustCompile(`^\s*[\[【]([^\]】]*)[\]】]\s*`)

// episodePatterns are tried in order; the first match wins.
// Ordered from most to least specific so resolution tags such as [1080p]
// or codec tags such as HEVC-10bit are never read as episode numbers.
var episodePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\[【](\d{1,4})(?:[vV]\d+)?[\]】]`), // [05] [05v2]
	regexp.MustCompile(`\s-\s*(\d{1,4})(?:[vV]\d+)?(?:\s|$)`), // - 05
	regexp.MustCompile(`第\s*(\d{1,4})\s*[集话話]`),           // 第05集
	regexp.MustCompile(`EP?\.?\s*(\d{1,4})`),                // EP05 E05 EP.05
	regexp.MustCompile(`#(\d{1,4})`),                        // #05
}

// SeriesName extracts the series name from a release title.
//
// The leading fansub tag is removed, then the part before the first "/"
// (usually the Chinese title) is taken, or else the part before the first "-".
func SeriesName(title string) (string, bool) {
	s := Normalize(title)
	s = leadingTagRegex.ReplaceAllString(s, "")

	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	} else if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}

	name := strings.Join(strings.Fields(s), " ")
	return name, name != ""
}

// EpisodeNumber extracts the episode number from a release title.
func EpisodeNumber(title string) (int, bool) {
	s := Normalize(title)
	for _, re := range episodePatterns {
		m := re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// FansubGroup returns the leading bracketed tag of a title.
func FansubGroup(title string) (string, bool) {
	m := leadingTagRegex.FindStringSubmatch(Normalize(title))
	if m == nil {
		return "", false
	}
	group := strings.TrimSpace(m[1])
	return group, group != ""
}
