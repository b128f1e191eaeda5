package release

import (
	"regexp"
	"strings"
)

// Subtitle is the subtitle-language class of a release.
type Subtitle string

const (
	SubtitleNone        Subtitle = ""
	SubtitleSimplified  Subtitle = "chs"
	SubtitleTraditional Subtitle = "cht"
	SubtitleBoth        Subtitle = "chs_cht"
)

func (s Subtitle) String() string {
	if s == SubtitleNone {
		return "none"
	}
	return string(s)
}

// Valid reports whether s is one of the detectable classes.
func (s Subtitle) Valid() bool {
	switch s {
	case SubtitleSimplified, SubtitleTraditional, SubtitleBoth:
		return true
	}
	return false
}

// ParseSubtitle converts a stored or user-provided value back to a Subtitle.
func ParseSubtitle(s string) Subtitle {
	switch Subtitle(strings.ToLower(strings.TrimSpace(s))) {
	case SubtitleSimplified:
		return SubtitleSimplified
	case SubtitleTraditional:
		return SubtitleTraditional
	case SubtitleBoth:
		return SubtitleBoth
	}
	return SubtitleNone
}

var (
	bothKeywords        = []string{"简繁", "繁简", "簡繁", "繁簡"}
	simplifiedKeywords  = []string{"简体", "简中", "简日", "簡體", "簡中", "簡日"}
	traditionalKeywords = []string{"繁体", "繁中", "繁日", "繁體"}

	// ASCII tags only count as standalone tokens, so "matchs" is not chs.
	// Underscore separates tokens as in CHS_CHT.
	simplifiedTag  = regexp.MustCompile(`(?:^|[^a-z0-9])chs(?:[^a-z0-9]|$)`)
	traditionalTag = regexp.MustCompile(`(?:^|[^a-z0-9])(?:cht|big5)(?:[^a-z0-9]|$)`)
)

// DefaultPriority is the order SelectByPriority uses when none is given.
var DefaultPriority = []Subtitle{SubtitleSimplified, SubtitleBoth, SubtitleTraditional}

// PreferenceOrder decides a series' subtitle preference when its feed
// carries more than one class.
var PreferenceOrder = []Subtitle{SubtitleBoth, SubtitleSimplified, SubtitleTraditional}

// DetectSubtitle classifies the subtitle language of a title.
// A title carrying both a simplified and a traditional marker is the
// combined class, never plain simplified.
func DetectSubtitle(title string) Subtitle {
	s := strings.ToLower(Normalize(title))

	simplified := containsAny(s, simplifiedKeywords) || simplifiedTag.MatchString(s)
	traditional := containsAny(s, traditionalKeywords) || traditionalTag.MatchString(s)

	switch {
	case containsAny(s, bothKeywords), simplified && traditional:
		return SubtitleBoth
	case simplified:
		return SubtitleSimplified
	case traditional:
		return SubtitleTraditional
	default:
		return SubtitleNone
	}
}

// SelectByPriority returns the first candidate whose subtitle class matches
// the earliest satisfied priority tier. An empty priority uses DefaultPriority.
func SelectByPriority[T any](candidates []T, subtitleOf func(T) Subtitle, priority ...Subtitle) (T, bool) {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	for _, want := range priority {
		for _, c := range candidates {
			if subtitleOf(c) == want {
				return c, true
			}
		}
	}
	var zero T
	return zero, false
}

// ChoosePreference picks a series preference from per-class counts using
// PreferenceOrder. Classes with a zero count are ignored.
func ChoosePreference(counts map[Subtitle]int) (Subtitle, bool) {
	for _, s := range PreferenceOrder {
		if counts[s] > 0 {
			return s, true
		}
	}
	return SubtitleNone, false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
