package release

import (
	"strconv"
	"time"
)

// seasonNames maps a quarter (0-3) to its broadcast season.
var seasonNames = [4]string{"冬季", "春季", "夏季", "秋季"}

// SeasonTag returns the broadcast-season label for a date, e.g. "2025年秋季番组".
func SeasonTag(t time.Time) string {
	quarter := (int(t.Month()) - 1) / 3
	return strconv.Itoa(t.Year()) + "年" + seasonNames[quarter] + "番组"
}

// SeasonTagFromDate parses a YYYY-MM-DD air date and returns its season tag.
func SeasonTagFromDate(date string) (string, bool) {
	if date == "" {
		return "", false
	}
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", false
	}
	return SeasonTag(t), true
}
