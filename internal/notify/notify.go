// Package notify tells the operator about finished downloads.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vmunix/autoani/pkg/release"
)

// Completed is an episode that just appeared at the remote store.
type Completed struct {
	SeriesID int64
	Series   string
	Episode  int
}

// Notifier delivers completion notices.
type Notifier interface {
	NotifyCompleted(ctx context.Context, items []Completed) error
}

// FormatCompleted renders one batch message, grouped by series in first-seen
// order with episodes sorted.
func FormatCompleted(items []Completed) string {
	var order []string
	episodes := make(map[string][]int)
	for _, it := range items {
		if _, ok := episodes[it.Series]; !ok {
			order = append(order, it.Series)
		}
		episodes[it.Series] = append(episodes[it.Series], it.Episode)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ 下载完成 (%d 集)\n", len(items))
	for _, name := range order {
		eps := episodes[name]
		sort.Ints(eps)
		labels := make([]string, len(eps))
		for i, ep := range eps {
			labels[i] = release.FormatEpisode(ep)
		}
		fmt.Fprintf(&b, "\n🎬 %s\n   %s\n", name, strings.Join(labels, ", "))
	}
	return b.String()
}
