package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/autoani/internal/scheduler"
)

// statusOrder lists episode states in lifecycle order.
var statusOrder = []string{"pending", "downloading", "openlist_exists", "completed", "mismatched"}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show task schedule and episode counts",
	Long: `Show every background task with its interval, next run and last result,
followed by the number of subscribed series and episodes per state.`,
	Args: cobra.NoArgs,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(_ *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("status check failed: %w", err)
	}

	if jsonOutput {
		printJSON(status)
		return nil
	}

	printStatus(serverURL, status)
	return nil
}

func printStatus(server string, s *StatusResponse) {
	fmt.Printf("Server:   %s\n", server)
	fmt.Printf("Series:   %d\n\n", s.Series)

	rows := make([][]string, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		rows = append(rows, []string{t.Name, formatMinutes(t.IntervalMinutes), nextRun(t), lastRun(t)})
	}
	fmt.Println(renderTable([]string{"Task", "Every", "Next", "Last"}, rows, nil))
	fmt.Println()

	erows := make([][]string, 0, len(s.Episodes))
	seen := make(map[string]bool, len(statusOrder))
	for _, st := range statusOrder {
		seen[st] = true
		erows = append(erows, []string{st, fmt.Sprint(s.Episodes[st])})
	}
	// Statuses the daemon knows but this client does not.
	var extra []string
	for st := range s.Episodes {
		if !seen[st] {
			extra = append(extra, st)
		}
	}
	sort.Strings(extra)
	for _, st := range extra {
		erows = append(erows, []string{st, fmt.Sprint(s.Episodes[st])})
	}
	fmt.Println(renderTable([]string{"Episodes", "Count"}, erows, []columnAlignment{alignLeft, alignRight}))
}

func nextRun(t scheduler.TaskStatus) string {
	if t.Running {
		return "running"
	}
	if t.NextRun == nil {
		return "-"
	}
	return t.NextRun.Local().Format(time.DateTime)
}

func lastRun(t scheduler.TaskStatus) string {
	if t.LastRun == nil {
		return "never"
	}
	at := t.LastRun.FinishedAt
	if !t.LastRun.OK() {
		return fmt.Sprintf("failed %s: %s", formatAgo(&at), truncate(t.LastRun.Error, 40))
	}
	return "ok " + formatAgo(&at)
}
