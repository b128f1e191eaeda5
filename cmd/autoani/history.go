package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/vmunix/autoani/pkg/release"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent episode state changes",
	Long: `Show episode state transitions, newest first.

Examples:
  autoani history
  autoani history --series 12345 --limit 50
  autoani history --episode 812`,
	Args: cobra.NoArgs,
	RunE: runHistoryCmd,
}

func init() {
	historyCmd.Flags().Int64("series", 0, "Filter by series ID")
	historyCmd.Flags().Int64("episode", 0, "Filter by episode ID")
	historyCmd.Flags().Int("limit", 20, "Maximum rows to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	seriesID, _ := cmd.Flags().GetInt64("series")
	episodeID, _ := cmd.Flags().GetInt64("episode")
	limit, _ := cmd.Flags().GetInt("limit")

	client := NewClient(serverURL)
	resp, err := client.History(seriesID, episodeID, limit)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Items) == 0 {
		fmt.Println("No transitions recorded")
		return nil
	}

	rows := make([][]string, 0, len(resp.Items))
	for _, r := range resp.Items {
		rows = append(rows, []string{
			r.OccurredAt.Local().Format(time.DateTime),
			strconv.FormatInt(r.SeriesID, 10),
			release.FormatEpisode(r.Episode),
			strconv.FormatInt(r.EpisodeID, 10),
			string(r.From) + " -> " + string(r.To),
		})
	}
	fmt.Println(renderTable([]string{"When", "Series", "Ep", "Episode ID", "Change"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight}))
	return nil
}
