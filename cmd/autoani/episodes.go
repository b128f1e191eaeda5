package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vmunix/autoani/pkg/release"
)

var episodesCmd = &cobra.Command{
	Use:   "episodes",
	Short: "List tracked episodes",
	Long: `List tracked episodes, optionally narrowed to one series or state.

Examples:
  autoani episodes --series 12345
  autoani episodes --status downloading`,
	Args: cobra.NoArgs,
	RunE: runEpisodesCmd,
}

var mismatchedCmd = &cobra.Command{
	Use:   "mismatched",
	Short: "List episodes whose subtitle does not match their series",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return listEpisodes(EpisodeQuery{Status: "mismatched", Limit: limit})
	},
}

func init() {
	episodesCmd.Flags().Int64("series", 0, "Filter by series ID")
	episodesCmd.Flags().String("status", "", "Filter by state (pending, downloading, openlist_exists, completed, mismatched)")
	episodesCmd.Flags().Int("limit", 0, "Maximum rows to show")
	episodesCmd.Flags().Int("offset", 0, "Rows to skip")
	mismatchedCmd.Flags().Int("limit", 0, "Maximum rows to show")

	rootCmd.AddCommand(episodesCmd, mismatchedCmd)
}

func runEpisodesCmd(cmd *cobra.Command, _ []string) error {
	q := EpisodeQuery{}
	q.SeriesID, _ = cmd.Flags().GetInt64("series")
	q.Status, _ = cmd.Flags().GetString("status")
	q.Limit, _ = cmd.Flags().GetInt("limit")
	q.Offset, _ = cmd.Flags().GetInt("offset")
	return listEpisodes(q)
}

func listEpisodes(q EpisodeQuery) error {
	client := NewClient(serverURL)
	resp, err := client.ListEpisodes(q)
	if err != nil {
		return fmt.Errorf("list episodes: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Items) == 0 {
		fmt.Println("No episodes")
		return nil
	}

	rows := make([][]string, 0, len(resp.Items))
	for _, e := range resp.Items {
		changed := e.StatusChangedAt
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.SeriesID, 10),
			release.FormatEpisode(e.Episode),
			orDash(e.Subtitle),
			e.Status,
			formatSize(e.Size),
			formatAgo(&changed),
			truncate(e.Title, 50),
		})
	}
	fmt.Println(renderTable(
		[]string{"ID", "Series", "Ep", "Subtitle", "State", "Size", "Changed", "Title"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignRight},
	))
	fmt.Printf("%d episodes\n", resp.Total)
	return nil
}
