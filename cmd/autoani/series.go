package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Manage subscribed series",
}

var seriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscribed series",
	Args:  cobra.NoArgs,
	RunE:  runSeriesList,
}

var seriesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one series with its episode counts",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeriesShow,
}

var seriesAddCmd = &cobra.Command{
	Use:   "add <feed-url>",
	Short: "Subscribe to a Mikan bangumi feed",
	Long: `Subscribe to a series by its Mikan bangumi RSS feed URL.

Example:
  autoani series add "https://mikanani.me/RSS/Bangumi?bangumiId=3310"`,
	Args: cobra.ExactArgs(1),
	RunE: runSeriesAdd,
}

var seriesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Unsubscribe from a series",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeriesDelete,
}

var seriesStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Count a series' episodes per state",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeriesStats,
}

var seriesResubscribeCmd = &cobra.Command{
	Use:   "resubscribe <id>",
	Short: "Reactivate a series and redetect its subtitle preference",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeriesResubscribe,
}

func init() {
	seriesListCmd.Flags().String("status", "", "Filter by status (active, inactive)")
	seriesDeleteCmd.Flags().Bool("delete-files", false, "Also delete the series' files from OpenList")

	seriesCmd.AddCommand(seriesListCmd, seriesShowCmd, seriesAddCmd, seriesDeleteCmd, seriesStatsCmd, seriesResubscribeCmd)
	rootCmd.AddCommand(seriesCmd)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid series ID: %s", arg)
	}
	return id, nil
}

func runSeriesList(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetString("status")

	client := NewClient(serverURL)
	resp, err := client.ListSeries(status)
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	if len(resp.Items) == 0 {
		fmt.Println("No series subscribed")
		return nil
	}

	rows := make([][]string, 0, len(resp.Items))
	for _, s := range resp.Items {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			truncate(s.Name, 40),
			orDash(s.SeasonTag),
			formatTotal(s.TotalEpisodes),
			orDash(s.Subtitle),
			s.Status,
			formatAgo(s.LastScrapedAt),
		})
	}
	fmt.Println(renderTable(
		[]string{"ID", "Name", "Season", "Eps", "Subtitle", "Status", "Scraped"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
	))
	fmt.Printf("%d series\n", resp.Total)
	return nil
}

func runSeriesShow(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	s, err := client.GetSeries(id)
	if err != nil {
		return fmt.Errorf("get series: %w", err)
	}
	stats, err := client.SeriesStats(id)
	if err != nil {
		return fmt.Errorf("series stats: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]any{"series": s, "stats": stats})
		return nil
	}

	printSeries(s)
	fmt.Println()
	printStats(stats)
	return nil
}

func printSeries(s *SeriesResponse) {
	fmt.Printf("Series:    %s (%d)\n", s.Name, s.ID)
	if s.Title != s.Name {
		fmt.Printf("Title:     %s\n", s.Title)
	}
	if len(s.Aliases) > 0 {
		fmt.Printf("Aliases:   %s\n", strings.Join(s.Aliases, ", "))
	}
	fmt.Printf("Season:    %s\n", orDash(s.SeasonTag))
	fmt.Printf("Episodes:  %s\n", formatTotal(s.TotalEpisodes))
	fmt.Printf("Subtitle:  %s\n", orDash(s.Subtitle))
	if s.FansubGroup != "" {
		fmt.Printf("Group:     %s\n", s.FansubGroup)
	}
	fmt.Printf("Status:    %s (%s)\n", s.Status, s.Source)
	fmt.Printf("Scraped:   %s\n", formatAgo(s.LastScrapedAt))
	fmt.Printf("Feed:      %s\n", s.FeedURL)
}

func printStats(st *StatsResponse) {
	rows := make([][]string, 0, len(st.Counts))
	seen := make(map[string]bool, len(statusOrder))
	for _, name := range statusOrder {
		seen[name] = true
		rows = append(rows, []string{name, strconv.Itoa(st.Counts[name])})
	}
	var extra []string
	for name := range st.Counts {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		rows = append(rows, []string{name, strconv.Itoa(st.Counts[name])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(st.Total)})
	fmt.Println(renderTable([]string{"State", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
}

func runSeriesAdd(_ *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	s, err := client.AddSeries(args[0])
	if err != nil {
		return fmt.Errorf("add series: %w", err)
	}

	if jsonOutput {
		printJSON(s)
		return nil
	}
	fmt.Printf("Subscribed to %s (%d)\n", s.Name, s.ID)
	return nil
}

func runSeriesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	deleteFiles, _ := cmd.Flags().GetBool("delete-files")

	client := NewClient(serverURL)
	resp, err := client.DeleteSeries(id, deleteFiles)
	if err != nil {
		return fmt.Errorf("delete series: %w", err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}
	fmt.Printf("Deleted series %d", id)
	if deleteFiles {
		fmt.Printf(" and %d remote files", resp.FilesRemoved)
	}
	fmt.Println()
	return nil
}

func runSeriesStats(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	stats, err := client.SeriesStats(id)
	if err != nil {
		return fmt.Errorf("series stats: %w", err)
	}

	if jsonOutput {
		printJSON(stats)
		return nil
	}
	printStats(stats)
	return nil
}

func runSeriesResubscribe(_ *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	client := NewClient(serverURL)
	s, err := client.Resubscribe(id)
	if err != nil {
		return fmt.Errorf("resubscribe: %w", err)
	}

	if jsonOutput {
		printJSON(s)
		return nil
	}
	fmt.Printf("Resubscribed to %s (%d); the next scrape redetects its subtitle preference\n", s.Name, s.ID)
	return nil
}
