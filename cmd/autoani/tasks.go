package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Run a background task now",
	Long: `Run a background task immediately and wait for it to finish.

Tasks: discover, scrape, push, check, timeout

Examples:
  autoani run scrape
  autoani run push --limit 10`,
	ValidArgs: []string{"discover", "scrape", "push", "check", "timeout"},
	Args:      cobra.ExactArgs(1),
	RunE:      runTaskCmd,
}

var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "Show or change task intervals",
	Args:  cobra.NoArgs,
	RunE:  runIntervalsList,
}

var intervalsSetCmd = &cobra.Command{
	Use:   "set <task> <minutes>",
	Short: "Change how often a task runs",
	Args:  cobra.ExactArgs(2),
	RunE:  runIntervalsSet,
}

var intervalsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default intervals",
	Args:  cobra.NoArgs,
	RunE:  runIntervalsReset,
}

func init() {
	runCmd.Flags().Int("limit", 0, "Maximum episodes to submit (push only)")
	rootCmd.AddCommand(runCmd)

	intervalsCmd.AddCommand(intervalsSetCmd)
	intervalsCmd.AddCommand(intervalsResetCmd)
	rootCmd.AddCommand(intervalsCmd)
}

func runTaskCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}

	client := NewClient(serverURL)
	resp, err := client.RunTask(args[0], limit)
	if err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}

	if jsonOutput {
		printJSON(resp)
		return nil
	}

	printRun(args[0], resp)
	if !resp.OK {
		return fmt.Errorf("task %s failed", args[0])
	}
	return nil
}

func printRun(task string, resp *RunResponse) {
	run := resp.Run
	if run == nil {
		fmt.Printf("%s: no result\n", task)
		return
	}

	state := "ok"
	if !resp.OK {
		state = "failed"
	}
	fmt.Printf("%s %s in %s (run %s)\n", task, state, run.Duration.Round(time.Millisecond), run.RunID)
	if run.Error != "" {
		fmt.Printf("  error: %s\n", run.Error)
	}

	keys := make([]string, 0, len(run.Summary))
	for k := range run.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-12s %v\n", k+":", run.Summary[k])
	}
}

func runIntervalsList(_ *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	resp, err := client.Intervals()
	if err != nil {
		return fmt.Errorf("get intervals: %w", err)
	}
	printIntervals(resp)
	return nil
}

func runIntervalsSet(_ *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[1])
	if err != nil || minutes <= 0 {
		return fmt.Errorf("invalid minutes: %s", args[1])
	}

	client := NewClient(serverURL)
	resp, err := client.SetInterval(args[0], minutes)
	if err != nil {
		return fmt.Errorf("set interval: %w", err)
	}
	printIntervals(resp)
	return nil
}

func runIntervalsReset(_ *cobra.Command, _ []string) error {
	client := NewClient(serverURL)
	resp, err := client.ResetIntervals()
	if err != nil {
		return fmt.Errorf("reset intervals: %w", err)
	}
	printIntervals(resp)
	return nil
}

func printIntervals(resp *IntervalsResponse) {
	if jsonOutput {
		printJSON(resp)
		return
	}

	names := make([]string, 0, len(resp.Intervals))
	for name := range resp.Intervals {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		m := resp.Intervals[name]
		rows = append(rows, []string{name, strconv.Itoa(m), formatMinutes(m)})
	}
	fmt.Println(renderTable([]string{"Task", "Minutes", "Every"}, rows, []columnAlignment{alignLeft, alignRight, alignRight}))
}
