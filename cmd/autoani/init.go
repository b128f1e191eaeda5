package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vmunix/autoani/internal/config"
	"github.com/vmunix/autoani/internal/scheduler"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write the annotated default config for autoanid and seed the task
intervals file next to it. An existing intervals file is kept.

Secrets are read from the environment when the daemon starts:
AUTOANI_MIKAN_TOKEN, AUTOANI_TMDB_API_KEY and AUTOANI_OPENLIST_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: runInitCmd,
}

func init() {
	initCmd.Flags().String("path", "", "Config path (default $XDG_CONFIG_HOME/autoani/config.toml)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config")
	rootCmd.AddCommand(initCmd)
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("path")
	force, _ := cmd.Flags().GetBool("force")
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	}

	paths, err := config.WriteDefault(path)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)

	_, statErr := os.Stat(paths.Intervals)
	store := scheduler.NewIntervalStore(paths.Intervals, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := store.Load(); err != nil {
		return fmt.Errorf("seed intervals: %w", err)
	}
	if os.IsNotExist(statErr) {
		fmt.Printf("Wrote %s\n", paths.Intervals)
	}
	fmt.Println("Set AUTOANI_MIKAN_TOKEN, AUTOANI_TMDB_API_KEY and AUTOANI_OPENLIST_PASSWORD, then run 'autoanid'.")
	return nil
}
