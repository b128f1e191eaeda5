package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "autoani",
	Short: "CLI client for the autoani subscription tracker",
	Long: `autoani - CLI client for the autoani subscription tracker

Inspect subscribed series and episodes, trigger background tasks
and tune their schedule.

Run 'autoanid' to start the server daemon.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaultServer := "http://127.0.0.1:8585"
	if env := os.Getenv("AUTOANI_SERVER"); env != "" {
		defaultServer = env
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "Server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("autoani {{.Version}}\n")
}
