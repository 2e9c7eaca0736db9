package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/helmcode/sql-copilot/cmd"
)

var (
	version = "v0.1.0" // Overwritten at build time
)

func main() {
	// Optional .env for API keys; ignore if absent.
	_ = godotenv.Load()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sql-copilot",
		Short: "AI-powered SQL query diagnosis and improvement",
		Long: `sql-copilot collects execution evidence for a SQL query (plan, timing,
schema, statistics, configuration) and uses AI to diagnose bottlenecks,
explain root causes, and iteratively propose measurably faster rewrites.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewAnalyzeCmd(),
		cmd.NewImproveCmd(),
		cmd.NewChatCmd(),
		cmd.NewSampleCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sql-copilot version %s\n", version)
		},
	}
}
