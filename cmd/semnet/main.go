package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "semnet",
		Short: "Semantic co-occurrence networks from review comments",
		Long: `semnet segments review comments into words, keeps the most frequent
ones and links words that appear in the same comment.

The resulting network can be written as DOT, JSON, an ECharts option or a
standalone HTML page, or explored interactively with 'semnet serve'.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./semnet.yaml if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: error, warn, info, debug, trace")

	rootCmd.AddCommand(
		newVersionCmd(),
		newBuildCmd(),
		newTokensCmd(),
		newImportCmd(),
		newItemsCmd(),
		newServeCmd(),
		newStopwordsCmd(),
	)
	return rootCmd
}
