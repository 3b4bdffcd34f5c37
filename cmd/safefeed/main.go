// Package main is the entry point for the safefeed CLI.
//
// The safefeed client can be used either as a library (SDK) or as a
// standalone binary with YAML configuration. This CLI provides the
// standalone binary approach.
//
// Usage:
//
//	safefeed tail -c config.yaml     # Stream articles to stdout
//	safefeed validate -c config.yaml # Validate configuration
//	safefeed version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "safefeed",
	Short: "An adaptive polling client for the Opoint Safefeed",
	Long: `safefeed continuously pulls article batches from the Opoint Safefeed
and writes them to stdout as newline-delimited JSON.

The client adapts its polling interval and batch size to the feed's
production rate, and ignores its cadence entirely while catching up
after falling behind.

Quick start:
  1. Create a config file (safefeed.yaml):
       key: ${OPOINT_FEED_KEY}
  2. Run: safefeed tail -c safefeed.yaml`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("safefeed %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	Execute()
}
