package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opoint/safefeed-go/config"
)

// validateCmd validates a config file without touching the feed.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a safefeed configuration file without contacting the feed.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  safefeed validate -c config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	if cfg.Autotuned() {
		fmt.Printf("  Pacing:  autotuned from observed traffic\n")
	} else {
		fmt.Printf("  Pacing:  fixed (autotuning disabled)\n")
		if cfg.Interval != 0 {
			fmt.Printf("    Interval:      %s\n", cfg.Interval.Duration())
		}
		if cfg.BatchSize != 0 {
			fmt.Printf("    Batch size:    %d\n", cfg.BatchSize)
		}
		if cfg.ExpectedRate != 0 {
			fmt.Printf("    Expected rate: %g/s\n", cfg.ExpectedRate)
		}
	}
	if cfg.LastID != nil {
		fmt.Printf("  Resume:  lastid %d\n", *cfg.LastID)
	} else {
		fmt.Printf("  Resume:  current newest article\n")
	}

	return nil
}
