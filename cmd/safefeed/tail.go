package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	safefeed "github.com/opoint/safefeed-go"
	"github.com/opoint/safefeed-go/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// tailCmd continuously pulls article batches and writes them to stdout.
var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Stream articles to stdout",
	Long: `Continuously pull article batches from the feed and write each article
to stdout as one line of JSON.

The command runs until interrupted (Ctrl+C) or receives SIGTERM. On
shutdown the last successfully consumed lastid is logged so it can be
put back into the config to resume the stream.

Example:
  safefeed tail -c config.yaml
  safefeed tail -c config.yaml --once`,
	RunE: runTail,
}

func init() {
	rootCmd.AddCommand(tailCmd)

	tailCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = tailCmd.MarkFlagRequired("config")
	tailCmd.Flags().Bool("once", false, "pull a single batch and exit")
}

func runTail(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	once, _ := cmd.Flags().GetBool("once")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Debug)
	logger.Info("config loaded",
		"autotuned", cfg.Autotuned(),
		"resume", cfg.LastID != nil,
	)

	client, err := safefeed.New(cfg.Key, config.BuildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if once {
		resp, err := client.GetArticles(ctx)
		if err != nil {
			return fmt.Errorf("pull failed: %w", err)
		}
		return writeBatch(resp)
	}

	stream := safefeed.NewStream(client)
	stream.Start(ctx)
	defer stream.Stop()

	for result := range stream.Results() {
		if result.Err != nil {
			// failed pulls are logged and retried at the same cursor;
			// only the write path can end the stream early
			logger.Warn("pull failed",
				"cycle_id", result.Stats.CycleID,
				"error", result.Err.Error(),
			)
			continue
		}

		if err := writeBatch(result.Response); err != nil {
			return fmt.Errorf("failed to write batch: %w", err)
		}

		logger.Info("batch consumed",
			"cycle_id", result.Stats.CycleID,
			"documents", result.Stats.DocumentCount,
			"lastid", result.Response.SearchResult.SearchStart,
			"expected_rate", result.Stats.ExpectedRate,
			"interval", result.Stats.Interval.String(),
			"behind", result.Stats.Behind,
		)
	}

	if id, ok := client.LastID(); ok {
		logger.Info("stream stopped", "lastid", id)
	} else {
		logger.Info("stream stopped before the first batch")
	}
	return nil
}

// writeBatch prints each article of a batch as one NDJSON line.
func writeBatch(resp *safefeed.FeedResponse) error {
	out := os.Stdout
	for _, doc := range resp.SearchResult.Document {
		if _, err := out.Write(append(doc, '\n')); err != nil {
			return err
		}
	}
	return nil
}
