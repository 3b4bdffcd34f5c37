package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	safefeed "github.com/opoint/safefeed-go"
)

func main() {
	// start mock feed (see mock_server.go): ~12 articles/second
	go StartMockFeedServer(":9999", 12)
	time.Sleep(100 * time.Millisecond)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	client, err := safefeed.New("demo-key",
		safefeed.WithBaseURL("http://localhost:9999/safefeed.php"),
		safefeed.WithLogger(logger),
		safefeed.WithObserver(func(stats safefeed.CycleStats) {
			logger.Info("cycle",
				"cycle_id", stats.CycleID,
				"documents", stats.DocumentCount,
				"expected_rate", fmt.Sprintf("%.2f", stats.ExpectedRate),
				"interval", stats.Interval.String(),
				"behind", stats.Behind,
			)
		}),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println()
	fmt.Println("  safefeed-go demo")
	fmt.Println()
	fmt.Println("  Pulling from the mock feed on :9999. The first pull starts at the")
	fmt.Println("  current newest article; pacing then adapts to the observed rate.")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream := safefeed.NewStream(client)
	stream.Start(ctx)
	defer stream.Stop()

	for res := range stream.Results() {
		if res.Err != nil {
			logger.Warn("pull failed", "error", res.Err)
			continue
		}
		sr := res.Response.SearchResult
		fmt.Printf("batch: %d articles, position now %d\n", sr.Documents, sr.SearchStart)
	}

	if id, ok := client.LastID(); ok {
		fmt.Printf("stopped at lastid %d; pass it to WithLastID to resume\n", id)
	}
}
