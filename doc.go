// Package safefeed provides a continuous-polling client for the Opoint
// Safefeed, a paginated, append-only article feed.
//
// The client repeatedly fetches the next batch of articles after a cursor
// and adapts its own polling cadence and batch size to the feed's production
// rate: it stays caught up without over-polling when the feed is quiet, and
// ignores its cadence entirely to drain backlog when it has fallen behind.
//
// # Quick Start
//
// Create a client with the feed credential and pull batches:
//
//	client, _ := safefeed.New("sample-token")
//	defer client.Close()
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	for {
//	    resp, err := client.GetArticles(ctx) // waits out the pacing interval
//	    if err != nil {
//	        break
//	    }
//	    handle(resp.SearchResult.Document)
//	}
//
// # Configuration
//
// The client uses the functional options pattern:
//
//	client, err := safefeed.New("sample-token",
//	    safefeed.WithTimeout(10 * time.Second),
//	    safefeed.WithLastID(123456),
//	    safefeed.WithLogger(logger),
//	)
//
// By default the client autotunes: it estimates the feed's article rate with
// an exponential moving average over observed batches and derives interval
// and batch size from the estimate. Explicitly setting any of [WithInterval],
// [WithBatchSize], or [WithExpectedRate] disables autotuning of all three for
// the lifetime of the client.
//
// # Failure Model
//
// A failed pull never terminates the client and never moves its state: the
// cursor and tuning are mutated only after a response has been confirmed
// valid, so the next pull retries the same position. Failures surface as
// typed errors ([*TransportError], [*SchemaError], [*IncompleteDataError])
// inspectable with errors.As.
//
// # Architecture
//
// The decision logic lives in internal packages:
//
//   - internal/ratecontrol: rate estimate, poll gate, and cursor (pure logic)
//   - internal/ingest: response body validation
//   - internal/transport: pooled HTTP fetches and query encoding
//   - internal/history: in-memory record of recent poll cycles
//
// The internal packages are not part of the public API and may change
// without notice.
package safefeed
