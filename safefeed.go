package safefeed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opoint/safefeed-go/internal/history"
	"github.com/opoint/safefeed-go/internal/ingest"
	"github.com/opoint/safefeed-go/internal/ratecontrol"
	"github.com/opoint/safefeed-go/internal/transport"
)

// DefaultBaseURL is the production safefeed endpoint.
const DefaultBaseURL = "https://feed.opoint.com/safefeed.php"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "safefeed-go/1.0"
)

// Document format values used on the wire.
const (
	DocFormatJSON = "json"
	DocFormatXML  = "xml"
)

// Client is an adaptive polling client for one safefeed stream.
//
// Client is created with [New] and pulls batches with [Client.GetArticles].
// Each pull waits out the pacing interval (unless the client is behind),
// issues one fetch, validates the response, and only then advances the
// cursor and folds the observation into the rate estimate. A failed pull
// leaves all state untouched, so the next pull retries the same position.
//
// Pulls are strictly sequential: a second concurrent call blocks until the
// first has committed or failed. No two fetches are ever in flight for the
// same client. All methods are safe for concurrent use.
type Client struct {
	key       string
	baseURL   string
	timeout   time.Duration
	logger    *slog.Logger
	observers []Observer
	transport Transport

	// ownedTransport is non-nil when the client built the default HTTP
	// transport itself and is responsible for closing it.
	ownedTransport *transport.Client

	mu              sync.Mutex // serializes pulls and guards all state below
	tuning          *ratecontrol.Tuning
	cursor          *ratecontrol.Cursor
	lastRequestTime time.Time
	log             *history.Log
	lastCycle       CycleStats
	hasCycle        bool
}

// New creates a [Client] for the feed reachable with the given credential.
//
// With no options the client starts at the current newest article and
// autotunes its interval and batch size from observed traffic. See [Option]
// for the available configuration.
//
// Returns an error if the key is empty or an option is invalid.
func New(key string, opts ...Option) (*Client, error) {
	if key == "" {
		return nil, errors.New("feed key cannot be empty")
	}

	cfg := &clientConfig{
		timeout:   defaultTimeout,
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		key:       key,
		baseURL:   cfg.baseURL,
		timeout:   cfg.timeout,
		logger:    logger,
		observers: cfg.observers,
		transport: cfg.transport,
		tuning:    ratecontrol.NewTuning(cfg.interval, cfg.batchSize, cfg.expectedRate),
		cursor:    ratecontrol.NewCursor(cfg.lastID),
		log:       history.NewLog(cfg.historySize),
	}

	if c.transport == nil {
		c.ownedTransport = transport.NewClient(cfg.baseURL, cfg.userAgent)
		c.transport = &httpTransport{client: c.ownedTransport}
	}

	return c, nil
}

// GetArticles pulls the next batch of articles.
//
// The call first waits out the remainder of the pacing interval (skipped
// entirely when the client is behind or on the first pull), then issues one
// fetch at the current cursor and batch size. On success the cursor is
// advanced to the feed-reported position, the observation is folded into the
// rate estimate, and the batch is returned.
//
// On failure the returned error is a [*TransportError], [*SchemaError], or
// [*IncompleteDataError]; the cursor and tuning are exactly as before the
// call, and the client remains usable.
//
// Cancelling ctx aborts a pending wait or an in-flight fetch without any
// partial state mutation.
func (c *Client) GetArticles(ctx context.Context) (*FeedResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	behind := c.behindLocked()
	wait := ratecontrol.WaitFor(time.Now(), c.lastRequestTime, c.tuning.Interval(), behind)
	if wait > 0 {
		c.logger.Debug("waiting to respect interval", "wait", wait.String())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stats := CycleStats{
		CycleID:       uuid.NewString(),
		RequestedSize: c.tuning.RequestSize(),
	}
	if id, ok := c.cursor.Position(); ok {
		v := id
		stats.LastID = &v
	}

	c.lastRequestTime = time.Now()
	stats.CheckedAt = c.lastRequestTime

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fres, ferr := c.transport.Fetch(fetchCtx, FetchRequest{
		Key:       c.key,
		DocFormat: DocFormatJSON,
		LastID:    stats.LastID,
		BatchSize: stats.RequestedSize,
	})
	stats.Latency = fres.Latency

	if ferr != nil {
		err := &TransportError{URL: c.baseURL, Err: ferr}
		c.finishCycleLocked(stats, err)
		return nil, err
	}

	decoded, ierr := ingest.Ingest(fres.Body)
	if ierr != nil {
		err := publicIngestError(ierr, fres.ContentType)
		c.finishCycleLocked(stats, err)
		return nil, err
	}

	result := decoded.SearchResult
	c.cursor.Advance(*result.SearchStart, result.Documents)
	c.tuning.Update(result.Documents, result.ExpectedRate)

	stats.DocumentCount = result.Documents
	c.finishCycleLocked(stats, nil)

	return &FeedResponse{
		SearchResult: SearchResult{
			SearchStart:  *result.SearchStart,
			Documents:    result.Documents,
			ExpectedRate: result.ExpectedRate,
			Document:     result.Document,
		},
	}, nil
}

// Next pulls the next batch, blocking the calling goroutine for the full
// wait and fetch duration. Equivalent to GetArticles(context.Background()).
func (c *Client) Next() (*FeedResponse, error) {
	return c.GetArticles(context.Background())
}

// GetArticlesXML fetches the next batch in the feed's raw XML format and
// returns the body as text.
//
// The XML mode bypasses the rate controller entirely: no pacing wait is
// applied and neither the cursor nor the tuning is touched, since the raw
// text carries no structured signals. The fetch still counts against the
// single-fetch-in-flight guarantee and honors the per-request timeout.
func (c *Client) GetArticlesXML(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var lastID *int64
	if id, ok := c.cursor.Position(); ok {
		v := id
		lastID = &v
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	fres, err := c.transport.Fetch(fetchCtx, FetchRequest{
		Key:       c.key,
		DocFormat: DocFormatXML,
		LastID:    lastID,
		BatchSize: c.tuning.RequestSize(),
	})
	if err != nil {
		return "", &TransportError{URL: c.baseURL, Err: err}
	}

	return string(fres.Body), nil
}

// LastID returns the current cursor position. ok is false when the cursor
// is unset and the next pull starts at the current newest article.
//
// Persist this value between process restarts to resume the stream; the
// client itself holds it only in memory.
func (c *Client) LastID() (id int64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor.Position()
}

// SetLastID repositions the cursor, e.g. to a value persisted from an
// earlier run. 0 repositions to the oldest article still in the feed.
func (c *Client) SetLastID(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cursor.Seek(id)
}

// Behind reports whether the client believes it has fallen behind the feed,
// based on the most recent batch. While behind, pulls skip the pacing wait.
func (c *Client) Behind() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.behindLocked()
}

// ExpectedRate returns the current estimate of articles per second, or 0
// before the first estimate.
func (c *Client) ExpectedRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuning.ExpectedRate()
}

// Interval returns the pacing interval currently in effect.
func (c *Client) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuning.Interval()
}

// BatchSize returns the number of articles the next pull will request.
func (c *Client) BatchSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuning.RequestSize()
}

// Autoconfig reports whether the client is autotuning its interval and
// batch size from observed traffic.
func (c *Client) Autoconfig() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuning.Autoconfig()
}

// LastCycle returns the snapshot of the most recent poll cycle. ok is false
// before the first completed cycle.
func (c *Client) LastCycle() (stats CycleStats, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCycle, c.hasCycle
}

// History returns snapshots of the retained recent cycles, oldest first.
//
// For historical entries the Err field carries only the failure message,
// not the original typed error; use an [Observer] or [LastCycle] when the
// error type matters.
func (c *Client) History() []CycleStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.log.All()
	out := make([]CycleStats, len(entries))
	for i, e := range entries {
		out[i] = fromHistoryEntry(e)
	}
	return out
}

// Close releases the resources of the default HTTP transport. A transport
// injected with [WithTransport] is the caller's to close.
//
// Safe to call multiple times. The client remains usable after Close; new
// connections are established as needed.
func (c *Client) Close() {
	if c.ownedTransport != nil {
		c.ownedTransport.Close()
	}
}

// behindLocked evaluates the behind predicate against the current batch
// size. Caller must hold c.mu.
func (c *Client) behindLocked() bool {
	return ratecontrol.Behind(c.cursor.LastCount(), c.tuning.BatchSize())
}

// finishCycleLocked commits the cycle snapshot: records it, notifies
// observers, and logs the outcome. Caller must hold c.mu.
func (c *Client) finishCycleLocked(stats CycleStats, err error) {
	stats.Err = err
	stats.ExpectedRate = c.tuning.ExpectedRate()
	stats.Interval = c.tuning.Interval()
	stats.Behind = c.behindLocked()

	c.lastCycle = stats
	c.hasCycle = true
	c.log.Append(toHistoryEntry(stats))

	for _, o := range c.observers {
		c.observeSafe(o, stats)
	}

	if err != nil {
		c.logger.Warn("pull failed",
			"cycle_id", stats.CycleID,
			"latency_ms", stats.Latency.Milliseconds(),
			"error", err.Error(),
		)
		return
	}
	c.logger.Debug("pull completed",
		"cycle_id", stats.CycleID,
		"latency_ms", stats.Latency.Milliseconds(),
		"documents", stats.DocumentCount,
		"expected_rate", stats.ExpectedRate,
		"interval", stats.Interval.String(),
		"num_art", c.tuning.RequestSize(),
		"behind", stats.Behind,
	)
}

// observeSafe calls an observer with panic recovery. The cycle ID doubles
// as the correlation ID in the panic log.
func (c *Client) observeSafe(o Observer, stats CycleStats) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("observer panic",
				"cycle_id", stats.CycleID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	o(stats)
}

// publicIngestError converts an internal ingest error to its public
// counterpart, attaching the response content type for diagnostics.
func publicIngestError(err error, contentType string) error {
	var schemaErr *ingest.SchemaError
	if errors.As(err, &schemaErr) {
		return &SchemaError{
			ContentType: contentType,
			Body:        schemaErr.Body,
			Err:         schemaErr.Err,
		}
	}

	var incErr *ingest.IncompleteDataError
	if errors.As(err, &incErr) {
		return &IncompleteDataError{Field: incErr.Field}
	}

	return err
}

// toHistoryEntry converts a cycle snapshot to its storage representation.
func toHistoryEntry(stats CycleStats) history.Entry {
	var errStr *string
	if stats.Err != nil {
		s := stats.Err.Error()
		errStr = &s
	}

	return history.Entry{
		CycleID:       stats.CycleID,
		CheckedAt:     stats.CheckedAt,
		LatencyMs:     stats.Latency.Milliseconds(),
		LastID:        copyInt64(stats.LastID),
		RequestedSize: stats.RequestedSize,
		DocumentCount: stats.DocumentCount,
		ExpectedRate:  stats.ExpectedRate,
		IntervalMs:    stats.Interval.Milliseconds(),
		Behind:        stats.Behind,
		Error:         errStr,
	}
}

// fromHistoryEntry converts a storage entry back to the public snapshot.
func fromHistoryEntry(e history.Entry) CycleStats {
	var err error
	if e.Error != nil {
		err = errors.New(*e.Error)
	}

	return CycleStats{
		CycleID:       e.CycleID,
		CheckedAt:     e.CheckedAt,
		Latency:       time.Duration(e.LatencyMs) * time.Millisecond,
		LastID:        copyInt64(e.LastID),
		RequestedSize: e.RequestedSize,
		DocumentCount: e.DocumentCount,
		ExpectedRate:  e.ExpectedRate,
		Interval:      time.Duration(e.IntervalMs) * time.Millisecond,
		Behind:        e.Behind,
		Err:           err,
	}
}

// copyInt64 returns a copy of the pointed-to value, or nil.
func copyInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// httpTransport adapts the internal HTTP client to the public [Transport]
// interface.
type httpTransport struct {
	client *transport.Client
}

func (t *httpTransport) Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error) {
	resp, err := t.client.Fetch(ctx, transport.Request{
		Key:       req.Key,
		DocFormat: req.DocFormat,
		LastID:    req.LastID,
		BatchSize: req.BatchSize,
	})
	return FetchResponse{
		Body:        resp.Body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Latency:     resp.Latency,
	}, err
}
