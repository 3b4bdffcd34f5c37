package safefeed

import (
	"context"
	"encoding/json"
	"time"
)

// FeedResponse is one successfully ingested batch from the feed.
type FeedResponse struct {
	// SearchResult carries the batch payload and the cursor/rate signals.
	SearchResult SearchResult `json:"searchresult"`
}

// SearchResult is the nested result object of a feed response.
type SearchResult struct {
	// SearchStart is the lastid the feed reported for resuming after this
	// batch. The client has already advanced its cursor to it.
	SearchStart int64 `json:"search_start"`

	// Documents is the number of articles in this batch.
	Documents int `json:"documents"`

	// ExpectedRate is the feed-reported production rate in articles per
	// second. Zero when the feed did not report one.
	ExpectedRate float64 `json:"expected_rate,omitempty"`

	// Document holds the article records in feed order. The client does
	// not interpret them; each element is the article's raw JSON.
	Document []json.RawMessage `json:"document,omitempty"`
}

// CycleStats is a snapshot of one poll cycle, emitted after the cycle has
// completed (success or failure) and all state mutations are committed.
type CycleStats struct {
	// CycleID is a correlation ID unique to this cycle. It also appears
	// in the client's structured logs for the cycle.
	CycleID string

	// CheckedAt is when the fetch was issued.
	CheckedAt time.Time

	// Latency is the fetch round-trip time.
	Latency time.Duration

	// LastID is the cursor position the fetch was issued at. nil means
	// the fetch started at the current newest article.
	LastID *int64

	// RequestedSize is the batch size the fetch asked for.
	RequestedSize int

	// DocumentCount is the number of articles the batch carried.
	// Zero on failed cycles.
	DocumentCount int

	// ExpectedRate is the client's rate estimate after the cycle,
	// in articles per second. Zero until the first estimate is made.
	ExpectedRate float64

	// Interval is the pacing interval in effect after the cycle.
	Interval time.Duration

	// Behind reports whether the client considers itself behind after
	// the cycle: the batch nearly filled the requested size, so the next
	// pull will skip the pacing wait.
	Behind bool

	// Err is the failure of the cycle, if any. nil on success.
	Err error
}

// Observer is a function invoked with a [CycleStats] snapshot after every
// poll cycle.
//
// Observers are invoked synchronously from the pull cycle, in registration
// order. They must be non-blocking; long-running work should be dispatched
// to a separate goroutine. Panics in observers are recovered and logged with
// a correlation ID; they do not crash the client.
type Observer func(CycleStats)

// FetchRequest describes one fetch the client asks its [Transport] to issue.
type FetchRequest struct {
	// Key is the feed credential.
	Key string

	// DocFormat is the requested response format: "json" or "xml".
	DocFormat string

	// LastID is the resume position, or nil for the current newest.
	LastID *int64

	// BatchSize is the number of articles to request.
	BatchSize int
}

// FetchResponse holds a raw response produced by a [Transport].
type FetchResponse struct {
	// Body is the raw response body.
	Body []byte

	// StatusCode is the HTTP status code, when applicable.
	StatusCode int

	// ContentType is the declared format of the body, for diagnostics.
	ContentType string

	// Latency is the time taken for the fetch.
	Latency time.Duration
}

// Transport issues a single feed fetch.
//
// The default implementation performs an HTTP GET against the feed base URL
// with the safefeed query parameters. A custom Transport can be injected
// with [WithTransport], e.g. for tests or replay. Implementations must honor
// context cancellation; the client bounds every fetch with its per-request
// timeout.
//
// A Transport failure (returned error) is reported to the caller as a
// [*TransportError] and leaves the client's cursor and tuning untouched.
type Transport interface {
	Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error)
}
