// Package transport issues safefeed fetches over HTTP.
//
// This package is internal to safefeed. It owns the pooled HTTP client, the
// query-string encoding of a fetch request (key, doc_format, lastid,
// num_art), and the size-limited body read. It knows nothing about pacing or
// cursors; the client decides when to call it and what to do with the body.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxResponseBodySize bounds a single response read. Large batches of full
// article texts routinely reach tens of megabytes.
const maxResponseBodySize = 64 << 20 // 64MB

// connection pooling limits to prevent resource exhaustion from long-lived
// polling processes
const (
	defaultMaxIdleConns        = 10
	defaultMaxIdleConnsPerHost = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// newestSentinel is the lastid wire value meaning "start at the current
// newest article".
const newestSentinel = "?"

// FormatJSON and FormatXML are the doc_format wire values.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// Request describes one safefeed fetch.
type Request struct {
	// Key is the feed credential.
	Key string

	// DocFormat selects the response format, FormatJSON or FormatXML.
	DocFormat string

	// LastID is the resume position. nil requests the current newest.
	LastID *int64

	// BatchSize is the number of articles to request (num_art).
	BatchSize int
}

// Response holds the result of a completed fetch.
type Response struct {
	// Body is the raw response body, limited to 64MB.
	Body []byte

	// StatusCode is the HTTP status code.
	StatusCode int

	// ContentType is the Content-Type header of the response, for
	// diagnostics when the body fails to decode.
	ContentType string

	// Latency is the total time taken for the request.
	Latency time.Duration
}

// Client is an HTTP client wrapper for polling a safefeed endpoint.
//
// Client applies no timeout of its own; the caller bounds each fetch via the
// context. A non-2xx status is reported as an error, since the feed carries
// no usable signals on such responses.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a polling [Client] for the given feed base URL.
//
// The client keeps a small idle connection pool: a single poller talks to a
// single host, strictly sequentially, so one warm connection is the common
// case.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			// no client-level timeout - the caller bounds each fetch via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// Fetch issues one GET against the feed and returns the raw response.
//
// The returned error covers everything the feed cannot recover from within
// this fetch: request construction, connection failures, context
// cancellation or timeout, body read failures, and non-2xx statuses.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return Response{Latency: time.Since(start)}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.URL.RawQuery = encodeQuery(req)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{Latency: time.Since(start)}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode:  resp.StatusCode,
			ContentType: resp.Header.Get("Content-Type"),
			Latency:     time.Since(start),
		}, fmt.Errorf("failed to read response body: %w", err)
	}

	result := Response{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Latency:     time.Since(start),
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, fmt.Errorf("unexpected HTTP status: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	return result, nil
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close the client remains usable; new
// connections are established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// encodeQuery builds the safefeed query string for a request.
func encodeQuery(req Request) string {
	lastid := newestSentinel
	if req.LastID != nil {
		lastid = strconv.FormatInt(*req.LastID, 10)
	}

	params := url.Values{}
	params.Set("key", req.Key)
	params.Set("doc_format", req.DocFormat)
	params.Set("lastid", lastid)
	params.Set("num_art", strconv.Itoa(req.BatchSize))
	return params.Encode()
}
