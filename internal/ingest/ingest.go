// Package ingest validates raw safefeed response bodies.
//
// This package is internal to safefeed. It decodes a response body into the
// wire schema, verifies the fields the pull cycle depends on, and reports
// failures as typed errors without touching any client state. The caller
// applies cursor and tuning mutations only after a successful ingest, so a
// failed ingest leaves everything exactly as it was.
//
// The error types here mirror the public ones in the safefeed package; the
// client converts between them at the boundary.
package ingest

import (
	"encoding/json"
	"fmt"
)

// bodySnippetLimit bounds how much of a malformed body is carried around in
// the error for debugging.
const bodySnippetLimit = 2048

// SearchResult is the nested result object of a safefeed response.
type SearchResult struct {
	// SearchStart is the lastid to resume from on the next fetch.
	// A nil value marks the response as incomplete.
	SearchStart *int64 `json:"search_start"`

	// Documents is the number of articles in this batch.
	Documents int `json:"documents"`

	// ExpectedRate is the feed-reported production rate in articles per
	// second. Zero when the feed did not report one.
	ExpectedRate float64 `json:"expected_rate"`

	// Document holds the article records. The client does not interpret
	// them; they are passed through to the caller as raw JSON.
	Document []json.RawMessage `json:"document"`
}

// Response is the decoded wire shape of a safefeed JSON response.
type Response struct {
	SearchResult *SearchResult `json:"searchresult"`
}

// SchemaError indicates the body could not be decoded as JSON at all.
type SchemaError struct {
	// Body is a prefix of the offending body, for debugging.
	Body []byte

	// Err is the underlying decode error.
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("not a valid safefeed JSON body: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// IncompleteDataError indicates the body decoded but a field the pull cycle
// requires is missing.
type IncompleteDataError struct {
	// Field is the dotted path of the missing field.
	Field string
}

func (e *IncompleteDataError) Error() string {
	return fmt.Sprintf("safefeed response is missing %q", e.Field)
}

// Ingest decodes and validates one response body.
//
// On success the returned response is guaranteed to carry a search result
// with a resume position. Failures are reported as [*SchemaError] or
// [*IncompleteDataError]; in either case the returned response is nil.
func Ingest(body []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &SchemaError{Body: snippet(body), Err: err}
	}

	if resp.SearchResult == nil {
		return nil, &IncompleteDataError{Field: "searchresult"}
	}
	if resp.SearchResult.SearchStart == nil {
		return nil, &IncompleteDataError{Field: "searchresult.search_start"}
	}

	return &resp, nil
}

// snippet returns at most bodySnippetLimit bytes of body, copied so the
// error does not pin the caller's buffer.
func snippet(body []byte) []byte {
	if len(body) > bodySnippetLimit {
		body = body[:bodySnippetLimit]
	}
	return append([]byte(nil), body...)
}
