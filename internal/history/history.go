// Package history keeps an in-memory record of recent poll cycles.
//
// This package is internal to safefeed. It stores a bounded window of cycle
// snapshots so callers can inspect what the client has been doing (last
// cursor, batch sizes, derived rate, failures) without wiring an observer.
//
// The [Entry] type mirrors the public safefeed.CycleStats; the client
// converts between them at the boundary.
package history

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of cycles retained when the caller does not
// choose a window size.
const DefaultCapacity = 64

// Entry is the stored snapshot of one poll cycle.
type Entry struct {
	// CycleID is the correlation ID of the cycle.
	CycleID string `json:"cycle_id"`

	// CheckedAt is when the fetch was issued.
	CheckedAt time.Time `json:"checked_at"`

	// LatencyMs is the fetch round-trip time in milliseconds.
	LatencyMs int64 `json:"latency_ms"`

	// LastID is the cursor position the fetch was issued at.
	// nil means the fetch started at the current newest article.
	LastID *int64 `json:"lastid"`

	// RequestedSize is the num_art the fetch asked for.
	RequestedSize int `json:"requested_size"`

	// DocumentCount is the number of articles the batch carried.
	// Zero on failed cycles.
	DocumentCount int `json:"document_count"`

	// ExpectedRate is the rate estimate after the cycle, articles/second.
	ExpectedRate float64 `json:"expected_rate"`

	// IntervalMs is the pacing interval after the cycle, in milliseconds.
	IntervalMs int64 `json:"interval_ms"`

	// Behind reports whether the client considered itself behind after
	// the cycle.
	Behind bool `json:"behind"`

	// Error contains the failure message of the cycle, if any.
	Error *string `json:"error"`
}

// Log is a fixed-capacity, thread-safe record of recent cycles. Once full,
// each append evicts the oldest entry.
type Log struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewLog creates a [Log] retaining up to capacity entries. A capacity of 0
// or less uses [DefaultCapacity].
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append records one cycle, evicting the oldest entry when full.
func (l *Log) Append(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// Latest returns the most recent entry. ok is false when no cycle has been
// recorded yet.
func (l *Log) Latest() (e Entry, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// All returns a snapshot of the retained entries, oldest first.
//
// The returned slice is a copy; modifications do not affect the log.
func (l *Log) All() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
