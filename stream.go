package safefeed

import (
	"context"
	"errors"
	"sync"
)

// PullResult is one emitted pull: the batch (nil on failure), the failure
// (nil on success), and the cycle snapshot either way.
type PullResult struct {
	Response *FeedResponse
	Stats    CycleStats
	Err      error
}

// Stream is a push-style adapter over a [Client]: a single background
// goroutine pulls batches sequentially and emits them on a channel.
//
// Stream adds no pacing or state of its own; all decision logic and state
// mutation stays in the client. Only one Stream should drive a client at a
// time; running more merely serializes their pulls against the client's
// lock.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Stream struct {
	client  *Client
	results chan PullResult
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once
}

// NewStream creates a [Stream] over an existing client.
//
// The stream must be started with [Stream.Start] and stopped with
// [Stream.Stop]. Results are available via [Stream.Results].
func NewStream(client *Client) *Stream {
	return &Stream{
		client:  client,
		results: make(chan PullResult, 1),
	}
}

// Results returns a receive-only channel that emits one [PullResult] per
// completed pull.
//
// The channel is closed when the stream stops. Consumers should read until
// it is closed; a slow consumer delays the next pull rather than dropping
// results.
func (s *Stream) Results() <-chan PullResult {
	return s.results
}

// Start begins pulling in a background goroutine.
//
// Start is non-blocking and returns immediately. Pulls continue,
// sequentially and indefinitely, until [Stream.Stop] is called or the
// context is cancelled. Failed pulls are emitted like successful ones and
// do not stop the stream.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Stream) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	var pullCtx context.Context
	pullCtx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		for {
			resp, err := s.client.GetArticles(pullCtx)
			if pullCtx.Err() != nil && errors.Is(err, pullCtx.Err()) {
				return
			}

			stats, _ := s.client.LastCycle()
			select {
			case s.results <- PullResult{Response: resp, Stats: stats, Err: err}:
			case <-pullCtx.Done():
				return
			}
		}
	}()
}

// Stop halts the stream and waits for the pull goroutine to exit.
//
// Stop cancels any pending wait or in-flight fetch, then blocks until the
// results channel is closed. The client's state stays at the last committed
// pull, so a later pull (or a new stream) resumes cleanly.
//
// Stop is idempotent and safe to call multiple times. Calling Stop before
// Start is a safe no-op.
func (s *Stream) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}
