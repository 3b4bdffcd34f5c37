package safefeed

import (
	"context"
	"testing"
	"time"
)

func TestStream_DeliversResults(t *testing.T) {
	fs := newFeedServer(t,
		jsonBatch(101, 2),
		rawBody("text/plain", "not json"),
		jsonBatch(202, 1),
	)
	client := newTestClient(t, fs, WithInterval(10*time.Millisecond))

	stream := NewStream(client)
	stream.Start(context.Background())

	first := <-stream.Results()
	if first.Err != nil {
		t.Fatalf("first pull Err = %v, want nil", first.Err)
	}
	if first.Response == nil || first.Response.SearchResult.SearchStart != 101 {
		t.Errorf("first pull Response = %+v, want SearchStart 101", first.Response)
	}
	if first.Stats.DocumentCount != 2 {
		t.Errorf("first pull Stats.DocumentCount = %d, want 2", first.Stats.DocumentCount)
	}

	// a failed pull is emitted and the stream keeps going
	second := <-stream.Results()
	if !IsSchemaError(second.Err) {
		t.Fatalf("second pull Err = %v, want a SchemaError", second.Err)
	}
	if second.Response != nil {
		t.Error("second pull carries a response despite the failure")
	}

	third := <-stream.Results()
	if third.Err != nil {
		t.Fatalf("third pull Err = %v, want nil", third.Err)
	}

	stream.Stop()

	if id, _ := client.LastID(); id != 202 {
		t.Errorf("LastID() after stop = %d, want 202", id)
	}
}

func TestStream_StopClosesResults(t *testing.T) {
	fs := newFeedServer(t, jsonBatch(101, 1))
	client := newTestClient(t, fs, WithInterval(time.Minute))

	stream := NewStream(client)
	stream.Start(context.Background())

	if res := <-stream.Results(); res.Err != nil {
		t.Fatalf("pull Err = %v, want nil", res.Err)
	}

	// the goroutine is now parked in the pacing wait; Stop must interrupt it
	done := make(chan struct{})
	go func() {
		stream.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() did not return while a pull was waiting")
	}

	if _, ok := <-stream.Results(); ok {
		t.Error("results channel still open after Stop()")
	}
}

func TestStream_StopIsIdempotent(t *testing.T) {
	fs := newFeedServer(t, jsonBatch(101, 1))
	client := newTestClient(t, fs, WithInterval(time.Minute))

	stream := NewStream(client)
	stream.Start(context.Background())
	<-stream.Results()

	stream.Stop()
	stream.Stop()
}

func TestStream_StopBeforeStart(t *testing.T) {
	fs := newFeedServer(t)
	client := newTestClient(t, fs)

	stream := NewStream(client)
	stream.Stop()

	if _, ok := <-stream.Results(); ok {
		t.Error("results channel open after Stop() without Start()")
	}

	// a stopped stream must not begin pulling
	stream.Start(context.Background())
	if _, ok := <-stream.Results(); ok {
		t.Error("stopped stream emitted a result after Start()")
	}
}

func TestStream_ParentContextCancelStopsPulls(t *testing.T) {
	fs := newFeedServer(t, jsonBatch(101, 1))
	client := newTestClient(t, fs, WithInterval(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	stream := NewStream(client)
	stream.Start(ctx)

	<-stream.Results()
	cancel()

	select {
	case _, ok := <-stream.Results():
		if ok {
			t.Error("stream emitted a result after parent cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("results channel not closed after parent cancellation")
	}

	stream.Stop()
}
