package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// mockFeed is an in-memory safefeed endpoint. Articles accrue continuously at
// articlesPerSecond; each request drains everything newer than the client's
// lastid, capped at num_art.
type mockFeed struct {
	mu                sync.Mutex
	startedAt         time.Time
	articlesPerSecond float64
}

// StartMockFeedServer runs a mock safefeed endpoint producing synthetic
// articles at the given rate. Call this in a goroutine before creating the
// client.
func StartMockFeedServer(addr string, articlesPerSecond float64) {
	feed := &mockFeed{
		startedAt:         time.Now(),
		articlesPerSecond: articlesPerSecond,
	}

	http.HandleFunc("/safefeed.php", feed.handle)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock feed server error", "error", err)
	}
}

func (f *mockFeed) handle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("key") == "" {
		http.Error(w, "missing key", http.StatusForbidden)
		return
	}

	numArt, err := strconv.Atoi(q.Get("num_art"))
	if err != nil || numArt <= 0 {
		numArt = 500
	}

	f.mu.Lock()
	newest := f.newestID()

	// "?" means start at the current newest: empty batch, just the position
	from := newest
	if lastid := q.Get("lastid"); lastid != "?" {
		if id, err := strconv.ParseInt(lastid, 10, 64); err == nil {
			from = id
		}
	}

	available := int(newest - from)
	count := available
	if count > numArt {
		count = numArt
	}

	docs := make([]map[string]any, count)
	for i := range docs {
		id := from + int64(i) + 1
		docs[i] = map[string]any{
			"id":     id,
			"header": map[string]string{"text": fmt.Sprintf("Synthetic article %d", id)},
		}
	}
	searchStart := from + int64(count)
	f.mu.Unlock()

	// simulate small latency variance
	time.Sleep(time.Duration(30+rand.Intn(120)) * time.Millisecond)

	w.Header().Set("Content-Type", "application/json")
	resp := map[string]any{
		"searchresult": map[string]any{
			"search_start":  searchStart,
			"documents":     count,
			"expected_rate": f.articlesPerSecond,
			"document":      docs,
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// newestID is the id of the most recent article, derived from elapsed time.
// Caller must hold f.mu.
func (f *mockFeed) newestID() int64 {
	elapsed := time.Since(f.startedAt).Seconds()
	return int64(elapsed * f.articlesPerSecond)
}
