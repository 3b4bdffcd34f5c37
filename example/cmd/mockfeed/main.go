// Standalone mock feed for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockfeed
//
// Then in another terminal:
//
//	go run ./cmd/safefeed tail -c example/config.yaml
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

const articlesPerSecond = 12.0

func main() {
	fmt.Println("Mock feed starting on :9999")
	fmt.Printf("Producing ~%.0f synthetic articles per second\n", articlesPerSecond)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu        sync.Mutex
		startedAt = time.Now()
	)

	http.HandleFunc("/safefeed.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") == "" {
			http.Error(w, "missing key", http.StatusForbidden)
			return
		}

		numArt, err := strconv.Atoi(q.Get("num_art"))
		if err != nil || numArt <= 0 {
			numArt = 500
		}

		mu.Lock()
		newest := int64(time.Since(startedAt).Seconds() * articlesPerSecond)
		mu.Unlock()

		from := newest
		if lastid := q.Get("lastid"); lastid != "?" {
			if id, err := strconv.ParseInt(lastid, 10, 64); err == nil {
				from = id
			}
		}

		count := int(newest - from)
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

		time.Sleep(time.Duration(30+rand.Intn(120)) * time.Millisecond)

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"searchresult": map[string]any{
				"search_start":  from + int64(count),
				"documents":     count,
				"expected_rate": articlesPerSecond,
				"document":      docs,
			},
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("mock feed error", "error", err)
		os.Exit(1)
	}
}
