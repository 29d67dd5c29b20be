package main

import (
	"encoding/json"
	"hash/fnv"
	"log"
	"net/http"
	"time"
)

type batchRequest struct {
	AuthorIDs []string `json:"author_ids"`
}

type batchResponse struct {
	Reputations map[string]int `json:"reputations"`
}

// reputationFor derives a stable pseudo-random score from the author ID so
// repeated lookups agree with each other.
func reputationFor(authorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(authorID))

	return int(h.Sum32() % 101)
}

func main() {
	http.HandleFunc("/api/v1/reputation/batch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		var req batchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			log.Printf("[Reputation] Bad request: %v", err)
			return
		}

		resp := batchResponse{Reputations: make(map[string]int, len(req.AuthorIDs))}
		for _, id := range req.AuthorIDs {
			resp.Reputations[id] = reputationFor(id)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Printf("[Reputation] Write error: %v", err)
		}

		log.Printf("[Reputation] %s %s - 200 OK (%d authors)", r.Method, r.URL.Path, len(req.AuthorIDs))
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			log.Printf("[Reputation] Health write error: %v", err)
		}
	})

	log.Println("Mock reputation service running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
