package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.APIKey != "tvly-test" {
			t.Errorf("api_key = %q", req.APIKey)
		}
		if req.MaxResults != 5 {
			t.Errorf("max_results = %d, want 5", req.MaxResults)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]string{
				{"title": "Nikkei today", "url": "https://example.com/nikkei", "content": "index up 1.2%"},
				{"title": "Market news", "url": "https://example.com/market", "content": "stocks rally"},
			},
		})
	}))
	defer srv.Close()

	c := NewWithBaseURL("tvly-test", srv.URL)
	hits, err := c.Search(context.Background(), "今日の株価", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Title != "Nikkei today" || hits[0].URL != "https://example.com/nikkei" {
		t.Errorf("unexpected first hit: %+v", hits[0])
	}
}

func TestSearch_CapsResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		results := make([]map[string]string, 10)
		for i := range results {
			results[i] = map[string]string{"title": "t", "url": "u", "content": "c"}
		}
		json.NewEncoder(w).Encode(map[string]any{"results": results})
	}))
	defer srv.Close()

	c := NewWithBaseURL("k", srv.URL)
	hits, err := c.Search(context.Background(), "q", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits, want 3", len(hits))
	}
}

func TestSearch_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewWithBaseURL("bad-key", srv.URL)
	if _, err := c.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
