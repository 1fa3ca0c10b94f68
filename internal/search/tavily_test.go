package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/travel"
)

func TestTavilyFindActivities(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var queries []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("Failed to decode request body: %v", err)
			}
			if req["api_key"] != "test_key" {
				t.Errorf("Expected api_key 'test_key', got '%v'", req["api_key"])
			}
			if req["max_results"] != float64(10) {
				t.Errorf("Expected max_results 10, got '%v'", req["max_results"])
			}
			query, _ := req["query"].(string)
			queries = append(queries, query)

			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `{
				"results": [
					{"title": "15 Best Things to Do in Vijayawada - Holidify", "url": "https://example.com/a", "content": "A long list of sights."},
					{"title": "", "url": "https://example.com/skip", "content": "no title"}
				]
			}`)
		}))
		defer server.Close()

		client := NewTavilyClient(&config.Config{TavilyAPIKey: "test_key"})
		client.baseURL = server.URL

		activities, err := client.FindActivities(context.Background(), "Vijayawada")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		// One usable result per category search, empty titles skipped.
		if len(activities) != 3 {
			t.Fatalf("Expected 3 activities, got %d", len(activities))
		}
		if len(queries) != 3 {
			t.Fatalf("Expected 3 search queries, got %d", len(queries))
		}
		for _, q := range queries {
			if !strings.Contains(q, "Vijayawada") {
				t.Errorf("Expected query to mention destination, got '%s'", q)
			}
		}

		first := activities[0]
		if first.ID == "" {
			t.Error("Expected a generated activity ID")
		}
		if first.Category != travel.CategoryAttraction {
			t.Errorf("Expected category '%s', got '%s'", travel.CategoryAttraction, first.Category)
		}
		if first.EstimatedTime != travel.DefaultEstimatedTime {
			t.Errorf("Expected estimated time '%s', got '%s'", travel.DefaultEstimatedTime, first.EstimatedTime)
		}
		if first.MapLink != "https://example.com/a" {
			t.Errorf("Expected map link to carry the result URL, got '%s'", first.MapLink)
		}

		categories := map[travel.Category]int{}
		for _, a := range activities {
			categories[a.Category]++
		}
		if categories[travel.CategoryRestaurant] != 1 || categories[travel.CategoryExperience] != 1 {
			t.Errorf("Expected one activity per category, got %v", categories)
		}
	})

	t.Run("PartialFailureDegrades", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 2 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprintln(w, `{"results": [{"title": "Kanaka Durga Temple", "url": "https://example.com", "content": "Hilltop temple."}]}`)
		}))
		defer server.Close()

		client := NewTavilyClient(&config.Config{TavilyAPIKey: "test_key"})
		client.baseURL = server.URL

		activities, err := client.FindActivities(context.Background(), "Vijayawada")
		if err != nil {
			t.Fatalf("Expected no error on partial failure, got %v", err)
		}
		if len(activities) != 2 {
			t.Errorf("Expected 2 activities from surviving categories, got %d", len(activities))
		}
	})

	t.Run("TotalFailure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewTavilyClient(&config.Config{TavilyAPIKey: "test_key"})
		client.baseURL = server.URL

		_, err := client.FindActivities(context.Background(), "Vijayawada")
		if err == nil {
			t.Fatal("Expected an error when every search fails, got nil")
		}
	})
}
