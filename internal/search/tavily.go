package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/travel"
)

const (
	tavilyEndpoint   = "https://api.tavily.com/search"
	tavilyMaxResults = 10
)

// TavilyClient finds activity candidates through the Tavily search API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient creates a new Tavily API client.
func NewTavilyClient(cfg *config.Config) *TavilyClient {
	return &TavilyClient{
		apiKey:  cfg.TavilyAPIKey,
		baseURL: tavilyEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyResponse struct {
	Results []tavilyResult `json:"results"`
}

// FindActivities runs one search per activity category and flattens the
// results into raw candidates. A failed category degrades to an empty slice
// for that category; the search fails as a whole only when nothing at all
// could be retrieved.
func (c *TavilyClient) FindActivities(ctx context.Context, destination string) ([]travel.Activity, error) {
	searches := []struct {
		query    string
		category travel.Category
	}{
		{fmt.Sprintf("top attractions things to do %s", destination), travel.CategoryAttraction},
		{fmt.Sprintf("best restaurants %s", destination), travel.CategoryRestaurant},
		{fmt.Sprintf("experiences activities %s", destination), travel.CategoryExperience},
	}

	var activities []travel.Activity
	var lastErr error
	for _, s := range searches {
		results, err := c.search(ctx, s.query)
		if err != nil {
			log.Printf("⚠️ Tavily search failed for %q: %v", s.query, err)
			lastErr = err
			continue
		}

		for _, r := range results {
			name := strings.TrimSpace(r.Title)
			if name == "" {
				continue
			}
			activities = append(activities, travel.Activity{
				ID:            uuid.NewString(),
				Name:          name,
				Category:      s.category,
				EstimatedTime: travel.DefaultEstimatedTime,
				Description:   SnippetText(r.Content),
				MapLink:       r.URL,
			})
		}
	}

	if len(activities) == 0 && lastErr != nil {
		return nil, fmt.Errorf("tavily search failed: %w", lastErr)
	}
	return activities, nil
}

func (c *TavilyClient) search(ctx context.Context, query string) ([]tavilyResult, error) {
	reqBody := map[string]interface{}{
		"api_key":     c.apiKey,
		"query":       query,
		"max_results": tavilyMaxResults,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tavily api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return parsed.Results, nil
}
