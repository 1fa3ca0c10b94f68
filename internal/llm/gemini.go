package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiModelName  = "gemini-2.0-flash"
	keyRotationPause = 2 * time.Second
)

// GeminiClient is a client for the Google Gemini API that rotates through a
// pool of API keys when one of them is rate limited.
type GeminiClient struct {
	mu     sync.Mutex
	keys   *KeyManager
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a new Gemini API client using the first configured key.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	keys, err := NewKeyManager(cfg.GeminiAPIKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to collect gemini keys: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(keys.Current()))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		keys:   keys,
		client: client,
		model:  client.GenerativeModel(geminiModelName),
	}, nil
}

// GenerateContent sends a prompt to the Gemini model and returns the
// generated text. On a rate-limit error it rotates to the next key and
// retries, at most once per configured key.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.keys.Count(); attempt++ {
		resp, err := c.generate(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if !IsRateLimitError(err) {
			return ContentResponse{}, err
		}

		lastErr = err
		next := c.keys.Rotate()
		log.Printf("⚠️ Gemini key rate limited, rotating (%d keys configured)", c.keys.Count())
		if err := c.rebuild(ctx, next); err != nil {
			return ContentResponse{}, err
		}

		select {
		case <-time.After(keyRotationPause):
		case <-ctx.Done():
			return ContentResponse{}, ctx.Err()
		}
	}

	return ContentResponse{}, fmt.Errorf("all gemini keys exhausted: %w", lastErr)
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (ContentResponse, error) {
	c.mu.Lock()
	model := c.model
	c.mu.Unlock()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return ContentResponse{}, fmt.Errorf("generated content is not text")
	}

	usage := shared.TokenUsage{Model: geminiModelName}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return ContentResponse{Content: string(text), Usage: usage}, nil
}

// rebuild swaps the underlying client for one bound to the given key.
func (c *GeminiClient) rebuild(ctx context.Context, apiKey string) error {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return fmt.Errorf("failed to rebuild Gemini client: %w", err)
	}

	c.mu.Lock()
	old := c.client
	c.client = client
	c.model = client.GenerativeModel(geminiModelName)
	c.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}

// IsRateLimitError reports whether an error from the generative backend
// indicates quota exhaustion rather than a permanent failure.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "quota", "rate limit", "resource exhausted", "resource_exhausted", "resourceexhausted"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
