package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the application.
type Config struct {
	// LLM backend
	LLMProvider   string // "gemini" (default) or "ollama"
	GeminiAPIKeys []string
	OllamaURL     string
	OllamaModel   string

	// Search collaborators
	TavilyAPIKey string
	SerpAPIKey   string

	// Storage
	DatabasePath string
	SnapshotPath string

	// Planning
	MaxItineraryDays int

	// HTTP
	Port string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = "gemini"
	}

	geminiKeys := collectGeminiKeys()
	if provider == "gemini" && len(geminiKeys) == 0 {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3.1"
	}

	tavilyKey := os.Getenv("TAVILY_API_KEY")
	if tavilyKey == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY environment variable not set")
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/trip-planner.db"
	}

	snapshotPath := os.Getenv("SNAPSHOT_PATH")
	if snapshotPath == "" {
		snapshotPath = "data/plans"
	}

	maxDays := 7
	if raw := os.Getenv("MAX_ITINERARY_DAYS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("MAX_ITINERARY_DAYS must be a positive integer, got %q", raw)
		}
		maxDays = parsed
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Telegram config is optional; only the bot binary requires it.
	var allowedIDs []int64
	for _, raw := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_ALLOWED_USER_IDS contains invalid id %q", raw)
		}
		allowedIDs = append(allowedIDs, id)
	}

	var adminID int64
	if raw := os.Getenv("ADMIN_TELEGRAM_ID"); raw != "" {
		fmt.Sscanf(raw, "%d", &adminID)
	}

	return &Config{
		LLMProvider:            provider,
		GeminiAPIKeys:          geminiKeys,
		OllamaURL:              ollamaURL,
		OllamaModel:            ollamaModel,
		TavilyAPIKey:           tavilyKey,
		SerpAPIKey:             os.Getenv("SERPAPI_API_KEY"),
		DatabasePath:           dbPath,
		SnapshotPath:           snapshotPath,
		MaxItineraryDays:       maxDays,
		Port:                   port,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
		AdminTelegramID:        adminID,
	}, nil
}

// collectGeminiKeys gathers keys from GEMINI_API_KEYS (comma separated),
// numbered GEMINI_API_KEY_1..N variables, and the single GEMINI_API_KEY
// fallback. Order is preserved; deduplication happens at the consumer.
func collectGeminiKeys() []string {
	var keys []string

	for _, k := range strings.Split(os.Getenv("GEMINI_API_KEYS"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	for i := 1; ; i++ {
		k := strings.TrimSpace(os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)))
		if k == "" {
			break
		}
		keys = append(keys, k)
	}

	if k := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); k != "" {
		keys = append(keys, k)
	}

	return keys
}
