package config

import (
	"os"
	"testing"
)

func clearLLMEnv() {
	os.Unsetenv("LLM_PROVIDER")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("GEMINI_API_KEYS")
	os.Unsetenv("GEMINI_API_KEY_1")
	os.Unsetenv("GEMINI_API_KEY_2")
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("TAVILY_API_KEY", "tavily_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.GeminiAPIKeys) != 1 || cfg.GeminiAPIKeys[0] != "gemini_key" {
			t.Errorf("Expected GeminiAPIKeys to be [gemini_key], got %v", cfg.GeminiAPIKeys)
		}
		if cfg.TavilyAPIKey != "tavily_key" {
			t.Errorf("Expected TavilyAPIKey to be 'tavily_key', got '%s'", cfg.TavilyAPIKey)
		}
		if cfg.LLMProvider != "gemini" {
			t.Errorf("Expected default provider 'gemini', got '%s'", cfg.LLMProvider)
		}
		if cfg.Port != "8080" {
			t.Errorf("Expected default port '8080', got '%s'", cfg.Port)
		}
		if cfg.MaxItineraryDays != 7 {
			t.Errorf("Expected default MaxItineraryDays 7, got %d", cfg.MaxItineraryDays)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("TAVILY_API_KEY", "tavily_key")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingTavilyAPIKey", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		os.Unsetenv("TAVILY_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing TAVILY_API_KEY, got nil")
		}
		expectedError := "TAVILY_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("OllamaProviderNeedsNoGeminiKey", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("LLM_PROVIDER", "ollama")
		t.Setenv("TAVILY_API_KEY", "tavily_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.OllamaURL != "http://localhost:11434" {
			t.Errorf("Expected default Ollama URL, got '%s'", cfg.OllamaURL)
		}
		if cfg.OllamaModel != "llama3.1" {
			t.Errorf("Expected default Ollama model, got '%s'", cfg.OllamaModel)
		}
	})

	t.Run("CollectsMultipleGeminiKeys", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("GEMINI_API_KEYS", "key_a, key_b")
		t.Setenv("GEMINI_API_KEY_1", "key_c")
		t.Setenv("GEMINI_API_KEY", "key_d")
		t.Setenv("TAVILY_API_KEY", "tavily_key")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		want := []string{"key_a", "key_b", "key_c", "key_d"}
		if len(cfg.GeminiAPIKeys) != len(want) {
			t.Fatalf("Expected %d keys, got %d: %v", len(want), len(cfg.GeminiAPIKeys), cfg.GeminiAPIKeys)
		}
		for i, k := range want {
			if cfg.GeminiAPIKeys[i] != k {
				t.Errorf("Expected key %d to be '%s', got '%s'", i, k, cfg.GeminiAPIKeys[i])
			}
		}
	})

	t.Run("ParsesTelegramAllowedUserIDs", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("TAVILY_API_KEY", "tavily_key")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "123, 456")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[0] != 123 || cfg.TelegramAllowedUserIDs[1] != 456 {
			t.Errorf("Expected allowed user ids [123 456], got %v", cfg.TelegramAllowedUserIDs)
		}
	})

	t.Run("RejectsBadMaxItineraryDays", func(t *testing.T) {
		clearLLMEnv()
		t.Setenv("GEMINI_API_KEY", "gemini_key")
		t.Setenv("TAVILY_API_KEY", "tavily_key")
		t.Setenv("MAX_ITINERARY_DAYS", "zero")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid MAX_ITINERARY_DAYS, got nil")
		}
	})
}
