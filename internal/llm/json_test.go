package llm

import (
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	t.Run("BareObject", func(t *testing.T) {
		got, ok := ExtractJSONObject(`{"a": 1}`)
		if !ok {
			t.Fatal("Expected extraction to succeed")
		}
		if got != `{"a": 1}` {
			t.Errorf("Expected '{\"a\": 1}', got '%s'", got)
		}
	})

	t.Run("StripsProseAndFences", func(t *testing.T) {
		response := "Sure! Here is your plan:\n```json\n{\"days\": []}\n```\nLet me know if you need more."
		got, ok := ExtractJSONObject(response)
		if !ok {
			t.Fatal("Expected extraction to succeed")
		}
		if got != `{"days": []}` {
			t.Errorf("Expected '{\"days\": []}', got '%s'", got)
		}
	})

	t.Run("KeepsNestedBraces", func(t *testing.T) {
		response := `prefix {"outer": {"inner": 1}} suffix`
		got, ok := ExtractJSONObject(response)
		if !ok {
			t.Fatal("Expected extraction to succeed")
		}
		if got != `{"outer": {"inner": 1}}` {
			t.Errorf("Expected nested object preserved, got '%s'", got)
		}
	})

	t.Run("NoObject", func(t *testing.T) {
		if _, ok := ExtractJSONObject("no json here"); ok {
			t.Error("Expected extraction to fail for plain text")
		}
	})

	t.Run("UnbalancedBraces", func(t *testing.T) {
		if _, ok := ExtractJSONObject("} {"); ok {
			t.Error("Expected extraction to fail when '}' precedes '{'")
		}
	})
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("BareArray", func(t *testing.T) {
		got, ok := ExtractJSONArray(`["a", "b"]`)
		if !ok {
			t.Fatal("Expected extraction to succeed")
		}
		if got != `["a", "b"]` {
			t.Errorf("Expected '[\"a\", \"b\"]', got '%s'", got)
		}
	})

	t.Run("StripsProse", func(t *testing.T) {
		got, ok := ExtractJSONArray("The cleaned list is: [\"City Museum\"] hope that helps")
		if !ok {
			t.Fatal("Expected extraction to succeed")
		}
		if got != `["City Museum"]` {
			t.Errorf("Expected '[\"City Museum\"]', got '%s'", got)
		}
	})

	t.Run("NoArray", func(t *testing.T) {
		if _, ok := ExtractJSONArray(`{"not": "an array"}`); ok {
			t.Error("Expected extraction to fail for an object without an array")
		}
		if _, ok := ExtractJSONArray("nothing"); ok {
			t.Error("Expected extraction to fail for plain text")
		}
	})
}
