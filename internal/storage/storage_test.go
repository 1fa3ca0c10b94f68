package storage

import (
	"os"
	"testing"
	"time"

	"ai-trip-planner/internal/travel"
)

func TestPlanStore(t *testing.T) {
	// Create a temporary directory for testing
	tempDir, err := os.MkdirTemp("", "storage_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create PlanStore: %v", err)
	}

	runID := "run-123"
	generatedAt := "2026-03-14T10:00:00Z"
	plan := &travel.ChatPlan{
		Request: "3 days in Lisbon",
		Summary: "A relaxed long weekend.",
		Itinerary: travel.Itinerary{
			Days: []travel.ItineraryDay{
				{Date: "2026-03-14", City: "Lisbon"},
			},
		},
	}

	t.Run("CheckExists-False", func(t *testing.T) {
		if store.Exists(runID, generatedAt) {
			t.Errorf("Expected snapshot '%s' to not exist, but it does", runID)
		}
	})

	t.Run("Save", func(t *testing.T) {
		if err := store.Save(runID, generatedAt, plan); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}
	})

	t.Run("CheckExists-True", func(t *testing.T) {
		if !store.Exists(runID, generatedAt) {
			t.Errorf("Expected snapshot '%s' to exist, but it doesn't", runID)
		}
	})

	t.Run("Load", func(t *testing.T) {
		loaded, err := store.Load(runID, generatedAt)
		if err != nil {
			t.Fatalf("Failed to load plan: %v", err)
		}

		if loaded.Request != plan.Request {
			t.Errorf("Expected request '%s', got '%s'", plan.Request, loaded.Request)
		}
		if len(loaded.Itinerary.Days) != 1 {
			t.Fatalf("Expected 1 itinerary day, got %+v", loaded.Itinerary)
		}
		if loaded.Itinerary.Days[0].City != "Lisbon" {
			t.Errorf("Expected city 'Lisbon', got '%s'", loaded.Itinerary.Days[0].City)
		}
	})

	t.Run("Load-NotFound", func(t *testing.T) {
		_, err := store.Load("non-existent-run", generatedAt)
		if err == nil {
			t.Fatal("Expected an error for loading non-existent plan, got nil")
		}
	})

	t.Run("RemoveStaleVersions", func(t *testing.T) {
		if err := store.Save(runID, "2026-03-15T10:00:00Z", plan); err != nil {
			t.Fatalf("Failed to save second version: %v", err)
		}
		if err := store.RemoveStaleVersions(runID); err != nil {
			t.Fatalf("Failed to remove stale versions: %v", err)
		}
		if store.Exists(runID, generatedAt) {
			t.Error("Expected stale version to be removed")
		}
	})
}

func TestPlanStoreLatest(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "storage_latest_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create PlanStore: %v", err)
	}

	t.Run("Empty", func(t *testing.T) {
		plan, err := store.Latest()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if plan != nil {
			t.Errorf("Expected nil plan for empty store, got %+v", plan)
		}
	})

	t.Run("PicksNewest", func(t *testing.T) {
		first := &travel.ChatPlan{Request: "first"}
		second := &travel.ChatPlan{Request: "second"}

		if err := store.Save("run-1", "2026-03-14T10:00:00Z", first); err != nil {
			t.Fatalf("Failed to save first plan: %v", err)
		}
		// Ensure distinct mtimes on coarse-grained filesystems.
		time.Sleep(10 * time.Millisecond)
		if err := store.Save("run-2", "2026-03-15T10:00:00Z", second); err != nil {
			t.Fatalf("Failed to save second plan: %v", err)
		}

		latest, err := store.Latest()
		if err != nil {
			t.Fatalf("Failed to load latest plan: %v", err)
		}
		if latest == nil || latest.Request != "second" {
			t.Errorf("Expected latest plan 'second', got %+v", latest)
		}
	})
}

func TestPlanStoreCleanupOlderThan(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "storage_cleanup_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	store, err := NewPlanStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create PlanStore: %v", err)
	}

	if err := store.Save("run-old", "2026-01-01T10:00:00Z", &travel.ChatPlan{Request: "old"}); err != nil {
		t.Fatalf("Failed to save old plan: %v", err)
	}
	oldPath := store.getVersionedPath("run-old", "2026-01-01T10:00:00Z")
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatalf("Failed to age snapshot: %v", err)
	}

	if err := store.Save("run-new", "2026-03-14T10:00:00Z", &travel.ChatPlan{Request: "new"}); err != nil {
		t.Fatalf("Failed to save new plan: %v", err)
	}

	deleted, err := store.CleanupOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("Failed to cleanup: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted snapshot, got %d", deleted)
	}
	if store.Exists("run-old", "2026-01-01T10:00:00Z") {
		t.Error("Expected old snapshot to be deleted")
	}
	if !store.Exists("run-new", "2026-03-14T10:00:00Z") {
		t.Error("Expected new snapshot to survive cleanup")
	}
}
