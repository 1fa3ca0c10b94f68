package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-trip-planner/internal/travel"
)

// PlanStore provides file-based snapshot storage for generated trip plans.
// Snapshots are the debugging trail for a planning run and survive database
// resets.
type PlanStore struct {
	basePath string
}

// NewPlanStore creates a new PlanStore and ensures the base directory exists.
func NewPlanStore(basePath string) (*PlanStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &PlanStore{basePath: basePath}, nil
}

// sanitizeTimestamp makes the timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

// getVersionedPath returns the full path for a given run ID and version.
func (s *PlanStore) getVersionedPath(runID, generatedAt string) string {
	filename := fmt.Sprintf("%s_%s.json", runID, sanitizeTimestamp(generatedAt))
	return filepath.Join(s.basePath, filename)
}

// Save stores a plan snapshot to a file with versioning.
func (s *PlanStore) Save(runID, generatedAt string, plan *travel.ChatPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	filePath := s.getVersionedPath(runID, generatedAt)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// Load retrieves a plan snapshot from a specific version file.
func (s *PlanStore) Load(runID, generatedAt string) (*travel.ChatPlan, error) {
	filePath := s.getVersionedPath(runID, generatedAt)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan travel.ChatPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Exists checks if a specific snapshot version exists.
func (s *PlanStore) Exists(runID, generatedAt string) bool {
	filePath := s.getVersionedPath(runID, generatedAt)
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// RemoveStaleVersions removes all snapshot files for a run ID.
func (s *PlanStore) RemoveStaleVersions(runID string) error {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", runID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}

// Latest loads the most recently written snapshot, or nil when the store is
// empty.
func (s *PlanStore) Latest() (*travel.ChatPlan, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob snapshots: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	var newest string
	var newestMod time.Time
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = match
			newestMod = info.ModTime()
		}
	}
	if newest == "" {
		return nil, nil
	}

	data, err := os.ReadFile(newest)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	var plan travel.ChatPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// CleanupOlderThan removes snapshots older than the given age and reports how
// many files were deleted.
func (s *PlanStore) CleanupOlderThan(maxAge time.Duration) (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("failed to glob snapshots: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(match); err != nil {
				return deleted, fmt.Errorf("failed to remove snapshot %s: %w", match, err)
			}
			deleted++
		}
	}
	return deleted, nil
}
