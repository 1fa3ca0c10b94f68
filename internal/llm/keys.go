package llm

import (
	"fmt"
	"strings"
	"sync"
)

// KeyManager hands out API keys round-robin so a rate-limited key can be
// swapped for the next one without aborting the request. Safe for
// concurrent use.
type KeyManager struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

// NewKeyManager creates a KeyManager from the given keys, dropping blanks
// and duplicates while preserving order.
func NewKeyManager(keys []string) (*KeyManager, error) {
	seen := make(map[string]struct{})
	var distinct []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		distinct = append(distinct, k)
	}

	if len(distinct) == 0 {
		return nil, fmt.Errorf("no api keys provided")
	}

	return &KeyManager{keys: distinct}, nil
}

// Current returns the key in use.
func (m *KeyManager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[m.idx]
}

// Rotate advances to the next key and returns it, wrapping around at the end.
func (m *KeyManager) Rotate() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idx = (m.idx + 1) % len(m.keys)
	return m.keys[m.idx]
}

// Count returns the number of distinct keys.
func (m *KeyManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys)
}
