package planner

import (
	"strings"

	"github.com/google/uuid"

	"ai-trip-planner/internal/travel"
)

// resolveActivity maps a name emitted by the generative pass back to a
// canonical pool record: exact match first, then a same-category substring
// match, then a synthesized activity. Synthesized names that still look like
// article titles are rejected outright.
func resolveActivity(name string, category travel.Category, pool *CandidatePool) (travel.Activity, bool) {
	cleaned := CleanActivityName(name)
	normalized := travel.NormalizeName(cleaned)
	if normalized == "" {
		return travel.Activity{}, false
	}

	if act, ok := pool.Lookup(normalized); ok {
		return act, true
	}

	for _, act := range pool.All() {
		if act.Category != category {
			continue
		}
		poolName := travel.NormalizeName(act.Name)
		if strings.Contains(poolName, normalized) || strings.Contains(normalized, poolName) {
			return act, true
		}
	}

	if looksLikeArticleTitle(cleaned) {
		return travel.Activity{}, false
	}
	return travel.Activity{
		ID:            uuid.NewString(),
		Name:          cleaned,
		Category:      category,
		EstimatedTime: travel.DefaultEstimatedTime,
	}, true
}
