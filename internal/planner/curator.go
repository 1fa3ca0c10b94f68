package planner

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"ai-trip-planner/internal/travel"
)

var articleNumberRe = regexp.MustCompile(`(?i)^\d+\s+(?:best|top|great|amazing|famous|popular|things|places|reasons|tips)\b`)

// Phrases that mark a name as a listicle or article title rather than a
// place. Checked after cleaning, as a hard reject.
var articlePhrases = []string{
	"things to do",
	"places to visit",
	"places to see",
	"tourist places",
	"what to do",
	"where to",
	"how to",
	"guide to",
	"travel guide",
	"best places",
	"top attractions",
}

// looksLikeArticleTitle reports whether a cleaned name still reads like a
// search-result headline instead of a point of interest.
func looksLikeArticleTitle(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range siteMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	if articleNumberRe.MatchString(name) || leadingTopRe.MatchString(name) {
		return true
	}
	for _, phrase := range articlePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// CuratePool cleans and filters raw search results into the candidate pool
// for one planning run. Restaurants are exempt from the destination relevance
// check; nothing is exempt from the article-title reject.
func (p *Planner) CuratePool(ctx context.Context, raw []travel.Activity, destination string) *CandidatePool {
	dest := strings.ToLower(strings.TrimSpace(destination))

	var kept []travel.Activity
	for _, act := range raw {
		cleaned := CleanActivityName(act.Name)
		if looksLikeArticleTitle(cleaned) {
			continue
		}
		if utf8.RuneCountInString(cleaned) < minUsableNameLen {
			continue
		}
		if act.Category != travel.CategoryRestaurant {
			haystack := strings.ToLower(cleaned + " " + act.Description)
			if !strings.Contains(haystack, dest) {
				continue
			}
		}
		act.Name = cleaned
		kept = append(kept, act)
	}

	if len(kept) > 0 {
		names := make([]string, len(kept))
		for i := range kept {
			names[i] = kept[i].Name
		}
		refined := p.refineNames(ctx, names)
		for i := range kept {
			kept[i].Name = refined[i]
		}
	}

	return NewCandidatePool(kept)
}
