package planner

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Travel sites and aggregators whose names leak into search-result titles.
var siteMarkers = []string{
	"tripadvisor",
	"holidify",
	"wanderlog",
	"thrillophilia",
	"makemytrip",
	"tripoto",
	"viator",
	"getyourguide",
	"lonely planet",
	"times of india",
	"quora",
	"reddit",
	"yelp",
	"zomato",
	"swiggy",
	"expedia",
	"booking.com",
}

const minUsableNameLen = 3

var (
	trailingPipeRe    = regexp.MustCompile(`\s*\|.*$`)
	siteSuffixRe      = regexp.MustCompile(`(?i)\s*[-–|]\s*(?:` + siteMarkerAlternation() + `)\s*$`)
	sitePrefixRe      = regexp.MustCompile(`(?i)^\s*(?:` + siteMarkerAlternation() + `)\s*[-–|]\s*`)
	leadingTopRe      = regexp.MustCompile(`(?i)^(?:the\s+)?top\s+\d+\s+`)
	leadingListicleRe = regexp.MustCompile(`(?i)^\d+\s+(?:of\s+the\s+)?(?:best|top|great|greatest|amazing|stunning|beautiful|famous|popular|incredible|unmissable|must[\s-]?(?:see|visit|do))\s+`)
	leadingVerbRe     = regexp.MustCompile(`(?i)^(?:visit|explore|discover|experience|enjoy|see|check\s+out)\s+`)
	bracketedRe       = regexp.MustCompile(`\s*\([^)]*\)|\s*\[[^\]]*\]`)
	trailingNoiseRe   = regexp.MustCompile(`(?i)[\s\-–:,]+(?:travel\s+guide|guide|reviews?|blog|article|(?:19|20)\d{2})\s*$`)
)

var colonSuffixKeywords = []string{"what", "where", "how", "why", "guide", "review", "itinerary", "everything you"}

func siteMarkerAlternation() string {
	quoted := make([]string, len(siteMarkers))
	for i, m := range siteMarkers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return strings.Join(quoted, "|")
}

// CleanActivityName strips SEO and listicle noise from a raw search-result
// name. It never returns an empty string: when stripping would leave fewer
// than 3 characters, the original trimmed input is returned instead.
func CleanActivityName(raw string) string {
	original := strings.TrimSpace(raw)
	name := original

	// Rules are applied to a fixed point so cleaning its own output is a
	// no-op. Each pass only deletes, so this terminates.
	for {
		next := stripNameNoise(name)
		if next == name {
			break
		}
		name = next
	}

	if utf8.RuneCountInString(name) < minUsableNameLen {
		return original
	}
	return name
}

func stripNameNoise(name string) string {
	name = siteSuffixRe.ReplaceAllString(name, "")
	name = sitePrefixRe.ReplaceAllString(name, "")
	name = trailingPipeRe.ReplaceAllString(name, "")
	name = leadingTopRe.ReplaceAllString(name, "")
	name = leadingListicleRe.ReplaceAllString(name, "")
	name = bracketedRe.ReplaceAllString(name, "")
	name = stripColonSuffix(name)
	name = leadingVerbRe.ReplaceAllString(name, "")
	name = trailingNoiseRe.ReplaceAllString(name, "")
	name = strings.Join(strings.Fields(name), " ")
	return strings.Trim(name, " -–|:,.")
}

// stripColonSuffix drops "Name: how to spend a day" style qualifiers while
// leaving ordinary colons alone.
func stripColonSuffix(name string) string {
	idx := strings.Index(name, ":")
	if idx <= 0 {
		return name
	}
	suffix := strings.ToLower(name[idx+1:])
	for _, kw := range colonSuffixKeywords {
		if strings.Contains(suffix, kw) {
			return name[:idx]
		}
	}
	return name
}
