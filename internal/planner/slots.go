package planner

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"ai-trip-planner/internal/travel"
)

// rawDayPlan mirrors the JSON object the generative pass is asked to return
// for one day. Missing lists are simply empty.
type rawDayPlan struct {
	Morning   []rawPlanEntry `json:"morning"`
	Afternoon []rawPlanEntry `json:"afternoon"`
	Evening   []rawPlanEntry `json:"evening"`
}

type rawPlanEntry struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	EstimatedTime string `json:"estimatedTime"`
}

// assignDay turns a raw slot plan into a validated ItineraryDay. It maps
// names back to pool records, enforces the lunch/dinner restaurant invariant,
// deduplicates within the day and backfills thin blocks so the day is never
// structurally empty.
func assignDay(raw rawDayPlan, pool *CandidatePool, pctx *planningContext, date, city string) travel.ItineraryDay {
	morning := resolveEntries(raw.Morning, pool, true)
	afternoon := resolveEntries(raw.Afternoon, pool, false)
	evening := resolveEntries(raw.Evening, pool, false)

	describeAll(morning)
	describeAll(afternoon)
	describeAll(evening)

	// Lunch and dinner. The evening pick prefers a different venue than the
	// afternoon one; with a single-restaurant pool it may be the same.
	dayNames := collectNames(morning, afternoon, evening)
	if !hasRestaurant(afternoon) {
		if r, ok := pickRestaurant(pool, pctx, dayNames, ""); ok {
			r.Description = describeActivity(r)
			afternoon = append(afternoon, r)
			dayNames[travel.NormalizeName(r.Name)] = true
		}
	}
	if !hasRestaurant(evening) {
		avoid := restaurantName(afternoon)
		if r, ok := pickRestaurant(pool, pctx, dayNames, avoid); ok {
			r.Description = describeActivity(r)
			evening = append(evening, r)
		}
	}

	morning, afternoon, evening = dedupeDay(pctx, morning, afternoon, evening)

	// Completeness backfill. Fillers carry their own descriptions and must
	// not repeat a name from this or any earlier day.
	taken := collectNames(morning, afternoon, evening)
	for name := range pctx.usedActivityNames {
		taken[name] = true
	}
	if len(morning) < 2 {
		if f, ok := backfillFiller(city, date, taken); ok {
			taken[travel.NormalizeName(f.Name)] = true
			morning = append(morning, f)
		}
	}
	if !hasNonRestaurant(afternoon) {
		if f, ok := backfillFiller(city, date, taken); ok {
			taken[travel.NormalizeName(f.Name)] = true
			afternoon = append(afternoon, f)
		}
	}

	day := travel.ItineraryDay{Date: date, City: city}
	for _, b := range []struct {
		time       travel.BlockTime
		activities []travel.Activity
	}{
		{travel.BlockMorning, morning},
		{travel.BlockAfternoon, afternoon},
		{travel.BlockEvening, evening},
	} {
		if len(b.activities) == 0 {
			continue
		}
		day.Blocks = append(day.Blocks, travel.ItineraryBlock{Time: b.time, Activities: b.activities})
	}

	// Last-resort guard: a day must never leave here without a block.
	if len(day.Blocks) == 0 {
		var leftovers []travel.Activity
		for _, act := range pool.Others() {
			if len(leftovers) == 3 {
				break
			}
			if pctx.usedActivityNames[travel.NormalizeName(act.Name)] {
				continue
			}
			act.Description = describeActivity(act)
			leftovers = append(leftovers, act)
		}
		if len(leftovers) > 0 {
			day.Blocks = append(day.Blocks, travel.ItineraryBlock{Time: travel.BlockMorning, Activities: leftovers})
		}
	}

	return day
}

// resolveEntries maps raw entries through the matcher. Morning rejects
// restaurants entirely; other slots keep at most one.
func resolveEntries(entries []rawPlanEntry, pool *CandidatePool, morning bool) []travel.Activity {
	var out []travel.Activity
	seenRestaurant := false
	for _, entry := range entries {
		category := travel.ParseCategory(entry.Category)
		act, ok := resolveActivity(entry.Name, category, pool)
		if !ok {
			continue
		}
		if act.Category == travel.CategoryRestaurant {
			if morning || seenRestaurant {
				continue
			}
			seenRestaurant = true
		}
		if entry.EstimatedTime != "" {
			act.EstimatedTime = entry.EstimatedTime
		}
		out = append(out, act)
	}
	return out
}

// dedupeDay removes repeats of a normalized name across the day's blocks,
// seeded with the names used by earlier days so a generative reply that
// ignores the candidate list cannot reintroduce them. Restaurants are
// deduplicated within a block only, so the dinner slot can legitimately
// reuse the lunch venue when the pool offers exactly one restaurant.
func dedupeDay(pctx *planningContext, morning, afternoon, evening []travel.Activity) ([]travel.Activity, []travel.Activity, []travel.Activity) {
	seen := make(map[string]bool)
	for name := range pctx.usedActivityNames {
		seen[name] = true
	}
	dedupe := func(activities []travel.Activity) []travel.Activity {
		var out []travel.Activity
		blockSeen := make(map[string]bool)
		for _, act := range activities {
			key := travel.NormalizeName(act.Name)
			if act.Category == travel.CategoryRestaurant {
				if blockSeen[key] {
					continue
				}
			} else if seen[key] {
				continue
			}
			seen[key] = true
			blockSeen[key] = true
			out = append(out, act)
		}
		return out
	}
	return dedupe(morning), dedupe(afternoon), dedupe(evening)
}

func pickRestaurant(pool *CandidatePool, pctx *planningContext, dayNames map[string]bool, avoid string) (travel.Activity, bool) {
	avoidKey := travel.NormalizeName(avoid)
	for pass := 0; pass < 2; pass++ {
		for _, r := range pool.Restaurants() {
			key := travel.NormalizeName(r.Name)
			if key == avoidKey || dayNames[key] {
				continue
			}
			if pass == 0 && pctx.usedRestaurantNames[key] {
				continue
			}
			return r, true
		}
	}
	// Single-restaurant pool: reuse is better than an empty meal slot.
	if len(pool.Restaurants()) > 0 {
		return pool.Restaurants()[0], true
	}
	return travel.Activity{}, false
}

func hasRestaurant(activities []travel.Activity) bool {
	for _, act := range activities {
		if act.Category == travel.CategoryRestaurant {
			return true
		}
	}
	return false
}

func hasNonRestaurant(activities []travel.Activity) bool {
	for _, act := range activities {
		if act.Category != travel.CategoryRestaurant {
			return true
		}
	}
	return false
}

func restaurantName(activities []travel.Activity) string {
	for _, act := range activities {
		if act.Category == travel.CategoryRestaurant {
			return act.Name
		}
	}
	return ""
}

func collectNames(blocks ...[]travel.Activity) map[string]bool {
	names := make(map[string]bool)
	for _, block := range blocks {
		for _, act := range block {
			names[travel.NormalizeName(act.Name)] = true
		}
	}
	return names
}

var cuisineKeywords = []string{
	"andhra", "south indian", "north indian", "hyderabadi", "bengali",
	"chinese", "italian", "continental", "mughlai", "seafood",
	"vegetarian", "biryani", "street food",
}

func describeAll(activities []travel.Activity) {
	for i := range activities {
		activities[i].Description = describeActivity(activities[i])
	}
}

// describeActivity produces a deterministic, action-oriented description from
// the activity's category, name and original description text.
func describeActivity(act travel.Activity) string {
	name := strings.ToLower(act.Name)

	if act.Category == travel.CategoryRestaurant {
		original := strings.ToLower(act.Description)
		for _, cuisine := range cuisineKeywords {
			if strings.Contains(original, cuisine) {
				return fmt.Sprintf("%s restaurant known for authentic flavors.", capitalize(cuisine))
			}
		}
		return fmt.Sprintf("Enjoy a meal at %s, a local favorite.", act.Name)
	}

	switch {
	case containsAny(name, "temple", "church", "mosque", "shrine", "cathedral", "monastery"):
		return fmt.Sprintf("Pay a visit to %s and take in its spiritual atmosphere.", act.Name)
	case containsAny(name, "beach", "island", "lake", "riverfront"):
		return fmt.Sprintf("Unwind at %s with a slow walk along the water.", act.Name)
	case containsAny(name, "museum", "gallery", "planetarium"):
		return fmt.Sprintf("Walk through %s and learn about the region's history and culture.", act.Name)
	case containsAny(name, "market", "bazaar", "bazar"):
		return fmt.Sprintf("Browse the stalls at %s for local crafts and snacks.", act.Name)
	case containsAny(name, "park", "garden", "zoo"):
		return fmt.Sprintf("Take a relaxed stroll through %s.", act.Name)
	case containsAny(name, "fort", "palace", "caves"):
		return fmt.Sprintf("Explore %s and its viewpoints at your own pace.", act.Name)
	default:
		return fmt.Sprintf("Visit %s and explore the area.", act.Name)
	}
}

// fillerActivity synthesizes a deterministic generic activity for thin
// blocks, keyed on simple city-name heuristics. A taken name falls back to a
// leisure variant so backfill never collides with real picks.
func fillerActivity(city string, dayNames map[string]bool) travel.Activity {
	lower := strings.ToLower(city)

	var name, desc string
	switch {
	case containsAny(lower, "beach", "coast", "island", "bay", "port", "puri", "goa"):
		name = "Beach Walk"
		desc = fmt.Sprintf("Take an easy walk along the shoreline near %s.", city)
	case containsAny(lower, "hill", "mount", "valley", "peak", "ooty", "munnar", "shimla"):
		name = "Viewpoint Visit"
		desc = fmt.Sprintf("Head to a nearby viewpoint for panoramic views of %s.", city)
	default:
		name = fmt.Sprintf("Explore %s", city)
		desc = fmt.Sprintf("Wander through the streets of %s and soak up the local atmosphere.", city)
	}
	if dayNames[travel.NormalizeName(name)] {
		name = fmt.Sprintf("Leisure Time in %s", city)
		desc = fmt.Sprintf("Take some unhurried time to enjoy %s at your own pace.", city)
	}

	return travel.Activity{
		ID:            uuid.NewString(),
		Name:          name,
		Category:      travel.CategoryExperience,
		EstimatedTime: travel.DefaultEstimatedTime,
		Description:   desc,
	}
}

// backfillFiller picks a filler whose name is unused in this run. When even
// the leisure variant is taken, the name is date-stamped; if that too is
// taken, no filler is injected.
func backfillFiller(city, date string, taken map[string]bool) (travel.Activity, bool) {
	f := fillerActivity(city, taken)
	if !taken[travel.NormalizeName(f.Name)] {
		return f, true
	}
	f.Name = fmt.Sprintf("%s (%s)", f.Name, date)
	if taken[travel.NormalizeName(f.Name)] {
		return travel.Activity{}, false
	}
	return f, true
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
