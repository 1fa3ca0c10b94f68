package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"text/template"
	"time"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/travel"
)

//go:embed day_prompt.md
var dayPrompt string

const (
	promptRestaurantCap = 10
	promptOtherCap      = 25
	minViableSubset     = 6
	reliefValveSize     = 2
	restaurantRepeatCap = 3
	fallbackDaySize     = 5
	fallbackDescLimit   = 120
)

type promptCandidate struct {
	Name     string
	Category travel.Category
}

type dayPromptData struct {
	Date       string
	City       string
	Candidates []promptCandidate
}

// planDay produces one ItineraryDay. It never returns an error for upstream
// failures (those degrade to a fallback day or an empty raw plan); the error
// return exists for the per-day skip boundary, fed by the recover guard.
func (p *Planner) planDay(ctx context.Context, date, city string, pool *CandidatePool, pctx *planningContext) (day travel.ItineraryDay, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("day planning panicked: %v", r)
		}
	}()

	restaurants, others := p.daySubset(pool, pctx)

	raw, genErr := p.generateDayPlan(ctx, date, city, restaurants, others)
	if genErr != nil {
		log.Printf("Warning: generative planning failed for %s, using fallback day: %v", date, genErr)
		return p.fallbackDay(date, city, pool, pctx), nil
	}

	return assignDay(raw, pool, pctx, date, city), nil
}

// daySubset computes the per-day candidate slice: non-restaurants already
// used in earlier days are excluded strictly; used restaurants come back only
// through the relief valve, at most 2 per day and never after 3 appearances.
// A subset too small to make a sensible day falls back to the full pool.
func (p *Planner) daySubset(pool *CandidatePool, pctx *planningContext) ([]travel.Activity, []travel.Activity) {
	var others []travel.Activity
	for _, act := range pool.Others() {
		if pctx.usedActivityNames[travel.NormalizeName(act.Name)] {
			continue
		}
		others = append(others, act)
	}

	var restaurants []travel.Activity
	for _, act := range pool.Restaurants() {
		if pctx.usedRestaurantNames[travel.NormalizeName(act.Name)] {
			continue
		}
		restaurants = append(restaurants, act)
	}
	if len(restaurants) < 2 {
		readmitted := 0
		for _, act := range pool.Restaurants() {
			if readmitted == reliefValveSize {
				break
			}
			key := travel.NormalizeName(act.Name)
			if !pctx.usedRestaurantNames[key] || pctx.restaurantUses[key] >= restaurantRepeatCap {
				continue
			}
			restaurants = append(restaurants, act)
			readmitted++
		}
	}

	if len(restaurants)+len(others) < minViableSubset {
		return pool.Restaurants(), pool.Others()
	}
	return restaurants, others
}

// generateDayPlan calls the generative backend and defensively parses its
// reply. A failed call is an error; an unparseable reply is an empty raw plan
// that the slot assigner backfills.
func (p *Planner) generateDayPlan(ctx context.Context, date, city string, restaurants, others []travel.Activity) (rawDayPlan, error) {
	prompt, err := buildDayPrompt(date, city, restaurants, others)
	if err != nil {
		return rawDayPlan{}, fmt.Errorf("failed to build day prompt: %w", err)
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return rawDayPlan{}, fmt.Errorf("failed to generate day plan: %w", err)
	}
	p.recordMeta(shared.NewAgentMeta("day_planner", resp.Usage, start))

	span, ok := llm.ExtractJSONObject(resp.Content)
	if !ok {
		log.Printf("Warning: day plan response for %s has no JSON object, backfilling", date)
		return rawDayPlan{}, nil
	}

	var raw rawDayPlan
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		log.Printf("Warning: day plan response for %s is malformed, backfilling: %v", date, err)
		return rawDayPlan{}, nil
	}
	return raw, nil
}

// buildDayPrompt renders the day prompt: restaurants first, both partitions
// capped, names and categories only. Descriptions stay out of the prompt so
// the model cannot echo noisy source text.
func buildDayPrompt(date, city string, restaurants, others []travel.Activity) (string, error) {
	candidates := make([]promptCandidate, 0, promptRestaurantCap+promptOtherCap)
	for i, act := range restaurants {
		if i == promptRestaurantCap {
			break
		}
		candidates = append(candidates, promptCandidate{Name: act.Name, Category: act.Category})
	}
	for i, act := range others {
		if i == promptOtherCap {
			break
		}
		candidates = append(candidates, promptCandidate{Name: act.Name, Category: act.Category})
	}

	tmpl, err := template.New("day").Parse(dayPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, dayPromptData{Date: date, City: city, Candidates: candidates}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackDay builds a deterministic day when the generative backend is
// unavailable: up to 5 unused non-restaurant activities with truncated
// descriptions in a single Morning block. With nothing left it degrades to a
// restaurant lunch slot, then to a dated leisure filler, so repeated fallback
// days never duplicate attractions across the run.
func (p *Planner) fallbackDay(date, city string, pool *CandidatePool, pctx *planningContext) travel.ItineraryDay {
	var leftovers []travel.Activity
	for _, act := range pool.Others() {
		if len(leftovers) == fallbackDaySize {
			break
		}
		if pctx.usedActivityNames[travel.NormalizeName(act.Name)] {
			continue
		}
		act.Description = truncateDescription(act.Description)
		leftovers = append(leftovers, act)
	}

	day := travel.ItineraryDay{Date: date, City: city}
	if len(leftovers) > 0 {
		day.Blocks = append(day.Blocks, travel.ItineraryBlock{Time: travel.BlockMorning, Activities: leftovers})
		return day
	}

	if r, ok := pickRestaurant(pool, pctx, map[string]bool{}, ""); ok {
		r.Description = describeActivity(r)
		day.Blocks = append(day.Blocks, travel.ItineraryBlock{Time: travel.BlockAfternoon, Activities: []travel.Activity{r}})
		return day
	}

	leisure := fillerActivity(city, nil)
	leisure.Name = fmt.Sprintf("%s (%s)", leisure.Name, date)
	day.Blocks = append(day.Blocks, travel.ItineraryBlock{Time: travel.BlockMorning, Activities: []travel.Activity{leisure}})
	return day
}

func truncateDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) <= fallbackDescLimit {
		return desc
	}
	return string(runes[:fallbackDescLimit]) + "..."
}
