package planner

import (
	"ai-trip-planner/internal/travel"
)

// CandidatePool indexes curated activities by normalized name, partitioned
// into restaurants and everything else. It is built once per planning run and
// read-only afterwards.
type CandidatePool struct {
	byName      map[string]travel.Activity
	restaurants []travel.Activity
	others      []travel.Activity
}

// NewCandidatePool builds a pool from curated activities, dropping duplicate
// normalized names (first occurrence wins).
func NewCandidatePool(activities []travel.Activity) *CandidatePool {
	pool := &CandidatePool{byName: make(map[string]travel.Activity)}
	for _, act := range activities {
		key := travel.NormalizeName(act.Name)
		if key == "" {
			continue
		}
		if _, exists := pool.byName[key]; exists {
			continue
		}
		pool.byName[key] = act
		if act.Category == travel.CategoryRestaurant {
			pool.restaurants = append(pool.restaurants, act)
		} else {
			pool.others = append(pool.others, act)
		}
	}
	return pool
}

// Size returns the number of distinct activities in the pool.
func (p *CandidatePool) Size() int {
	return len(p.byName)
}

// Lookup finds an activity by its normalized name.
func (p *CandidatePool) Lookup(normalized string) (travel.Activity, bool) {
	act, ok := p.byName[normalized]
	return act, ok
}

// Restaurants returns the restaurant partition in insertion order.
func (p *CandidatePool) Restaurants() []travel.Activity {
	return p.restaurants
}

// Others returns the non-restaurant partition in insertion order.
func (p *CandidatePool) Others() []travel.Activity {
	return p.others
}

// All returns every activity, restaurants first.
func (p *CandidatePool) All() []travel.Activity {
	all := make([]travel.Activity, 0, len(p.restaurants)+len(p.others))
	all = append(all, p.restaurants...)
	all = append(all, p.others...)
	return all
}

// planningContext carries the exclusion state for one planning run. It is
// created per run and passed by pointer into each day's planning step, never
// stored on the Planner.
type planningContext struct {
	usedActivityNames   map[string]bool
	usedRestaurantNames map[string]bool
	restaurantUses      map[string]int
}

func newPlanningContext() *planningContext {
	return &planningContext{
		usedActivityNames:   make(map[string]bool),
		usedRestaurantNames: make(map[string]bool),
		restaurantUses:      make(map[string]int),
	}
}

// noteDay records every activity of a completed day into the exclusion sets,
// partitioned by category.
func (pc *planningContext) noteDay(day travel.ItineraryDay) {
	for _, block := range day.Blocks {
		for _, act := range block.Activities {
			key := travel.NormalizeName(act.Name)
			if key == "" {
				continue
			}
			if act.Category == travel.CategoryRestaurant {
				pc.usedRestaurantNames[key] = true
				pc.restaurantUses[key]++
			} else {
				pc.usedActivityNames[key] = true
			}
		}
	}
}
