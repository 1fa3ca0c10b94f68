package planner

import (
	"context"
	"fmt"
	"log"
	"time"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/travel"
)

const (
	defaultMaxDays  = 7
	defaultDayPause = 2 * time.Second
)

// MetricsRecorder receives per-agent execution metadata.
type MetricsRecorder interface {
	RecordMeta(meta shared.AgentMeta) error
}

// PlanRequest carries the trip parameters of one planning run.
type PlanRequest struct {
	Destination string
	DepartDate  string
	ReturnDate  string
	TripLength  int
}

// ItineraryResult is the aggregate outcome of one planning run. It is always
// structurally valid; failures surface as reasoning text, never as errors.
type ItineraryResult struct {
	Itinerary travel.Itinerary
	Reasoning string
}

// DayHandler receives each completed day together with all days so far. The
// slice is a copy; handlers may keep it.
type DayHandler func(day travel.ItineraryDay, daysSoFar []travel.ItineraryDay)

// Planner builds day-by-day itineraries from curated candidate pools.
type Planner struct {
	textGen llm.TextGenerator
	metrics MetricsRecorder

	maxDays int

	// DayPause is the cooperative delay between consecutive day plans,
	// throttling calls to the generative backend.
	DayPause time.Duration
}

// NewPlanner creates a new Planner instance. metrics may be nil.
func NewPlanner(textGen llm.TextGenerator, metrics MetricsRecorder, maxDays int) *Planner {
	if maxDays <= 0 {
		maxDays = defaultMaxDays
	}
	return &Planner{
		textGen:  textGen,
		metrics:  metrics,
		maxDays:  maxDays,
		DayPause: defaultDayPause,
	}
}

// BuildItinerary runs one full planning pass: resolve dates, curate the
// pool, then plan each day in order, streaming completed days to onDay.
// Failing days are skipped; failures outside the per-day boundary degrade to
// an empty itinerary with a reasoning string. The caller always gets a
// structurally valid result.
func (p *Planner) BuildItinerary(ctx context.Context, req PlanRequest, rawActivities []travel.Activity, onDay DayHandler) (result ItineraryResult) {
	result.Itinerary.Days = []travel.ItineraryDay{}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: itinerary planning failed: %v", r)
			result = ItineraryResult{
				Itinerary: travel.Itinerary{Days: []travel.ItineraryDay{}},
				Reasoning: fmt.Sprintf("itinerary planning failed: %v", r),
			}
		}
	}()

	dates := ResolveTripDates(req.DepartDate, req.ReturnDate, req.TripLength, p.maxDays)
	if len(dates) == 0 {
		result.Reasoning = "no travel dates could be resolved for this trip"
		return result
	}

	pool := p.CuratePool(ctx, rawActivities, req.Destination)
	if pool.Size() == 0 {
		result.Reasoning = fmt.Sprintf("no usable activity candidates were found for %s", req.Destination)
		return result
	}

	pctx := newPlanningContext()
	days := []travel.ItineraryDay{}
	for i, date := range dates {
		day, err := p.planDay(ctx, date, req.Destination, pool, pctx)
		if err != nil {
			log.Printf("Warning: skipping day %s: %v", date, err)
			continue
		}

		pctx.noteDay(day)
		days = append(days, day)
		p.emitDay(onDay, day, days)

		if i < len(dates)-1 {
			p.pause(ctx)
		}
	}

	result.Itinerary.Days = days
	if len(days) < len(dates) {
		result.Reasoning = fmt.Sprintf("planned %d of %d requested days", len(days), len(dates))
	}
	return result
}

// emitDay hands a completed day to the subscriber. Subscriber panics are
// contained here and never reach the planning loop.
func (p *Planner) emitDay(onDay DayHandler, day travel.ItineraryDay, days []travel.ItineraryDay) {
	if onDay == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: day subscriber panicked: %v", r)
		}
	}()
	snapshot := make([]travel.ItineraryDay, len(days))
	copy(snapshot, days)
	onDay(day, snapshot)
}

func (p *Planner) pause(ctx context.Context) {
	if p.DayPause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.DayPause):
	}
}

func (p *Planner) recordMeta(meta shared.AgentMeta) {
	if p.metrics == nil {
		return
	}
	if err := p.metrics.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record agent metrics: %v", err)
	}
}
