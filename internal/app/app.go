package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/planner"
	"ai-trip-planner/internal/search"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/storage"
	"ai-trip-planner/internal/stream"
	"ai-trip-planner/internal/travel"
)

// planSources names the upstream providers reflected in plan metadata.
var planSources = []string{"SerpAPI", "Tavily"}

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	textGen      llm.TextGenerator
	poiFinder    search.POIFinder
	flightFinder search.FlightFinder
	hotelFinder  search.HotelFinder
	metricsStore planner.MetricsRecorder
	planStore    *storage.PlanStore
	tripPlanner  *planner.Planner
	planRepo     *planner.PlanRepository
}

// NewApp creates and initializes a new App instance. Finders and stores may
// be nil; a missing collaborator degrades to a note on the plan instead of
// an error.
func NewApp(
	cfg *config.Config,
	textGen llm.TextGenerator,
	poiFinder search.POIFinder,
	flightFinder search.FlightFinder,
	hotelFinder search.HotelFinder,
	metricsStore planner.MetricsRecorder,
	planStore *storage.PlanStore,
	tripPlanner *planner.Planner,
	planRepo *planner.PlanRepository,
) *App {
	return &App{
		cfg:          cfg,
		textGen:      textGen,
		poiFinder:    poiFinder,
		flightFinder: flightFinder,
		hotelFinder:  hotelFinder,
		metricsStore: metricsStore,
		planStore:    planStore,
		tripPlanner:  tripPlanner,
		planRepo:     planRepo,
	}
}

// ProcessMessage runs one full planning pass for a user message, publishing
// progress through emit. The returned ChatPlan is always structurally valid;
// failures surface in Notes and Errors rather than as errors. The event
// stream always terminates with DONE.
func (a *App) ProcessMessage(ctx context.Context, runID, message string, emit func(stream.Event)) (plan travel.ChatPlan) {
	if emit == nil {
		emit = func(stream.Event) {}
	}
	if runID == "" {
		runID = uuid.NewString()
	}

	plan = emptyPlan(message)
	var notes []string

	progress := startProgress(emit)
	defer progress.Stop()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: planning run %s panicked: %v", runID, r)
			plan = emptyPlan(message)
			plan.Notes = fmt.Sprintf("planning failed: %v", r)
			plan.Meta = planMeta()
			emit(stream.Event{Type: stream.EventError, Data: stream.ErrorPayload{
				Message: "Something went wrong while planning this trip. Please try again.",
			}})
			emit(stream.Event{Type: stream.EventDone, Final: true})
		}
	}()

	emit(stream.Event{Type: stream.EventTextChunk, Data: stream.TextPayload{
		Text: "Got it! Let me put a trip plan together.",
	}})

	progress.SetPhase("Reading your request")
	intent := a.extractIntent(ctx, message)
	if intent.Destination == "" {
		const clarify = "I couldn't work out the destination. Where would you like to go?"
		plan.Notes = clarify
		plan.Meta = planMeta()
		progress.Stop()
		emit(stream.Event{Type: stream.EventError, Data: stream.ErrorPayload{Message: clarify}})
		emit(stream.Event{Type: stream.EventDone, Final: true})
		return plan
	}

	if intent.Wants(travel.ComponentFlights) {
		progress.SetPhase("Searching flights")
		a.searchFlights(ctx, intent, &plan, &notes, emit)
	}
	if intent.Wants(travel.ComponentHotels) {
		progress.SetPhase("Searching hotels")
		a.searchHotels(ctx, intent, &plan, &notes, emit)
	}

	progress.SetPhase("Building the day-by-day itinerary for " + intent.Destination)
	a.buildItinerary(ctx, intent, &plan, &notes, emit)

	progress.Stop()
	plan.Summary = a.summarize(ctx, intent, plan)
	emit(stream.Event{Type: stream.EventSummary, Data: stream.TextPayload{Text: plan.Summary}, Final: true})

	plan.Notes = strings.Join(notes, " ")
	plan.Meta = planMeta()
	a.persist(ctx, runID, intent.Destination, &plan)

	emit(stream.Event{Type: stream.EventDone, Final: true})
	return plan
}

// BuildPlan runs the same pipeline without a consumer for progress events.
func (a *App) BuildPlan(ctx context.Context, runID, message string) travel.ChatPlan {
	return a.ProcessMessage(ctx, runID, message, nil)
}

func (a *App) searchFlights(ctx context.Context, intent travel.TripIntent, plan *travel.ChatPlan, notes *[]string, emit func(stream.Event)) {
	if a.flightFinder == nil {
		*notes = append(*notes, "Flight search is not configured, skipping flights.")
		return
	}

	options, err := a.flightFinder.SearchFlights(ctx, search.FlightQuery{
		Origin:      intent.Origin,
		Destination: intent.Destination,
		DepartDate:  intent.DepartDate,
		ReturnDate:  intent.ReturnDate,
		Adults:      adultCount(intent),
	})
	if err != nil {
		log.Printf("Warning: flight search failed: %v", err)
		*notes = append(*notes, "Flight search did not return results this time.")
		plan.Errors = append(plan.Errors, fmt.Sprintf("flight search: %v", err))
		return
	}

	plan.Flights = append(plan.Flights, options...)
	emit(stream.Event{Type: stream.EventFlights, Seq: 0, Data: plan.Flights})
}

func (a *App) searchHotels(ctx context.Context, intent travel.TripIntent, plan *travel.ChatPlan, notes *[]string, emit func(stream.Event)) {
	if a.hotelFinder == nil {
		*notes = append(*notes, "Hotel search is not configured, skipping hotels.")
		return
	}

	options, err := a.hotelFinder.SearchHotels(ctx, search.HotelQuery{
		Destination: intent.Destination,
		CheckIn:     intent.DepartDate,
		CheckOut:    checkOutDate(intent),
		Adults:      adultCount(intent),
	})
	if err != nil {
		log.Printf("Warning: hotel search failed: %v", err)
		*notes = append(*notes, "Hotel search did not return results this time.")
		plan.Errors = append(plan.Errors, fmt.Sprintf("hotel search: %v", err))
		return
	}

	plan.Hotels = append(plan.Hotels, options...)
	emit(stream.Event{Type: stream.EventHotels, Seq: 0, Data: plan.Hotels})
}

func (a *App) buildItinerary(ctx context.Context, intent travel.TripIntent, plan *travel.ChatPlan, notes *[]string, emit func(stream.Event)) {
	if a.tripPlanner == nil {
		*notes = append(*notes, "Itinerary planning is not configured.")
		return
	}

	var raw []travel.Activity
	if a.poiFinder == nil {
		*notes = append(*notes, "Activity search is not configured.")
	} else {
		found, err := a.poiFinder.FindActivities(ctx, intent.Destination)
		if err != nil {
			log.Printf("Warning: activity search failed for %s: %v", intent.Destination, err)
			*notes = append(*notes, "Activity search did not return results this time.")
			plan.Errors = append(plan.Errors, fmt.Sprintf("activity search: %v", err))
		} else {
			raw = found
		}
	}

	result := a.tripPlanner.BuildItinerary(ctx, planner.PlanRequest{
		Destination: intent.Destination,
		DepartDate:  intent.DepartDate,
		ReturnDate:  intent.ReturnDate,
		TripLength:  intent.TripLengthDays,
	}, raw, func(day travel.ItineraryDay, daysSoFar []travel.ItineraryDay) {
		emit(stream.Event{Type: stream.EventItinerary, Seq: len(daysSoFar) - 1, Data: daysSoFar})
	})

	plan.Itinerary = result.Itinerary
	if result.Reasoning != "" {
		*notes = append(*notes, result.Reasoning)
	}
}

// persist saves the snapshot and the per-run history row. Persistence never
// fails a run; problems are logged and the plan is still returned.
func (a *App) persist(ctx context.Context, runID, destination string, plan *travel.ChatPlan) {
	if a.planStore != nil {
		if err := a.planStore.RemoveStaleVersions(runID); err != nil {
			log.Printf("Warning: failed to prune stale snapshots for %s: %v", runID, err)
		}
		if err := a.planStore.Save(runID, plan.Meta.GeneratedAt, plan); err != nil {
			log.Printf("Warning: failed to save plan snapshot for %s: %v", runID, err)
		}
	}

	if a.planRepo != nil {
		data, err := json.Marshal(plan)
		if err != nil {
			log.Printf("Warning: failed to encode plan for history: %v", err)
			return
		}
		if err := a.planRepo.Save(ctx, runID, destination, data); err != nil {
			log.Printf("Warning: failed to record plan history for %s: %v", runID, err)
		}
	}
}

func (a *App) recordMeta(meta shared.AgentMeta) {
	if a.metricsStore == nil {
		return
	}
	if err := a.metricsStore.RecordMeta(meta); err != nil {
		log.Printf("Warning: failed to record %s metrics: %v", meta.AgentName, err)
	}
}

// emptyPlan is the structurally valid zero plan for a request.
func emptyPlan(message string) travel.ChatPlan {
	return travel.ChatPlan{
		Request:   message,
		Flights:   []travel.FlightOption{},
		Hotels:    []travel.HotelOption{},
		Itinerary: travel.Itinerary{Days: []travel.ItineraryDay{}},
	}
}

func planMeta() travel.PlanMeta {
	return travel.PlanMeta{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Sources:     append([]string{}, planSources...),
	}
}

func adultCount(intent travel.TripIntent) int {
	if intent.Travelers < 1 {
		return 1
	}
	return intent.Travelers
}

// checkOutDate derives the hotel check-out from the return date, or from the
// trip length when only that is known.
func checkOutDate(intent travel.TripIntent) string {
	if intent.ReturnDate != "" {
		return intent.ReturnDate
	}
	if intent.DepartDate == "" || intent.TripLengthDays <= 0 {
		return ""
	}
	d, err := time.Parse("2006-01-02", intent.DepartDate)
	if err != nil {
		return ""
	}
	return d.AddDate(0, 0, intent.TripLengthDays).Format("2006-01-02")
}
