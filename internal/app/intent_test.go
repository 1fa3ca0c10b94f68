package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-trip-planner/internal/travel"
)

var parseNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func TestParseIntent(t *testing.T) {
	t.Run("ISODates", func(t *testing.T) {
		intent := parseIntent("Plan a trip to Goa from Hyderabad, 2025-05-01 to 2025-05-06 for 2 people", parseNow)
		if intent.Destination != "Goa" {
			t.Errorf("Expected destination Goa, got %q", intent.Destination)
		}
		if intent.Origin != "Hyderabad" {
			t.Errorf("Expected origin Hyderabad, got %q", intent.Origin)
		}
		if intent.DepartDate != "2025-05-01" || intent.ReturnDate != "2025-05-06" {
			t.Errorf("Expected the ISO dates, got %q and %q", intent.DepartDate, intent.ReturnDate)
		}
		if intent.Travelers != 2 {
			t.Errorf("Expected 2 travelers, got %d", intent.Travelers)
		}
	})

	t.Run("MonthNameDates", func(t *testing.T) {
		intent := parseIntent("trip to Ooty from May 5 to May 10", parseNow)
		if intent.DepartDate != "2025-05-05" || intent.ReturnDate != "2025-05-10" {
			t.Errorf("Expected May dates, got %q and %q", intent.DepartDate, intent.ReturnDate)
		}
		if intent.Destination != "Ooty" {
			t.Errorf("Expected destination Ooty, got %q", intent.Destination)
		}
	})

	t.Run("DayOfMonthPhrasing", func(t *testing.T) {
		intent := parseIntent("visit Vizag on 5th of May", parseNow)
		if intent.DepartDate != "2025-05-05" {
			t.Errorf("Expected 2025-05-05, got %q", intent.DepartDate)
		}
		if intent.Destination != "Vizag" {
			t.Errorf("Expected destination Vizag, got %q", intent.Destination)
		}
	})

	t.Run("MonthTypo", func(t *testing.T) {
		intent := parseIntent("goa on 3rd febuary", parseNow)
		if intent.DepartDate != "2026-02-03" {
			t.Errorf("Expected the misspelled month resolved and rolled forward, got %q", intent.DepartDate)
		}
	})

	t.Run("PastDateRollsForward", func(t *testing.T) {
		intent := parseIntent("trip to Goa on January 5", parseNow)
		if intent.DepartDate != "2026-01-05" {
			t.Errorf("Expected next January, got %q", intent.DepartDate)
		}
	})

	t.Run("TripLength", func(t *testing.T) {
		intent := parseIntent("5 days in Manali", parseNow)
		if intent.TripLengthDays != 5 {
			t.Errorf("Expected 5 days, got %d", intent.TripLengthDays)
		}
		if intent.Destination != "Manali" {
			t.Errorf("Expected destination Manali, got %q", intent.Destination)
		}
	})

	t.Run("NightsCountAsLength", func(t *testing.T) {
		intent := parseIntent("3 nights in Puri", parseNow)
		if intent.TripLengthDays != 3 {
			t.Errorf("Expected 3 days, got %d", intent.TripLengthDays)
		}
	})

	t.Run("BudgetMention", func(t *testing.T) {
		intent := parseIntent("trip to Goa with a budget of ₹30,000", parseNow)
		if intent.Budget != "₹30,000" {
			t.Errorf("Expected the budget figure, got %q", intent.Budget)
		}
	})

	t.Run("NothingToExtract", func(t *testing.T) {
		intent := parseIntent("hello there", parseNow)
		if intent.Destination != "" || intent.DepartDate != "" || intent.TripLengthDays != 0 {
			t.Errorf("Expected an empty intent, got %+v", intent)
		}
	})
}

func TestPlaceAfter(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		keywords []string
		expected string
	}{
		{"SingleWord", "fly to Goa for a week", []string{"to"}, "Goa"},
		{"TwoWords", "fly to New Delhi from Pune", []string{"to"}, "New Delhi"},
		{"SkipsVerbKeyword", "I want to visit Ooty", []string{"to", "visit"}, "Ooty"},
		{"StopsAtComma", "trip to goa, 5 days", []string{"to"}, "goa"},
		{"StopsAtDigits", "travel to 5 star resorts", []string{"to"}, ""},
		{"StopsAtMonth", "travel in May", []string{"in"}, ""},
		{"Origin", "to Goa from Hyderabad on Friday", []string{"from"}, "Hyderabad"},
		{"NoKeyword", "just wandering around", []string{"to"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := placeAfter(tc.message, tc.keywords...); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestValidateIntent(t *testing.T) {
	t.Run("SwapsReversedDates", func(t *testing.T) {
		intent := travel.TripIntent{Destination: "Goa", DepartDate: "2025-06-10", ReturnDate: "2025-06-05"}
		validateIntent(&intent, parseNow)
		if intent.DepartDate != "2025-06-05" || intent.ReturnDate != "2025-06-10" {
			t.Errorf("Expected the dates swapped, got %q and %q", intent.DepartDate, intent.ReturnDate)
		}
	})

	t.Run("RollsStaleYearForward", func(t *testing.T) {
		intent := travel.TripIntent{DepartDate: "2023-05-01"}
		validateIntent(&intent, parseNow)
		if intent.DepartDate != "2025-05-01" {
			t.Errorf("Expected the stale year rolled forward, got %q", intent.DepartDate)
		}
	})

	t.Run("KeepsRecentPastDate", func(t *testing.T) {
		intent := travel.TripIntent{DepartDate: "2025-03-09"}
		validateIntent(&intent, parseNow)
		if intent.DepartDate != "2025-03-09" {
			t.Errorf("Expected yesterday kept, got %q", intent.DepartDate)
		}
	})

	t.Run("DropsMalformedDates", func(t *testing.T) {
		intent := travel.TripIntent{DepartDate: "next tuesday", ReturnDate: "sometime"}
		validateIntent(&intent, parseNow)
		if intent.DepartDate != "" || intent.ReturnDate != "" {
			t.Errorf("Expected malformed dates dropped, got %q and %q", intent.DepartDate, intent.ReturnDate)
		}
	})

	t.Run("CapsTripLength", func(t *testing.T) {
		intent := travel.TripIntent{TripLengthDays: 30}
		validateIntent(&intent, parseNow)
		if intent.TripLengthDays != maxTripLengthDays {
			t.Errorf("Expected the trip length capped at %d, got %d", maxTripLengthDays, intent.TripLengthDays)
		}
	})

	t.Run("ClampsNegatives", func(t *testing.T) {
		intent := travel.TripIntent{TripLengthDays: -3, Travelers: -2}
		validateIntent(&intent, parseNow)
		if intent.TripLengthDays != 0 || intent.Travelers != 0 {
			t.Errorf("Expected negatives clamped, got %d and %d", intent.TripLengthDays, intent.Travelers)
		}
	})

	t.Run("TrimsPlaces", func(t *testing.T) {
		intent := travel.TripIntent{Destination: " Goa. ", Origin: "Pune,"}
		validateIntent(&intent, parseNow)
		if intent.Destination != "Goa" || intent.Origin != "Pune" {
			t.Errorf("Expected trimmed places, got %q and %q", intent.Destination, intent.Origin)
		}
	})
}

func TestDetectComponents(t *testing.T) {
	t.Run("ItineraryAlwaysWithDestination", func(t *testing.T) {
		got := detectComponents("plan a trip", travel.TripIntent{Destination: "Goa"})
		if len(got) != 1 || got[0] != travel.ComponentItinerary {
			t.Errorf("Expected only the itinerary component, got %v", got)
		}
	})

	t.Run("FlightsOnMention", func(t *testing.T) {
		intent := travel.TripIntent{Destination: "Goa"}
		got := detectComponents("find flights to Goa", intent)
		if !hasComponent(got, travel.ComponentFlights) {
			t.Errorf("Expected the flights component, got %v", got)
		}
	})

	t.Run("FlightsOnOrigin", func(t *testing.T) {
		intent := travel.TripIntent{Destination: "Goa", Origin: "Pune"}
		got := detectComponents("trip to Goa from Pune", intent)
		if !hasComponent(got, travel.ComponentFlights) {
			t.Errorf("Expected the flights component, got %v", got)
		}
	})

	t.Run("HotelsOnMention", func(t *testing.T) {
		intent := travel.TripIntent{Destination: "Goa"}
		got := detectComponents("trip to Goa with hotels", intent)
		if !hasComponent(got, travel.ComponentHotels) {
			t.Errorf("Expected the hotels component, got %v", got)
		}
	})

	t.Run("WholeWordsOnly", func(t *testing.T) {
		intent := travel.TripIntent{Destination: "Goa"}
		got := detectComponents("see the butterfly park in Goa", intent)
		if hasComponent(got, travel.ComponentFlights) {
			t.Errorf("Expected no flights component for butterfly, got %v", got)
		}
	})

	t.Run("NoDestinationNoItinerary", func(t *testing.T) {
		got := detectComponents("book flights", travel.TripIntent{})
		if hasComponent(got, travel.ComponentItinerary) {
			t.Errorf("Expected no itinerary component, got %v", got)
		}
	})
}

func hasComponent(components []string, want string) bool {
	for _, c := range components {
		if c == want {
			return true
		}
	}
	return false
}

func TestExtractIntent(t *testing.T) {
	t.Run("UsesGenerativeReply", func(t *testing.T) {
		depart := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01-02")
		ret := time.Now().UTC().AddDate(0, 1, 4).Format("2006-01-02")
		gen := &mockTextGenerator{responses: []string{
			`{"destination": "Goa", "origin": "Hyderabad", "depart_date": "` + depart + `", "return_date": "` + ret + `", "trip_length_days": 0, "budget": "", "travelers": 2}`,
		}}
		metrics := &mockMetricsRecorder{}
		a := newTestApp(gen, metrics)

		intent := a.extractIntent(context.Background(), "plan my Goa trip")

		if intent.Destination != "Goa" || intent.Origin != "Hyderabad" {
			t.Errorf("Expected the generative places, got %+v", intent)
		}
		if intent.DepartDate != depart || intent.ReturnDate != ret {
			t.Errorf("Expected the generative dates, got %q and %q", intent.DepartDate, intent.ReturnDate)
		}
		if intent.Travelers != 2 {
			t.Errorf("Expected 2 travelers, got %d", intent.Travelers)
		}
		if len(metrics.metas) != 1 || metrics.metas[0].AgentName != "intent_extractor" {
			t.Errorf("Expected one intent_extractor metric, got %+v", metrics.metas)
		}
	})

	t.Run("FallsBackOnUnparseableReply", func(t *testing.T) {
		gen := &mockTextGenerator{responses: []string{"I think Goa would be lovely."}}
		a := newTestApp(gen, nil)

		intent := a.extractIntent(context.Background(), "plan a 3 day trip to Goa")

		if intent.Destination != "Goa" {
			t.Errorf("Expected the parsed destination, got %q", intent.Destination)
		}
		if intent.TripLengthDays != 3 {
			t.Errorf("Expected the parsed trip length, got %d", intent.TripLengthDays)
		}
	})

	t.Run("FallsBackOnCallError", func(t *testing.T) {
		gen := &mockTextGenerator{err: errors.New("backend unavailable")}
		a := newTestApp(gen, nil)

		intent := a.extractIntent(context.Background(), "plan a trip to Ooty from Mysore")

		if intent.Destination != "Ooty" || intent.Origin != "Mysore" {
			t.Errorf("Expected the parsed places, got %+v", intent)
		}
	})

	t.Run("NilGeneratorParsesDirectly", func(t *testing.T) {
		a := newTestApp(nil, nil)

		intent := a.extractIntent(context.Background(), "5 days in Manali")

		if intent.Destination != "Manali" || intent.TripLengthDays != 5 {
			t.Errorf("Expected the parsed intent, got %+v", intent)
		}
	})

	t.Run("ComponentsAttached", func(t *testing.T) {
		a := newTestApp(nil, nil)

		intent := a.extractIntent(context.Background(), "flights and hotels in Goa")

		if !intent.Wants(travel.ComponentFlights) || !intent.Wants(travel.ComponentHotels) || !intent.Wants(travel.ComponentItinerary) {
			t.Errorf("Expected all components, got %v", intent.Components)
		}
	})
}
