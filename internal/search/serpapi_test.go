package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-trip-planner/internal/config"
)

func newTestSerpAPIClient(serverURL string) *SerpAPIClient {
	client := NewSerpAPIClient(&config.Config{SerpAPIKey: "test_key"})
	client.baseURL = serverURL
	return client
}

func TestSearchFlights(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("engine") != "google_flights" {
				t.Errorf("Expected engine 'google_flights', got '%s'", r.URL.Query().Get("engine"))
			}
			if r.URL.Query().Get("api_key") != "test_key" {
				t.Errorf("Expected api_key 'test_key', got '%s'", r.URL.Query().Get("api_key"))
			}

			fmt.Fprintln(w, `{
				"best_flights": [
					{
						"flights": [
							{
								"airline": "IndiGo",
								"flight_number": "6E 123",
								"departure_airport": {"name": "BLR", "time": "2024-05-01 06:10"},
								"arrival_airport": {"name": "HYD", "time": "2024-05-01 07:20"}
							},
							{
								"airline": "IndiGo",
								"flight_number": "6E 456",
								"departure_airport": {"name": "HYD", "time": "2024-05-01 09:00"},
								"arrival_airport": {"name": "VGA", "time": "2024-05-01 10:05"}
							}
						],
						"total_duration": 235,
						"price": 120
					},
					{"no_flights_key": true}
				],
				"other_flights": [
					{
						"flights": [
							{
								"airline": "Air India",
								"flight_number": "AI 789",
								"departure_airport": {"time": "2024-05-01 08:00"},
								"arrival_airport": {"time": "2024-05-01 09:30"}
							}
						],
						"price": 95
					}
				]
			}`)
		}))
		defer server.Close()

		client := newTestSerpAPIClient(server.URL)
		flights, err := client.SearchFlights(context.Background(), FlightQuery{
			Origin:      "BLR",
			Destination: "VGA",
			DepartDate:  "2024-05-01",
		})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		// The malformed entry is skipped item-wise.
		if len(flights) != 2 {
			t.Fatalf("Expected 2 flights, got %d", len(flights))
		}

		first := flights[0]
		if first.Airline != "IndiGo" {
			t.Errorf("Expected airline 'IndiGo', got '%s'", first.Airline)
		}
		if first.Stops != 1 {
			t.Errorf("Expected 1 stop, got %d", first.Stops)
		}
		if first.Departure != "2024-05-01 06:10" {
			t.Errorf("Expected departure from the first leg, got '%s'", first.Departure)
		}
		if first.Arrival != "2024-05-01 10:05" {
			t.Errorf("Expected arrival from the last leg, got '%s'", first.Arrival)
		}
		if first.Duration != "3h 55m" {
			t.Errorf("Expected duration '3h 55m', got '%s'", first.Duration)
		}
		if first.Price != 120 {
			t.Errorf("Expected price 120, got %v", first.Price)
		}

		if flights[1].Stops != 0 {
			t.Errorf("Expected direct flight, got %d stops", flights[1].Stops)
		}
	})

	t.Run("RetriesThenSucceeds", func(t *testing.T) {
		var calls int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprintln(w, `{"best_flights": []}`)
		}))
		defer server.Close()

		client := newTestSerpAPIClient(server.URL)
		flights, err := client.SearchFlights(context.Background(), FlightQuery{Origin: "BLR", Destination: "VGA", DepartDate: "2024-05-01"})
		if err != nil {
			t.Fatalf("Expected no error after retry, got %v", err)
		}
		if calls != 2 {
			t.Errorf("Expected 2 attempts, got %d", calls)
		}
		if len(flights) != 0 {
			t.Errorf("Expected no flights, got %d", len(flights))
		}
	})

	t.Run("ErrorPayload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, `{"error": "Invalid API key"}`)
		}))
		defer server.Close()

		client := newTestSerpAPIClient(server.URL)
		_, err := client.SearchFlights(context.Background(), FlightQuery{Origin: "BLR", Destination: "VGA", DepartDate: "2024-05-01"})
		if err == nil {
			t.Fatal("Expected an error for error payload, got nil")
		}
	})
}

func TestSearchHotels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("engine") != "google_hotels" {
			t.Errorf("Expected engine 'google_hotels', got '%s'", r.URL.Query().Get("engine"))
		}

		fmt.Fprintln(w, `{
			"properties": [
				{
					"name": "The Gateway Hotel",
					"overall_rating": 4.4,
					"rate_per_night": {"lowest": "$74", "extracted_lowest": 74},
					"amenities": ["Free Wi-Fi", "Pool"],
					"link": "https://example.com/hotel"
				},
				{"overall_rating": 3.9},
				{"name": "Minimal Inn"}
			]
		}`)
	}))
	defer server.Close()

	client := newTestSerpAPIClient(server.URL)
	hotels, err := client.SearchHotels(context.Background(), HotelQuery{
		Destination: "Vijayawada",
		CheckIn:     "2024-05-01",
		CheckOut:    "2024-05-05",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// The nameless entry is skipped item-wise.
	if len(hotels) != 2 {
		t.Fatalf("Expected 2 hotels, got %d", len(hotels))
	}

	first := hotels[0]
	if first.Name != "The Gateway Hotel" {
		t.Errorf("Expected name 'The Gateway Hotel', got '%s'", first.Name)
	}
	if first.Rating != 4.4 {
		t.Errorf("Expected rating 4.4, got %v", first.Rating)
	}
	if first.PricePerNight != 74 {
		t.Errorf("Expected price per night 74, got %v", first.PricePerNight)
	}
	if len(first.Amenities) != 2 {
		t.Errorf("Expected 2 amenities, got %d", len(first.Amenities))
	}

	if hotels[1].Name != "Minimal Inn" {
		t.Errorf("Expected sparse hotel to survive with name only, got '%s'", hotels[1].Name)
	}
	if hotels[1].PricePerNight != 0 {
		t.Errorf("Expected zero price for sparse hotel, got %v", hotels[1].PricePerNight)
	}
}
