package search

import (
	"context"

	"ai-trip-planner/internal/travel"
)

// FlightQuery describes one flight search.
type FlightQuery struct {
	Origin      string
	Destination string
	DepartDate  string
	ReturnDate  string
	Adults      int
}

// HotelQuery describes one hotel search.
type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Adults      int
}

// POIFinder discovers raw activity candidates for a destination.
// Implementations return search-flavored names; cleaning happens downstream.
type POIFinder interface {
	FindActivities(ctx context.Context, destination string) ([]travel.Activity, error)
}

// FlightFinder searches flight options for a trip.
type FlightFinder interface {
	SearchFlights(ctx context.Context, q FlightQuery) ([]travel.FlightOption, error)
}

// HotelFinder searches hotel options for a stay.
type HotelFinder interface {
	SearchHotels(ctx context.Context, q HotelQuery) ([]travel.HotelOption, error)
}
