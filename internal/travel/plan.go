package travel

// FlightOption is one normalized flight search result, passed through unranked.
type FlightOption struct {
	Airline      string  `json:"airline"`
	FlightNumber string  `json:"flightNumber,omitempty"`
	Departure    string  `json:"departure"`
	Arrival      string  `json:"arrival"`
	Duration     string  `json:"duration,omitempty"`
	Stops        int     `json:"stops"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency,omitempty"`
	BookingLink  string  `json:"bookingLink,omitempty"`
}

// HotelOption is one normalized hotel search result.
type HotelOption struct {
	Name          string   `json:"name"`
	Rating        float64  `json:"rating,omitempty"`
	PricePerNight float64  `json:"pricePerNight,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Address       string   `json:"address,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Link          string   `json:"link,omitempty"`
}

// PlanMeta describes how and when a plan was produced.
type PlanMeta struct {
	GeneratedAt string   `json:"generatedAt"`
	Sources     []string `json:"sources"`
}

// ChatPlan is the complete aggregate result of one planning run.
// It is always structurally valid; failures are described in Notes and
// Errors rather than surfaced as errors to the caller.
type ChatPlan struct {
	Request   string         `json:"request"`
	Summary   string         `json:"summary"`
	Notes     string         `json:"notes,omitempty"`
	Flights   []FlightOption `json:"flights"`
	Hotels    []HotelOption  `json:"hotels"`
	Itinerary Itinerary      `json:"itinerary"`
	Errors    []string       `json:"errors,omitempty"`
	Meta      PlanMeta       `json:"meta"`
}
