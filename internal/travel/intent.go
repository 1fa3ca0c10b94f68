package travel

// Plan components a user message can ask for.
const (
	ComponentFlights   = "flights"
	ComponentHotels    = "hotels"
	ComponentItinerary = "itinerary"
)

// TripIntent is the structured form of a free-text trip request.
// Dates are yyyy-mm-dd strings; zero values mean "not given".
type TripIntent struct {
	Destination    string   `json:"destination"`
	Origin         string   `json:"origin,omitempty"`
	DepartDate     string   `json:"departDate,omitempty"`
	ReturnDate     string   `json:"returnDate,omitempty"`
	TripLengthDays int      `json:"tripLengthDays,omitempty"`
	Budget         string   `json:"budget,omitempty"`
	Travelers      int      `json:"travelers,omitempty"`
	Components     []string `json:"components,omitempty"`
}

// Wants reports whether the intent asks for the given plan component.
func (t TripIntent) Wants(component string) bool {
	for _, c := range t.Components {
		if c == component {
			return true
		}
	}
	return false
}
