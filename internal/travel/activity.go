package travel

import "strings"

// Category classifies a point of interest.
type Category string

const (
	CategoryAttraction Category = "attraction"
	CategoryRestaurant Category = "restaurant"
	CategoryExperience Category = "experience"
)

// DefaultEstimatedTime is used for activities whose duration is unknown.
const DefaultEstimatedTime = "2-3 hours"

// Activity is a single point of interest that can be placed into a day.
type Activity struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	EstimatedTime string   `json:"estimatedTime"`
	Description   string   `json:"description"`
	OpeningHours  string   `json:"openingHours,omitempty"`
	TicketInfo    string   `json:"ticketInfo,omitempty"`
	MapLink       string   `json:"mapLink,omitempty"`
}

// BlockTime identifies one of the three slots of a day.
type BlockTime string

const (
	BlockMorning   BlockTime = "Morning"
	BlockAfternoon BlockTime = "Afternoon"
	BlockEvening   BlockTime = "Evening"
)

// ItineraryBlock is one slot of a day with its ordered activities.
// Afternoon and Evening hold at most one restaurant each; Morning holds none.
type ItineraryBlock struct {
	Time       BlockTime  `json:"time"`
	Activities []Activity `json:"activities"`
	TravelTime string     `json:"travelTime,omitempty"`
}

// ItineraryDay is a fully assembled day. It is frozen once emitted.
type ItineraryDay struct {
	Date   string           `json:"date"`
	City   string           `json:"city"`
	Blocks []ItineraryBlock `json:"blocks"`
}

// Itinerary is the ordered day sequence of one planning run.
type Itinerary struct {
	Days []ItineraryDay `json:"days"`
}

// NormalizeName lower-cases and trims a name for lookups and dedup checks.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ParseCategory maps free-text category labels from generative output onto a
// known Category. Unknown labels default to attraction.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryRestaurant:
		return CategoryRestaurant
	case CategoryExperience:
		return CategoryExperience
	default:
		return CategoryAttraction
	}
}
