package stream

import (
	"encoding/json"
	"fmt"
)

// EventType identifies what a stream event carries.
type EventType string

const (
	EventTextChunk EventType = "TEXT_CHUNK"
	EventFlights   EventType = "FLIGHTS"
	EventHotels    EventType = "HOTELS"
	EventItinerary EventType = "ITINERARY"
	EventSummary   EventType = "SUMMARY"
	EventError     EventType = "ERROR"
	EventDone      EventType = "DONE"
)

// Event is one message on a planning stream. Seq orders events of the same
// type; Final marks the last content-bearing event of its type.
type Event struct {
	Type  EventType   `json:"type"`
	Seq   int         `json:"seq"`
	Data  interface{} `json:"data,omitempty"`
	Final bool        `json:"final"`
}

// TextPayload carries conversational text chunks.
type TextPayload struct {
	Text string `json:"text"`
}

// ErrorPayload carries a user-facing failure description.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Encode renders the event as one SSE frame: a single data line terminated
// by a blank line.
func (e Event) Encode() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode stream event: %w", err)
	}
	return []byte(fmt.Sprintf("data: %s\n\n", payload)), nil
}
