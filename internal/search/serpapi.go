package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ai-trip-planner/internal/config"
	"ai-trip-planner/internal/travel"
)

const (
	serpAPIEndpoint    = "https://serpapi.com/search"
	serpAPIMaxAttempts = 3
	serpAPITopResults  = 5
)

// SerpAPIClient searches flights and hotels through SerpAPI's Google engines.
type SerpAPIClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerpAPIClient creates a new SerpAPI client.
func NewSerpAPIClient(cfg *config.Config) *SerpAPIClient {
	return &SerpAPIClient{
		apiKey:  cfg.SerpAPIKey,
		baseURL: serpAPIEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SearchFlights queries the google_flights engine and normalizes the top
// results. Individual malformed results are skipped, never fatal.
func (c *SerpAPIClient) SearchFlights(ctx context.Context, q FlightQuery) ([]travel.FlightOption, error) {
	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", q.Origin)
	params.Set("arrival_id", q.Destination)
	params.Set("outbound_date", q.DepartDate)
	params.Set("currency", "USD")
	params.Set("hl", "en")
	if q.ReturnDate != "" {
		params.Set("return_date", q.ReturnDate)
	} else {
		// One-way search
		params.Set("type", "2")
	}
	if q.Adults > 0 {
		params.Set("adults", strconv.Itoa(q.Adults))
	}

	payload, err := c.doSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	var flights []travel.FlightOption
	for _, key := range []string{"best_flights", "other_flights"} {
		for _, item := range asSlice(payload[key]) {
			if len(flights) >= serpAPITopResults {
				return flights, nil
			}
			opt, ok := parseFlightOption(asMap(item))
			if !ok {
				continue
			}
			flights = append(flights, opt)
		}
	}
	return flights, nil
}

// SearchHotels queries the google_hotels engine and normalizes the top
// results.
func (c *SerpAPIClient) SearchHotels(ctx context.Context, q HotelQuery) ([]travel.HotelOption, error) {
	params := url.Values{}
	params.Set("engine", "google_hotels")
	params.Set("q", q.Destination)
	params.Set("check_in_date", q.CheckIn)
	params.Set("check_out_date", q.CheckOut)
	params.Set("currency", "USD")
	params.Set("hl", "en")
	if q.Adults > 0 {
		params.Set("adults", strconv.Itoa(q.Adults))
	}

	payload, err := c.doSearch(ctx, params)
	if err != nil {
		return nil, err
	}

	var hotels []travel.HotelOption
	for _, item := range asSlice(payload["properties"]) {
		if len(hotels) >= serpAPITopResults {
			break
		}
		prop := asMap(item)
		name := asString(prop["name"])
		if name == "" {
			continue
		}

		hotel := travel.HotelOption{
			Name:     name,
			Rating:   asFloat(prop["overall_rating"]),
			Currency: "USD",
			Address:  asString(prop["address"]),
			Link:     asString(prop["link"]),
		}
		if rate := asMap(prop["rate_per_night"]); rate != nil {
			hotel.PricePerNight = asFloat(rate["extracted_lowest"])
		}
		for _, a := range asSlice(prop["amenities"]) {
			if s := asString(a); s != "" {
				hotel.Amenities = append(hotel.Amenities, s)
			}
		}
		hotels = append(hotels, hotel)
	}
	return hotels, nil
}

// doSearch performs the HTTP call with retries and exponential backoff.
func (c *SerpAPIClient) doSearch(ctx context.Context, params url.Values) (map[string]interface{}, error) {
	params.Set("api_key", c.apiKey)
	requestURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < serpAPIMaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			log.Printf("⚠️ SerpAPI request failed, retrying in %s: %v", backoff, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		payload, err := c.doRequest(ctx, requestURL)
		if err == nil {
			return payload, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("serpapi request failed after %d attempts: %w", serpAPIMaxAttempts, lastErr)
}

func (c *SerpAPIClient) doRequest(ctx context.Context, requestURL string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi error: status=%d", resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if msg := asString(payload["error"]); msg != "" {
		return nil, fmt.Errorf("serpapi error: %s", msg)
	}
	return payload, nil
}

// parseFlightOption reads one flight result. The payload shape varies, so
// every field access is duck-typed; an option without legs is rejected.
func parseFlightOption(item map[string]interface{}) (travel.FlightOption, bool) {
	legs := asSlice(item["flights"])
	if len(legs) == 0 {
		return travel.FlightOption{}, false
	}

	first := asMap(legs[0])
	last := asMap(legs[len(legs)-1])

	opt := travel.FlightOption{
		Airline:      asString(first["airline"]),
		FlightNumber: asString(first["flight_number"]),
		Departure:    asString(asMap(first["departure_airport"])["time"]),
		Arrival:      asString(asMap(last["arrival_airport"])["time"]),
		Stops:        len(legs) - 1,
		Price:        asFloat(item["price"]),
		Currency:     "USD",
	}
	if minutes := int(asFloat(item["total_duration"])); minutes > 0 {
		opt.Duration = fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
	if opt.Airline == "" && opt.Departure == "" {
		return travel.FlightOption{}, false
	}
	return opt, true
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}
