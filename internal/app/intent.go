package app

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
	"unicode"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/travel"
)

//go:embed intent_prompt.md
var intentPrompt string

const maxTripLengthDays = 14

type intentPromptData struct {
	Today   string
	Message string
}

// rawIntent mirrors the JSON object the extraction prompt asks for.
type rawIntent struct {
	Destination    string `json:"destination"`
	Origin         string `json:"origin"`
	DepartDate     string `json:"depart_date"`
	ReturnDate     string `json:"return_date"`
	TripLengthDays int    `json:"trip_length_days"`
	Budget         string `json:"budget"`
	Travelers      int    `json:"travelers"`
}

// extractIntent turns a free-text trip request into a TripIntent. The
// generative pass is best effort; when it fails or cannot name a
// destination, the deterministic parser fills the gaps. The result is
// always validated and carries the detected components.
func (a *App) extractIntent(ctx context.Context, message string) travel.TripIntent {
	now := time.Now().UTC()

	intent, ok := a.generativeIntent(ctx, message)
	if !ok || intent.Destination == "" {
		intent = fillMissing(intent, parseIntent(message, now))
	}

	validateIntent(&intent, now)
	intent.Components = detectComponents(message, intent)
	return intent
}

func (a *App) generativeIntent(ctx context.Context, message string) (travel.TripIntent, bool) {
	if a.textGen == nil {
		return travel.TripIntent{}, false
	}

	prompt, err := buildIntentPrompt(message)
	if err != nil {
		return travel.TripIntent{}, false
	}

	start := time.Now()
	resp, err := a.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("Warning: intent extraction failed, parsing the message instead: %v", err)
		return travel.TripIntent{}, false
	}
	a.recordMeta(shared.NewAgentMeta("intent_extractor", resp.Usage, start))

	span, ok := llm.ExtractJSONObject(resp.Content)
	if !ok {
		return travel.TripIntent{}, false
	}

	var raw rawIntent
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		return travel.TripIntent{}, false
	}

	return travel.TripIntent{
		Destination:    strings.TrimSpace(raw.Destination),
		Origin:         strings.TrimSpace(raw.Origin),
		DepartDate:     strings.TrimSpace(raw.DepartDate),
		ReturnDate:     strings.TrimSpace(raw.ReturnDate),
		TripLengthDays: raw.TripLengthDays,
		Budget:         strings.TrimSpace(raw.Budget),
		Travelers:      raw.Travelers,
	}, true
}

func buildIntentPrompt(message string) (string, error) {
	tmpl, err := template.New("intent").Parse(intentPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, intentPromptData{
		Today:   time.Now().UTC().Format("2006-01-02"),
		Message: message,
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fillMissing keeps base's fields and takes parsed's value wherever base has
// none.
func fillMissing(base, parsed travel.TripIntent) travel.TripIntent {
	if base.Destination == "" {
		base.Destination = parsed.Destination
	}
	if base.Origin == "" {
		base.Origin = parsed.Origin
	}
	if base.DepartDate == "" {
		base.DepartDate = parsed.DepartDate
	}
	if base.ReturnDate == "" {
		base.ReturnDate = parsed.ReturnDate
	}
	if base.TripLengthDays == 0 {
		base.TripLengthDays = parsed.TripLengthDays
	}
	if base.Budget == "" {
		base.Budget = parsed.Budget
	}
	if base.Travelers == 0 {
		base.Travelers = parsed.Travelers
	}
	return base
}

var (
	isoDatePattern    = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	dayMonthPattern   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?([a-z]+)\b`)
	monthDayPattern   = regexp.MustCompile(`(?i)\b([a-z]+)\s+(\d{1,2})(?:st|nd|rd|th)?\b`)
	tripLengthPattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s*-?\s*(?:days?|nights?)\b`)
	travelersPattern  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(?:people|persons?|adults?|travell?ers)\b`)
	budgetPattern     = regexp.MustCompile(`(?i)([$₹€£]\s?[\d,]+|\b\d[\d,]*\s*(?:rs|inr|usd|eur|rupees|dollars)\b)`)
)

// monthNames resolves month words to months, tolerating common misspellings
// seen in real trip requests.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January, "janurary": time.January, "janaury": time.January,
	"february": time.February, "feb": time.February, "febuary": time.February, "feburary": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April, "aprill": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August, "agust": time.August, "augest": time.August,
	"september": time.September, "sep": time.September, "sept": time.September, "setember": time.September, "septmber": time.September,
	"october": time.October, "oct": time.October, "octber": time.October,
	"november": time.November, "nov": time.November, "novmber": time.November,
	"december": time.December, "dec": time.December, "decmber": time.December, "decembre": time.December,
}

func lookupMonth(word string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(word)]
	return m, ok
}

// parseIntent is the deterministic extraction pass: ISO and month-name
// dates, trip length, traveler count, a budget mention, and destination and
// origin from "to X" / "from X" phrasing.
func parseIntent(message string, now time.Time) travel.TripIntent {
	var intent travel.TripIntent

	dates := isoDatePattern.FindAllString(message, 2)
	if len(dates) == 0 {
		dates = parseLooseDates(message, now)
	}
	if len(dates) > 0 {
		intent.DepartDate = dates[0]
	}
	if len(dates) > 1 {
		intent.ReturnDate = dates[1]
	}

	if m := tripLengthPattern.FindStringSubmatch(message); m != nil {
		intent.TripLengthDays, _ = strconv.Atoi(m[1])
	}
	if m := travelersPattern.FindStringSubmatch(message); m != nil {
		intent.Travelers, _ = strconv.Atoi(m[1])
	}
	if m := budgetPattern.FindStringSubmatch(message); m != nil {
		intent.Budget = strings.TrimSpace(m[1])
	}

	intent.Destination = placeAfter(message, "to", "in", "visit", "visiting", "at")
	intent.Origin = placeAfter(message, "from")
	return intent
}

// parseLooseDates resolves "May 5" and "5th of May" style mentions to
// yyyy-mm-dd strings in message order, rolling past dates forward to their
// next occurrence.
func parseLooseDates(message string, now time.Time) []string {
	type looseDate struct {
		pos  int
		date string
	}
	var found []looseDate
	seen := make(map[string]bool)

	add := func(pos, day int, monthWord string) {
		month, ok := lookupMonth(monthWord)
		if !ok || day < 1 || day > 31 {
			return
		}
		d := rollForward(time.Date(now.Year(), month, day, 0, 0, 0, 0, time.UTC), now)
		key := d.Format("2006-01-02")
		if seen[key] {
			return
		}
		seen[key] = true
		found = append(found, looseDate{pos: pos, date: key})
	}

	for _, m := range dayMonthPattern.FindAllStringSubmatchIndex(message, -1) {
		day, _ := strconv.Atoi(message[m[2]:m[3]])
		add(m[0], day, message[m[4]:m[5]])
	}
	for _, m := range monthDayPattern.FindAllStringSubmatchIndex(message, -1) {
		day, _ := strconv.Atoi(message[m[4]:m[5]])
		add(m[0], day, message[m[2]:m[3]])
	}

	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	dates := make([]string, 0, len(found))
	for _, f := range found {
		dates = append(dates, f.date)
	}
	return dates
}

// placeAfter extracts a place name following any of the given keywords: up
// to three consecutive words, stopped by punctuation, digits, month names,
// or stop words. Three words keeps "New Delhi" and "Port Blair" intact
// without swallowing the rest of the sentence.
func placeAfter(message string, keywords ...string) string {
	stop := map[string]bool{
		"a": true, "an": true, "the": true, "my": true, "me": true, "us": true,
		"to": true, "in": true, "at": true, "from": true, "on": true, "for": true,
		"with": true, "by": true, "between": true, "during": true, "next": true,
		"this": true, "starting": true, "leaving": true, "departing": true,
		"and": true, "visit": true, "visiting": true, "around": true, "about": true,
	}

	words := strings.Fields(message)
	for i, w := range words {
		lw := strings.ToLower(strings.Trim(w, ",.!?"))
		matched := false
		for _, k := range keywords {
			if lw == k {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		var parts []string
		for j := i + 1; j < len(words) && len(parts) < 3; j++ {
			word := strings.Trim(words[j], ",.!?")
			lower := strings.ToLower(word)
			if word == "" || stop[lower] || startsWithDigit(word) {
				break
			}
			if _, isMonth := lookupMonth(lower); isMonth {
				break
			}
			parts = append(parts, word)
			if strings.ContainsAny(words[j], ",.!?") {
				break
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	return ""
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

// rollForward advances a date by whole years until it is no more than two
// days in the past. Trip requests reference upcoming dates; stale years from
// loose parsing or generative replies land on the next occurrence instead.
func rollForward(d, now time.Time) time.Time {
	cutoff := now.Add(-48 * time.Hour)
	for d.Before(cutoff) {
		d = d.AddDate(1, 0, 0)
	}
	return d
}

// validateIntent normalizes the extracted fields: well-formed dates rolled
// forward, reversed date pairs swapped, trip length capped.
func validateIntent(intent *travel.TripIntent, now time.Time) {
	intent.DepartDate = normalizeDate(intent.DepartDate, now)
	intent.ReturnDate = normalizeDate(intent.ReturnDate, now)
	if intent.DepartDate != "" && intent.ReturnDate != "" && intent.ReturnDate < intent.DepartDate {
		intent.DepartDate, intent.ReturnDate = intent.ReturnDate, intent.DepartDate
	}

	if intent.TripLengthDays < 0 {
		intent.TripLengthDays = 0
	}
	if intent.TripLengthDays > maxTripLengthDays {
		intent.TripLengthDays = maxTripLengthDays
	}
	if intent.Travelers < 0 {
		intent.Travelers = 0
	}

	intent.Destination = cleanPlace(intent.Destination)
	intent.Origin = cleanPlace(intent.Origin)
}

// normalizeDate keeps only well-formed yyyy-mm-dd values, rolled forward
// when stale.
func normalizeDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ""
	}
	return rollForward(d, now).Format("2006-01-02")
}

func cleanPlace(s string) string {
	return strings.Trim(strings.TrimSpace(s), ",.!?")
}

// detectComponents decides which plan components the message asks for. The
// itinerary is always produced once a destination resolves.
func detectComponents(message string, intent travel.TripIntent) []string {
	lower := strings.ToLower(message)

	var components []string
	if intent.Origin != "" || mentionsAny(lower, "flight", "flights", "fly", "flying", "airfare", "plane") {
		components = append(components, travel.ComponentFlights)
	}
	if mentionsAny(lower, "hotel", "hotels", "stay", "staying", "accommodation", "accommodations", "lodging", "resort") {
		components = append(components, travel.ComponentHotels)
	}
	if intent.Destination != "" {
		components = append(components, travel.ComponentItinerary)
	}
	return components
}

// mentionsAny reports whether any of the words appears in the text as a
// whole word.
func mentionsAny(lower string, words ...string) bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool { return !unicode.IsLetter(r) })
	for _, field := range fields {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}
