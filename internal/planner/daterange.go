package planner

import (
	"time"
)

const (
	dateLayout      = "2006-01-02"
	defaultTripDays = 3
)

// ResolveTripDates computes the ordered day sequence for a trip from
// conflicting hints. An explicit return date wins and excludes the return day
// itself; otherwise a positive trip length is used; otherwise a 3-day window.
// Every branch is truncated to maxDays. Malformed dates fall back to today.
func ResolveTripDates(departDate, returnDate string, tripLength, maxDays int) []string {
	depart, err := time.Parse(dateLayout, departDate)
	if err != nil {
		depart = time.Now().UTC()
	}
	depart = depart.UTC().Truncate(24 * time.Hour)

	days := 0
	if returnDate != "" {
		if ret, err := time.Parse(dateLayout, returnDate); err == nil {
			days = int(ret.UTC().Truncate(24 * time.Hour).Sub(depart).Hours() / 24)
		}
	}
	if days <= 0 && tripLength > 0 {
		days = tripLength
	}
	if days <= 0 {
		days = defaultTripDays
	}
	if maxDays > 0 && days > maxDays {
		days = maxDays
	}

	dates := make([]string, 0, days)
	for i := 0; i < days; i++ {
		dates = append(dates, depart.AddDate(0, 0, i).Format(dateLayout))
	}
	return dates
}
