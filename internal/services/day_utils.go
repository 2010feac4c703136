package services

import (
	"strings"
	"time"
)

const (
	dayLayout     = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// ParseDay parses a YYYY-MM-DD value as midnight in location.
func ParseDay(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	return time.ParseInLocation(dayLayout, strings.TrimSpace(raw), location)
}

func FormatDay(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(dayLayout)
}

// calendarDaysBetween counts whole calendar days from one date to another in
// location, independent of DST transitions.
func calendarDaysBetween(from time.Time, to time.Time, location *time.Location) int {
	fromDay := DateAtLocation(from, location)
	toDay := DateAtLocation(to, location)
	fromUTC := time.Date(fromDay.Year(), fromDay.Month(), fromDay.Day(), 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(toDay.Year(), toDay.Month(), toDay.Day(), 0, 0, 0, 0, time.UTC)
	return int((toUTC.Unix() - fromUTC.Unix()) / secondsPerDay)
}
