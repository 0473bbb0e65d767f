package koreader

import (
	"strconv"
	"strings"
	"time"
)

// Plausible calendar-year bounds for the seconds-vs-milliseconds
// heuristic. A numeric value that lands inside this range when read as
// epoch seconds is taken as seconds; otherwise milliseconds are tried.
const (
	minPlausibleYear = 1990
	maxPlausibleYear = 2070
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimestamp normalizes a raw datetime column value to an instant.
// KoReader databases mix epoch integers (seconds or milliseconds) and
// date-time strings across versions. Unparseable input reports ok=false
// and never an error.
func parseTimestamp(v any) (time.Time, bool) {
	switch value := v.(type) {
	case nil:
		return time.Time{}, false
	case int64:
		return timeFromEpoch(float64(value))
	case float64:
		return timeFromEpoch(value)
	case []byte:
		return timeFromString(string(value))
	case string:
		return timeFromString(value)
	default:
		return time.Time{}, false
	}
}

func timeFromEpoch(n float64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	if t := time.Unix(int64(n), 0).UTC(); plausibleYear(t) {
		return t, true
	}
	if t := time.UnixMilli(int64(n)).UTC(); plausibleYear(t) {
		return t, true
	}
	return time.Time{}, false
}

func timeFromString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return timeFromEpoch(n)
	}
	return time.Time{}, false
}

// absentTimestamp reports whether a raw column value means the event
// never happened, as opposed to a timestamp that failed to parse.
// KoReader writes 0 for books that were never opened.
func absentTimestamp(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case int64:
		return value == 0
	case float64:
		return value == 0
	case []byte:
		return absentTimestampString(string(value))
	case string:
		return absentTimestampString(value)
	}
	return false
}

func absentTimestampString(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "0"
}

func plausibleYear(t time.Time) bool {
	year := t.Year()
	return year >= minPlausibleYear && year <= maxPlausibleYear
}
