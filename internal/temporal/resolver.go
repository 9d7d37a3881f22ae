// Package temporal resolves natural-language time expressions against a
// reference time and maintains the per-session temporal anchor table.
package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Clock-time patterns, tried in order: 12-hour with minutes, 24-hour,
// hour-only 12-hour. First match wins.
var (
	time12Rx = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(am|pm)`)
	time24Rx = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	hour12Rx = regexp.MustCompile(`(\d{1,2})\s*(am|pm)`)
)

// Resolve parses a temporal expression relative to the reference time.
// It recognizes the relative-day keywords (today, tomorrow, yesterday,
// next/last week) and clock-time patterns; anything else is unresolved.
// The second return value reports whether resolution succeeded.
func Resolve(text string, ref time.Time) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	midnight := atMidnight(ref)

	switch lower {
	case "today", "now":
		return midnight, true
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), true
	case "yesterday":
		return midnight.AddDate(0, 0, -1), true
	case "next week":
		return midnight.AddDate(0, 0, 7-mondayWeekday(ref)), true
	case "last week":
		return midnight.AddDate(0, 0, -(mondayWeekday(ref) + 7)), true
	}

	if m := time12Rx.FindStringSubmatch(lower); m != nil {
		hour, minute := atoi(m[1]), atoi(m[2])
		return atClock(ref, to24Hour(hour, m[3]), minute)
	}
	if m := time24Rx.FindStringSubmatch(lower); m != nil {
		return atClock(ref, atoi(m[1]), atoi(m[2]))
	}
	if m := hour12Rx.FindStringSubmatch(lower); m != nil {
		return atClock(ref, to24Hour(atoi(m[1]), m[2]), 0)
	}

	return time.Time{}, false
}

// mondayWeekday returns the weekday with Monday as 0 and Sunday as 6.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// atMidnight truncates a time to midnight of the same calendar day.
func atMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atClock substitutes hour and minute onto the reference date, leaving the
// calendar day untouched. Out-of-range values are unresolved rather than
// wrapping to a neighboring day.
func atClock(ref time.Time, hour, minute int) (time.Time, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()), true
}

// to24Hour normalizes a 12-hour clock hour: 12am -> 0, 12pm -> 12,
// other pm hours gain 12.
func to24Hour(hour int, period string) int {
	if period == "pm" && hour != 12 {
		return hour + 12
	}
	if period == "am" && hour == 12 {
		return 0
	}
	return hour
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
