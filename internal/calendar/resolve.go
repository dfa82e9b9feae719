package calendar

import (
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Sentinels the feed uses in the time field instead of a clock time.
const (
	TimeAllDay    = "All Day"
	TimeTentative = "Tentative"
)

// isoLayouts are the timestamp shapes accepted in the date field.
// Every layout carries a time of day; a bare date is not a timestamp.
// Offsets may be "+05:30", "+0530", "+05" or "Z".
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999Z07",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15:04Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04Z07:00",
	"2006-01-02 15:04Z0700",
	"2006-01-02 15:04Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// Resolve normalizes the date/time fields of ev.
//
// Order:
//  1. date[:10] + time as UTC wall clock, when time is a real HH:MM.
//  2. date as a full timestamp with time of day (offset honored, naive = UTC).
//  3. date[:10] as a bare calendar date: TentativeDateOnly.
//  4. Unresolvable.
//
// Step 1 wins over step 2 when both are present and disagree.
func Resolve(ev RawEvent) ResolvedEvent {
	date := strings.TrimSpace(ev.Date)
	day, dayOK := parseDay(date)

	if dayOK && hasClockTime(ev.Time) {
		if tod, err := time.Parse(timeLayout, strings.TrimSpace(ev.Time)); err == nil {
			at := time.Date(day.Year(), day.Month(), day.Day(), tod.Hour(), tod.Minute(), 0, 0, time.UTC)
			return ResolvedEvent{Confidence: Confirmed, Instant: at, CalendarDate: day}
		}
	}

	if at, ok := parseTimestamp(date); ok {
		cal := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
		if dayOK {
			cal = day
		}
		return ResolvedEvent{Confidence: Confirmed, Instant: at.UTC(), CalendarDate: cal}
	}

	if dayOK {
		return ResolvedEvent{Confidence: TentativeDateOnly, CalendarDate: day}
	}
	return ResolvedEvent{Confidence: Unresolvable}
}

// hasClockTime reports whether raw is something other than empty or a sentinel.
func hasClockTime(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}
	return !strings.EqualFold(s, TimeAllDay) && !strings.EqualFold(s, TimeTentative)
}

func parseDay(date string) (time.Time, bool) {
	if len(date) < len(dateLayout) {
		return time.Time{}, false
	}
	d, err := time.Parse(dateLayout, date[:len(dateLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func parseTimestamp(s string) (time.Time, bool) {
	if len(s) <= len(dateLayout) {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
