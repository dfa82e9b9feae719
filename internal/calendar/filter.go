package calendar

import (
	"strings"
	"time"
)

// Window is the inclusive alert range in minutes before a confirmed event.
type Window struct {
	Min float64
	Max float64
}

// Contains reports whether minutes lies within [Min, Max].
func (w Window) Contains(minutes float64) bool {
	return w.Min <= minutes && minutes <= w.Max
}

// Filter applies the impact/country allow-lists and the alert window.
// Build it once per pass with NewFilter; it is read-only afterwards.
type Filter struct {
	impacts   map[string]struct{}
	countries map[string]struct{}
	window    Window
	loc       *time.Location
}

// NewFilter builds a Filter. loc is the zone whose calendar day counts as
// "today" for tentative events; nil means UTC.
func NewFilter(impacts, countries []string, window Window, loc *time.Location) *Filter {
	if loc == nil {
		loc = time.UTC
	}
	return &Filter{
		impacts:   toSet(impacts),
		countries: toSet(countries),
		window:    window,
		loc:       loc,
	}
}

func toSet(in []string) map[string]struct{} {
	m := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" {
			m[v] = struct{}{}
		}
	}
	return m
}

// PassesBasic reports whether ev's impact and country are both allow-listed.
// Matching is exact, the way the feed spells them ("High", "USD").
func (f *Filter) PassesBasic(ev RawEvent) bool {
	if _, ok := f.impacts[strings.TrimSpace(ev.Impact)]; !ok {
		return false
	}
	_, ok := f.countries[strings.TrimSpace(ev.Country)]
	return ok
}

// MinutesUntil returns the signed minutes from now to the event instant.
func MinutesUntil(r ResolvedEvent, now time.Time) float64 {
	return r.Instant.Sub(now).Minutes()
}

// InWindow decides whether r is due for an alert at now.
//
// Confirmed events use the minute window. Tentative events have no time of
// day; they are due on the day their calendar date equals today in the
// filter's zone, and the ledger keeps that to one alert.
func (f *Filter) InWindow(r ResolvedEvent, now time.Time) bool {
	switch r.Confidence {
	case Confirmed:
		return f.window.Contains(MinutesUntil(r, now))
	case TentativeDateOnly:
		return r.Date() == now.In(f.loc).Format(dateLayout)
	default:
		return false
	}
}

// Window returns the configured alert window.
func (f *Filter) Window() Window { return f.window }
