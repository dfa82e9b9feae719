package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Display controls how instants are shown to readers.
type Display struct {
	Location *time.Location
	Label    string // e.g. "IST"; empty falls back to the zone name
}

func (d Display) loc() *time.Location {
	if d.Location == nil {
		return time.UTC
	}
	return d.Location
}

func (d Display) label() string {
	if s := strings.TrimSpace(d.Label); s != "" {
		return s
	}
	return d.loc().String()
}

// Countdown renders whole minutes as "1h 5m" or "15m".
// Negative values render as "0m".
func Countdown(minutes float64) string {
	total := int(math.RoundToEven(minutes))
	if total < 0 {
		total = 0
	}
	h, m := total/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// Format renders the alert text for ev. For confirmed events the countdown
// is computed from now with the same arithmetic the window check uses.
func Format(ev RawEvent, r ResolvedEvent, now time.Time, d Display) string {
	var when, eta string
	if r.Confidence == Confirmed {
		when = r.Instant.In(d.loc()).Format("02 Jan 2006, 03:04 PM") + " " + d.label()
		eta = "Releasing in " + Countdown(MinutesUntil(r, now))
	} else {
		when = r.CalendarDate.Format("02 Jan 2006") + " – Tentative"
		eta = "Time not updated"
	}

	var b strings.Builder
	b.WriteString("🚨 UPCOMING ECONOMIC EVENT 🚨\n\n")
	b.WriteString("📊 " + ev.Title + "\n")
	b.WriteString("🕒 " + when + "\n")
	b.WriteString("⏰ " + eta + "\n")
	b.WriteString("🌍 " + ev.Country + "\n")
	b.WriteString("⚠️ Impact: " + ev.Impact)
	return b.String()
}
