package calendar

import "time"

// RawEvent is one record as supplied by the feed.
type RawEvent struct {
	Title   string `json:"title"`
	Country string `json:"country"`
	Impact  string `json:"impact"`
	Date    string `json:"date"`
	Time    string `json:"time,omitempty"`
}

// Confidence tells how much of an event's timing is known.
type Confidence int

const (
	Unresolvable Confidence = iota
	TentativeDateOnly
	Confirmed
)

func (c Confidence) String() string {
	switch c {
	case Confirmed:
		return "confirmed"
	case TentativeDateOnly:
		return "tentative"
	default:
		return "unresolvable"
	}
}

// ResolvedEvent is the normalized timing of a RawEvent.
//
// Instant is only meaningful when Confidence is Confirmed and is always UTC.
// CalendarDate is a midnight UTC value carrying the event's calendar day.
type ResolvedEvent struct {
	Confidence   Confidence
	Instant      time.Time
	CalendarDate time.Time
}

// Date returns the calendar day as YYYY-MM-DD.
func (r ResolvedEvent) Date() string {
	if r.CalendarDate.IsZero() {
		return ""
	}
	return r.CalendarDate.Format(dateLayout)
}
