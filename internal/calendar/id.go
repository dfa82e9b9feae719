package calendar

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// OccasionKey distinguishes repeated titles at different times.
//
// Confirmed: the UTC instant as YYYY-MM-DDTHH:MM:SS[.ffffff]+00:00.
// Tentative: "tentative-" + YYYY-MM-DD.
func OccasionKey(r ResolvedEvent) string {
	switch r.Confidence {
	case Confirmed:
		return isoUTC(r.Instant)
	case TentativeDateOnly:
		return "tentative-" + r.Date()
	default:
		return ""
	}
}

// EventID is the ledger identifier for ev at the occasion described by r:
// hex SHA-1 of "title|country|occasion". The format is stable across
// releases; changing it re-alerts everything already in existing ledgers.
func EventID(ev RawEvent, r ResolvedEvent) string {
	sum := sha1.Sum([]byte(ev.Title + "|" + ev.Country + "|" + OccasionKey(r)))
	return hex.EncodeToString(sum[:])
}

func isoUTC(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}
