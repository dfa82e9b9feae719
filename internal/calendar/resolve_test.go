package calendar

import (
	"testing"
	"time"
)

func TestResolveVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		ev      RawEvent
		conf    Confidence
		instant time.Time
		date    string
	}{
		{
			name:    "date and time",
			ev:      RawEvent{Date: "2024-01-10", Time: "08:30"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "single digit hour",
			ev:      RawEvent{Date: "2024-01-10", Time: "8:05"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 8, 5, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "iso with offset",
			ev:      RawEvent{Date: "2024-01-10T08:30:00-05:00"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 13, 30, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "iso offset without colon",
			ev:      RawEvent{Date: "2024-01-10T08:30:00+0530"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 3, 0, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "iso offset hours only",
			ev:      RawEvent{Date: "2024-01-10T08:30:00+05"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 3, 30, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "iso minutes precision compact offset",
			ev:      RawEvent{Date: "2024-01-10T08:30-0500"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 13, 30, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "space separated hours offset",
			ev:      RawEvent{Date: "2024-01-10 08:30:00-05"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 13, 30, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "naive iso is utc",
			ev:      RawEvent{Date: "2024-01-10T23:45:00"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 23, 45, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name:    "iso with tentative sentinel",
			ev:      RawEvent{Date: "2024-01-10T14:00:00Z", Time: "Tentative"},
			conf:    Confirmed,
			instant: time.Date(2024, 1, 10, 14, 0, 0, 0, time.UTC),
			date:    "2024-01-10",
		},
		{
			name: "date only",
			ev:   RawEvent{Date: "2024-01-10"},
			conf: TentativeDateOnly,
			date: "2024-01-10",
		},
		{
			name: "all day",
			ev:   RawEvent{Date: "2024-01-10", Time: "All Day"},
			conf: TentativeDateOnly,
			date: "2024-01-10",
		},
		{
			name: "tentative",
			ev:   RawEvent{Date: "2024-01-10", Time: "Tentative"},
			conf: TentativeDateOnly,
			date: "2024-01-10",
		},
		{
			name: "unparseable time falls back to date",
			ev:   RawEvent{Date: "2024-01-10", Time: "8:30am"},
			conf: TentativeDateOnly,
			date: "2024-01-10",
		},
		{
			name: "garbage",
			ev:   RawEvent{Date: "next week", Time: "08:30"},
			conf: Unresolvable,
		},
		{
			name: "empty",
			ev:   RawEvent{},
			conf: Unresolvable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.ev)
			if got.Confidence != tt.conf {
				t.Fatalf("Confidence = %v, want %v", got.Confidence, tt.conf)
			}
			if tt.conf == Confirmed {
				if !got.Instant.Equal(tt.instant) {
					t.Fatalf("Instant = %v, want %v", got.Instant, tt.instant)
				}
				if got.Instant.Location() != time.UTC {
					t.Fatalf("Instant location = %v, want UTC", got.Instant.Location())
				}
			} else if !got.Instant.IsZero() {
				t.Fatalf("Instant = %v, want zero", got.Instant)
			}
			if got.Date() != tt.date {
				t.Fatalf("Date() = %q, want %q", got.Date(), tt.date)
			}
		})
	}
}

// The explicit time field is more precise than the date field and wins when
// the two disagree.
func TestResolveTimeFieldWinsOverISO(t *testing.T) {
	t.Parallel()
	got := Resolve(RawEvent{Date: "2024-01-10T00:00:00-05:00", Time: "08:30"})
	want := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	if got.Confidence != Confirmed {
		t.Fatalf("Confidence = %v, want confirmed", got.Confidence)
	}
	if !got.Instant.Equal(want) {
		t.Fatalf("Instant = %v, want %v", got.Instant, want)
	}
}

func TestConfidenceString(t *testing.T) {
	t.Parallel()
	if Confirmed.String() != "confirmed" || TentativeDateOnly.String() != "tentative" || Unresolvable.String() != "unresolvable" {
		t.Fatal("unexpected Confidence names")
	}
}
