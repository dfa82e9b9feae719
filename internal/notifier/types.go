package notifier

import (
	"fmt"
	"time"

	kit "econalert/internal/transport"
)

// Config controls delivery.
type Config struct {
	Target kit.ChatTarget
	// Timeout bounds a single send (including pacing wait).
	Timeout        time.Duration
	RatePerSec     float64
	DisablePreview bool
	HistorySize    int
}

// DeliveryError reports a failed or rejected send.
type DeliveryError struct {
	Chat string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.Chat, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type HistoryItem struct {
	At        time.Time
	MessageID int
	Text      string
}
