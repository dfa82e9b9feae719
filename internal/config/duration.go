package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTimeout applies to both the feed GET and one Telegram send.
	DefaultTimeout = 20 * time.Second
	// maxTimeout keeps one pass well inside the default 5-minute schedule.
	maxTimeout = 2 * time.Minute
)

// FetchTimeout is the bound on one feed GET.
func (c FeedConfig) FetchTimeout() (time.Duration, error) {
	return timeoutField("feed.timeout", c.Timeout)
}

// SendTimeout is the bound on one sendMessage call, pacing wait included.
func (c TelegramConfig) SendTimeout() (time.Duration, error) {
	return timeoutField("telegram.timeout", c.Timeout)
}

// timeoutField parses a Go duration string. Empty means DefaultTimeout; an
// explicit value must lie in (0, maxTimeout].
func timeoutField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(s)
	switch {
	case err != nil:
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	case d <= 0:
		return 0, fmt.Errorf("%s: %q must be positive", path, raw)
	case d > maxTimeout:
		return 0, fmt.Errorf("%s: %q exceeds %s", path, raw, maxTimeout)
	}
	return d, nil
}
