package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	logx "econalert/pkg/logx"
)

// ErrMissing wraps every absent required value.
var ErrMissing = errors.New("missing required config")

// Validate checks everything a run needs before any network call is made.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var errs []error

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		errs = append(errs, fmt.Errorf("%w: telegram.token (or BOT_TOKEN)", ErrMissing))
	}
	if strings.TrimSpace(cfg.Telegram.ChatID) == "" {
		errs = append(errs, fmt.Errorf("%w: telegram.chat_id (or CHAT_ID)", ErrMissing))
	}
	if strings.TrimSpace(cfg.Feed.URL) == "" {
		errs = append(errs, fmt.Errorf("%w: feed.url (or FEED_URL)", ErrMissing))
	} else if u, err := url.Parse(cfg.Feed.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("feed.url: %q is not an http(s) URL", cfg.Feed.URL))
	}
	if strings.TrimSpace(cfg.Ledger.Path) == "" {
		errs = append(errs, fmt.Errorf("%w: ledger.path", ErrMissing))
	}
	if len(nonEmpty(cfg.Filter.Impacts)) == 0 {
		errs = append(errs, fmt.Errorf("%w: filter.impacts", ErrMissing))
	}
	if len(nonEmpty(cfg.Filter.Countries)) == 0 {
		errs = append(errs, fmt.Errorf("%w: filter.countries", ErrMissing))
	}
	if cfg.Alert.WindowMin > cfg.Alert.WindowMax {
		errs = append(errs, fmt.Errorf("alert: window_min (%v) > window_max (%v)", cfg.Alert.WindowMin, cfg.Alert.WindowMax))
	}
	if _, err := ParseLocation(cfg.Alert.TimezoneOffset); err != nil {
		errs = append(errs, fmt.Errorf("alert.timezone_offset: %w", err))
	}
	if _, err := cfg.Telegram.SendTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := cfg.Feed.FetchTimeout(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Telegram.RatePerSec < 0 {
		errs = append(errs, errors.New("telegram.rate_per_sec must be >= 0"))
	}
	if !logx.ValidLevel(cfg.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level))
	}
	return errors.Join(errs...)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

var reOffset = regexp.MustCompile(`^([+-])(\d{1,2}):?(\d{2})$`)

// ParseLocation turns "+05:30", "-0400", "UTC"/"Z"/"" or an IANA zone name
// into a location. Offsets become fixed zones named after the offset.
func ParseLocation(raw string) (*time.Location, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToUpper(s) {
	case "", "Z", "UTC":
		return time.UTC, nil
	}
	if m := reOffset.FindStringSubmatch(s); m != nil {
		hh, _ := strconv.Atoi(m[2])
		mm, _ := strconv.Atoi(m[3])
		if hh > 14 || mm > 59 {
			return nil, fmt.Errorf("offset %q out of range", raw)
		}
		secs := hh*3600 + mm*60
		if m[1] == "-" {
			secs = -secs
		}
		return time.FixedZone(fmt.Sprintf("UTC%s%02d:%02d", m[1], hh, mm), secs), nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", raw, err)
	}
	return loc, nil
}
