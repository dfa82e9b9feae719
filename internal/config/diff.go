package config

import (
	"reflect"
	"strings"

	logx "econalert/pkg/logx"
)

// SummarizeConfigChange returns the changed sections and safe structured
// attrs for logging. Secrets (the bot token) are reported only as set/unset.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 8)
	attrs := make([]logx.Field, 0, 16)

	if oldCfg.Telegram.Token != newCfg.Telegram.Token ||
		oldCfg.Telegram.ChatID != newCfg.Telegram.ChatID ||
		oldCfg.Telegram.ThreadID != newCfg.Telegram.ThreadID ||
		strings.TrimSpace(oldCfg.Telegram.Timeout) != strings.TrimSpace(newCfg.Telegram.Timeout) ||
		oldCfg.Telegram.RatePerSec != newCfg.Telegram.RatePerSec ||
		oldCfg.Telegram.APIURL != newCfg.Telegram.APIURL {
		changed = append(changed, "telegram")
		attrs = append(attrs,
			logx.Bool("telegram.token_changed", oldCfg.Telegram.Token != newCfg.Telegram.Token),
			logx.String("telegram.chat_id", newCfg.Telegram.ChatID),
			logx.String("telegram.timeout", newCfg.Telegram.Timeout),
		)
	}

	if oldCfg.Feed != newCfg.Feed {
		changed = append(changed, "feed")
		attrs = append(attrs, logx.String("feed.url", RedactURL(newCfg.Feed.URL)), logx.String("feed.timeout", newCfg.Feed.Timeout))
	}

	if !reflect.DeepEqual(oldCfg.Filter, newCfg.Filter) {
		changed = append(changed, "filter")
		attrs = append(attrs, logx.Strs("filter.impacts", newCfg.Filter.Impacts), logx.Strs("filter.countries", newCfg.Filter.Countries))
	}

	if oldCfg.Alert != newCfg.Alert {
		changed = append(changed, "alert")
		attrs = append(attrs,
			logx.Float64("alert.window_min", newCfg.Alert.WindowMin),
			logx.Float64("alert.window_max", newCfg.Alert.WindowMax),
			logx.String("alert.timezone", newCfg.Alert.TimezoneOffset),
		)
	}

	if oldCfg.Ledger != newCfg.Ledger {
		changed = append(changed, "ledger")
		attrs = append(attrs, logx.String("ledger.path", newCfg.Ledger.Path))
	}

	if oldCfg.Logging != newCfg.Logging {
		changed = append(changed, "logging")
		attrs = append(attrs, logx.String("logging.level", newCfg.Logging.Level))
	}

	if oldCfg.Schedule != newCfg.Schedule {
		changed = append(changed, "schedule")
		attrs = append(attrs, logx.String("schedule.spec", newCfg.Schedule.Spec), logx.String("schedule.timezone", newCfg.Schedule.Timezone))
	}

	if oldCfg.Metrics != newCfg.Metrics {
		changed = append(changed, "metrics")
		attrs = append(attrs, logx.String("metrics.listen", newCfg.Metrics.Listen))
	}

	return changed, attrs
}

// RedactURL drops query strings and user info, which feeds sometimes use for keys.
func RedactURL(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "://"); i >= 0 {
		rest := s[i+3:]
		if at := strings.Index(rest, "@"); at >= 0 && at < strings.IndexByte(rest+"/", '/') {
			s = s[:i+3] + rest[at+1:]
		}
	}
	return s
}
