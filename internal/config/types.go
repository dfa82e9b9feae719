package config

// Config is the whole file. All durations are Go duration strings
// (e.g. "500ms", "20s", "1m").
//
// Credentials and locations may also come from the environment, which wins
// over the file: BOT_TOKEN, CHAT_ID, FEED_URL, ECONALERT_LEDGER.
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Feed     FeedConfig     `json:"feed"`
	Filter   FilterConfig   `json:"filter"`
	Alert    AlertConfig    `json:"alert"`
	Ledger   LedgerConfig   `json:"ledger"`
	Logging  LoggingConfig  `json:"logging"`

	// Schedule and Metrics are only read by `serve`. One-shot runs ignore them.
	Schedule ScheduleConfig `json:"schedule,omitempty"`
	Metrics  MetricsConfig  `json:"metrics,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// ChatID is a numeric chat id or a public @username.
	ChatID   string `json:"chat_id"`
	ThreadID int    `json:"thread_id,omitempty"`
	// Timeout bounds one sendMessage call. Default "20s".
	Timeout    string  `json:"timeout,omitempty"`
	RatePerSec float64 `json:"rate_per_sec,omitempty"`
	// APIURL overrides https://api.telegram.org (local Bot API server).
	APIURL string `json:"api_url,omitempty"`
}

type FeedConfig struct {
	URL string `json:"url"`
	// Timeout bounds the GET. Default "20s".
	Timeout   string `json:"timeout,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// FilterConfig lists the impact levels and currency/country codes to alert on.
// Values are matched exactly as the feed spells them.
type FilterConfig struct {
	Impacts   []string `json:"impacts"`
	Countries []string `json:"countries"`
}

// AlertConfig controls when and how alerts are shown.
//
// WindowMin/WindowMax bound minutes-before-event, inclusive. TimezoneOffset is
// "+05:30"-style or an IANA zone name; it sets both the displayed clock and
// which calendar day counts as "today" for tentative events.
type AlertConfig struct {
	WindowMin      float64 `json:"window_min"`
	WindowMax      float64 `json:"window_max"`
	TimezoneOffset string  `json:"timezone_offset"`
	TimezoneLabel  string  `json:"timezone_label,omitempty"`
}

type LedgerConfig struct {
	Path string `json:"path"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ScheduleConfig drives the in-process trigger of `serve`.
// Spec is a cron expression ("*/5 * * * *", "@every 5m").
type ScheduleConfig struct {
	Spec     string `json:"spec,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint of `serve` when Listen is set
// (e.g. "127.0.0.1:9464").
type MetricsConfig struct {
	Listen string `json:"listen,omitempty"`
}

// Default returns the values used for anything the file leaves out.
func Default() Config {
	return Config{
		Telegram: TelegramConfig{Timeout: "20s", RatePerSec: 1},
		Feed:     FeedConfig{Timeout: "20s"},
		Filter: FilterConfig{
			Impacts:   []string{"High", "Medium"},
			Countries: []string{"USD", "CNY"},
		},
		Alert: AlertConfig{
			WindowMin:      10,
			WindowMax:      20,
			TimezoneOffset: "+05:30",
			TimezoneLabel:  "IST",
		},
		Ledger:   LedgerConfig{Path: "sent_events.json"},
		Logging:  LoggingConfig{Level: "info", Console: true},
		Schedule: ScheduleConfig{Spec: "*/5 * * * *", Timezone: "UTC"},
	}
}
