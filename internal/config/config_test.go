package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
telegram:
  token: "123:abc"
  chat_id: "-100123"
  timeout: 10s
feed:
  url: https://example.com/ff_calendar_thisweek.json
filter:
  impacts: [High]
  countries: [USD, EUR]
alert:
  window_min: 5
  window_max: 15
  timezone_offset: "-04:00"
  timezone_label: EDT
ledger:
  path: /var/lib/econalert/sent.json
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBotToken, EnvChatID, EnvFeedURL, EnvLedger} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := NewManager(writeFile(t, "config.yaml", sampleYAML)).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "123:abc" || cfg.Telegram.ChatID != "-100123" {
		t.Fatalf("telegram = %+v", cfg.Telegram)
	}
	if len(cfg.Filter.Impacts) != 1 || cfg.Filter.Countries[1] != "EUR" {
		t.Fatalf("filter = %+v", cfg.Filter)
	}
	if cfg.Alert.WindowMin != 5 || cfg.Alert.WindowMax != 15 || cfg.Alert.TimezoneLabel != "EDT" {
		t.Fatalf("alert = %+v", cfg.Alert)
	}
	// Untouched sections keep their defaults.
	if cfg.Feed.Timeout != "20s" || cfg.Logging.Level != "info" {
		t.Fatalf("defaults lost: feed=%+v logging=%+v", cfg.Feed, cfg.Logging)
	}
}

func TestLoadJSONRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"telegram":{"token":"x","chat_id":"1","polling":true}}`)
	if _, err := NewManager(path).Load(); err == nil || !strings.Contains(err.Error(), "polling") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestLoadRejectsTrailingData(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{} {}`)
	if _, err := NewManager(path).Parse(); err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBotToken, "env-token")
	t.Setenv(EnvFeedURL, "https://feed.example/events.json")
	cfg, err := NewManager(writeFile(t, "config.yaml", sampleYAML)).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "env-token" || cfg.Feed.URL != "https://feed.example/events.json" {
		t.Fatalf("env not applied: %+v %+v", cfg.Telegram, cfg.Feed)
	}
	if cfg.Telegram.ChatID != "-100123" {
		t.Fatalf("chat id from file lost: %q", cfg.Telegram.ChatID)
	}
}

func TestEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBotToken, "t")
	t.Setenv(EnvChatID, "@alerts")
	t.Setenv(EnvFeedURL, "https://feed.example/events.json")
	cfg, err := NewManager("").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Ledger.Path != "sent_events.json" || cfg.Alert.TimezoneLabel != "IST" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestMissingCredentialsFatal(t *testing.T) {
	clearEnv(t)
	_, err := NewManager("").Load()
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("err = %v, want ErrMissing", err)
	}
	for _, want := range []string{"telegram.token", "telegram.chat_id", "feed.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %s: %v", want, err)
		}
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		c := Default()
		c.Telegram.Token = "t"
		c.Telegram.ChatID = "1"
		c.Feed.URL = "https://feed.example/x.json"
		return c
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"inverted window", func(c *Config) { c.Alert.WindowMin, c.Alert.WindowMax = 30, 10 }, false},
		{"equal window", func(c *Config) { c.Alert.WindowMin, c.Alert.WindowMax = 15, 15 }, true},
		{"bad offset", func(c *Config) { c.Alert.TimezoneOffset = "+25:00" }, false},
		{"iana zone", func(c *Config) { c.Alert.TimezoneOffset = "UTC" }, true},
		{"no impacts", func(c *Config) { c.Filter.Impacts = []string{" "} }, false},
		{"no countries", func(c *Config) { c.Filter.Countries = nil }, false},
		{"bad feed scheme", func(c *Config) { c.Feed.URL = "ftp://feed.example/x" }, false},
		{"bad timeout", func(c *Config) { c.Feed.Timeout = "soon" }, false},
		{"zero timeout", func(c *Config) { c.Telegram.Timeout = "0s" }, false},
		{"huge timeout", func(c *Config) { c.Feed.Timeout = "1h" }, false},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, false},
		{"no ledger", func(c *Config) { c.Ledger.Path = "" }, false},
	}
	for _, tt := range tests {
		c := base()
		tt.mutate(&c)
		err := Validate(&c)
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate err = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

// Non-credential settings default to the values the alerter has always shipped
// with, but a file that names a setting must give it a usable value.
func TestDefaultsAndExplicitEmptyLists(t *testing.T) {
	clearEnv(t)
	d := Default()
	if strings.Join(d.Filter.Impacts, ",") != "High,Medium" || strings.Join(d.Filter.Countries, ",") != "USD,CNY" {
		t.Fatalf("default filter = %+v", d.Filter)
	}
	if d.Alert.WindowMin != 10 || d.Alert.WindowMax != 20 || d.Alert.TimezoneOffset != "+05:30" {
		t.Fatalf("default alert = %+v", d.Alert)
	}

	path := writeFile(t, "config.json", `{
  "telegram": {"token": "123:abc", "chat_id": "-100"},
  "feed": {"url": "https://feed.example/cal.json"},
  "filter": {"impacts": [], "countries": ["USD"]}
}`)
	_, err := NewManager(path).Load()
	if !errors.Is(err, ErrMissing) || !strings.Contains(err.Error(), "filter.impacts") {
		t.Fatalf("Load err = %v, want missing filter.impacts", err)
	}
}

func TestTimeouts(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{"", DefaultTimeout, false},
		{"  ", DefaultTimeout, false},
		{"500ms", 500 * time.Millisecond, false},
		{"2m", 2 * time.Minute, false},
		{"0s", 0, true},
		{"-1s", 0, true},
		{"3m", 0, true},
		{"twenty", 0, true},
	}
	for _, tt := range tests {
		got, err := FeedConfig{Timeout: tt.raw}.FetchTimeout()
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FetchTimeout(%q) = %v, %v; want %v, err=%v", tt.raw, got, err, tt.want, tt.wantErr)
		}
		got, err = TelegramConfig{Timeout: tt.raw}.SendTimeout()
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("SendTimeout(%q) = %v, %v; want %v, err=%v", tt.raw, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseLocation(t *testing.T) {
	t.Parallel()
	ref := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
	tests := []struct {
		raw  string
		want string
	}{
		{"+05:30", "14:00"},
		{"+0530", "14:00"},
		{"-04:00", "04:30"},
		{"", "08:30"},
		{"Z", "08:30"},
	}
	for _, tt := range tests {
		loc, err := ParseLocation(tt.raw)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", tt.raw, err)
		}
		if got := ref.In(loc).Format("15:04"); got != tt.want {
			t.Errorf("ParseLocation(%q): clock = %s, want %s", tt.raw, got, tt.want)
		}
	}
	if _, err := ParseLocation("Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestSummarizeConfigChange(t *testing.T) {
	t.Parallel()
	a := Default()
	b := Default()
	b.Telegram.Token = "secret"
	b.Alert.WindowMax = 30

	changed, attrs := SummarizeConfigChange(&a, &b)
	if strings.Join(changed, ",") != "telegram,alert" {
		t.Fatalf("changed = %v", changed)
	}
	if len(attrs) == 0 {
		t.Fatal("expected attrs")
	}
}

func TestRedactURL(t *testing.T) {
	t.Parallel()
	if got := RedactURL("https://user:pw@feed.example/a.json?key=1"); got != "https://feed.example/a.json" {
		t.Fatalf("RedactURL = %q", got)
	}
}

func TestWatchPublishesValidChange(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", sampleYAML)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	sub := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = m.Watch(ctx)
		close(done)
	}()
	defer func() { cancel(); <-done }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	// An invalid edit is never published.
	if err := os.WriteFile(path, []byte(strings.Replace(sampleYAML, "window_min: 5", "window_min: 50", 1)), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-sub:
		t.Fatalf("invalid config published: %+v", cfg.Alert)
	case <-time.After(600 * time.Millisecond):
	}

	if err := os.WriteFile(path, []byte(strings.Replace(sampleYAML, "window_max: 15", "window_max: 25", 1)), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case cfg := <-sub:
		if cfg.Alert.WindowMax != 25 {
			t.Fatalf("WindowMax = %v, want 25", cfg.Alert.WindowMax)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("config change not published")
	}
	if m.Get().Alert.WindowMax != 25 {
		t.Fatal("Get() does not reflect the reload")
	}
}
