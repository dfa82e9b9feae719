package app

import (
	"econalert/internal/calendar"
	"econalert/internal/config"
	"econalert/internal/feed"
	"econalert/internal/notifier"
	"econalert/internal/runner"
	kit "econalert/internal/transport"
	telegram "econalert/internal/transport/telegram/adapter"
	logx "econalert/pkg/logx"
)

// ---- Config mapping ----

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func feedConfig(cfg *config.Config) (feed.Config, error) {
	timeout, err := cfg.Feed.FetchTimeout()
	if err != nil {
		return feed.Config{}, err
	}
	return feed.Config{URL: cfg.Feed.URL, Timeout: timeout, UserAgent: cfg.Feed.UserAgent}, nil
}

func telegramConfig(cfg *config.Config) (telegram.Config, error) {
	timeout, err := cfg.Telegram.SendTimeout()
	if err != nil {
		return telegram.Config{}, err
	}
	return telegram.Config{Token: cfg.Telegram.Token, APIURL: cfg.Telegram.APIURL, Timeout: timeout}, nil
}

func notifierConfig(cfg *config.Config) (notifier.Config, error) {
	timeout, err := cfg.Telegram.SendTimeout()
	if err != nil {
		return notifier.Config{}, err
	}
	return notifier.Config{
		Target:         kit.ChatTarget{ChatID: cfg.Telegram.ChatID, ThreadID: cfg.Telegram.ThreadID},
		Timeout:        timeout,
		RatePerSec:     cfg.Telegram.RatePerSec,
		DisablePreview: true,
	}, nil
}

func runnerOptions(cfg *config.Config, dryRun bool) (runner.Options, error) {
	loc, err := config.ParseLocation(cfg.Alert.TimezoneOffset)
	if err != nil {
		return runner.Options{}, err
	}
	window := calendar.Window{Min: cfg.Alert.WindowMin, Max: cfg.Alert.WindowMax}
	return runner.Options{
		Filter:     calendar.NewFilter(cfg.Filter.Impacts, cfg.Filter.Countries, window, loc),
		Display:    calendar.Display{Location: loc, Label: cfg.Alert.TimezoneLabel},
		LedgerPath: cfg.Ledger.Path,
		DryRun:     dryRun,
	}, nil
}
