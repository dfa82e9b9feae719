package app

import (
	"context"
	"fmt"
	"time"

	"econalert/internal/config"
	"econalert/internal/feed"
	"econalert/internal/notifier"
	"econalert/internal/runner"
	kit "econalert/internal/transport"
	telegram "econalert/internal/transport/telegram/adapter"
	logx "econalert/pkg/logx"
)

// App wires config, logging, the feed, the Telegram sink and the ledger into
// runner passes.
type App struct {
	cfgm *config.Manager

	log  logx.Logger
	logs *logx.Service

	// sender overrides the Telegram adapter (tests).
	sender kit.Sender
	now    func() time.Time
}

type Option func(*App)

// WithSender replaces the Telegram sink.
func WithSender(s kit.Sender) Option { return func(a *App) { a.sender = s } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(a *App) { a.now = now } }

// WithLogger replaces the logger built from the config.
func WithLogger(log logx.Logger) Option { return func(a *App) { a.log = log } }

// New loads and validates the config. Every error is fatal and happens before
// any network call.
func New(cfgPath string, opts ...Option) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &App{cfgm: cfgm, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	if a.log.IsZero() {
		a.logs, a.log = logx.New(loggingConfig(cfg))
	}
	cfgm.SetLogger(a.log.With(logx.String("comp", "config")))

	a.log.Debug("config loaded",
		logx.String("path", cfgm.Path()),
		logx.String("feed", config.RedactURL(cfg.Feed.URL)),
		logx.String("ledger", cfg.Ledger.Path),
	)
	return a, nil
}

func (a *App) Config() *config.Config { return a.cfgm.Get() }

func (a *App) Logger() logx.Logger { return a.log }

// Close releases the log file.
func (a *App) Close() error {
	return a.logs.Close()
}

// buildRunner assembles a runner for one pass from an immutable config snapshot.
func (a *App) buildRunner(cfg *config.Config, dryRun bool) (*runner.Runner, error) {
	fc, err := feedConfig(cfg)
	if err != nil {
		return nil, err
	}

	sender := a.sender
	if sender == nil {
		tc, err := telegramConfig(cfg)
		if err != nil {
			return nil, err
		}
		ad, err := telegram.New(tc, a.log.With(logx.String("comp", "telegram")))
		if err != nil {
			return nil, err
		}
		sender = ad
	}

	nc, err := notifierConfig(cfg)
	if err != nil {
		return nil, err
	}
	notif := notifier.New(nc, sender, a.log.With(logx.String("comp", "notifier")))

	ro, err := runnerOptions(cfg, dryRun)
	if err != nil {
		return nil, err
	}
	return runner.New(feed.New(fc), notif, ro, a.log.With(logx.String("comp", "runner"))), nil
}

// RunOnce performs a single pass with the loaded config.
func (a *App) RunOnce(ctx context.Context, dryRun bool) (runner.Report, error) {
	r, err := a.buildRunner(a.cfgm.Get(), dryRun)
	if err != nil {
		return runner.Report{}, err
	}
	return r.Run(ctx, a.now())
}
