package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"econalert/internal/config"
	"econalert/internal/feed"
	"econalert/internal/metrics"
	"econalert/internal/runtime/supervisor"
	logx "econalert/pkg/logx"

	"github.com/coreos/go-systemd/v22/daemon"
)

const stopTimeout = 30 * time.Second

// Serve runs a pass immediately and then on every schedule tick until ctx is
// done. Config file edits are picked up between passes; a pass in flight when
// a tick fires makes that tick a no-op, so one process never runs two passes
// against the same ledger. Pass outcomes are exported on metrics.listen when
// set.
func (a *App) Serve(ctx context.Context) error {
	cfg := a.cfgm.Get()
	if _, _, err := ParseSchedule(cfg.Schedule); err != nil {
		return err
	}

	sup := supervisor.NewSupervisor(ctx,
		supervisor.WithLogger(a.log.With(logx.String("comp", "supervisor"))),
		supervisor.WithCancelOnError(true),
	)
	runCtx := sup.Context()
	rec := metrics.New()

	var passMu sync.Mutex
	job := func() {
		if runCtx.Err() != nil {
			return
		}
		if !passMu.TryLock() {
			a.log.Info("previous pass still running; tick skipped")
			return
		}
		defer passMu.Unlock()
		rep, err := a.RunOnce(runCtx, false)
		if !errors.Is(err, context.Canceled) {
			rec.Observe(rep, err, a.now())
		}
		switch {
		case err == nil:
		case errors.Is(err, feed.ErrUnavailable):
			a.log.Warn("pass skipped: feed unavailable", logx.Err(err))
		case errors.Is(err, context.Canceled):
		default:
			a.log.Error("pass failed", logx.Err(err), logx.Int("notified", rep.Notified))
		}
	}

	trig := newTrigger(job, a.log.With(logx.String("comp", "schedule")))
	if err := trig.apply(cfg.Schedule); err != nil {
		sup.Cancel()
		return err
	}

	updates := a.cfgm.Subscribe(1)
	sup.Go("config-watch", a.cfgm.Watch)
	sup.Go("config-apply", func(ctx context.Context) error {
		prev := cfg
		for {
			select {
			case <-ctx.Done():
				return nil
			case next := <-updates:
				changed, attrs := config.SummarizeConfigChange(prev, next)
				if len(changed) == 0 {
					continue
				}
				a.log.Info("config applied", append([]logx.Field{logx.Strs("sections", changed)}, attrs...)...)
				if err := trig.apply(next.Schedule); err != nil {
					a.log.Warn("schedule change rejected; keeping previous", logx.Err(err))
				}
				prev = next
			}
		}
	})
	if addr := cfg.Metrics.Listen; addr != "" {
		srv := metrics.NewServer(addr, rec)
		sup.Go("metrics", srv.Run)
		a.log.Info("metrics listening", logx.String("addr", addr))
	}
	sup.Go("startup-pass", func(ctx context.Context) error {
		job()
		return nil
	})
	if every, err := daemon.SdWatchdogEnabled(false); err == nil && every > 0 {
		sup.Go("watchdog", func(ctx context.Context) error {
			tk := time.NewTicker(every / 2)
			defer tk.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-tk.C:
					_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
				}
			}
		})
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Debug("sd_notify failed", logx.Err(err))
	} else if ok {
		a.log.Debug("sd_notify ready")
	}
	a.log.Info("serving", logx.String("feed", config.RedactURL(cfg.Feed.URL)))

	<-runCtx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	a.log.Info("stopping")

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	trig.stop(stopCtx)
	sup.Cancel()
	if err := sup.Wait(stopCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return sup.Err()
}
