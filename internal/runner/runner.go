// Package runner executes one alerting pass:
// fetch → resolve → filter → dedup → notify → persist ledger.
//
// A pass is terminal; repetition is the caller's (scheduler's) business.
package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	logx "econalert/pkg/logx"

	"econalert/internal/calendar"
	"econalert/internal/feed"
	"econalert/internal/ledger"
)

// Feed supplies the raw events of one pass.
type Feed interface {
	Fetch(ctx context.Context) ([]calendar.RawEvent, error)
}

// Deliverer hands a formatted alert to the messaging sink.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// Options is the immutable per-pass configuration.
type Options struct {
	Filter     *calendar.Filter
	Display    calendar.Display
	LedgerPath string
	// DryRun formats and logs alerts without delivering them or touching the ledger.
	DryRun bool
}

// Report counts what happened to the events of a pass.
type Report struct {
	Fetched      int
	Filtered     int // failed impact/country allow-lists or had no title
	Unresolvable int
	OutOfWindow  int
	Duplicate    int
	Notified     int
	Failed       int
	LedgerSaved  bool
	Took         time.Duration
}

type Runner struct {
	feed    Feed
	deliver Deliverer
	opts    Options
	log     logx.Logger
}

func New(f Feed, d Deliverer, opts Options, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{feed: f, deliver: d, opts: opts, log: log}
}

// Run performs one pass at now.
//
// A feed failure aborts before the ledger is read and returns an error
// wrapping feed.ErrUnavailable. A failed delivery is counted and logged; the
// event stays out of the ledger so the next pass tries again.
func (r *Runner) Run(ctx context.Context, now time.Time) (Report, error) {
	start := time.Now()
	var rep Report

	events, err := r.feed.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, feed.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", feed.ErrUnavailable, err)
		}
		r.log.Error("feed fetch failed; run aborted", logx.Err(err))
		return rep, err
	}
	rep.Fetched = len(events)

	openLedger := ledger.Open
	if r.opts.DryRun {
		openLedger = ledger.OpenReadOnly
	}
	led, err := openLedger(r.opts.LedgerPath, r.log)
	if err != nil {
		return rep, fmt.Errorf("open ledger: %w", err)
	}

	for _, ev := range events {
		if ctx.Err() != nil {
			break
		}
		r.process(ctx, now, ev, led, &rep)
	}

	if !r.opts.DryRun {
		saved, err := led.SaveIfChanged()
		if err != nil {
			r.log.Error("ledger save failed", logx.String("path", led.Path()), logx.Err(err))
			return rep, fmt.Errorf("save ledger: %w", err)
		}
		rep.LedgerSaved = saved
	}

	rep.Took = time.Since(start)
	r.log.Info("run finished",
		logx.Int("fetched", rep.Fetched),
		logx.Int("filtered", rep.Filtered),
		logx.Int("unresolvable", rep.Unresolvable),
		logx.Int("out_of_window", rep.OutOfWindow),
		logx.Int("duplicate", rep.Duplicate),
		logx.Int("notified", rep.Notified),
		logx.Int("failed", rep.Failed),
		logx.Bool("ledger_saved", rep.LedgerSaved),
		logx.Duration("took", rep.Took),
	)
	return rep, ctx.Err()
}

func (r *Runner) process(ctx context.Context, now time.Time, ev calendar.RawEvent, led *ledger.Ledger, rep *Report) {
	if strings.TrimSpace(ev.Title) == "" || !r.opts.Filter.PassesBasic(ev) {
		rep.Filtered++
		return
	}

	res := calendar.Resolve(ev)
	if res.Confidence == calendar.Unresolvable {
		rep.Unresolvable++
		r.log.Debug("event time unresolvable; skipped", logx.String("title", ev.Title), logx.String("date", ev.Date), logx.String("time", ev.Time))
		return
	}

	if !r.opts.Filter.InWindow(res, now) {
		rep.OutOfWindow++
		return
	}

	id := calendar.EventID(ev, res)
	if led.Contains(id) {
		rep.Duplicate++
		return
	}

	msg := calendar.Format(ev, res, now, r.opts.Display)
	log := r.log.With(
		logx.String("title", ev.Title),
		logx.String("country", ev.Country),
		logx.String("confidence", res.Confidence.String()),
		logx.String("id", id),
	)

	if r.opts.DryRun {
		// Marked in memory only, so duplicates within the feed are still skipped.
		led.Add(id)
		rep.Notified++
		log.Info("dry run: would notify", logx.String("message", msg))
		return
	}

	if err := r.deliver.Deliver(ctx, msg); err != nil {
		rep.Failed++
		log.Warn("delivery failed; will retry next run", logx.Err(err))
		return
	}
	led.Add(id)
	rep.Notified++
	log.Info("notified")
}
