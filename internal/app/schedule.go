package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"econalert/internal/config"
	logx "econalert/pkg/logx"

	"github.com/robfig/cron/v3"
)

var scheduleParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule validates a schedule block and returns its trigger and zone.
func ParseSchedule(sc config.ScheduleConfig) (cron.Schedule, *time.Location, error) {
	spec := strings.TrimSpace(sc.Spec)
	if spec == "" {
		return nil, nil, fmt.Errorf("schedule.spec: %w", config.ErrMissing)
	}
	sched, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("schedule.spec %q: %w", spec, err)
	}
	loc := time.UTC
	if tz := strings.TrimSpace(sc.Timezone); tz != "" {
		loc, err = config.ParseLocation(tz)
		if err != nil {
			return nil, nil, fmt.Errorf("schedule.timezone: %w", err)
		}
	}
	return sched, loc, nil
}

// cronLogger adapts logx to cron.Logger.
type cronLogger struct{ log logx.Logger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Debug(msg, kvFields(kv)...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Error(msg, append(kvFields(kv), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	out := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			k = fmt.Sprint(kv[i])
		}
		out = append(out, logx.Any(k, kv[i+1]))
	}
	return out
}

// trigger owns the cron instance of serve mode. Overlapping runs are skipped
// and panics inside a run are recovered by the job chain.
type trigger struct {
	mu  sync.Mutex
	c   *cron.Cron
	id  cron.EntryID
	sc  config.ScheduleConfig
	job func()
	log logx.Logger
}

func newTrigger(job func(), log logx.Logger) *trigger {
	return &trigger{job: job, log: log}
}

// apply (re)starts cron with sc. A no-op when sc is unchanged.
func (t *trigger) apply(sc config.ScheduleConfig) error {
	sched, loc, err := ParseSchedule(sc)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.c != nil && t.sc == sc {
		return nil
	}
	if t.c != nil {
		<-t.c.Stop().Done()
	}

	cl := cronLogger{log: t.log}
	c := cron.New(
		cron.WithParser(scheduleParser),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	t.id = c.Schedule(sched, cron.FuncJob(t.job))
	c.Start()
	t.c = c
	t.sc = sc

	t.log.Info("schedule armed",
		logx.String("spec", sc.Spec),
		logx.String("tz", loc.String()),
		logx.Time("next", c.Entry(t.id).Next),
	)
	return nil
}

// stop halts triggering and waits for a running job or ctx.
func (t *trigger) stop(ctx context.Context) {
	t.mu.Lock()
	c := t.c
	t.c = nil
	t.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
