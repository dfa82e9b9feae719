// Package metrics exposes per-pass counters of serve mode in the Prometheus
// text format.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"econalert/internal/feed"
	"econalert/internal/runner"
)

const namespace = "econalert"

// Recorder owns a private registry so tests and multiple instances never
// collide on the global one.
type Recorder struct {
	reg *prometheus.Registry

	runs        *prometheus.CounterVec
	events      *prometheus.CounterVec
	runDuration prometheus.Summary
	lastSuccess prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{reg: prometheus.NewRegistry()}
	r.runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Passes by result (ok, feed_unavailable, error)",
	}, []string{"result"})
	r.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "Feed events by the stage that decided them",
	}, []string{"stage"})
	r.runDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of one pass",
	})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last pass that fetched the feed",
	})
	r.reg.MustRegister(
		r.runs, r.events, r.runDuration, r.lastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe records the outcome of one pass.
func (r *Recorder) Observe(rep runner.Report, err error, at time.Time) {
	switch {
	case err == nil:
		r.runs.WithLabelValues("ok").Inc()
		r.lastSuccess.Set(float64(at.Unix()))
	case errors.Is(err, feed.ErrUnavailable):
		r.runs.WithLabelValues("feed_unavailable").Inc()
		return
	default:
		r.runs.WithLabelValues("error").Inc()
	}
	r.runDuration.Observe(rep.Took.Seconds())

	for stage, n := range map[string]int{
		"fetched":       rep.Fetched,
		"filtered":      rep.Filtered,
		"unresolvable":  rep.Unresolvable,
		"out_of_window": rep.OutOfWindow,
		"duplicate":     rep.Duplicate,
		"notified":      rep.Notified,
		"failed":        rep.Failed,
	} {
		r.events.WithLabelValues(stage).Add(float64(n))
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Server serves /metrics and /healthz.
type Server struct {
	srv *http.Server
}

func NewServer(addr string, r *Recorder) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shCtx)
	}
}
