package service

import (
	"context"

	"bulkscan/internal/platform/metrics"
	"bulkscan/internal/services/bulk/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts run activity. It is both an Observer and a SummaryPort
type Metrics struct {
	files          prometheus.Counter
	truncated      prometheus.Counter
	matches        prometheus.Counter
	recordFailures prometheus.Counter
	workerFailures prometheus.Counter
	runs           *prometheus.CounterVec
	duration       prometheus.Histogram
}

// NewMetrics registers the bulk collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace, Name: "files_scanned_total",
			Help: "Candidate files the matcher completed",
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace, Name: "files_truncated_total",
			Help: "Scanned files cut at the read cap",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace, Name: "matches_total",
			Help: "Full reference matches found",
		}),
		recordFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace, Name: "record_failures_total",
			Help: "Matches whose clearing decision could not be written",
		}),
		workerFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace, Name: "worker_failures_total",
			Help: "Workers that stopped before finishing their files",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace, Name: "runs_total",
			Help: "Finished runs by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metrics.Namespace, Name: "run_duration_seconds",
			Help:    "Wall time of a run from resolve to audit close",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
	reg.MustRegister(m.files, m.truncated, m.matches, m.recordFailures, m.workerFailures, m.runs, m.duration)
	return m
}

func (m *Metrics) FileScanned(string, int64)                     { m.files.Inc() }
func (m *Metrics) FileTruncated(string, int64)                   { m.truncated.Inc() }
func (m *Metrics) MatchFound(string, domain.MatchEvent)          { m.matches.Inc() }
func (m *Metrics) RecordFailed(string, domain.MatchEvent, error) { m.recordFailures.Inc() }
func (m *Metrics) WorkerFailed(string, int, error)               { m.workerFailures.Inc() }

// RunFinished counts the run and observes its duration
func (m *Metrics) RunFinished(_ context.Context, _ domain.RunRequest, out domain.Outcome) {
	label := "failure"
	if out.Success {
		label = "success"
	}
	m.runs.WithLabelValues(label).Inc()
	if d := out.Duration(); d > 0 {
		m.duration.Observe(d.Seconds())
	}
}
