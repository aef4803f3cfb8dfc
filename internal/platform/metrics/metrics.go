// Package metrics owns the process prometheus registry: runtime collectors,
// the /metrics handler and pushgateway delivery for one-shot CLI runs
package metrics

import (
	"context"
	"net/http"
	"strings"

	"bulkscan/internal/platform/config"
	"bulkscan/internal/platform/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Namespace prefixes every application metric
const Namespace = "bulkscan"

// Config for metrics delivery
type Config struct {
	PushURL string // pushgateway base url; empty disables Push
	Job     string
}

// FromConfig reads CORE_METRICS_*
func FromConfig(cfg config.Conf) Config {
	c := cfg.Prefix("CORE_METRICS_")
	return Config{
		PushURL: strings.TrimSpace(c.MayString("PUSH_URL", "")),
		Job:     c.MayString("JOB", Namespace),
	}
}

// Manager wraps an isolated registry
type Manager struct {
	registry *prometheus.Registry
	cfg      Config
}

// NewManager builds a registry with the Go and process collectors
func NewManager(cfg Config) *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.Job == "" {
		cfg.Job = Namespace
	}
	return &Manager{registry: reg, cfg: cfg}
}

// Registry returns the underlying registry for collectors to register on
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the prometheus exposition format
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Push delivers the current registry to the configured pushgateway.
// It is a no-op when no URL is configured
func (m *Manager) Push(ctx context.Context) error {
	if m.cfg.PushURL == "" {
		return nil
	}
	err := push.New(m.cfg.PushURL, m.cfg.Job).Gatherer(m.registry).PushContext(ctx)
	if err != nil {
		logger.Named("metrics").Warn().Err(err).Str("url", m.cfg.PushURL).Msg("push failed")
	}
	return err
}
