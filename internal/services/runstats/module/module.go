// Package module implements the runstats module: a clickhouse sink for
// finished bulk runs, disabled when no clickhouse is configured
package module

import (
	"context"

	"bulkscan/internal/modkit"
	"bulkscan/internal/modkit/httpkit"
	bulkdom "bulkscan/internal/services/bulk/domain"
	"bulkscan/internal/services/runstats/domain"
	"bulkscan/internal/services/runstats/repo"
	"bulkscan/internal/services/runstats/service"
)

// Ports exposed by the runstats module. Query is nil when disabled
type Ports struct {
	Sink  bulkdom.SummaryPort
	Query domain.QueryPort
}

// Module implements module.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the module. With deps.CH unset the sink drops every summary
func New(ctx context.Context, deps modkit.Deps, overrides Options) *Module {
	cfg := FromConfig(deps.Cfg)
	if overrides.WriteTimeout != 0 {
		cfg.WriteTimeout = overrides.WriteTimeout
	}

	m := &Module{deps: deps}
	if deps.CH == nil {
		m.ports = Ports{Sink: service.New(nil, service.Config{})}
		return m
	}

	r := repo.NewCH(deps.CH)
	if cfg.EnsureTable {
		if err := r.EnsureTable(ctx); err != nil {
			deps.Log.Warn().Err(err).Msg("runstats: table not ensured; writes may fail")
		}
	}
	m.ports = Ports{
		Sink:  service.New(r, service.Config{WriteTimeout: cfg.WriteTimeout}),
		Query: r,
	}
	return m
}

// Name implements module.Module
func (m *Module) Name() string { return "runstats" }

// Ports implements module.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; the module has no HTTP surface
func (m *Module) MountRoutes(httpkit.Router) {}
