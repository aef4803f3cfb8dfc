// Package module implements the bulk module: it wires the repo, content
// loader, matcher and worker pool into a single run session
package module

import (
	"os"

	"bulkscan/internal/adapters/repository"
	"bulkscan/internal/core/matcher"
	"bulkscan/internal/modkit"
	"bulkscan/internal/modkit/httpkit"
	"bulkscan/internal/platform/heartbeat"
	"bulkscan/internal/services/bulk/domain"
	"bulkscan/internal/services/bulk/repo"
	"bulkscan/internal/services/bulk/service"
)

// Ports exposed by the bulk module
type Ports struct {
	Runner domain.RunnerPort
	Audit  domain.AuditPort
	Heart  *heartbeat.Heart
}

// Module implements module.Module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the bulk module. Optional collaborators come in through
// modkit.WithPorts(domain.Ports)
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("bulk"),
	}, opts...)...)

	if deps.PG == nil {
		panic("bulk module: postgres is required")
	}
	var extra domain.Ports
	if b.Ports != nil {
		p, ok := b.Ports.(domain.Ports)
		if !ok {
			panic("bulk module: expected WithPorts(bulk/domain.Ports)")
		}
		extra = p
	}

	cfg := FromConfig(deps.Cfg).merge(overrides)

	binder := repo.NewPG()
	st := binder.Bind(deps.PG)

	loader, err := repository.New(cfg.Repo, binder)
	if err != nil {
		panic(err)
	}

	heart := heartbeat.New(os.Stdout, cfg.Heartbeat)

	pool := service.NewPool(st, deps.PG, loader, matcher.New(), service.NewRecorder(binder), service.PoolConfig{
		Workers:         cfg.Workers,
		ConnectAttempts: cfg.ConnectAttempts,
		ConnectDelay:    cfg.ConnectDelay,
		DryRun:          cfg.DryRun,
	})
	pool.Heart = heart
	obs := service.Observers{service.NewLogObserver()}
	if extra.Observer != nil {
		obs = append(obs, extra.Observer)
	}
	pool.Obs = obs

	session := service.NewSession(st, pool, service.SessionConfig{
		AgentName: cfg.AgentName,
		AgentRev:  cfg.AgentRev,
	})
	if extra.Summary != nil {
		session.Summary = extra.Summary
	}

	deps.Log.Info().
		Int("workers", pool.Cfg.Workers).
		Str("repo", cfg.Repo.Kind).
		Bool("dry_run", cfg.DryRun).
		Msg("bulk module ready")

	return &Module{
		deps: deps,
		opts: cfg,
		ports: Ports{
			Runner: session,
			Audit:  st,
			Heart:  heart,
		},
	}
}

// Options returns the merged configuration
func (m *Module) Options() Options { return m.opts }

// Name implements module.Module
func (m *Module) Name() string { return "bulk" }

// Ports implements module.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes is a no-op; the module has no HTTP surface
func (m *Module) MountRoutes(httpkit.Router) {}
