package main

import (
	"context"
	"errors"
	"time"

	"bulkscan/internal/core/version"
	"bulkscan/internal/modkit"
	"bulkscan/internal/modkit/module"
	"bulkscan/internal/platform/config"
	"bulkscan/internal/platform/logger"
	"bulkscan/internal/platform/metrics"
	"bulkscan/internal/platform/store"

	bulkdom "bulkscan/internal/services/bulk/domain"
	bulkmod "bulkscan/internal/services/bulk/module"
	"bulkscan/internal/services/bulk/service"
	rsmod "bulkscan/internal/services/runstats/module"
)

// app is the process composition shared by run and serve
type app struct {
	store   *store.Store
	metrics *metrics.Manager
	bulk    bulkmod.Ports
	stats   rsmod.Ports
}

// openStore opens postgres with one connection per worker plus one for the
// session, and clickhouse only when a url is configured
func openStore(ctx context.Context, root config.Conf, workers int, role string) (*store.Store, error) {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	url := pgCfg.MayString("DBURL", "")
	if url == "" {
		return nil, errors.New("SERVICE_PGSQL_DBURL is required")
	}
	conns := pgCfg.MayInt("MAX_CONNS", workers+2)
	if conns < workers+1 {
		logger.Get().Warn().Int("max_conns", conns).Int("workers", workers).Msg("raising pool size to workers+1")
		conns = workers + 1
	}
	chURL := chCfg.MayString("DBURL", "")

	return store.Open(ctx, store.Config{
		AppName: version.Service,
		PG: store.PGConfig{
			Enabled:  true,
			URL:      url,
			MaxConns: int32(conns),
			Slow:     pgCfg.MayDuration("SLOW", 500*time.Millisecond),
			LogSQL:   pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled: chURL != "",
			URL:     chURL,
			Role:    role,
		},
	}, store.WithLogger(*logger.Get()))
}

// build opens the store and wires the runstats and bulk modules with metrics attached
func build(ctx context.Context, root config.Conf, over bulkmod.Options, role string) (*app, error) {
	workers := over.Workers
	if workers <= 0 {
		workers = bulkmod.FromConfig(root).Workers
	}

	st, err := openStore(ctx, root, workers, role)
	if err != nil {
		return nil, err
	}

	mgr := metrics.NewManager(metrics.FromConfig(root))
	m := service.NewMetrics(mgr.Registry())

	deps := modkit.Deps{
		Log: *logger.Get(),
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
	}

	rs := rsmod.New(ctx, deps, rsmod.Options{})
	stats := module.MustPortsOf[rsmod.Ports](rs)

	bm := bulkmod.New(deps, over, modkit.WithPorts(bulkdom.Ports{
		Observer: m,
		Summary:  service.Summaries{m, stats.Sink},
	}))

	return &app{
		store:   st,
		metrics: mgr,
		bulk:    module.MustPortsOf[bulkmod.Ports](bm),
		stats:   stats,
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(context.Background()); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
