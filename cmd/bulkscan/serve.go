package main

import (
	"context"

	"bulkscan/internal/modkit"
	"bulkscan/internal/platform/logger"
	phttp "bulkscan/internal/platform/net/http"
	"bulkscan/internal/services/api"
	bulkapi "bulkscan/internal/services/api/bulk/module"
	bulkmod "bulkscan/internal/services/bulk/module"

	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the bulk API, health and metrics over HTTP",
		Long: `Serve starts the HTTP API. Runs requested over HTTP execute synchronously;
CORE_API_MAX_RUNS bounds how many run at once and CORE_API_SHUTDOWN_GRACE
is how long in-flight runs get to finish after a signal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), root)
		},
	}
}

func serve(ctx context.Context, root *rootOptions) error {
	log := logger.Get()

	a, err := build(ctx, root.cfg, bulkmod.Options{}, "api")
	if err != nil {
		return badUsage("startup failed", err)
	}
	defer a.close()

	srv := phttp.NewServer(root.cfg.Prefix("CORE_API_"))

	opt := api.FromConfig(root.cfg)
	opt.Health = a.store
	opt.Metrics = a.metrics.Handler()
	opt.Bulk = bulkapi.Ports{
		Runner:    a.bulk.Runner,
		Audits:    a.bulk.Audit,
		Summaries: a.stats.Query,
	}
	api.Mount(srv.Router(), modkit.Deps{Log: *log, Cfg: root.cfg, PG: a.store.PG, CH: a.store.CH}, opt)

	if err := srv.Run(ctx); err != nil {
		return failed("http server stopped", err)
	}
	return nil
}
