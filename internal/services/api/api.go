// Package api mounts the HTTP surface of the bulk scanner
package api

import (
	"context"
	"net/http"
	"time"

	"bulkscan/internal/modkit"
	"bulkscan/internal/modkit/httpkit"
	"bulkscan/internal/modkit/module"
	"bulkscan/internal/platform/config"
	perr "bulkscan/internal/platform/errors"
	phttp "bulkscan/internal/platform/net/http"
	"bulkscan/internal/platform/net/middleware"

	bulkapi "bulkscan/internal/services/api/bulk/module"
)

// Guarder reports whether the backing stores answer
type Guarder interface {
	Guard(ctx context.Context) error
}

// Options are the API options
type Options struct {
	CORSOrigins []string
	Tokens      []string // "name:token" pairs; empty leaves the API open
	MaxRuns     int      // concurrent run requests, 0 = unlimited
	Profiler    bool

	Health  Guarder
	Metrics http.Handler
	Bulk    bulkapi.Ports
}

// FromConfig reads CORE_API_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_API_")
	return Options{
		CORSOrigins: c.MayCSV("CORS_ORIGINS", nil),
		Tokens:      c.MayCSV("TOKENS", nil),
		MaxRuns:     c.MayInt("MAX_RUNS", 4),
		Profiler:    c.MayBool("PROFILER", false),
	}
}

// Mount mounts health, metrics, profiler and the versioned API onto r
func Mount(r phttp.Router, deps modkit.Deps, opt Options) {
	r.Get("/healthz", phttp.Handle(func(req *http.Request) phttp.Response {
		return health(req.Context(), opt.Health)
	}))
	if opt.Metrics != nil {
		r.Handle("/metrics", opt.Metrics)
	}
	phttp.MountProfiler(r, "/debug", opt.Profiler)

	var mws []func(http.Handler) http.Handler
	if opt.MaxRuns > 0 {
		mws = append(mws, middleware.Throttle(opt.MaxRuns))
	}
	mws = append(mws, middleware.AllowContentType("application/json"))

	bulk := bulkapi.New(deps,
		modkit.WithPorts(opt.Bulk),
		modkit.WithMiddlewares(mws...),
	)
	mods := []module.Module{bulk}

	var auth middleware.AuthPort
	if len(opt.Tokens) > 0 {
		auth = httpkit.NewPortFunc(httpkit.StaticTokens(opt.Tokens))
	}

	cors := middleware.CORSOptions{AllowedOrigins: opt.CORSOrigins}
	httpkit.MountAPIV1(r, httpkit.CommonStack(cors), func(api httpkit.Router) {
		httpkit.Protected(api, auth, func(r httpkit.Router) {
			for _, m := range mods {
				m.MountRoutes(r)
			}
		})
	})
}

func health(ctx context.Context, g Guarder) phttp.Response {
	if g == nil {
		return phttp.OK(map[string]string{"status": "ok"})
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := g.Guard(ctx); err != nil {
		return phttp.Error(perr.Wrap(err, perr.ErrorCodeUnavailable, "store unavailable"))
	}
	return phttp.OK(map[string]string{"status": "ok"})
}
