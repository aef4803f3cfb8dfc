// Package pg builds the pgx pool and its statement tracer
package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config for one pool
type Config struct {
	URL      string
	MaxConns int32
	AppName  string
	Tracer   pgx.QueryTracer // nil disables statement logging
}

var newPool = pgxpool.NewWithConfig

// ParseConfig applies cfg over the URL without connecting
func ParseConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	pc.ConnConfig.Tracer = cfg.Tracer
	return pc, nil
}

// Open creates the pool. Connections are dialled lazily
func Open(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := ParseConfig(cfg)
	if err != nil {
		return nil, err
	}
	return newPool(ctx, pc)
}
