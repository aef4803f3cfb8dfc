package store

import (
	"context"

	"bulkscan/internal/platform/store/ch"
)

type chClient interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (ch.Rows, error)
	Ping(ctx context.Context) error
	Close() error
}

var chOpen = func(ctx context.Context, cfg ch.Config) (chClient, error) { return ch.Open(ctx, cfg) }

func openCH(ctx context.Context, cfg Config) (Clickhouse, error) {
	c, err := chOpen(ctx, ch.Config{URL: cfg.CH.URL, Role: cfg.CH.Role})
	if err != nil {
		return nil, err
	}
	return columnar{c}, nil
}

// columnar narrows the driver rows to Rows
type columnar struct{ chClient }

func (c columnar) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := c.chClient.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
