package store

import (
	"context"
	"fmt"
	"time"

	"bulkscan/internal/platform/logger"
	"bulkscan/internal/platform/store/pg"

	"github.com/avast/retry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is satisfied by *pgxpool.Pool and *pgxpool.Conn
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type querier struct{ db pgxQuerier }

func (q querier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	tag, err := q.db.Exec(ctx, sql, args...)
	return tag, err
}

func (q querier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (q querier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return q.db.QueryRow(ctx, sql, args...)
}

type pool struct {
	querier
	p *pgxpool.Pool
}

// seams
var (
	pgOpen  = pg.Open
	pgPing  = func(ctx context.Context, p *pgxpool.Pool) error { return p.Ping(ctx) }
	acquire = func(ctx context.Context, p *pgxpool.Pool) (pgxQuerier, func(), error) {
		c, err := p.Acquire(ctx)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Release, nil
	}
)

func openPG(ctx context.Context, cfg Config, log logger.Logger) (*pool, error) {
	var tracer pgx.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.NewTracer(log, cfg.PG.Slow)
	}
	p, err := pgOpen(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
		Tracer:   tracer,
	})
	if err != nil {
		return nil, err
	}

	attempts := orDefault(cfg.PG.ConnectRetries, 20)
	timeout := orDefault(cfg.PG.PingTimeout, 3*time.Second)
	err = retry.Do(
		func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return pgPing(pctx, p)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(150*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msg("postgres not ready")
		}),
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, err)
	}
	return &pool{querier: querier{p}, p: p}, nil
}

func (p *pool) Ping(ctx context.Context) error { return pgPing(ctx, p.p) }
func (p *pool) Close()                         { p.p.Close() }

// Acquire checks a dedicated session out of the pool
func (p *pool) Acquire(ctx context.Context) (Conn, error) {
	db, release, err := acquire(ctx, p.p)
	if err != nil {
		return nil, err
	}
	return &session{querier: querier{db}, release: release}, nil
}

type session struct {
	querier
	release func()
	once    bool
}

// Release hands the session back; later calls do nothing
func (s *session) Release() {
	if !s.once {
		s.once = true
		s.release()
	}
}
