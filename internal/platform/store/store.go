// Package store opens the storage backends a bulk run talks to: postgres for
// the clearing schema and, optionally, clickhouse for run summaries.
// Repos see postgres only through RowQuerier, which a pooled handle and a
// dedicated session both satisfy
package store

import (
	"context"
	"errors"
	"fmt"

	"bulkscan/internal/platform/logger"
)

type (
	Row interface {
		Scan(dest ...any) error
	}
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close()
	}
	CommandTag interface {
		String() string
		RowsAffected() int64
	}
)

// RowQuerier is the statement surface repos are written against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// Conn is one pooled session held exclusively by its caller until Release
type Conn interface {
	RowQuerier
	Release()
}

// PG runs on the shared pool or checks out a dedicated session
type PG interface {
	RowQuerier
	Acquire(ctx context.Context) (Conn, error)
}

// Clickhouse is the columnar side: batch inserts and reads
type Clickhouse interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, rows [][]any) error
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	Close() error
}

type pinger interface{ Ping(context.Context) error }

// Store holds the opened backends. A disabled backend stays nil
type Store struct {
	Log logger.Logger
	PG  PG
	CH  Clickhouse
}

// Option adjusts a Store before any backend is opened
type Option func(*Store)

func WithLogger(l logger.Logger) Option { return func(s *Store) { s.Log = l } }

// Open dials the enabled backends. Postgres is retried until it answers a
// ping; a clickhouse failure closes what was already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Get()}
	for _, o := range opts {
		o(s)
	}
	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s.Log)
		if err != nil {
			return nil, err
		}
		s.PG = p
	}
	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.CH = c
	}
	return s, nil
}

// Guard pings every opened backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("store: not opened")
	}
	var errs []error
	for name, b := range map[string]any{"pg": s.PG, "ch": s.CH} {
		if p, ok := b.(pinger); ok && p != nil {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases every opened backend
func (s *Store) Close(context.Context) error {
	var errs []error
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if c, ok := s.PG.(interface{ Close() }); ok {
		c.Close()
	}
	return errors.Join(errs...)
}
