package pg

import (
	"context"
	"strings"
	"time"

	"bulkscan/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Tracer logs every statement through pgx's tracing hooks. Failures log at
// error and statements slower than Slow at warn
type Tracer struct {
	log  logger.Logger
	slow time.Duration
	now  func() time.Time
}

var _ pgx.QueryTracer = (*Tracer)(nil)

// NewTracer logs at debug regardless of the root level; enabling it is the opt-in
func NewTracer(root logger.Logger, slow time.Duration) *Tracer {
	return &Tracer{
		log:  root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger(),
		slow: slow,
		now:  time.Now,
	}
}

type startKey struct{}

type started struct {
	sql  string
	args []any
	at   time.Time
}

func (t *Tracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, startKey{}, started{sql: d.SQL, args: d.Args, at: t.now()})
}

func (t *Tracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, d pgx.TraceQueryEndData) {
	s, ok := ctx.Value(startKey{}).(started)
	if !ok {
		return
	}
	took := t.now().Sub(s.at)
	slow := t.slow > 0 && took >= t.slow

	evt := t.log.Debug()
	switch {
	case d.Err != nil:
		evt = t.log.Error().Err(d.Err)
	case slow:
		evt = t.log.Warn()
	}
	if id, ok := logger.RunID(ctx); ok {
		evt = evt.Str("run_id", id)
	}
	evt.Dur("elapsed", took).
		Bool("slow", slow).
		Int64("rows", d.CommandTag.RowsAffected()).
		Str("sql", strings.Join(strings.Fields(s.sql), " ")).
		Interface("args", s.args).
		Msg("pg query")
}
