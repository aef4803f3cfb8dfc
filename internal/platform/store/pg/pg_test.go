package pg

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"bulkscan/internal/platform/logger"
	"bulkscan/internal/platform/testkit"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	tr := NewTracer(zerolog.Nop(), 0)
	pc, err := ParseConfig(Config{URL: "postgres://u:p@localhost:5432/fossology", MaxConns: 9, AppName: "bulkscan", Tracer: tr})
	if err != nil {
		t.Fatal(err)
	}
	if pc.MaxConns != 9 || pc.ConnConfig.RuntimeParams["application_name"] != "bulkscan" || pc.ConnConfig.Tracer != tr {
		t.Fatalf("config not applied: %+v", pc)
	}

	if _, err := ParseConfig(Config{URL: "::nope"}); err == nil {
		t.Fatal("bad url must fail")
	}
}

func TestOpen_UsesPoolSeam(t *testing.T) {
	testkit.Serial(t)

	var seen *pgxpool.Config
	testkit.Swap(t, &newPool, func(_ context.Context, c *pgxpool.Config) (*pgxpool.Pool, error) {
		seen = c
		return nil, errors.New("no server")
	})
	if _, err := Open(context.Background(), Config{URL: "postgres://localhost/db", MaxConns: 3}); err == nil {
		t.Fatal("pool error must surface")
	}
	if seen == nil || seen.MaxConns != 3 {
		t.Fatalf("pool config = %+v", seen)
	}
}

func TestTracer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tr := NewTracer(zerolog.New(&buf).Level(zerolog.ErrorLevel), 100*time.Millisecond)
	clock := time.Unix(0, 0)
	tr.now = func() time.Time { return clock }

	run := func(ctx context.Context, sql string, took time.Duration, err error) {
		ctx = tr.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{SQL: sql, Args: []any{7}})
		clock = clock.Add(took)
		tr.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("INSERT 0 1"), Err: err})
	}

	run(logger.WithRun(context.Background(), "run-1"), "SELECT\n\t1", time.Millisecond, nil)
	run(context.Background(), "UPDATE license_ref", time.Second, nil)
	run(context.Background(), "INSERT INTO clearing_event", 0, errors.New("23503"))
	tr.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})

	out := buf.String()
	for _, want := range []string{
		`"level":"debug"`, `"sql":"SELECT 1"`, `"run_id":"run-1"`,
		`"level":"warn"`, `"slow":true`,
		`"level":"error"`, `"error":"23503"`, `"rows":1`,
	} {
		testkit.MustContain(t, out, want)
	}
	if n := bytes.Count(buf.Bytes(), []byte("pg query")); n != 3 {
		t.Fatalf("logged %d lines, want 3", n)
	}
}
