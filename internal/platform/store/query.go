package store

import (
	"context"
	"errors"
	"fmt"

	perr "bulkscan/internal/platform/errors"

	"github.com/jackc/pgx/v5"
)

// Scanner maps the current row to a T
type Scanner[T any] func(Row) (T, error)

// ScanOne scans a single column
func ScanOne[T any](r Row) (v T, err error) {
	err = r.Scan(&v)
	return v, err
}

// Scalar reads one value; no row is perr.ErrNotFound
func Scalar[T any](ctx context.Context, q RowQuerier, sql string, args ...any) (T, error) {
	v, err := ScanOne[T](q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return v, perr.ErrNotFound
	}
	return v, err
}

// Many scans every row
func Many[T any](ctx context.Context, q RowQuerier, scan Scanner[T], sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// One is Many for queries that must yield exactly one row.
// None is perr.ErrNotFound
func One[T any](ctx context.Context, q RowQuerier, scan Scanner[T], sql string, args ...any) (T, error) {
	var zero T
	all, err := Many(ctx, q, scan, sql, args...)
	switch {
	case err != nil:
		return zero, err
	case len(all) == 0:
		return zero, perr.ErrNotFound
	case len(all) > 1:
		return zero, fmt.Errorf("expected one row, got %d", len(all))
	}
	return all[0], nil
}

// ExecOne runs a write that must touch exactly one row
func ExecOne(ctx context.Context, q RowQuerier, sql string, args ...any) error {
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if n := tag.RowsAffected(); n != 1 {
		return fmt.Errorf("expected one row affected, got %d", n)
	}
	return nil
}
