// Package repo stores run summaries in clickhouse
package repo

import (
	"context"
	"fmt"

	"bulkscan/internal/platform/store"
	"bulkscan/internal/services/runstats/domain"
)

// Table holds one row per finished run
const Table = "bulkscan_run_summaries"

const ddl = `
CREATE TABLE IF NOT EXISTS ` + Table + ` (
	run_id          String,
	upload_tree_id  Int64,
	upload_id       Int64,
	license_id      Int64,
	user_id         Int64,
	group_id        Int64,
	mode            LowCardinality(String),
	success         Bool,
	files           Int64,
	scanned         Int64,
	matches         Int64,
	recorded        Int64,
	write_failures  Int64,
	worker_failures Int64,
	started_at      DateTime64(3, 'UTC'),
	finished_at     DateTime64(3, 'UTC')
)
ENGINE = MergeTree
ORDER BY (finished_at, run_id)`

const columns = `run_id, upload_tree_id, upload_id, license_id, user_id, group_id, mode, success,
	files, scanned, matches, recorded, write_failures, worker_failures, started_at, finished_at`

// CH is the clickhouse summary store
type CH struct {
	ch store.Clickhouse
}

// NewCH binds the repo to a clickhouse seam
func NewCH(ch store.Clickhouse) *CH { return &CH{ch: ch} }

// EnsureTable creates the summary table when missing
func (r *CH) EnsureTable(ctx context.Context) error {
	if err := r.ch.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("runstats: ensure table: %w", err)
	}
	return nil
}

// Write implements domain.WriterPort as a single batch
func (r *CH) Write(ctx context.Context, xs []domain.Summary) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, s := range xs {
		rows = append(rows, []any{
			s.RunID, s.UploadTreeID, s.UploadID, s.LicenseID, s.UserID, s.GroupID, s.Mode, s.Success,
			int64(s.Files), int64(s.Scanned), int64(s.Matches), int64(s.Recorded),
			int64(s.WriteFailures), int64(s.WorkerFailures),
			s.StartedAt.UTC(), s.FinishedAt.UTC(),
		})
	}
	if err := r.ch.Insert(ctx, Table+" ("+columns+")", rows); err != nil {
		return fmt.Errorf("runstats: insert %d rows: %w", len(rows), err)
	}
	return nil
}

// Recent implements domain.QueryPort
func (r *CH) Recent(ctx context.Context, limit int) ([]domain.Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.ch.Query(ctx, `SELECT `+columns+` FROM `+Table+` ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("runstats: recent: %w", err)
	}
	defer rows.Close()

	var out []domain.Summary
	for rows.Next() {
		var (
			s                                 domain.Summary
			files, scanned, matches, recorded int64
			writeFailures, workerFailures     int64
		)
		if err := rows.Scan(
			&s.RunID, &s.UploadTreeID, &s.UploadID, &s.LicenseID, &s.UserID, &s.GroupID, &s.Mode, &s.Success,
			&files, &scanned, &matches, &recorded, &writeFailures, &workerFailures,
			&s.StartedAt, &s.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("runstats: scan: %w", err)
		}
		s.Files, s.Scanned, s.Matches, s.Recorded = int(files), int(scanned), int(matches), int(recorded)
		s.WriteFailures, s.WorkerFailures = int(writeFailures), int(workerFailures)
		out = append(out, s)
	}
	return out, rows.Err()
}
