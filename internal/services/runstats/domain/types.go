// Package domain defines the run summary record kept for analytics
package domain

import (
	"context"
	"time"
)

// Summary is one finished bulk run
type Summary struct {
	RunID          string    `json:"run_id"`
	UploadTreeID   int64     `json:"upload_tree_id"`
	UploadID       int64     `json:"upload_id"`
	LicenseID      int64     `json:"license_id"`
	UserID         int64     `json:"user_id"`
	GroupID        int64     `json:"group_id"`
	Mode           string    `json:"mode"`
	Success        bool      `json:"success"`
	Files          int       `json:"files"`
	Scanned        int       `json:"scanned"`
	Matches        int       `json:"matches"`
	Recorded       int       `json:"recorded"`
	WriteFailures  int       `json:"write_failures"`
	WorkerFailures int       `json:"worker_failures"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}

// WriterPort stores summaries
type WriterPort interface {
	Write(ctx context.Context, xs []Summary) error
}

// QueryPort reads recent summaries, newest first
type QueryPort interface {
	Recent(ctx context.Context, limit int) ([]Summary, error)
}
