// Package domain holds the wire types of the bulk HTTP surface
package domain

import (
	"time"

	bulkdom "bulkscan/internal/services/bulk/domain"
)

// RunInput starts a run from structured fields
type RunInput struct {
	Mode          string `json:"mode" validate:"required,oneof=add remove"`
	UserID        int64  `json:"user_id" validate:"gte=0"`
	GroupID       int64  `json:"group_id" validate:"gte=0"`
	UploadTreeID  int64  `json:"upload_tree_id" validate:"gt=0"`
	LicenseRefID  int64  `json:"license_ref_id" validate:"gt=0"`
	ReferenceText string `json:"reference_text" validate:"required,nodelim"`
}

// CommandInput carries one raw scheduler command line
type CommandInput struct {
	Command string `json:"command" validate:"required"`
}

// RecentQuery pages run summaries
type RecentQuery struct {
	Limit int `json:"limit" validate:"gte=0,lte=500"`
}

// RunView is the response for a finished run. Error is set when the run
// completed with failed workers; fatal errors are returned as an error envelope instead
type RunView struct {
	RunID          string    `json:"run_id"`
	UploadID       int64     `json:"upload_id"`
	AuditID        int64     `json:"audit_id"`
	Mode           string    `json:"mode"`
	Success        bool      `json:"success"`
	Files          int       `json:"files"`
	Scanned        int       `json:"scanned"`
	Truncated      int       `json:"truncated"`
	Matches        int       `json:"matches"`
	Recorded       int       `json:"recorded"`
	WriteFailures  int       `json:"write_failures"`
	WorkerFailures int       `json:"worker_failures"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	DurationMS     int64     `json:"duration_ms"`
	Error          string    `json:"error,omitempty"`
}

// AuditView is one audit window row
type AuditView struct {
	ID        int64      `json:"id"`
	AgentID   int64      `json:"agent_id"`
	UploadID  int64      `json:"upload_id,omitempty"`
	Success   bool       `json:"success"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Open      bool       `json:"open"`
}

// ViewOf maps an outcome to its wire form
func ViewOf(mode bulkdom.Mode, out bulkdom.Outcome, err error) RunView {
	v := RunView{
		RunID:          out.RunID,
		UploadID:       out.UploadID,
		AuditID:        out.AuditID,
		Mode:           mode.String(),
		Success:        out.Success,
		Files:          out.Files,
		Scanned:        out.Scanned,
		Truncated:      out.Truncated,
		Matches:        out.Matches,
		Recorded:       out.Recorded,
		WriteFailures:  out.WriteFailures,
		WorkerFailures: out.WorkerFailures,
		StartedAt:      out.Started,
		FinishedAt:     out.Finished,
		DurationMS:     out.Duration().Milliseconds(),
	}
	if err != nil {
		v.Error = err.Error()
	}
	return v
}

// AuditOf maps an audit row to its wire form
func AuditOf(a bulkdom.AuditRun) AuditView {
	return AuditView{
		ID:        a.ID,
		AgentID:   a.AgentID,
		UploadID:  a.UploadID,
		Success:   a.Success,
		Status:    a.Status,
		StartedAt: a.StartedAt,
		EndedAt:   a.EndedAt,
		Open:      a.EndedAt == nil,
	}
}
