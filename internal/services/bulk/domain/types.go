// Package domain defines the core types and interfaces for the bulk service
package domain

import (
	"fmt"
	"strings"
	"time"

	"bulkscan/internal/core/tokenize"
)

// Mode says whether a match adds or removes the license association
type Mode uint8

const (
	// ModeAdd records matches as license additions ("B" on the wire)
	ModeAdd Mode = iota
	// ModeRemove records matches as license removals ("N" on the wire)
	ModeRemove
)

// Removed is the value stamped into clearing_licenses.removed
func (m Mode) Removed() bool { return m == ModeRemove }

// String returns the lowercase name used in logs and summaries
func (m Mode) String() string {
	if m == ModeRemove {
		return "remove"
	}
	return "add"
}

// RunRequest describes exactly one bulk run. Passed by value; never mutated after decode
type RunRequest struct {
	Mode          Mode   `json:"mode" validate:"oneof=0 1"`
	UserID        int64  `json:"user_id" validate:"gte=0"`
	GroupID       int64  `json:"group_id" validate:"gte=0"`
	UploadTreeID  int64  `json:"upload_tree_id" validate:"gt=0"`
	LicenseRefID  int64  `json:"license_ref_id" validate:"gt=0"`
	ReferenceText string `json:"reference_text" validate:"required,nodelim"`
}

// ReferenceLicense is the tokenized reference text shared read-only by all workers
type ReferenceLicense struct {
	ID          int64
	DisplayName string // informational only
	Tokens      []tokenize.Token
}

// CandidateFile is one pfile belonging to the target upload
type CandidateFile struct {
	FileID int64
}

// Match is one full match reported by the matcher, span in bytes over the scanned content
type Match struct {
	License *ReferenceLicense
	Start   int
	Length  int
}

// MatchEvent is the transient record handed from a worker to the recorder
type MatchEvent struct {
	FileID    int64
	LicenseID int64
	Start     int
	Length    int
	Removed   bool
}

// RecordResult reports what a single record call wrote
type RecordResult struct {
	// Decisions is the number of clearing_decision rows reused or inserted
	Decisions int64
	// Associations is the number of clearing_licenses rows inserted (0 when already present)
	Associations int64
}

// Outcome is the single result of a run
type Outcome struct {
	Success bool

	RunID    string
	UploadID int64
	AuditID  int64 // monkbulk_ars row of the run, 0 when none was opened

	Files          int // candidate files listed
	Scanned        int // files the matcher completed
	Truncated      int // scanned files cut at the read cap
	Matches        int
	Recorded       int // record calls that succeeded
	WriteFailures  int
	WorkerFailures int

	Started  time.Time
	Finished time.Time
}

// Duration is Finished - Started, zero while running
func (o Outcome) Duration() time.Duration {
	if o.Finished.IsZero() {
		return 0
	}
	return o.Finished.Sub(o.Started)
}

// AuditRun is one row of the run audit table
type AuditRun struct {
	ID        int64
	AgentID   int64
	UploadID  int64
	Success   bool
	Status    string
	StartedAt time.Time
	EndedAt   *time.Time
}

// PfileRef locates one file body in the content repository
type PfileRef struct {
	FileID int64
	SHA1   string
	MD5    string
	Size   int64
}

// Key is the repository-relative path: aa/bb/cc/<sha1>.<md5>.<size>, lowercase hex
func (p PfileRef) Key() string {
	sha := strings.ToLower(p.SHA1)
	if len(sha) < 6 {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%s.%s.%d", sha[0:2], sha[2:4], sha[4:6], sha, strings.ToLower(p.MD5), p.Size)
}

// Content is one file body loaded for scanning
type Content struct {
	FileID    int64
	Text      string
	Truncated bool
}
