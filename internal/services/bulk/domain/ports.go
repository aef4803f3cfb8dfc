package domain

import (
	"context"

	"bulkscan/internal/modkit/repokit"
)

// RunnerPort is the external port for one bulk invocation
type RunnerPort interface {
	Execute(ctx context.Context, req RunRequest) (Outcome, error)
}

// ScannerPort fans the scan of one upload out across workers
type ScannerPort interface {
	Scan(ctx context.Context, runID string, req RunRequest, uploadID int64) (Outcome, error)
}

// RecorderPort turns one match into a durable clearing decision on the caller's connection
type RecorderPort interface {
	Record(ctx context.Context, q repokit.Queryer, uploadID, userID int64, ev MatchEvent) (RecordResult, error)
}

// AuditPort reads run audit rows
type AuditPort interface {
	AuditRun(ctx context.Context, id int64) (AuditRun, error)
}

// Conn is a storage connection owned by exactly one worker for its lifetime
type Conn = repokit.Conn

// ConnSource hands out dedicated worker connections
type ConnSource interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Storage is the storage surface, bound either to the pool or to one worker connection
type Storage interface {
	ResolveUploadID(ctx context.Context, uploadTreeID int64) (int64, error)
	ListCandidateFiles(ctx context.Context, uploadID int64) ([]CandidateFile, error)
	LicenseName(ctx context.Context, licenseRefID int64) (string, error)
	AgentID(ctx context.Context, name, rev, desc string) (int64, error)
	BeginRun(ctx context.Context, uploadID, agentID int64) (int64, error)
	EndRun(ctx context.Context, runHandle int64, success bool, status string) error
	AuditRun(ctx context.Context, id int64) (AuditRun, error)
	RecordDecision(ctx context.Context, uploadID, userID int64, ev MatchEvent) (RecordResult, error)
	PfileLocation(ctx context.Context, fileID int64) (PfileRef, error)
}

// ContentLoader reads a file body using the worker's own connection for metadata lookups
type ContentLoader interface {
	Load(ctx context.Context, q repokit.Queryer, f CandidateFile) (Content, error)
}

// Matcher reports every full match of the references inside content.
// Must be safe for concurrent use; references are read-only
type Matcher interface {
	Match(content string, refs []*ReferenceLicense) ([]Match, error)
}

// Heartbeat is the fire-and-forget liveness channel to the scheduler
type Heartbeat interface {
	Beat(items int)
}

// Observer is the diagnostics hook, called only at the points named below
type Observer interface {
	FileScanned(runID string, fileID int64)
	FileTruncated(runID string, fileID int64)
	MatchFound(runID string, ev MatchEvent)
	RecordFailed(runID string, ev MatchEvent, err error)
	WorkerFailed(runID string, worker int, err error)
}

// SummaryPort receives the final outcome of each run after the audit window closes
type SummaryPort interface {
	RunFinished(ctx context.Context, req RunRequest, out Outcome)
}

// Ports are the optional collaborators injected into the bulk module
type Ports struct {
	Observer Observer
	Summary  SummaryPort
}
