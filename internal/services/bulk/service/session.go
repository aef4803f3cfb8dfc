package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bulkscan/internal/platform/logger"
	"bulkscan/internal/services/bulk/domain"

	"github.com/google/uuid"
)

// status texts written to the audit row
const (
	StatusOK           = "ok"
	StatusNoUpload     = "upload not found"
	StatusFailed       = "failed"
	StatusCandidateErr = "candidate query failed"
)

// SessionConfig identifies the agent in the audit table
type SessionConfig struct {
	AgentName string
	AgentRev  string
	AgentDesc string
}

// Session implements domain.RunnerPort: one audit window around one scan
type Session struct {
	Store   domain.Storage
	Scanner domain.ScannerPort
	Summary domain.SummaryPort
	Cfg     SessionConfig
}

// newRunID is swapped in tests
var newRunID = func() string { return uuid.NewString() }

// NewSession constructs a session; Summary defaults to a no-op
func NewSession(st domain.Storage, sc domain.ScannerPort, cfg SessionConfig) *Session {
	if cfg.AgentName == "" {
		cfg.AgentName = "monkbulk"
	}
	if cfg.AgentRev == "" {
		cfg.AgentRev = "dev"
	}
	if cfg.AgentDesc == "" {
		cfg.AgentDesc = "bulk license rescan"
	}
	return &Session{Store: st, Scanner: sc, Summary: NopSummary{}, Cfg: cfg}
}

// Execute runs one bulk request end to end
func (s *Session) Execute(ctx context.Context, req domain.RunRequest) (out domain.Outcome, err error) {
	runID := newRunID()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx).With().
		Str("component", "bulk-session").
		Int64("upload_tree_id", req.UploadTreeID).
		Int64("license_id", req.LicenseRefID).
		Str("mode", req.Mode.String()).
		Logger()

	out = domain.Outcome{RunID: runID, Started: time.Now()}

	uploadID, resErr := s.Store.ResolveUploadID(ctx, req.UploadTreeID)
	if resErr != nil {
		uploadID = 0
	}
	out.UploadID = uploadID

	agentID, err := s.Store.AgentID(ctx, s.Cfg.AgentName, s.Cfg.AgentRev, s.Cfg.AgentDesc)
	if err != nil {
		out.Finished = time.Now()
		return out, domain.Fail(domain.ErrAudit, err)
	}
	handle, err := s.Store.BeginRun(ctx, uploadID, agentID)
	if err != nil {
		out.Finished = time.Now()
		return out, domain.Fail(domain.ErrAudit, err)
	}
	out.AuditID = handle
	log = log.With().Int64("ars_id", handle).Logger()

	defer func() {
		if out.Finished.IsZero() {
			out.Finished = time.Now()
		}
		// the window closes even when the caller gave up
		closeCtx := context.WithoutCancel(ctx)
		if cerr := s.Store.EndRun(closeCtx, handle, out.Success, statusOf(out, err)); cerr != nil {
			log.Error().Err(cerr).Msg("closing audit row")
		}
		s.Summary.RunFinished(closeCtx, req, out)
	}()

	if resErr != nil {
		log.Warn().Err(resErr).Msg("upload not resolvable")
		return out, domain.Fail(domain.ErrResolution, fmt.Errorf("uploadtree %d: %w", req.UploadTreeID, resErr))
	}

	log.Info().Int64("upload_id", uploadID).Msg("run start")
	scanned, err := s.Scanner.Scan(ctx, runID, req, uploadID)
	scanned.RunID = runID
	scanned.UploadID = uploadID
	scanned.AuditID = handle
	scanned.Started = out.Started
	out = scanned

	ev := log.Info()
	if err != nil {
		ev = log.Error().Err(err)
	}
	ev.Bool("success", out.Success).
		Int("files", out.Files).
		Int("matches", out.Matches).
		Dur("took", out.Duration()).
		Msg("run done")
	return out, err
}

func statusOf(out domain.Outcome, err error) string {
	switch {
	case err == nil && out.Success:
		return StatusOK
	case errors.Is(err, domain.ErrResolution):
		return StatusNoUpload
	case errors.Is(err, domain.ErrCandidateQuery):
		return StatusCandidateErr
	default:
		return fmt.Sprintf("%s: %d of %d files scanned, %d worker failures",
			StatusFailed, out.Scanned, out.Files, out.WorkerFailures)
	}
}
