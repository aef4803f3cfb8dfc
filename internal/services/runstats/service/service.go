// Package service turns finished bulk runs into stored summaries
package service

import (
	"context"
	"time"

	"bulkscan/internal/platform/logger"
	bulkdom "bulkscan/internal/services/bulk/domain"
	"bulkscan/internal/services/runstats/domain"
)

// Config for the sink
type Config struct {
	WriteTimeout time.Duration
}

// Sink implements the bulk SummaryPort. Write errors are logged and dropped
type Sink struct {
	Writer domain.WriterPort
	Cfg    Config
}

// New constructs a sink; a nil writer makes every call a no-op
func New(w domain.WriterPort, cfg Config) *Sink {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	return &Sink{Writer: w, Cfg: cfg}
}

// RunFinished implements bulkdom.SummaryPort
func (s *Sink) RunFinished(ctx context.Context, req bulkdom.RunRequest, out bulkdom.Outcome) {
	if s == nil || s.Writer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.Cfg.WriteTimeout)
	defer cancel()

	if err := s.Writer.Write(ctx, []domain.Summary{FromOutcome(req, out)}); err != nil {
		logger.C(ctx).Warn().Err(err).Str("component", "runstats").Msg("run summary not stored")
	}
}

// FromOutcome flattens one run
func FromOutcome(req bulkdom.RunRequest, out bulkdom.Outcome) domain.Summary {
	return domain.Summary{
		RunID:          out.RunID,
		UploadTreeID:   req.UploadTreeID,
		UploadID:       out.UploadID,
		LicenseID:      req.LicenseRefID,
		UserID:         req.UserID,
		GroupID:        req.GroupID,
		Mode:           req.Mode.String(),
		Success:        out.Success,
		Files:          out.Files,
		Scanned:        out.Scanned,
		Matches:        out.Matches,
		Recorded:       out.Recorded,
		WriteFailures:  out.WriteFailures,
		WorkerFailures: out.WorkerFailures,
		StartedAt:      out.Started,
		FinishedAt:     out.Finished,
	}
}
