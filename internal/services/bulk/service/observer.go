package service

import (
	"context"

	"bulkscan/internal/platform/logger"
	"bulkscan/internal/services/bulk/domain"
)

// NopObserver ignores every event
type NopObserver struct{}

func (NopObserver) FileScanned(string, int64)                     {}
func (NopObserver) FileTruncated(string, int64)                   {}
func (NopObserver) MatchFound(string, domain.MatchEvent)          {}
func (NopObserver) RecordFailed(string, domain.MatchEvent, error) {}
func (NopObserver) WorkerFailed(string, int, error)               {}

// NopSummary drops run summaries
type NopSummary struct{}

func (NopSummary) RunFinished(context.Context, domain.RunRequest, domain.Outcome) {}

// LogObserver writes observer events through zerolog.
// Per-file and per-match events go out at debug, failures at warn and error
type LogObserver struct {
	Log *logger.Logger
}

// NewLogObserver binds the observer to the "bulk-observer" component logger
func NewLogObserver() LogObserver { return LogObserver{Log: logger.Named("bulk-observer")} }

func (o LogObserver) FileScanned(runID string, fileID int64) {
	o.Log.Debug().Str("run_id", runID).Int64("pfile_id", fileID).Msg("file scanned")
}

func (o LogObserver) FileTruncated(runID string, fileID int64) {
	o.Log.Debug().Str("run_id", runID).Int64("pfile_id", fileID).Msg("file truncated at read cap")
}

func (o LogObserver) MatchFound(runID string, ev domain.MatchEvent) {
	o.Log.Debug().
		Str("run_id", runID).
		Int64("pfile_id", ev.FileID).
		Int64("license_id", ev.LicenseID).
		Int("start", ev.Start).
		Int("length", ev.Length).
		Bool("removed", ev.Removed).
		Msg("match")
}

func (o LogObserver) RecordFailed(runID string, ev domain.MatchEvent, err error) {
	o.Log.Warn().Err(err).
		Str("run_id", runID).
		Int64("pfile_id", ev.FileID).
		Int64("license_id", ev.LicenseID).
		Msg("decision not recorded")
}

func (o LogObserver) WorkerFailed(runID string, worker int, err error) {
	o.Log.Error().Err(err).Str("run_id", runID).Int("worker", worker).Msg("worker failed")
}

// Observers fans each event out to every member in order
type Observers []domain.Observer

func (obs Observers) FileScanned(runID string, fileID int64) {
	for _, o := range obs {
		o.FileScanned(runID, fileID)
	}
}

func (obs Observers) FileTruncated(runID string, fileID int64) {
	for _, o := range obs {
		o.FileTruncated(runID, fileID)
	}
}

func (obs Observers) MatchFound(runID string, ev domain.MatchEvent) {
	for _, o := range obs {
		o.MatchFound(runID, ev)
	}
}

func (obs Observers) RecordFailed(runID string, ev domain.MatchEvent, err error) {
	for _, o := range obs {
		o.RecordFailed(runID, ev, err)
	}
}

func (obs Observers) WorkerFailed(runID string, worker int, err error) {
	for _, o := range obs {
		o.WorkerFailed(runID, worker, err)
	}
}

// Summaries fans a finished run out to every sink
type Summaries []domain.SummaryPort

func (ss Summaries) RunFinished(ctx context.Context, req domain.RunRequest, out domain.Outcome) {
	for _, s := range ss {
		s.RunFinished(ctx, req, out)
	}
}
