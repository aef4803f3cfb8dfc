// Package service adapts the bulk runner to the HTTP surface
package service

import (
	"context"
	"errors"

	"bulkscan/internal/core/command"
	perr "bulkscan/internal/platform/errors"
	dom "bulkscan/internal/services/api/bulk/domain"
	bulkdom "bulkscan/internal/services/bulk/domain"
	rsdom "bulkscan/internal/services/runstats/domain"
)

// DefaultRecent is the page size when the query leaves Limit at zero
const DefaultRecent = 50

// Service implements domain.ServicePort
type Service struct {
	Runner    bulkdom.RunnerPort
	Audits    bulkdom.AuditPort
	Summaries rsdom.QueryPort // nil when analytics are disabled
}

// New constructs the service
func New(runner bulkdom.RunnerPort, audits bulkdom.AuditPort, summaries rsdom.QueryPort) *Service {
	return &Service{Runner: runner, Audits: audits, Summaries: summaries}
}

// Start runs one request built from structured fields
func (s *Service) Start(ctx context.Context, in dom.RunInput) (dom.RunView, error) {
	mode := bulkdom.ModeAdd
	if in.Mode == "remove" {
		mode = bulkdom.ModeRemove
	}
	return s.run(ctx, bulkdom.RunRequest{
		Mode:          mode,
		UserID:        in.UserID,
		GroupID:       in.GroupID,
		UploadTreeID:  in.UploadTreeID,
		LicenseRefID:  in.LicenseRefID,
		ReferenceText: in.ReferenceText,
	})
}

// Command decodes a scheduler command line and runs it
func (s *Service) Command(ctx context.Context, in dom.CommandInput) (dom.RunView, error) {
	req, err := command.Decode(in.Command)
	if err != nil {
		return dom.RunView{}, expose(err)
	}
	return s.run(ctx, req)
}

func (s *Service) run(ctx context.Context, req bulkdom.RunRequest) (dom.RunView, error) {
	out, err := s.Runner.Execute(ctx, req)
	if fatal(err) {
		return dom.RunView{}, expose(err)
	}
	return dom.ViewOf(req.Mode, out, err), nil
}

// fatal errors stop a run before any file is scanned
func fatal(err error) bool {
	return errors.Is(err, bulkdom.ErrMalformedRequest) ||
		errors.Is(err, bulkdom.ErrResolution) ||
		errors.Is(err, bulkdom.ErrAudit) ||
		errors.Is(err, bulkdom.ErrCandidateQuery)
}

// expose keeps the class code but puts the full cause chain in the wire message
func expose(err error) error {
	return perr.Wrap(err, perr.CodeOf(err), err.Error())
}

// Audit returns one audit window row
func (s *Service) Audit(ctx context.Context, id int64) (dom.AuditView, error) {
	if id <= 0 {
		return dom.AuditView{}, perr.InvalidArgf("audit id must be positive")
	}
	a, err := s.Audits.AuditRun(ctx, id)
	if err != nil {
		return dom.AuditView{}, err
	}
	return dom.AuditOf(a), nil
}

// Recent lists the newest run summaries
func (s *Service) Recent(ctx context.Context, q dom.RecentQuery) ([]rsdom.Summary, error) {
	if s.Summaries == nil {
		return nil, perr.Unavailablef("run summaries are disabled")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultRecent
	}
	return s.Summaries.Recent(ctx, limit)
}
