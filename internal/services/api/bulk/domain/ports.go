package domain

import (
	"context"

	rsdom "bulkscan/internal/services/runstats/domain"
)

// ServicePort is what the HTTP handlers call
type ServicePort interface {
	Start(ctx context.Context, in RunInput) (RunView, error)
	Command(ctx context.Context, in CommandInput) (RunView, error)
	Audit(ctx context.Context, id int64) (AuditView, error)
	Recent(ctx context.Context, q RecentQuery) ([]rsdom.Summary, error)
}
