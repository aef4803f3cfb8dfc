package service

import (
	"context"
	"fmt"
	"time"

	"bulkscan/internal/modkit/repokit"
	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/services/bulk/domain"

	"github.com/avast/retry-go"
)

// recordAttempts bounds retries of a decision write that lost a serialization race
const recordAttempts = 3

// Recorder implements domain.RecorderPort over a repo binder, so each call
// writes on whatever session the calling worker owns
type Recorder struct {
	Repo  repokit.Binder[domain.Storage]
	Delay time.Duration
}

// NewRecorder constructs a recorder
func NewRecorder(b repokit.Binder[domain.Storage]) *Recorder {
	return &Recorder{Repo: b, Delay: 20 * time.Millisecond}
}

// Record writes one decision plus association. Deadlocks and serialization
// failures are retried; the write is idempotent. Failures are tagged ErrRecordWrite
func (r *Recorder) Record(ctx context.Context, q repokit.Queryer, uploadID, userID int64, ev domain.MatchEvent) (domain.RecordResult, error) {
	repo := r.Repo.Bind(q)

	var res domain.RecordResult
	err := retry.Do(
		func() error {
			var err error
			res, err = repo.RecordDecision(ctx, uploadID, userID, ev)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(recordAttempts),
		retry.Delay(r.Delay),
		retry.RetryIf(perr.IsRetryable),
		retry.LastErrorOnly(true),
	)
	if err == nil && res.Decisions == 0 {
		err = fmt.Errorf("pfile %d license %d: no decision written", ev.FileID, ev.LicenseID)
	}
	if err != nil {
		return domain.RecordResult{}, domain.Fail(domain.ErrRecordWrite, err)
	}
	return res, nil
}
