package service

import (
	"context"
	"errors"
	"testing"
	"time"

	bulkdom "bulkscan/internal/services/bulk/domain"
	"bulkscan/internal/services/runstats/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	got      []domain.Summary
	err      error
	deadline bool
}

func (w *memWriter) Write(ctx context.Context, xs []domain.Summary) error {
	_, w.deadline = ctx.Deadline()
	w.got = append(w.got, xs...)
	return w.err
}

func TestSink_WritesFlattenedSummary(t *testing.T) {
	t.Parallel()

	w := &memWriter{}
	start := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	req := bulkdom.RunRequest{Mode: bulkdom.ModeRemove, UserID: 1, GroupID: 2, UploadTreeID: 42, LicenseRefID: 7}
	out := bulkdom.Outcome{
		Success: true, RunID: "r1", UploadID: 100,
		Files: 2, Scanned: 2, Matches: 1, Recorded: 1,
		Started: start, Finished: start.Add(time.Second),
	}

	New(w, Config{}).RunFinished(context.Background(), req, out)

	require.Len(t, w.got, 1)
	assert.True(t, w.deadline, "writes are bounded by a timeout")
	assert.Equal(t, domain.Summary{
		RunID: "r1", UploadTreeID: 42, UploadID: 100, LicenseID: 7, UserID: 1, GroupID: 2,
		Mode: "remove", Success: true, Files: 2, Scanned: 2, Matches: 1, Recorded: 1,
		StartedAt: start, FinishedAt: start.Add(time.Second),
	}, w.got[0])
}

func TestSink_ErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	w := &memWriter{err: errors.New("clickhouse down")}
	assert.NotPanics(t, func() {
		New(w, Config{WriteTimeout: time.Second}).RunFinished(context.Background(), bulkdom.RunRequest{}, bulkdom.Outcome{})
	})
	assert.Len(t, w.got, 1)
}

func TestSink_NilWriterIsNoop(t *testing.T) {
	t.Parallel()

	var s *Sink
	assert.NotPanics(t, func() { s.RunFinished(context.Background(), bulkdom.RunRequest{}, bulkdom.Outcome{}) })
	assert.NotPanics(t, func() { New(nil, Config{}).RunFinished(context.Background(), bulkdom.RunRequest{}, bulkdom.Outcome{}) })
}
