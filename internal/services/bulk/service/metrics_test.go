package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bulkscan/internal/services/bulk/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountsEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	obs := Observers{m}
	obs.FileScanned("r", 1)
	obs.FileScanned("r", 2)
	obs.FileTruncated("r", 2)
	obs.MatchFound("r", domain.MatchEvent{})
	obs.RecordFailed("r", domain.MatchEvent{}, errors.New("x"))
	obs.WorkerFailed("r", 0, errors.New("y"))

	start := time.Now()
	m.RunFinished(context.Background(), mitReq, domain.Outcome{Success: true, Started: start, Finished: start.Add(time.Second)})
	m.RunFinished(context.Background(), mitReq, domain.Outcome{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.files))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.truncated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.matches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recordFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.workerFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("failure")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestMetrics_DoubleRegisterPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}
