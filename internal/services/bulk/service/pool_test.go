package service

import (
	"context"
	"errors"
	"testing"

	"bulkscan/internal/core/matcher"
	"bulkscan/internal/modkit/repokit"
	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/services/bulk/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mitText = "Permission is hereby granted under the MIT License, see COPYING."

var mitReq = domain.RunRequest{
	Mode:          domain.ModeAdd,
	UserID:        1,
	GroupID:       2,
	UploadTreeID:  42,
	LicenseRefID:  7,
	ReferenceText: "MIT License",
}

func files(ids ...int64) []domain.CandidateFile {
	out := make([]domain.CandidateFile, len(ids))
	for i, id := range ids {
		out[i] = domain.CandidateFile{FileID: id}
	}
	return out
}

type poolFixture struct {
	store *memStore
	conns *fakeConns
	obs   *recObserver
	heart *countHeart
	pool  *Pool
}

func newPoolFixture(workers int, texts map[int64]string, ids ...int64) *poolFixture {
	st := newMemStore()
	st.trees[42] = 100
	st.files[100] = files(ids...)

	f := &poolFixture{store: st, conns: &fakeConns{}, obs: &recObserver{}, heart: &countHeart{}}
	f.pool = NewPool(st, f.conns, textLoader{text: texts}, matcher.New(), NewRecorder(st.binder()), PoolConfig{Workers: workers})
	f.pool.Obs = f.obs
	f.pool.Heart = f.heart
	return f
}

func allMIT(ids ...int64) map[int64]string {
	m := map[int64]string{}
	for _, id := range ids {
		m[id] = mitText
	}
	return m
}

func TestPartition_ContiguousAndBalanced(t *testing.T) {
	t.Parallel()

	parts := partition(files(1, 2, 3, 4, 5), 2)
	require.Len(t, parts, 2)
	assert.Equal(t, files(1, 2, 3), parts[0])
	assert.Equal(t, files(4, 5), parts[1])

	parts = partition(files(1, 2), 8)
	assert.Len(t, parts, 2, "never more workers than files")

	parts = partition(files(1, 2, 3), 0)
	require.Len(t, parts, 1)
	assert.Equal(t, files(1, 2, 3), parts[0])
}

func TestNewPool_Defaults(t *testing.T) {
	t.Parallel()

	p := NewPool(nil, nil, nil, nil, nil, PoolConfig{ConnectDelay: -1})
	assert.GreaterOrEqual(t, p.Cfg.Workers, 1)
	assert.Equal(t, 1, p.Cfg.ConnectAttempts)
	assert.Zero(t, p.Cfg.ConnectDelay)
	assert.NotNil(t, p.Obs)
	assert.NotNil(t, p.Heart)
}

func TestScan_EmptyUploadSucceeds(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(4, nil)
	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Zero(t, out.Files)
	assert.Zero(t, f.conns.calls, "no worker starts for an empty upload")
	assert.Empty(t, f.store.associations())
}

func TestScan_AllFilesMatch(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3, 4, 5}
	f := newPoolFixture(2, allMIT(ids...), ids...)

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, 5, out.Files)
	assert.Equal(t, 5, out.Scanned)
	assert.Equal(t, 5, out.Matches)
	assert.Equal(t, 5, out.Recorded)
	assert.Len(t, f.store.associations(), 5)
	assert.EqualValues(t, 5, f.heart.n.Load(), "one pulse per file")
	assert.ElementsMatch(t, ids, f.obs.scanned)

	require.Len(t, f.conns.out, 2)
	for _, c := range f.conns.out {
		assert.EqualValues(t, 1, c.released.Load(), "each worker releases its session once")
	}
	for _, q := range f.store.recordOn {
		assert.IsType(t, &fakeConn{}, q, "records go through the worker session")
	}
}

func TestScan_ReportsTruncatedFiles(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(1, allMIT(1, 2), 1, 2)
	f.pool.Loader = textLoader{text: allMIT(1, 2), cut: map[int64]bool{2: true}}

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 2, out.Scanned)
	assert.Equal(t, 1, out.Truncated)
	assert.Equal(t, []int64{2}, f.obs.truncated)
}

func TestScan_RemoveModeStampsRemoved(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(1, allMIT(9), 9)
	req := mitReq
	req.Mode = domain.ModeRemove

	_, err := f.pool.Scan(context.Background(), "r1", req, 100)
	require.NoError(t, err)
	assert.Equal(t, []assoc{{FileID: 9, UserID: 1, LicenseID: 7, Removed: true}}, f.store.associations())
}

func TestScan_CandidateQueryFailure(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(2, nil, 1, 2)
	f.store.listErr = errors.New("relation uploadtree does not exist")

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCandidateQuery)
	assert.False(t, out.Success)
	assert.Zero(t, f.conns.calls)
}

func TestScan_OneWorkerCannotConnect(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3, 4}
	f := newPoolFixture(2, allMIT(ids...), ids...)
	f.conns.fail = 1

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWorkerConnection)

	assert.False(t, out.Success)
	assert.Equal(t, 1, out.WorkerFailures)
	assert.Equal(t, 2, out.Scanned, "the sibling worker finishes its slice")
	assert.Len(t, f.store.associations(), 2, "partial results stay persisted")
	assert.Len(t, f.obs.workerFailed, 1)
}

func TestScan_ConnectRetried(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(2, allMIT(1, 2), 1, 2)
	f.conns.fail = 1
	f.pool.Cfg.ConnectAttempts = 2

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, 3, f.conns.calls)
}

func TestScan_WriteFailuresAreTolerated(t *testing.T) {
	t.Parallel()

	ids := []int64{1, 2, 3}
	f := newPoolFixture(1, allMIT(ids...), ids...)
	f.store.recordErr = func(ev domain.MatchEvent) error {
		switch ev.FileID {
		case 2:
			return errors.New("connection reset by peer")
		case 3:
			return perr.NotFoundf("record pfile 3: no bulk decision target")
		}
		return nil
	}

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.NoError(t, err)

	assert.True(t, out.Success)
	assert.Equal(t, 3, out.Scanned)
	assert.Equal(t, 3, out.Matches)
	assert.Equal(t, 1, out.Recorded)
	assert.Equal(t, 2, out.WriteFailures)
	assert.Equal(t, 2, f.obs.recordFailed)
	assert.Equal(t, []assoc{
		{FileID: 1, UserID: 1, LicenseID: 7},
	}, f.store.associations())
}

func TestScan_MatcherPanicFailsWorker(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(1, allMIT(1, 2), 1, 2)
	f.pool.Matcher = panicMatcher{}

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMatch)
	assert.Contains(t, err.Error(), "matcher panic")
	assert.False(t, out.Success)
	assert.Zero(t, out.Scanned)
	assert.EqualValues(t, 1, f.conns.out[0].released.Load())
}

func TestScan_LoaderErrorFailsWorker(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(1, allMIT(1, 2, 3), 1, 2, 3)
	f.pool.Loader = textLoader{text: allMIT(1, 2, 3), err: map[int64]error{2: errors.New("no such file")}}

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMatch)
	assert.Equal(t, 1, out.Scanned, "files after the failure are not scanned")
	assert.Len(t, f.store.associations(), 1)
}

func TestScan_DryRunWritesNothing(t *testing.T) {
	t.Parallel()

	f := newPoolFixture(2, allMIT(1, 2), 1, 2)
	f.pool.Cfg.DryRun = true

	out, err := f.pool.Scan(context.Background(), "r1", mitReq, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Matches)
	assert.Zero(t, out.Recorded)
	assert.Empty(t, f.store.associations())
	assert.Len(t, f.obs.matches, 2)
}

// cancelLoader cancels the run after serving the first file
type cancelLoader struct {
	textLoader
	cancel context.CancelFunc
}

func (l cancelLoader) Load(ctx context.Context, q repokit.Queryer, f domain.CandidateFile) (domain.Content, error) {
	defer l.cancel()
	return l.textLoader.Load(ctx, q, f)
}

func TestScan_CancelStopsWorker(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newPoolFixture(1, nil, 1, 2, 3)
	f.pool.Loader = cancelLoader{textLoader: textLoader{text: allMIT(1, 2, 3)}, cancel: cancel}

	out, err := f.pool.Scan(ctx, "r1", mitReq, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, out.Success)
	assert.Equal(t, 1, out.Scanned)
}
