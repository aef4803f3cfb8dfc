package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"bulkscan/internal/modkit/repokit"
	"bulkscan/internal/services/bulk/domain"
)

// assoc is one clearing_licenses row as the fake store sees it
type assoc struct {
	FileID    int64
	UserID    int64
	LicenseID int64
	Removed   bool
}

// memStore is an in-memory domain.Storage. One instance backs the pool and
// every worker connection, the way the real tables do
type memStore struct {
	mu sync.Mutex

	trees map[int64]int64 // uploadtree -> upload
	files map[int64][]domain.CandidateFile

	resolveErr error
	listErr    error
	agentErr   error
	beginErr   error
	endErr     error
	recordErr  func(ev domain.MatchEvent) error

	assocs   map[assoc]bool
	records  int
	runs     map[int64]domain.AuditRun
	nextRun  int64
	recordOn []repokit.Queryer
}

func newMemStore() *memStore {
	return &memStore{
		trees:  map[int64]int64{},
		files:  map[int64][]domain.CandidateFile{},
		assocs: map[assoc]bool{},
		runs:   map[int64]domain.AuditRun{},
	}
}

func (m *memStore) ResolveUploadID(_ context.Context, tree int64) (int64, error) {
	if m.resolveErr != nil {
		return 0, m.resolveErr
	}
	id, ok := m.trees[tree]
	if !ok {
		return 0, errors.New("no such uploadtree")
	}
	return id, nil
}

func (m *memStore) ListCandidateFiles(_ context.Context, upload int64) ([]domain.CandidateFile, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files[upload], nil
}

func (m *memStore) LicenseName(context.Context, int64) (string, error) { return "MIT", nil }

func (m *memStore) AgentID(context.Context, string, string, string) (int64, error) {
	return 3, m.agentErr
}

func (m *memStore) BeginRun(_ context.Context, upload, agent int64) (int64, error) {
	if m.beginErr != nil {
		return 0, m.beginErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRun++
	m.runs[m.nextRun] = domain.AuditRun{ID: m.nextRun, AgentID: agent, UploadID: upload, Status: "running"}
	return m.nextRun, nil
}

func (m *memStore) EndRun(ctx context.Context, handle int64, success bool, status string) error {
	if m.endErr != nil {
		return m.endErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.runs[handle]
	r.Success, r.Status = success, status
	m.runs[handle] = r
	return nil
}

func (m *memStore) AuditRun(_ context.Context, id int64) (domain.AuditRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[id], nil
}

func (m *memStore) RecordDecision(_ context.Context, _, user int64, ev domain.MatchEvent) (domain.RecordResult, error) {
	if m.recordErr != nil {
		if err := m.recordErr(ev); err != nil {
			return domain.RecordResult{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records++
	k := assoc{FileID: ev.FileID, UserID: user, LicenseID: ev.LicenseID, Removed: ev.Removed}
	if m.assocs[k] {
		return domain.RecordResult{Decisions: 1}, nil
	}
	m.assocs[k] = true
	return domain.RecordResult{Decisions: 1, Associations: 1}, nil
}

func (m *memStore) PfileLocation(_ context.Context, id int64) (domain.PfileRef, error) {
	return domain.PfileRef{FileID: id}, nil
}

func (m *memStore) associations() []assoc {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]assoc, 0, len(m.assocs))
	for k := range m.assocs {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out
}

// binder hands out the shared store and remembers which session each bind used
func (m *memStore) binder() repokit.Binder[domain.Storage] {
	return repokit.BindFunc[domain.Storage](func(q repokit.Queryer) domain.Storage {
		m.mu.Lock()
		m.recordOn = append(m.recordOn, q)
		m.mu.Unlock()
		return m
	})
}

// fakeConn is a worker session; queries are never issued on it directly
type fakeConn struct {
	id       int
	released atomic.Int32
}

func (c *fakeConn) Exec(context.Context, string, ...any) (repokit.CommandTag, error) {
	return nil, errors.New("unused")
}
func (c *fakeConn) Query(context.Context, string, ...any) (repokit.Rows, error) {
	return nil, errors.New("unused")
}
func (c *fakeConn) QueryRow(context.Context, string, ...any) repokit.Row { return nil }
func (c *fakeConn) Release()                                             { c.released.Add(1) }

// fakeConns fails the first `fail` acquire calls
type fakeConns struct {
	mu    sync.Mutex
	fail  int
	calls int
	out   []*fakeConn
}

func (f *fakeConns) Acquire(ctx context.Context) (domain.Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.fail {
		return nil, errors.New("too many clients")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := &fakeConn{id: len(f.out)}
	f.out = append(f.out, c)
	return c, nil
}

// textLoader serves content by pfile id; missing ids load as empty text
type textLoader struct {
	text map[int64]string
	err  map[int64]error
	cut  map[int64]bool
}

func (l textLoader) Load(_ context.Context, q repokit.Queryer, f domain.CandidateFile) (domain.Content, error) {
	if q == nil {
		return domain.Content{}, errors.New("loader called without a worker session")
	}
	if err := l.err[f.FileID]; err != nil {
		return domain.Content{}, err
	}
	return domain.Content{FileID: f.FileID, Text: l.text[f.FileID], Truncated: l.cut[f.FileID]}, nil
}

type panicMatcher struct{}

func (panicMatcher) Match(string, []*domain.ReferenceLicense) ([]domain.Match, error) {
	panic("index out of range")
}

// countHeart counts pulses
type countHeart struct{ n atomic.Int64 }

func (h *countHeart) Beat(n int) { h.n.Add(int64(n)) }

// recObserver records events
type recObserver struct {
	mu           sync.Mutex
	scanned      []int64
	truncated    []int64
	matches      []domain.MatchEvent
	recordFailed int
	workerFailed []error
}

func (o *recObserver) FileScanned(_ string, id int64) {
	o.mu.Lock()
	o.scanned = append(o.scanned, id)
	o.mu.Unlock()
}

func (o *recObserver) FileTruncated(_ string, id int64) {
	o.mu.Lock()
	o.truncated = append(o.truncated, id)
	o.mu.Unlock()
}

func (o *recObserver) MatchFound(_ string, ev domain.MatchEvent) {
	o.mu.Lock()
	o.matches = append(o.matches, ev)
	o.mu.Unlock()
}

func (o *recObserver) RecordFailed(string, domain.MatchEvent, error) {
	o.mu.Lock()
	o.recordFailed++
	o.mu.Unlock()
}

func (o *recObserver) WorkerFailed(_ string, _ int, err error) {
	o.mu.Lock()
	o.workerFailed = append(o.workerFailed, err)
	o.mu.Unlock()
}

// recSummary captures the summary handed over after the audit window closes
type recSummary struct {
	calls int
	out   domain.Outcome
	ctx   context.Context
}

func (s *recSummary) RunFinished(ctx context.Context, _ domain.RunRequest, out domain.Outcome) {
	s.calls++
	s.out = out
	s.ctx = ctx
}
