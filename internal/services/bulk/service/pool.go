// Package service implements the bulk run: the session that wraps one run in
// an audit window, the worker pool that scans an upload and the recorder that
// persists each match
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"bulkscan/internal/core/tokenize"
	"bulkscan/internal/platform/logger"
	"bulkscan/internal/services/bulk/domain"

	"github.com/avast/retry-go"
	"golang.org/x/sync/errgroup"
)

// PoolConfig for the file match worker pool
type PoolConfig struct {
	Workers         int           // 1 = serial; capped at the number of files
	ConnectAttempts int           // per-worker connection attempts before giving up
	ConnectDelay    time.Duration // base backoff between attempts
	DryRun          bool          // observe matches without writing them
}

// Pool implements domain.ScannerPort
type Pool struct {
	Store    domain.Storage // bound to the shared pool; run-level queries only
	Conns    domain.ConnSource
	Loader   domain.ContentLoader
	Matcher  domain.Matcher
	Recorder domain.RecorderPort
	Heart    domain.Heartbeat
	Obs      domain.Observer
	Cfg      PoolConfig
}

// NewPool constructs a pool, filling defaults and no-op collaborators
func NewPool(st domain.Storage, conns domain.ConnSource, loader domain.ContentLoader, m domain.Matcher, rec domain.RecorderPort, cfg PoolConfig) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.ConnectAttempts <= 0 {
		cfg.ConnectAttempts = 1
	}
	if cfg.ConnectDelay < 0 {
		cfg.ConnectDelay = 0
	}
	return &Pool{
		Store:    st,
		Conns:    conns,
		Loader:   loader,
		Matcher:  m,
		Recorder: rec,
		Heart:    nopHeart{},
		Obs:      NopObserver{},
		Cfg:      cfg,
	}
}

// workerResult is owned by exactly one worker until Wait returns
type workerResult struct {
	scanned, truncated, matches, recorded, writeFailures int
	err                                                  error
}

// Scan implements domain.ScannerPort
func (p *Pool) Scan(ctx context.Context, runID string, req domain.RunRequest, uploadID int64) (domain.Outcome, error) {
	out := domain.Outcome{RunID: runID, UploadID: uploadID, Started: time.Now()}
	defer func() { out.Finished = time.Now() }()
	log := logger.C(ctx).With().Str("component", "bulk-pool").Int64("upload_id", uploadID).Logger()

	ref := &domain.ReferenceLicense{
		ID:     req.LicenseRefID,
		Tokens: tokenize.Tokenize(req.ReferenceText),
	}
	if name, err := p.Store.LicenseName(ctx, req.LicenseRefID); err == nil {
		ref.DisplayName = name
	} else {
		log.Debug().Err(err).Int64("license_id", req.LicenseRefID).Msg("license name unavailable")
	}
	refs := []*domain.ReferenceLicense{ref}

	files, err := p.Store.ListCandidateFiles(ctx, uploadID)
	if err != nil {
		out.Finished = time.Now()
		return out, domain.Fail(domain.ErrCandidateQuery, err)
	}
	out.Files = len(files)
	if len(files) == 0 {
		out.Success = true
		log.Info().Msg("no candidate files")
		return out, nil
	}

	parts := partition(files, p.Cfg.Workers)
	results := make([]workerResult, len(parts))
	log.Info().Int("files", len(files)).Int("workers", len(parts)).Int("reference_tokens", len(ref.Tokens)).Msg("scan start")

	// plain Group: one worker failing must not cancel its siblings
	var g errgroup.Group
	for i := range parts {
		g.Go(func() error {
			results[i] = p.work(ctx, runID, req, uploadID, refs, i, parts[i])
			return results[i].err
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		out.Scanned += r.scanned
		out.Truncated += r.truncated
		out.Matches += r.matches
		out.Recorded += r.recorded
		out.WriteFailures += r.writeFailures
		if r.err != nil {
			out.WorkerFailures++
			errs = append(errs, r.err)
		}
	}
	out.Success = len(errs) == 0

	log.Info().
		Bool("success", out.Success).
		Int("scanned", out.Scanned).
		Int("truncated", out.Truncated).
		Int("matches", out.Matches).
		Int("recorded", out.Recorded).
		Int("write_failures", out.WriteFailures).
		Int("worker_failures", out.WorkerFailures).
		Msg("scan done")
	out.Finished = time.Now()
	return out, errors.Join(errs...)
}

// work scans one contiguous slice of files on the worker's own connection
func (p *Pool) work(ctx context.Context, runID string, req domain.RunRequest, uploadID int64, refs []*domain.ReferenceLicense, id int, files []domain.CandidateFile) (res workerResult) {
	defer func() {
		if res.err != nil {
			p.Obs.WorkerFailed(runID, id, res.err)
		}
	}()

	conn, err := p.acquire(ctx)
	if err != nil {
		res.err = domain.Fail(domain.ErrWorkerConnection, fmt.Errorf("worker %d: %w", id, err))
		return res
	}
	defer conn.Release()

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			res.err = fmt.Errorf("worker %d stopped before pfile %d: %w", id, f.FileID, err)
			return res
		}

		matches, truncated, err := p.matchFile(ctx, conn, f, refs)
		if err != nil {
			res.err = domain.Fail(domain.ErrMatch, fmt.Errorf("worker %d pfile %d: %w", id, f.FileID, err))
			return res
		}
		res.scanned++
		if truncated {
			res.truncated++
			p.Obs.FileTruncated(runID, f.FileID)
		}
		p.Obs.FileScanned(runID, f.FileID)

		for _, m := range matches {
			ev := domain.MatchEvent{
				FileID:    f.FileID,
				LicenseID: m.License.ID,
				Start:     m.Start,
				Length:    m.Length,
				Removed:   req.Mode.Removed(),
			}
			res.matches++
			p.Obs.MatchFound(runID, ev)
			if p.Cfg.DryRun {
				continue
			}
			if _, err := p.Recorder.Record(ctx, conn, uploadID, req.UserID, ev); err != nil {
				// a lost decision never aborts the scan
				res.writeFailures++
				p.Obs.RecordFailed(runID, ev, err)
				continue
			}
			res.recorded++
		}
		p.Heart.Beat(1)
	}
	return res
}

// matchFile loads and matches one file and reports whether the body was cut
// at the read cap; a matcher panic is reported as an error
func (p *Pool) matchFile(ctx context.Context, conn domain.Conn, f domain.CandidateFile, refs []*domain.ReferenceLicense) (ms []domain.Match, truncated bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("matcher panic: %v", r)
		}
	}()
	content, err := p.Loader.Load(ctx, conn, f)
	if err != nil {
		return nil, false, fmt.Errorf("load: %w", err)
	}
	ms, err = p.Matcher.Match(content.Text, refs)
	return ms, content.Truncated, err
}

// acquire checks out a dedicated connection, retrying with backoff
func (p *Pool) acquire(ctx context.Context) (domain.Conn, error) {
	var conn domain.Conn
	err := retry.Do(
		func() error {
			c, err := p.Conns.Acquire(ctx)
			if err != nil {
				return err
			}
			conn = c
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(p.Cfg.ConnectAttempts)),
		retry.Delay(p.Cfg.ConnectDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	return conn, err
}

// partition splits files into at most n contiguous, order-preserving slices
// whose sizes differ by at most one
func partition(files []domain.CandidateFile, n int) [][]domain.CandidateFile {
	if n < 1 {
		n = 1
	}
	if n > len(files) {
		n = len(files)
	}
	out := make([][]domain.CandidateFile, 0, n)
	size, extra := len(files)/n, len(files)%n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < extra {
			end++
		}
		out = append(out, files[start:end])
		start = end
	}
	return out
}

type nopHeart struct{}

func (nopHeart) Beat(int) {}
