// Package repo provides the postgres storage for bulk runs: upload resolution,
// candidate listing, run audit rows and clearing decision writes
package repo

import (
	"context"
	"errors"

	"bulkscan/internal/modkit/repokit"
	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/platform/store"
	"bulkscan/internal/services/bulk/domain"
)

// AuditTable holds one row per bulk run
const AuditTable = "monkbulk_ars"

// decision type and scope meanings stamped on every bulk decision
const (
	DecisionType  = "bulk"
	DecisionScope = "bulk"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// Storage is the bulk repository surface
type Storage = domain.Storage

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: repokit.RequireQueryer(q)} }

// ResolveUploadID maps an uploadtree row to its upload
func (s *pg) ResolveUploadID(ctx context.Context, uploadTreeID int64) (int64, error) {
	id, err := store.Scalar[int64](ctx, s.q,
		`SELECT upload_fk FROM uploadtree WHERE uploadtree_pk = $1`, uploadTreeID)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return 0, perr.NotFoundf("uploadtree %d not found", uploadTreeID)
		}
		return 0, perr.FromPostgresf(err, "resolve upload for uploadtree %d", uploadTreeID)
	}
	return id, nil
}

// ListCandidateFiles returns the distinct regular files of an upload in pfile order.
// Directories, containers and artifacts carry mode bits in 0x3C000000 and are skipped
func (s *pg) ListCandidateFiles(ctx context.Context, uploadID int64) ([]domain.CandidateFile, error) {
	ids, err := store.Many(ctx, s.q, store.ScanOne[int64], `
		SELECT DISTINCT pfile_fk
		FROM uploadtree
		WHERE upload_fk = $1
		  AND pfile_fk IS NOT NULL
		  AND (ufile_mode & x'3C000000'::int) = 0
		ORDER BY pfile_fk`, uploadID)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list files of upload %d", uploadID)
	}
	out := make([]domain.CandidateFile, len(ids))
	for i, id := range ids {
		out[i] = domain.CandidateFile{FileID: id}
	}
	return out, nil
}

// LicenseName returns the short name of a license_ref row
func (s *pg) LicenseName(ctx context.Context, licenseRefID int64) (string, error) {
	name, err := store.Scalar[string](ctx, s.q,
		`SELECT rf_shortname FROM license_ref WHERE rf_pk = $1`, licenseRefID)
	if err != nil && !errors.Is(err, perr.ErrNotFound) {
		return "", perr.FromPostgres(err, "license name")
	}
	return name, err
}

// AgentID returns the enabled agent row for (name, rev), inserting it when missing
func (s *pg) AgentID(ctx context.Context, name, rev, desc string) (int64, error) {
	id, err := store.Scalar[int64](ctx, s.q, `
		WITH existing AS (
			SELECT agent_pk FROM agent
			WHERE agent_name = $1 AND agent_rev = $2 AND agent_enabled
			ORDER BY agent_pk
			LIMIT 1
		), inserted AS (
			INSERT INTO agent (agent_name, agent_rev, agent_desc, agent_enabled)
			SELECT $1, $2, $3, true
			WHERE NOT EXISTS (SELECT 1 FROM existing)
			RETURNING agent_pk
		)
		SELECT agent_pk FROM existing
		UNION ALL
		SELECT agent_pk FROM inserted`, name, rev, desc)
	if err != nil {
		return 0, perr.FromPostgresf(err, "agent %s/%s", name, rev)
	}
	return id, nil
}

// BeginRun opens the audit row. uploadID 0 stores NULL (upload never resolved)
func (s *pg) BeginRun(ctx context.Context, uploadID, agentID int64) (int64, error) {
	if _, err := s.q.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+AuditTable+` () INHERITS (ars_master)`); err != nil {
		return 0, perr.FromPostgres(err, "ensure audit table")
	}
	id, err := store.Scalar[int64](ctx, s.q, `
		INSERT INTO `+AuditTable+` (agent_fk, upload_fk, ars_success, ars_status, ars_starttime)
		VALUES ($1, NULLIF($2::bigint, 0), false, 'running', now())
		RETURNING ars_pk`, agentID, uploadID)
	if err != nil {
		return 0, perr.FromPostgres(err, "begin audit row")
	}
	return id, nil
}

// EndRun closes the audit row with the final status
func (s *pg) EndRun(ctx context.Context, runHandle int64, success bool, status string) error {
	err := store.ExecOne(ctx, s.q, `
		UPDATE `+AuditTable+`
		SET ars_success = $2, ars_status = $3, ars_endtime = now()
		WHERE ars_pk = $1`, runHandle, success, status)
	return perr.FromPostgresf(err, "end audit row %d", runHandle)
}

// AuditRun reads one audit row
func (s *pg) AuditRun(ctx context.Context, id int64) (domain.AuditRun, error) {
	run, err := store.One(ctx, s.q, scanAuditRun, `
		SELECT ars_pk, agent_fk, COALESCE(upload_fk, 0), ars_success,
		       COALESCE(ars_status, ''), ars_starttime, ars_endtime
		FROM `+AuditTable+`
		WHERE ars_pk = $1`, id)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.AuditRun{}, perr.NotFoundf("run %d not found", id)
		}
		return domain.AuditRun{}, perr.FromPostgres(err, "read audit row")
	}
	return run, nil
}

func scanAuditRun(r store.Row) (domain.AuditRun, error) {
	var a domain.AuditRun
	err := r.Scan(&a.ID, &a.AgentID, &a.UploadID, &a.Success, &a.Status, &a.StartedAt, &a.EndedAt)
	return a, err
}

// recordSQL writes one bulk decision in a single statement.
// For every uploadtree row of the pfile inside the upload it reuses the caller's
// existing bulk decision or inserts one, then adds the (license, removed)
// association unless that exact association already exists. Retrying a
// record is therefore a no-op, and a new decision always gets its association.
// It answers with the number of decisions touched and associations inserted.
const recordSQL = `
WITH targets AS (
	SELECT ut.uploadtree_pk, t.type_pk, sc.scope_pk
	FROM uploadtree ut, clearing_decision_types t, clearing_decision_scopes sc
	WHERE ut.upload_fk = $3 AND ut.pfile_fk = $1
	  AND t.meaning = '` + DecisionType + `'
	  AND sc.meaning = '` + DecisionScope + `'
), reused AS (
	SELECT DISTINCT ON (cd.uploadtree_fk) cd.clearing_pk, cd.uploadtree_fk
	FROM clearing_decision cd
	JOIN targets tg ON cd.uploadtree_fk = tg.uploadtree_pk
	WHERE cd.pfile_fk = $1 AND cd.user_fk = $2
	  AND cd.type_fk = tg.type_pk AND cd.scope_fk = tg.scope_pk
	ORDER BY cd.uploadtree_fk, cd.clearing_pk
), inserted AS (
	INSERT INTO clearing_decision (uploadtree_fk, pfile_fk, user_fk, type_fk, scope_fk)
	SELECT tg.uploadtree_pk, $1, $2, tg.type_pk, tg.scope_pk
	FROM targets tg
	WHERE NOT EXISTS (SELECT 1 FROM reused r WHERE r.uploadtree_fk = tg.uploadtree_pk)
	RETURNING clearing_pk
), decisions AS (
	SELECT clearing_pk FROM reused
	UNION ALL
	SELECT clearing_pk FROM inserted
), linked AS (
	INSERT INTO clearing_licenses (clearing_fk, rf_fk, removed)
	SELECT d.clearing_pk, $4, $5
	FROM decisions d
	WHERE NOT EXISTS (
		SELECT 1 FROM clearing_licenses cl
		WHERE cl.clearing_fk = d.clearing_pk AND cl.rf_fk = $4 AND cl.removed = $5
	)
	RETURNING clearing_fk
)
SELECT (SELECT count(*) FROM decisions), (SELECT count(*) FROM linked)`

// RecordDecision persists one match atomically. A statement that found no
// decision to attach the license to is an error: the match would be lost
func (s *pg) RecordDecision(ctx context.Context, uploadID, userID int64, ev domain.MatchEvent) (domain.RecordResult, error) {
	var res domain.RecordResult
	err := s.q.QueryRow(ctx, recordSQL, ev.FileID, userID, uploadID, ev.LicenseID, ev.Removed).
		Scan(&res.Decisions, &res.Associations)
	if err != nil {
		return domain.RecordResult{}, perr.FromPostgresf(err, "record pfile %d license %d", ev.FileID, ev.LicenseID)
	}
	if res.Decisions == 0 {
		return res, perr.NotFoundf("record pfile %d license %d: no %s decision target in upload %d",
			ev.FileID, ev.LicenseID, DecisionType, uploadID)
	}
	return res, nil
}

// PfileLocation reads the hashes that address a pfile in the content repository
func (s *pg) PfileLocation(ctx context.Context, fileID int64) (domain.PfileRef, error) {
	ref, err := store.One(ctx, s.q, func(r store.Row) (domain.PfileRef, error) {
		p := domain.PfileRef{FileID: fileID}
		err := r.Scan(&p.SHA1, &p.MD5, &p.Size)
		return p, err
	}, `SELECT pfile_sha1, pfile_md5, pfile_size FROM pfile WHERE pfile_pk = $1`, fileID)
	if err != nil {
		if errors.Is(err, perr.ErrNotFound) {
			return domain.PfileRef{}, perr.NotFoundf("pfile %d not found", fileID)
		}
		return domain.PfileRef{}, perr.FromPostgres(err, "pfile location")
	}
	return ref, nil
}
