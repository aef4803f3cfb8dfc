package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bulkscan/internal/modkit"
	"bulkscan/internal/platform/config"
	phttp "bulkscan/internal/platform/net/http"
	bulkapi "bulkscan/internal/services/api/bulk/module"
	bulkdom "bulkscan/internal/services/bulk/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct{ reqs []bulkdom.RunRequest }

func (s *stubRunner) Execute(_ context.Context, req bulkdom.RunRequest) (bulkdom.Outcome, error) {
	s.reqs = append(s.reqs, req)
	now := time.Now()
	return bulkdom.Outcome{Success: true, RunID: "run-1", UploadID: 100, AuditID: 5, Files: 2, Scanned: 2, Matches: 1, Recorded: 1, Started: now, Finished: now}, nil
}

type stubAudits struct{}

func (stubAudits) AuditRun(_ context.Context, id int64) (bulkdom.AuditRun, error) {
	return bulkdom.AuditRun{ID: id, AgentID: 1, UploadID: 100, Success: true, Status: "ok"}, nil
}

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func newServer(t *testing.T, opt Options) (*httptest.Server, *stubRunner) {
	t.Helper()
	runner := &stubRunner{}
	opt.Bulk = bulkapi.Ports{Runner: runner, Audits: stubAudits{}}
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), modkit.Deps{Cfg: config.New()}, opt)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, runner
}

func call(t *testing.T, method, url, token, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res.StatusCode, env
}

func TestCommandEndpoint_RunsScenario(t *testing.T) {
	srv, runner := newServer(t, Options{})

	body := `{"command":"B\u0019 1\u0019 2\u0019 42\u0019 7\u0019 MIT License\u0019 groupA\u0019 MIT"}`
	code, env := call(t, http.MethodPost, srv.URL+"/api/v1/bulk/commands", "", body)
	require.Equal(t, http.StatusOK, code, env.Error)

	var view struct {
		RunID   string `json:"run_id"`
		AuditID int64  `json:"audit_id"`
		Success bool   `json:"success"`
		Mode    string `json:"mode"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "run-1", view.RunID)
	assert.EqualValues(t, 5, view.AuditID)
	assert.True(t, view.Success)
	assert.Equal(t, "add", view.Mode)

	// the run response leads to its audit row
	code, env = call(t, http.MethodGet, fmt.Sprintf("%s/api/v1/bulk/runs/%d", srv.URL, view.AuditID), "", "")
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Contains(t, string(env.Data), `"id":5`)

	require.Len(t, runner.reqs, 1)
	assert.Equal(t, int64(7), runner.reqs[0].LicenseRefID)
}

func TestRunsEndpoint_Validates(t *testing.T) {
	srv, runner := newServer(t, Options{})

	code, _ := call(t, http.MethodPost, srv.URL+"/api/v1/bulk/runs", "",
		`{"mode":"sideways","user_id":1,"group_id":2,"upload_tree_id":42,"license_ref_id":7,"reference_text":"MIT"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, http.MethodPost, srv.URL+"/api/v1/bulk/runs", "",
		`{"mode":"add","user_id":1,"group_id":2,"upload_tree_id":42,"license_ref_id":7,"reference_text":"MIT"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, runner.reqs, 1)

	code, _ = call(t, http.MethodPost, srv.URL+"/api/v1/bulk/commands", "", `{"command":"N\u00191"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuditEndpoint(t *testing.T) {
	srv, _ := newServer(t, Options{})

	code, env := call(t, http.MethodGet, srv.URL+"/api/v1/bulk/runs/5", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"status":"ok"`)

	code, _ = call(t, http.MethodGet, srv.URL+"/api/v1/bulk/runs/abc", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
}

func TestTokens_GuardAPI(t *testing.T) {
	srv, runner := newServer(t, Options{Tokens: []string{"scheduler:s3cret"}})
	body := `{"command":"B\u00191\u00192\u001942\u00197\u0019MIT"}`

	code, _ := call(t, http.MethodPost, srv.URL+"/api/v1/bulk/commands", "", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = call(t, http.MethodPost, srv.URL+"/api/v1/bulk/commands", "nope", body)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Empty(t, runner.reqs)

	code, _ = call(t, http.MethodPost, srv.URL+"/api/v1/bulk/commands", "s3cret", body)
	assert.Equal(t, http.StatusOK, code)

	code, _ = call(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, code, "health stays open")
}

func TestHealthzAndMetrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("bulkscan_runs_total 1\n"))
	})
	srv, _ := newServer(t, Options{Health: guard{err: errors.New("pg: refused")}, Metrics: metrics})

	code, env := call(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "store unavailable", env.Error)

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestFromConfig(t *testing.T) {
	t.Setenv("CORE_API_TOKENS", "scheduler:a, ops:b")
	t.Setenv("CORE_API_MAX_RUNS", "2")
	o := FromConfig(config.New())
	assert.Equal(t, []string{"scheduler:a", "ops:b"}, o.Tokens)
	assert.Equal(t, 2, o.MaxRuns)
	assert.False(t, o.Profiler)
}
