// Package http provides http transport for bulk runs
package http

import (
	stdhttp "net/http"
	"strconv"

	"bulkscan/internal/modkit/httpkit"
	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/services/api/bulk/domain"
)

// Register mounts the bulk endpoints
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.RunInput](r, "/runs", h.start)
	httpkit.PostJSON[domain.CommandInput](r, "/commands", h.command)
	httpkit.PostJSON[domain.RecentQuery](r, "/summaries", h.recent)
	httpkit.Get(r, "/runs/{id}", h.audit)
}

type handlers struct{ svc domain.ServicePort }

func (h *handlers) start(r *stdhttp.Request, in domain.RunInput) (any, error) {
	return h.svc.Start(r.Context(), in)
}

func (h *handlers) command(r *stdhttp.Request, in domain.CommandInput) (any, error) {
	return h.svc.Command(r.Context(), in)
}

func (h *handlers) recent(r *stdhttp.Request, in domain.RecentQuery) (any, error) {
	return h.svc.Recent(r.Context(), in)
}

func (h *handlers) audit(r *stdhttp.Request) (any, error) {
	raw := httpkit.Param(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, perr.InvalidArgf("audit id %q is not an integer", raw)
	}
	return h.svc.Audit(r.Context(), id)
}
