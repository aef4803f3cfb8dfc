package http

import (
	stdhttp "net/http"

	pnet "bulkscan/internal/platform/net"
)

// Response is what return-style handlers produce. A non-nil Err wins over Body
type Response struct {
	Status int
	Body   any
	Err    error
}

// OK is a 200 with body
func OK(body any) Response { return Response{Status: stdhttp.StatusOK, Body: body} }

// Error is a response whose status comes from err's code
func Error(err error) Response { return Response{Err: err} }

// Handle adapts a return-style handler, writing the standard envelope
func Handle(h func(*stdhttp.Request) Response) Handler {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		resp := h(r)
		reqID := pnet.RequestID(r.Context())
		if resp.Err != nil {
			pnet.Write(w, pnet.Failure(resp.Err, reqID))
			return
		}
		status := resp.Status
		if status == 0 {
			status = stdhttp.StatusOK
		}
		pnet.Write(w, pnet.Success(status, resp.Body, reqID))
	}
}
