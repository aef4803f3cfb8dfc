package middleware

import (
	"net/http"
	"runtime/debug"

	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/platform/logger"
	pnet "bulkscan/internal/platform/net"
)

// RecoverJSON turns a handler panic into the standard 500 envelope.
// http.ErrAbortHandler is re-panicked so the server can drop the connection
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}
			reqID := pnet.RequestID(r.Context())
			logger.C(r.Context()).Error().
				Str("request_id", reqID).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			pnet.Write(w, pnet.Failure(perr.PanicErrf("internal error"), reqID))
		}()
		next.ServeHTTP(w, r)
	})
}
