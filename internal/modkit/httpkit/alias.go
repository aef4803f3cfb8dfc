// Package httpkit is what service modules use to mount routes.
// Modules import it instead of the platform http package
package httpkit

import (
	"net/http"

	phttp "bulkscan/internal/platform/net/http"
)

type (
	// Router is the platform router seam
	Router = phttp.Router
	// Handler is the platform handler type
	Handler = phttp.Handler
)

// Param returns a path parameter such as {id}
func Param(r *http.Request, name string) string { return phttp.URLParam(r, name) }

// PostJSON mounts h under POST; the body is bound and validated as T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// Get mounts a body-less handler under GET
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.NoBodyHandler(h))
}
