package httpkit

import (
	"net/http"
	"strings"

	"bulkscan/internal/platform/net/middleware"
)

type chain = []func(http.Handler) http.Handler

// MountUnder mounts a subrouter at prefix with its own middlewares
func MountUnder(r Router, prefix string, mw chain, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPI mounts under /api/{version}
func MountAPI(r Router, version string, mw chain, mount func(Router)) {
	MountUnder(r, "/api/"+strings.TrimPrefix(version, "/"), mw, mount)
}

// MountAPIV1 is MountAPI for v1
func MountAPIV1(r Router, mw chain, mount func(Router)) { MountAPI(r, "v1", mw, mount) }

// Protected groups routes under bearer auth. A nil port leaves them open
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(middleware.Auth(p))
		fn(gr)
	})
}
