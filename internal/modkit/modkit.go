// Package modkit builds service modules from shared deps and options
package modkit

import (
	"net/http"
	"strings"

	"bulkscan/internal/modkit/httpkit"
	"bulkscan/internal/platform/config"
	"bulkscan/internal/platform/logger"
	"bulkscan/internal/platform/store"
)

// Deps holds the shared dependencies passed to every module constructor
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  store.PG         // shared pool plus dedicated sessions
	CH  store.Clickhouse // optional; nil when analytics are disabled
}

// Option adjusts how a module is built
type Option func(*Built)

// Built is the resolved module configuration
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(httpkit.Router)
}

func WithName(name string) Option     { return func(b *Built) { b.Name = name } }
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }
func WithPorts[T any](p T) Option     { return func(b *Built) { b.Ports = p } }

// WithMiddlewares appends per module middleware in order
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithRegister adds endpoints next to the module's own
func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) { b.Register = fn }
}

// Build applies opts in order. Later options win. The prefix is normalised to
// a single leading slash and no trailing slash; an empty name panics
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	if strings.TrimSpace(b.Name) == "" {
		panic("modkit: module name is required")
	}
	if p := strings.Trim(strings.TrimSpace(b.Prefix), "/"); p != "" {
		b.Prefix = "/" + p
	} else {
		b.Prefix = ""
	}
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}
