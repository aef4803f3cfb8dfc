// Package module wires the bulk HTTP surface into the API using modkit
package module

import (
	modkit "bulkscan/internal/modkit"
	"bulkscan/internal/modkit/httpkit"
	bulkhttp "bulkscan/internal/services/api/bulk/http"
	bulksvc "bulkscan/internal/services/api/bulk/service"
	bulkdom "bulkscan/internal/services/bulk/domain"
	rsdom "bulkscan/internal/services/runstats/domain"
)

// Ports are the collaborators the API module needs from the worker side
type Ports struct {
	Runner    bulkdom.RunnerPort
	Audits    bulkdom.AuditPort
	Summaries rsdom.QueryPort
}

// Module mounts the bulk endpoints under its prefix
type Module struct {
	b   modkit.Built
	svc *bulksvc.Service
}

// New constructs the module; the runner comes in through modkit.WithPorts(Ports)
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("api-bulk"),
		modkit.WithPrefix("/bulk"),
	}, opts...)...)

	p, ok := b.Ports.(Ports)
	if !ok || p.Runner == nil || p.Audits == nil {
		panic("api bulk module: expected WithPorts(api/bulk/module.Ports) with Runner and Audits")
	}
	return &Module{b: b, svc: bulksvc.New(p.Runner, p.Audits, p.Summaries)}
}

// MountRoutes implements module.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.b.Prefix, m.b.Mw, func(rr httpkit.Router) {
		bulkhttp.Register(rr, m.svc)
		m.b.Register(rr)
	})
}

func (m *Module) Name() string   { return m.b.Name }
func (m *Module) Prefix() string { return m.b.Prefix }
func (m *Module) Ports() any     { return m.svc }
