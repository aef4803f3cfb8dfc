// Package repokit is the seam between service repos and the store.
// Repos are written against Queryer and bound per session, so one repo type
// serves both the pool and a worker's dedicated connection
package repokit

import "bulkscan/internal/platform/store"

type (
	// Queryer is what a bound repo runs statements on
	Queryer = store.RowQuerier
	// Conn is a dedicated session its owner must release
	Conn       = store.Conn
	Rows       = store.Rows
	Row        = store.Row
	CommandTag = store.CommandTag
)

// Binder produces a T that runs on the given session
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain function to Binder
type BindFunc[T any] func(Queryer) T

func (f BindFunc[T]) Bind(q Queryer) T { return f(RequireQueryer(q)) }

// RequireQueryer panics on a nil session; binding to nothing is a wiring bug
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}
