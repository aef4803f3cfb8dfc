// Package module is the contract every service module satisfies
package module

import (
	"fmt"
	"reflect"

	phttp "bulkscan/internal/platform/net/http"
)

// Module mounts its routes and exposes the ports other modules consume
type Module interface {
	Name() string
	MountRoutes(r phttp.Router)
	Ports() any
}

// PortsOf finds a T in m.Ports(): the value itself or one of its exported
// struct fields, first match wins
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.Indirect(reflect.ValueOf(p))
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if f := rv.Field(i); f.CanInterface() {
			if v, ok := f.Interface().(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for startup wiring, where a missing port is a bug
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("module %s: no port of type %T", m.Name(), *new(T)))
	}
	return v
}
