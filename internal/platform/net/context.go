// Package net holds request scoped ids and transport envelopes
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const keyCaller ctxKey = "caller"

// WithRequestID sets the chi request id so RequestID and chimw.GetReqID agree
func WithRequestID(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithCaller annotates ctx with the authenticated caller
func WithCaller(ctx context.Context, caller string) context.Context {
	if caller == "" {
		return ctx
	}
	return context.WithValue(ctx, keyCaller, caller)
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// Caller returns the authenticated caller, empty for anonymous requests
func Caller(ctx context.Context) string {
	s, _ := ctx.Value(keyCaller).(string)
	return s
}
