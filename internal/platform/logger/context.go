package logger

import "context"

type ctxKey int

const (
	reqKey ctxKey = iota
	runKey
)

// WithRequest tags ctx with the HTTP request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, reqKey, reqID)
}

// WithRun tags ctx with the bulk run id
func WithRun(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey, runID)
}

// RunID returns the id set by WithRun
func RunID(ctx context.Context) (string, bool) {
	s, _ := ctx.Value(runKey).(string)
	return s, s != ""
}

// C is the root logger with request_id and run_id from ctx
func C(ctx context.Context) *Logger {
	c := Get().With()
	if s, _ := ctx.Value(reqKey).(string); s != "" {
		c = c.Str("request_id", s)
	}
	if s, ok := RunID(ctx); ok {
		c = c.Str("run_id", s)
	}
	l := c.Logger()
	return &l
}

// Named is the root logger with a component field
func Named(component string) *Logger {
	l := Get().With().Str("component", component).Logger()
	return &l
}
