package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	chicors "github.com/go-chi/cors"
)

// Func is one link of a handler chain
type Func = func(http.Handler) http.Handler

// Chi middlewares used by the API stack. RequestID honours an inbound
// X-Request-Id; Throttle answers 429 once limit requests are in flight;
// AllowContentType answers 415 for any other non-empty body
func RequestID() Func                          { return chimw.RequestID }
func RealIP() Func                             { return chimw.RealIP }
func NoCache() Func                            { return chimw.NoCache }
func StripSlashes() Func                       { return chimw.StripSlashes }
func Heartbeat(path string) Func               { return chimw.Heartbeat(path) }
func Throttle(limit int) Func                  { return chimw.Throttle(limit) }
func AllowContentType(ct ...string) Func       { return chimw.AllowContentType(ct...) }
func Compress(level int, types ...string) Func { return chimw.Compress(level, types...) }

// CORSOptions is the part of go-chi/cors the API configures
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS fills empty method and header lists with what the bulk API needs
func CORS(o CORSOptions) Func {
	return chicors.Handler(chicors.Options{
		AllowedOrigins:   o.AllowedOrigins,
		AllowedMethods:   orDefault(o.AllowedMethods, http.MethodGet, http.MethodPost, http.MethodOptions),
		AllowedHeaders:   orDefault(o.AllowedHeaders, "Accept", "Authorization", "Content-Type", "X-Request-ID"),
		ExposedHeaders:   orDefault(o.ExposedHeaders, "X-Request-ID"),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}

func orDefault(v []string, def ...string) []string {
	if len(v) == 0 {
		return def
	}
	return v
}
