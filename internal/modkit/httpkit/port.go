package httpkit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	perrs "bulkscan/internal/platform/errors"
)

// TokenFunc maps a bearer token to the caller it identifies
type TokenFunc func(token string) (caller string, err error)

// Port implements middleware.AuthPort by reading Authorization and delegating to a TokenFunc
type Port struct {
	parse TokenFunc
}

// NewPortFunc builds a Port from a simple parser function
func NewPortFunc(fn TokenFunc) *Port {
	return &Port{parse: fn}
}

// Parse extracts the caller from an "Authorization: Bearer <token>" header.
// Every failure is reported as unauthorized without detail
func (p *Port) Parse(r *http.Request) (string, error) {
	s := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer"
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	raw := strings.TrimSpace(s[len(prefix):])
	if raw == "" {
		return "", perrs.Unauthorizedf("missing bearer token")
	}
	if p.parse == nil {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	caller, err := p.parse(raw)
	if err != nil || caller == "" {
		return "", perrs.Unauthorizedf("invalid bearer token")
	}
	return caller, nil
}

// StaticTokens accepts "name:token" pairs and resolves a token to its name
func StaticTokens(pairs []string) TokenFunc {
	type entry struct{ name, token string }
	var known []entry
	for _, p := range pairs {
		name, tok, ok := strings.Cut(strings.TrimSpace(p), ":")
		if !ok || name == "" || tok == "" {
			continue
		}
		known = append(known, entry{name, tok})
	}
	return func(token string) (string, error) {
		for _, e := range known {
			if subtle.ConstantTimeCompare([]byte(e.token), []byte(token)) == 1 {
				return e.name, nil
			}
		}
		return "", perrs.Unauthorizedf("unknown token")
	}
}
