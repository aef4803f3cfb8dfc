// Package raw reads environment variables without logging, for the logger's
// own bootstrap
package raw

import (
	"os"
	"strconv"
	"strings"
)

// Env reads variables under prefix
type Env string

// String returns the trimmed value or def
func (e Env) String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(string(e) + key)); v != "" {
		return v
	}
	return def
}

// Bool accepts strconv.ParseBool forms plus yes/no
func (e Env) Bool(key string, def bool) bool {
	switch s := strings.ToLower(e.String(key, "")); s {
	case "":
		return def
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	default:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return def
		}
		return b
	}
}

// Int returns def for anything but a base-10 integer
func (e Env) Int(key string, def int) int {
	n, err := strconv.Atoi(e.String(key, ""))
	if err != nil {
		return def
	}
	return n
}
