// Package config reads settings from prefixed environment variables.
// May* getters fall back to a default and warn on unparsable values
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"bulkscan/internal/platform/logger"

	"github.com/dustin/go-humanize"
)

// Conf is a view over the environment under a key prefix such as "CORE_API_"
type Conf struct{ prefix string }

func New() Conf                     { return Conf{} }
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key is the full variable name for k
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) raw(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.raw(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().
			Str("key", c.Key(key)).
			Str("value", s).
			Str("default", fmt.Sprint(def)).
			Msg("invalid config value; using default")
		return def
	}
	return v
}

func (c Conf) MayString(key, def string) string {
	if v := c.raw(key); v != "" {
		return v
	}
	return def
}

func (c Conf) MayInt(key string, def int) int { return may(c, key, def, strconv.Atoi) }

func (c Conf) MayInt64(key string, def int64) int64 {
	return may(c, key, def, func(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) })
}

func (c Conf) MayBool(key string, def bool) bool { return may(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

// MayBytes accepts humanized sizes: "16MiB", "512k" or a plain byte count
func (c Conf) MayBytes(key string, def int64) int64 {
	return may(c, key, def, func(s string) (int64, error) {
		n, err := humanize.ParseBytes(s)
		if err == nil && n > 1<<62 {
			err = fmt.Errorf("size %s out of range", s)
		}
		return int64(n), err
	})
}

// MayCSV splits on commas and drops blanks; def when nothing remains
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.raw(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the lower-cased value or def. A value outside allowed
// panics: a typo in a backend selector must not silently pick the default
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := strings.ToLower(c.MayString(key, def))
	for _, a := range allowed {
		if v == strings.ToLower(a) {
			return v
		}
	}
	if v == def {
		return v
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
