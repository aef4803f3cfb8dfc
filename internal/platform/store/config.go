package store

import "time"

// Config enables and configures each backend
type Config struct {
	AppName string
	PG      PGConfig
	CH      CHConfig
}

type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32
	LogSQL   bool
	Slow     time.Duration // statements at least this long log at warn

	ConnectRetries uint          // 20 when zero
	PingTimeout    time.Duration // 3s when zero
}

type CHConfig struct {
	Enabled bool
	URL     string
	Role    string // reported in the clickhouse client info
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
