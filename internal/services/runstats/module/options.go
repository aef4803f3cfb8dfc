package module

import (
	"time"

	"bulkscan/internal/platform/config"
)

// Options holds configuration settings for the runstats module
type Options struct {
	WriteTimeout time.Duration
	EnsureTable  bool
}

// FromConfig reads CORE_RUNSTATS_*
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_RUNSTATS_")
	return Options{
		WriteTimeout: rf.MayDuration("WRITE_TIMEOUT", 5*time.Second),
		EnsureTable:  rf.MayBool("ENSURE_TABLE", true),
	}
}
