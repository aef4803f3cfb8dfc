package module

import (
	"runtime"
	"time"

	"bulkscan/internal/adapters/repository"
	"bulkscan/internal/core/version"
	"bulkscan/internal/platform/config"
)

// Options holds configuration settings for the bulk module
type Options struct {
	Workers         int
	ConnectAttempts int
	ConnectDelay    time.Duration
	DryRun          bool

	AgentName string
	AgentRev  string

	Repo      repository.Config
	Heartbeat time.Duration
}

// FromConfig reads CORE_BULK_*
func FromConfig(cfg config.Conf) Options {
	bf := cfg.Prefix("CORE_BULK_")
	return Options{
		Workers:         bf.MayInt("WORKERS", runtime.NumCPU()),
		ConnectAttempts: bf.MayInt("CONNECT_ATTEMPTS", 3),
		ConnectDelay:    bf.MayDuration("CONNECT_DELAY", 200*time.Millisecond),
		DryRun:          bf.MayBool("DRY_RUN", false),
		AgentName:       bf.MayString("AGENT_NAME", "monkbulk"),
		AgentRev:        bf.MayString("AGENT_REV", version.Rev()),
		Repo: repository.Config{
			Kind:         bf.MayEnum("REPO_KIND", repository.KindFS, repository.KindFS, repository.KindS3),
			Root:         bf.MayString("REPO_ROOT", "/srv/fossology/repository/files"),
			MaxFileBytes: bf.MayBytes("MAX_FILE_BYTES", repository.DefaultMaxFileBytes),
			S3: repository.S3Config{
				Endpoint:  bf.MayString("S3_ENDPOINT", ""),
				Bucket:    bf.MayString("S3_BUCKET", ""),
				AccessKey: bf.MayString("S3_ACCESS_KEY", ""),
				SecretKey: bf.MayString("S3_SECRET_KEY", ""),
				Region:    bf.MayString("S3_REGION", ""),
				UseSSL:    bf.MayBool("S3_USE_SSL", false),
			},
		},
		Heartbeat: bf.MayDuration("HEARTBEAT", 10*time.Second),
	}
}

// merge applies non-zero overrides on top of o
func (o Options) merge(over Options) Options {
	if over.Workers != 0 {
		o.Workers = over.Workers
	}
	if over.ConnectAttempts != 0 {
		o.ConnectAttempts = over.ConnectAttempts
	}
	if over.ConnectDelay != 0 {
		o.ConnectDelay = over.ConnectDelay
	}
	if over.AgentName != "" {
		o.AgentName = over.AgentName
	}
	if over.AgentRev != "" {
		o.AgentRev = over.AgentRev
	}
	if over.Repo.Kind != "" {
		o.Repo = over.Repo
	}
	if over.Heartbeat != 0 {
		o.Heartbeat = over.Heartbeat
	}
	// bool override wins only when set
	o.DryRun = o.DryRun || over.DryRun
	return o
}
