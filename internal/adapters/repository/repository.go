// Package repository loads file bodies from the content repository.
// Blobs are addressed by pfile hashes: <sha1[0:2]>/<sha1[2:4]>/<sha1[4:6]>/<sha1>.<md5>.<size>
package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bulkscan/internal/modkit/repokit"
	perr "bulkscan/internal/platform/errors"
	"bulkscan/internal/services/bulk/domain"
)

// Kinds of repository backends
const (
	KindFS = "fs"
	KindS3 = "s3"
)

// DefaultMaxFileBytes caps how much of one file is scanned
const DefaultMaxFileBytes int64 = 16 << 20

// Config selects and configures a backend
type Config struct {
	Kind         string
	Root         string // fs only
	MaxFileBytes int64
	S3           S3Config
}

// S3Config for a MinIO or S3 bucket using the same key layout as the fs tree
type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// Opener returns the blob stored under key
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Loader implements domain.ContentLoader on top of an Opener.
// Pfile hashes are read through the caller's session
type Loader struct {
	Repo    repokit.Binder[domain.Storage]
	Objects Opener
	Max     int64
}

// New builds the loader for cfg.Kind
func New(cfg Config, repo repokit.Binder[domain.Storage]) (*Loader, error) {
	limit := cfg.MaxFileBytes
	if limit <= 0 {
		limit = DefaultMaxFileBytes
	}

	var objs Opener
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindFS:
		if strings.TrimSpace(cfg.Root) == "" {
			return nil, perr.InvalidArgf("repository: fs root is required")
		}
		objs = Dir(cfg.Root)
	case KindS3:
		s3, err := NewS3(cfg.S3)
		if err != nil {
			return nil, err
		}
		objs = s3
	default:
		return nil, perr.InvalidArgf("repository: unknown kind %q", cfg.Kind)
	}
	return &Loader{Repo: repo, Objects: objs, Max: limit}, nil
}

// Load implements domain.ContentLoader
func (l *Loader) Load(ctx context.Context, q repokit.Queryer, f domain.CandidateFile) (domain.Content, error) {
	loc, err := l.Repo.Bind(q).PfileLocation(ctx, f.FileID)
	if err != nil {
		return domain.Content{}, err
	}
	key := loc.Key()
	if key == "" {
		return domain.Content{}, perr.InvalidArgf("pfile %d has no usable sha1", f.FileID)
	}

	rc, err := l.Objects.Open(ctx, key)
	if err != nil {
		return domain.Content{}, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() { _ = rc.Close() }()

	text, truncated, err := readCapped(rc, l.Max)
	if err != nil {
		return domain.Content{}, fmt.Errorf("read %s: %w", key, err)
	}
	return domain.Content{FileID: f.FileID, Text: text, Truncated: truncated}, nil
}

// readCapped reads at most limit bytes and reports whether more were available
func readCapped(r io.Reader, limit int64) (string, bool, error) {
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if int64(len(buf)) > limit {
		return string(buf[:limit]), true, nil
	}
	return string(buf), false, nil
}
