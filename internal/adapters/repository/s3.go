package repository

import (
	"context"
	"io"
	"net/url"
	"strings"

	perr "bulkscan/internal/platform/errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 opens blobs from a MinIO or S3 bucket
type S3 struct {
	client *minio.Client
	bucket string
}

// NewS3 builds the client; no request is made until the first Open
func NewS3(cfg S3Config) (*S3, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, perr.InvalidArgf("repository: s3 endpoint and bucket are required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, perr.Unauthorizedf("repository: s3 credentials are required")
	}

	host, secure := cfg.Endpoint, cfg.UseSSL
	if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
		host = u.Host
		secure = secure || u.Scheme == "https"
	}

	c, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "repository: s3 client")
	}
	return &S3{client: c, bucket: cfg.Bucket}, nil
}

// Open implements Opener. A missing key surfaces as not found on Stat
func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, classify(err, key)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, classify(err, key)
	}
	return obj, nil
}

func classify(err error, key string) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return perr.Wrapf(err, perr.ErrorCodeNotFound, "blob %s not in bucket", key)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return perr.Wrapf(err, perr.ErrorCodeForbidden, "blob %s", key)
	}
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "blob %s", key)
	}
	return err
}
