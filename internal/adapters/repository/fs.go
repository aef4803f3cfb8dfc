package repository

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	perr "bulkscan/internal/platform/errors"
)

// Dir opens blobs from a local repository tree
type Dir string

// Open implements Opener
func (d Dir) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(string(d), filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "blob %s not in repository", key)
		}
		return nil, err
	}
	return f, nil
}
