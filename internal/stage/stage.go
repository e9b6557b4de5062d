package stage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrNotStaged is returned when a requested artifact does not exist in the
// archive bucket.
var ErrNotStaged = errors.New("stage: artifact not found")

// Stash copies the file at path into the bucket under key. Raw extract
// artifacts are stashed after download so a load can be replayed without
// re-fetching the source.
func Stash(ctx context.Context, bucket *blob.Bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	n, err := io.Copy(w, f)
	if err != nil {
		w.Close()
		return fmt.Errorf("stash %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}

	logrus.WithFields(logrus.Fields{
		"key":   key,
		"bytes": n,
	}).Debug("artifact stashed")
	return nil
}

// Open returns a reader over a previously stashed artifact.
func Open(ctx context.Context, bucket *blob.Bucket, key string) (io.ReadCloser, error) {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotStaged, key)
		}
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return r, nil
}

// Restore copies a stashed artifact back to a local file.
func Restore(ctx context.Context, bucket *blob.Bucket, key, path string) error {
	r, err := Open(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer r.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("restore %s: %w", key, err)
	}
	return f.Close()
}
