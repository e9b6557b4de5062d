package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	gulphttp "github.com/ligustah/gulp/internal/http"
	"github.com/ligustah/gulp/internal/progress"
)

// DefaultChunkSize is the chunk size used when Options.ChunkSize is unset.
const DefaultChunkSize = 100 * 1024 * 1024 // 100MB

// DefaultWorkers bounds chunk fan-out when Options.Workers is unset.
const DefaultWorkers = 16

// Options configures the downloader.
type Options struct {
	// Workers is the maximum number of chunks fetched in parallel.
	Workers int

	// ChunkSize is the size of each download chunk.
	ChunkSize int64

	// Progress is an optional progress reporter.
	Progress *progress.Reporter

	// HTTP configures the HTTP client.
	HTTP gulphttp.Options
}

// GetFileInfo probes metadata about a remote file.
func GetFileInfo(ctx context.Context, url string, opts gulphttp.Options) (*gulphttp.FileInfo, error) {
	return gulphttp.NewClient(opts).Head(ctx, url)
}

// Download fetches url into the file at dest, splitting the resource into
// byte-range chunks fetched in parallel. The destination is pre-allocated
// to the full size and each chunk lands at its own offset with positioned
// writes, so writers never contend on a shared file position.
//
// The download succeeds only if every chunk succeeds; on any error the
// destination may be partially populated and must be treated as invalid.
// If the server does not report a size, the resource is streamed with a
// single plain GET instead.
func Download(ctx context.Context, url, dest string, opts Options) error {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}

	client := gulphttp.NewClient(opts.HTTP)

	info, err := client.Head(ctx, url)
	if err != nil {
		return fmt.Errorf("probe file info: %w", err)
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create destination directory: %w", err)
		}
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer f.Close()

	if info.Size <= 0 {
		logrus.WithField("url", url).Debug("size unknown, downloading in one request")
		return downloadWhole(ctx, client, url, f)
	}

	// Pre-allocate so every chunk has its offset addressable up front.
	if err := f.Truncate(info.Size); err != nil {
		return fmt.Errorf("allocate destination file: %w", err)
	}

	chunks := Plan(info.Size, opts.ChunkSize)

	logrus.WithFields(logrus.Fields{
		"url":     url,
		"size":    humanize.Bytes(uint64(info.Size)),
		"chunks":  len(chunks),
		"workers": opts.Workers,
	}).Debug("downloading in chunks")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			return downloadChunk(gctx, client, url, chunk, f, opts.Progress)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

// downloadChunk fetches a single chunk and writes it at its offset.
func downloadChunk(ctx context.Context, client *gulphttp.Client, url string, chunk Chunk, f *os.File, reporter *progress.Reporter) error {
	if reporter != nil {
		reporter.ChunkStarted()
	}

	resp, err := client.GetRange(ctx, url, chunk.Start, chunk.End-1)
	if err != nil {
		if reporter != nil {
			reporter.ChunkFailed()
		}
		return fmt.Errorf("download chunk %d: %w", chunk.Index, err)
	}
	defer resp.Body.Close()

	n, err := io.Copy(io.NewOffsetWriter(f, chunk.Start), resp.Body)
	if err != nil {
		if reporter != nil {
			reporter.ChunkFailed()
		}
		return fmt.Errorf("write chunk %d: %w", chunk.Index, err)
	}

	if n != chunk.Length() {
		if reporter != nil {
			reporter.ChunkFailed()
		}
		return fmt.Errorf("chunk %d size mismatch: expected %d bytes, got %d", chunk.Index, chunk.Length(), n)
	}

	logrus.WithFields(logrus.Fields{
		"chunk": chunk.Index,
		"start": chunk.Start,
		"bytes": humanize.Bytes(uint64(n)),
	}).Trace("chunk downloaded")

	if reporter != nil {
		reporter.ChunkCompleted(n)
	}
	return nil
}

// downloadWhole streams the full resource body without range requests.
func downloadWhole(ctx context.Context, client *gulphttp.Client, url string, f *os.File) error {
	body, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer body.Close()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("write %s: %w", f.Name(), err)
	}
	return nil
}
