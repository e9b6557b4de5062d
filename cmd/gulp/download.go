package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"

	"github.com/ligustah/gulp/internal/downloader"
	gulphttp "github.com/ligustah/gulp/internal/http"
	"github.com/ligustah/gulp/internal/progress"
	"github.com/ligustah/gulp/internal/stage"
)

// runDownload fetches a file from an HTTP URL into a local file, splitting
// the transfer into parallel byte-range chunks. Optionally stashes the raw
// artifact in the archive bucket afterwards.
func runDownload(args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)

	url := fs.String("url", "", "Source URL to download (required)")
	output := fs.String("output", "", "Destination file path (required)")
	configPath := fs.String("config", "", "Path to YAML config file")
	workers := fs.Int("workers", 0, "Number of parallel workers")
	chunkSize := fs.String("chunk-size", "", "Size of each chunk (e.g. 100MiB)")
	showProgress := fs.Bool("progress", false, "Show progress output")
	archive := fs.String("archive", "", "Archive bucket URL to stash the raw file in")
	retryAttempts := fs.Int("retry-attempts", 0, "Max retry attempts per request")
	retryBackoff := fs.Duration("retry-backoff", 0, "Initial retry backoff")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gulp download [options]

Fetch a file from an HTTP URL into a local file using parallel byte-range
chunks. Flags override values from the config file and environment.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *url == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Error: -url and -output are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return ExitInvalidArgs
	}

	// Explicit flags win over config file and environment.
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *chunkSize != "" {
		bytes, err := humanize.ParseBytes(*chunkSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid chunk size: %v\n", err)
			return ExitInvalidArgs
		}
		cfg.ChunkSize = int64(bytes)
	}
	if *showProgress {
		cfg.Progress = true
	}
	if *archive != "" {
		cfg.Archive.Bucket = *archive
	}
	if *retryAttempts > 0 {
		cfg.Retry.Attempts = *retryAttempts
	}
	if *retryBackoff > 0 {
		cfg.Retry.Backoff = *retryBackoff
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		return ExitInvalidArgs
	}
	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[gulp] Received interrupt, shutting down...")
		cancel()
	}()

	httpOpts := gulphttp.Options{
		MaxIdleConnsPerHost: cfg.Workers * 2,
		Timeout:             30 * time.Second,
		RetryAttempts:       cfg.Retry.Attempts,
		RetryBackoff:        cfg.Retry.Backoff,
		RetryMaxBackoff:     cfg.Retry.MaxBackoff,
	}

	info, err := downloader.GetFileInfo(ctx, *url, httpOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error accessing source URL: %v\n", err)
		return ExitSourceNotAccess
	}

	// Setup progress reporter
	var reporter *progress.Reporter
	if cfg.Progress && info.Size > 0 {
		totalChunks := int((info.Size + cfg.ChunkSize - 1) / cfg.ChunkSize)
		reporter = progress.NewReporter(progress.Options{
			TotalSize:   info.Size,
			TotalChunks: totalChunks,
			Workers:     cfg.Workers,
			SourceURL:   *url,
			ChunkSize:   cfg.ChunkSize,
		})
		reporter.Start()
		defer reporter.Stop()
	}

	err = downloader.Download(ctx, *url, *output, downloader.Options{
		Workers:   cfg.Workers,
		ChunkSize: cfg.ChunkSize,
		Progress:  reporter,
		HTTP:      httpOpts,
	})
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "[gulp] Download interrupted")
			return ExitGeneralError
		}
		if errors.Is(err, gulphttp.ErrRangeNotSupported) {
			fmt.Fprintln(os.Stderr, "Error: Server does not support range requests")
			return ExitRangeNotSupported
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[gulp] Download complete: %s\n", *output)

	if cfg.Archive.Bucket != "" {
		if code := stashArtifact(ctx, cfg.Archive.Bucket, *output); code != ExitSuccess {
			return code
		}
	}

	return ExitSuccess
}

// stashArtifact copies the downloaded file into the archive bucket under
// a raw/ prefix keyed by file name.
func stashArtifact(ctx context.Context, bucketURL, file string) int {
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening archive bucket: %v\n", err)
		return ExitStorageError
	}
	defer bkt.Close()

	key := path.Join("raw", filepath.Base(file))
	if err := stage.Stash(ctx, bkt, key, file); err != nil {
		fmt.Fprintf(os.Stderr, "Error archiving file: %v\n", err)
		return ExitStorageError
	}

	fmt.Fprintf(os.Stderr, "[gulp] Archived: %s/%s\n", bucketURL, key)
	return ExitSuccess
}
