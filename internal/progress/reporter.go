package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures the progress reporter.
type Options struct {
	// TotalSize is the total size in bytes to download.
	TotalSize int64

	// TotalChunks is the total number of chunks.
	TotalChunks int

	// Workers is the number of parallel workers.
	Workers int

	// Output is where to write progress output.
	// Default: os.Stderr
	Output io.Writer

	// UpdateInterval is how often to update the progress display.
	// Default: 500ms
	UpdateInterval time.Duration

	// SourceURL is the URL being downloaded (for display).
	SourceURL string

	// ChunkSize is the size of each chunk (for display).
	ChunkSize int64
}

// Reporter outputs human-readable progress information.
type Reporter struct {
	opts Options

	mu              sync.Mutex
	completedBytes  atomic.Int64
	completedChunks atomic.Int32
	inProgress      atomic.Int32
	startTime       time.Time
	stopCh          chan struct{}
	doneCh          chan struct{}
	started         bool
	stopped         bool
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = 500 * time.Millisecond
	}

	return &Reporter{
		opts:   opts,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins outputting progress information.
func (r *Reporter) Start() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
	r.startTime = time.Now()

	fmt.Fprintf(r.opts.Output, "[gulp] Downloading: %s\n", r.opts.SourceURL)
	fmt.Fprintf(r.opts.Output, "[gulp] Total size: %s | Chunks: %d x %s | Workers: %d\n",
		humanize.IBytes(uint64(r.opts.TotalSize)),
		r.opts.TotalChunks,
		humanize.IBytes(uint64(r.opts.ChunkSize)),
		r.opts.Workers,
	)

	go r.updateLoop()
}

// Stop stops the progress reporter and waits for the final status line.
func (r *Reporter) Stop() {
	r.mu.Lock()
	if r.stopped || !r.started {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.stopCh)
	<-r.doneCh
}

// ChunkStarted marks a chunk as in progress.
func (r *Reporter) ChunkStarted() {
	r.inProgress.Add(1)
}

// ChunkCompleted marks a chunk as completed.
func (r *Reporter) ChunkCompleted(size int64) {
	r.completedBytes.Add(size)
	r.completedChunks.Add(1)
	r.inProgress.Add(-1)
}

// ChunkFailed marks a chunk as failed (removes from in-progress).
func (r *Reporter) ChunkFailed() {
	r.inProgress.Add(-1)
}

// CompletedBytes reports the bytes downloaded so far.
func (r *Reporter) CompletedBytes() int64 {
	return r.completedBytes.Load()
}

// updateLoop periodically updates the progress display.
func (r *Reporter) updateLoop() {
	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-r.stopCh:
			r.printFinalStatus()
			return
		case <-ticker.C:
			r.printProgress()
		}
	}
}

// printProgress outputs the current progress.
func (r *Reporter) printProgress() {
	completed := r.completedBytes.Load()
	completedChunks := int(r.completedChunks.Load())
	inProgress := int(r.inProgress.Load())

	var percent float64
	if r.opts.TotalSize > 0 {
		percent = float64(completed) / float64(r.opts.TotalSize) * 100
	}

	pending := r.opts.TotalChunks - completedChunks - inProgress
	if pending < 0 {
		pending = 0
	}

	fmt.Fprintf(r.opts.Output, "\r[gulp] Progress: %.1f%% | %s / %s | Chunks: %d done, %d in-flight, %d pending    ",
		percent,
		humanize.IBytes(uint64(completed)),
		humanize.IBytes(uint64(r.opts.TotalSize)),
		completedChunks,
		inProgress,
		pending,
	)
}

// printFinalStatus outputs the final status.
func (r *Reporter) printFinalStatus() {
	completed := r.completedBytes.Load()
	duration := time.Since(r.startTime)
	avgSpeed := float64(completed) / duration.Seconds()

	fmt.Fprintf(r.opts.Output, "\r[gulp] Downloaded %s in %s (%s/s)    \n",
		humanize.IBytes(uint64(completed)),
		formatDuration(duration),
		humanize.IBytes(uint64(avgSpeed)),
	)
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm %ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
