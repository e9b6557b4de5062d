// Package progress provides progress reporting for downloads.
//
// This package outputs human-readable progress information, including
// completion percentage and chunk counts.
//
// # Usage
//
//	reporter := progress.NewReporter(progress.Options{
//	    TotalSize:   totalBytes,
//	    TotalChunks: numChunks,
//	})
//
//	reporter.Start()
//	defer reporter.Stop()
//
//	// Update as chunks complete
//	reporter.ChunkCompleted(chunkSize)
package progress
