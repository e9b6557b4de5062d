// Package downloader fetches large remote files as parallel byte-range
// chunks reassembled into one local file.
//
// The remote size is probed with a HEAD request and partitioned into
// fixed-size chunks by [Plan]. Each chunk is fetched with a strict range
// request (206 or failure) and written at its own offset into the
// pre-allocated destination; ranges are disjoint, so positioned writes
// need no lock around a shared file position. Chunk fan-out is bounded
// by Options.Workers.
//
// # Usage
//
//	err := downloader.Download(ctx, url, "/data/raw/prices.zip", downloader.Options{
//	    Workers:   16,
//	    ChunkSize: 100 * 1024 * 1024,
//	})
//
// A failed chunk cancels its siblings and fails the download; the
// destination file is only valid after Download returns nil.
package downloader
