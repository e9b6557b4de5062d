// Package stage archives raw extract artifacts in object storage.
//
// Downloaded files are stashed into a bucket keyed by source so a load
// can be replayed or audited without re-fetching the remote. Storage is
// addressed by URL via gocloud.dev/blob ("s3://...", "file://...",
// "mem://" in tests), so the archive is storage-agnostic.
package stage
