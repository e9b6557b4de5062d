// Package extract provides helpers for reading raw extract artifacts:
// JSON payload files and downloaded archives.
package extract
