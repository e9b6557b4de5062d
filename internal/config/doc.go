// Package config defines configuration structures for the gulp CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (GULP_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    Workers    int
//	    ChunkSize  int64
//	    Progress   bool
//	    Retry      RetryConfig
//	    Database   DatabaseConfig
//	    Archive    ArchiveConfig
//	    LogLevel   string
//	}
//
// Chunk sizes accept humanized strings ("100MiB", "1GB") in both the
// YAML file and environment variables.
package config
