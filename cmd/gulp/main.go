package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ligustah/gulp/internal/config"
)

// Exit codes
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitInvalidArgs       = 2
	ExitSourceNotAccess   = 3
	ExitRangeNotSupported = 4
	ExitStorageError      = 5
	ExitDatabaseError     = 6
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "download":
		return runDownload(cmdArgs)
	case "unpack":
		return runUnpack(cmdArgs)
	case "load":
		return runLoad(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: gulp <command> [options]

Commands:
  download  Fetch a file over HTTP in parallel byte-range chunks
  unpack    Extract a downloaded zip archive into a directory
  load      Load newline-delimited JSON records into a Postgres table

Run 'gulp <command> -h' for command-specific help.`)
}

// loadConfig builds the effective configuration: defaults, then the
// optional config file, then environment variables.
func loadConfig(path string) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// setupLogging applies the configured log level to the process logger.
func setupLogging(cfg config.Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logrus.SetLevel(level)
	return nil
}
