package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ligustah/gulp/pkg/extract"
)

// runUnpack extracts a downloaded zip archive into a directory.
func runUnpack(args []string) int {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)

	archive := fs.String("archive", "", "Path to zip archive (required)")
	dir := fs.String("dir", "", "Destination directory (required)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: gulp unpack [options]

Extract a zip archive into a directory, creating it if needed.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	if *archive == "" || *dir == "" {
		fmt.Fprintln(os.Stderr, "Error: -archive and -dir are required")
		fs.Usage()
		return ExitInvalidArgs
	}

	if err := extract.Unzip(*archive, *dir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[gulp] Unpacked %s into %s\n", *archive, *dir)
	return ExitSuccess
}
