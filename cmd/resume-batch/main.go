// Package main provides the entry point for the resume-batch CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joseph-ayodele/resume-extractor/internal/cli"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	if err := cli.Execute(); err != nil {
		var runErr *pipeline.RunError
		if errors.As(err, &runErr) {
			printError("Error: %s\n", runErr.Message())
			os.Exit(2)
		}
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}
