// Package main is the entry point for gai, which writes git commit messages
// for staged changes with a local Ollama model or OpenAI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gaicli/gai/internal/cmd"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd(version, commit, date)
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, apperrors.ErrAborted) {
		if apperrors.IsVerbose() {
			fmt.Fprintln(os.Stderr, apperrors.FormatErrorVerbose(err))
		} else {
			fmt.Fprintln(os.Stderr, apperrors.FormatError(err))
		}
	}
	os.Exit(apperrors.ExitCode(err))
}
