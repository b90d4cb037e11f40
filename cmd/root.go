// Package cmd wires the command line onto the query and render layers:
// argument parsing, option resolution, and the mapping from the error
// taxonomy to process exit codes.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/twistlock-tools/twistq/pkg/query"
	"github.com/twistlock-tools/twistq/pkg/render"
)

// Exit codes, one per kind of expected failure. Anything unexpected
// (network, I/O, malformed document) exits 1.
const (
	exitFailure      = 1
	exitUsage        = 2
	exitNotFound     = 3
	exitNoPackages   = 4
	exitRenderConfig = 5
)

// Execute runs the CLI and exits the process on error.
func Execute(args []string) {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "twistq",
		Short: "twistq queries container image scan reports",
		Long: "twistq extracts facets of a container image scan report from a " +
			"Twistlock-style console or a saved snapshot of its results: installed " +
			"packages by ecosystem type, discovered binaries, CVEs, or the set of " +
			"images and report categories available.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = fmt.Sprintf(`{"version": "%s"}`, Version)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.AddCommand(newImageCmd())
	return rootCmd
}

// exitCode maps the closed error taxonomy to deterministic exit codes. The
// query and render layers never translate their errors; this is the single
// place where each kind becomes a process status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidLocator),
		errors.Is(err, errUnknownSearchType),
		errors.Is(err, errInvalidColumnSpec):
		return exitUsage
	case errors.Is(err, query.ErrImageNotFound):
		return exitNotFound
	case errors.Is(err, query.ErrNoPackages):
		return exitNoPackages
	case errors.Is(err, render.ErrInvalidSortField), errors.Is(err, render.ErrInvalidColumn):
		return exitRenderConfig
	default:
		return exitFailure
	}
}
