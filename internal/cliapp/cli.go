// Package cliapp is the projectjs command line.
package cliapp

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"projectjs/internal/core/config"
	"projectjs/internal/shared/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{Code: code, Message: fmt.Sprintf(format, args...)}
}

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree. Each call returns an independent tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "projectjs",
		Short:         "Load, verify and inspect project.js manifests",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogging(cmd.ErrOrStderr(), opts.verbose)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("%s version %s\n", version.Name, version.Version))

	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultFile, "Path to config file")
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	root.AddCommand(
		newValidateCmd(opts),
		newRegistryCmd(opts),
		newProjectCmd(opts),
		newWatchCmd(opts),
		newHistoryCmd(opts),
		newBrowseCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			fmt.Fprintln(os.Stderr, "error:", exitErr.Message)
		}
		return exitErr.Code
	}
	// Anything else comes from cobra's argument and flag parsing.
	fmt.Fprintln(os.Stderr, "error:", err)
	return exitUsage
}
