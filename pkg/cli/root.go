// Package cli implements the cobra commands of the wfrun binary. Each
// subcommand (run, validate, list) lives in its own file and is created by
// a NewXCommand constructor; this file holds the root command and the
// shared configuration plumbing.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wfrun/wfrun/pkg/config"
	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/constants"
)

// Version is stamped at build time via ldflags.
var Version = "dev"

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.CLIName,
		Short: "Run and validate CI workflows locally",
		Long: `wfrun executes GitHub-Actions-style workflow files on the local machine:
it parses the YAML, checks it against the workflow schema and actionlint,
simulates the triggering event, and runs the jobs with the same fail-fast
and continue-on-error semantics the hosted runner applies.`,

		// Errors are formatted by Execute; cobra should not print them twice.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: Version,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default: wfrun.yml or .wfrun.yml in the working directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewValidateCommand())
	rootCmd.AddCommand(NewListCommand())

	return rootCmd
}

// Execute runs the root command, printing a formatted error and returning
// the process exit code.
func Execute(ctx context.Context) int {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Run/validation failures already reported their details; the
		// sentinel only selects the exit code.
		if err != errFailed {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		}
		return 1
	}
	return 0
}

// errFailed signals a reported failure that only needs a non-zero exit.
var errFailed = fmt.Errorf("failed")

// loadConfig resolves the layered configuration for a command, letting the
// command's explicitly-set flags take highest precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return config.Load(cfgFile, wd, cmd.Flags())
}
