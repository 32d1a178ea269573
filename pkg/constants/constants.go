// Package constants centralizes names shared across packages so commands,
// runner, and config stay in agreement.
package constants

const (
	// CLIName is the binary name used in help text and examples.
	CLIName = "wfrun"

	// DefaultWorkflowDir is where workflows are discovered when no path
	// is given on the command line.
	DefaultWorkflowDir = ".github/workflows"

	// ConfigFileName and ConfigFileNameHidden are the runner config file
	// names looked up in the working directory, in that order.
	ConfigFileName       = "wfrun.yml"
	ConfigFileNameHidden = ".wfrun.yml"

	// EnvPrefix is the prefix for configuration environment variables,
	// e.g. WFRUN_EVENT, WFRUN_FAIL_FAST.
	EnvPrefix = "WFRUN_"

	// DefaultEvent and DefaultRef describe the simulated event when none
	// is specified.
	DefaultEvent = "push"
	DefaultRef   = "refs/heads/main"

	// RunIDEnvVar carries the unique id of the current run into steps.
	RunIDEnvVar = "WFRUN_RUN_ID"

	// PythonEnvVar carries the interpreter resolved by the setup-python
	// handler into later steps.
	PythonEnvVar = "WFRUN_PYTHON"

	// DefaultJobTimeoutMinutes mirrors the hosted runner's job timeout.
	DefaultJobTimeoutMinutes = 360

	// OutputTailLines is how many trailing output lines a step result
	// retains for the summary.
	OutputTailLines = 20
)
