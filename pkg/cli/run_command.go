package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/logger"
	"github.com/wfrun/wfrun/pkg/runner"
	"github.com/wfrun/wfrun/pkg/timeutil"
	"github.com/wfrun/wfrun/pkg/tty"
	"github.com/wfrun/wfrun/pkg/workflow"
)

var runLog = logger.New("cli:run")

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [workflow...]",
		Short: "Execute workflows locally",
		Long: `Execute one or more workflow files against a simulated repository event.

With no arguments, workflows are discovered in .github/workflows. Workflows
whose triggers do not match the simulated event are skipped.

Examples:
  wfrun run
  wfrun run .github/workflows/lint.yml
  wfrun run --event push --ref refs/heads/feature --changed src/app.py
  wfrun run --job build --env PIP_INDEX_URL=https://mirror/simple
  wfrun run --dry-run
  wfrun run --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			sha, _ := cmd.Flags().GetString("sha")
			changed, _ := cmd.Flags().GetStringSlice("changed")
			jobFilter, _ := cmd.Flags().GetString("job")
			envFlags, _ := cmd.Flags().GetStringArray("env")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			watch, _ := cmd.Flags().GetBool("watch")
			jsonOut, _ := cmd.Flags().GetBool("json")

			extraEnv := make(map[string]string, len(cfg.Env)+len(envFlags))
			for k, v := range cfg.Env {
				extraEnv[k] = v
			}
			for _, assignment := range envFlags {
				k, v, ok := strings.Cut(assignment, "=")
				if !ok {
					return fmt.Errorf("invalid --env value %q, expected KEY=VALUE", assignment)
				}
				extraEnv[k] = v
			}

			ev := workflow.Event{
				Name:    cfg.Event,
				Ref:     cfg.Ref,
				SHA:     sha,
				Changed: changed,
			}

			opts := runner.Options{
				Event:               ev,
				ExtraEnv:            extraEnv,
				JobFilter:           jobFilter,
				StrictUses:          cfg.StrictUses,
				AllowPythonFallback: cfg.AllowPythonFallback,
				UsePTY:              !cfg.NoPTY && tty.IsStdoutTerminal(),
				FailFast:            cfg.FailFast,
				Verbose:             cfg.Verbose,
				Stdout:              cmd.OutOrStdout(),
			}

			runOnce := func() error {
				paths, err := workflow.Resolve(args, cfg.WorkflowDir)
				if err != nil {
					return err
				}
				return executeWorkflows(cmd, paths, ev, opts, dryRun, jsonOut)
			}

			if watch {
				paths, err := workflow.Resolve(args, cfg.WorkflowDir)
				if err != nil {
					return err
				}
				return watchAndRun(cmd.Context(), paths, runOnce)
			}
			return runOnce()
		},
	}

	cmd.Flags().String("event", "", "Event to simulate (default push)")
	cmd.Flags().String("ref", "", "Git ref of the simulated event (default refs/heads/main)")
	cmd.Flags().String("sha", "", "Commit SHA exposed to steps as GITHUB_SHA")
	cmd.Flags().StringSlice("changed", nil, "Changed file paths the event carries, for path filters")
	cmd.Flags().String("job", "", "Run only this job and its transitive needs")
	cmd.Flags().StringArray("env", nil, "Extra KEY=VALUE env for every job (repeatable)")
	cmd.Flags().Bool("dry-run", false, "Print the execution plan without running anything")
	cmd.Flags().Bool("strict-uses", false, "Fail on action references without a local handler")
	cmd.Flags().Bool("allow-python-fallback", false, "Accept a mismatched python interpreter with a warning")
	cmd.Flags().Bool("no-pty", false, "Run steps without a pseudo-terminal")
	cmd.Flags().Bool("fail-fast", true, "Stop scheduling jobs after the first fatal failure")
	cmd.Flags().Bool("watch", false, "Re-run on workflow file changes")
	cmd.Flags().Bool("json", false, "Emit run results as JSON")

	return cmd
}

// executeWorkflows runs each workflow whose triggers match the event and
// reports the combined outcome.
func executeWorkflows(cmd *cobra.Command, paths []string, ev workflow.Event, opts runner.Options, dryRun, jsonOut bool) error {
	var results []*runner.RunResult
	failed := false

	for _, path := range paths {
		w, err := workflow.Parse(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			failed = true
			continue
		}

		matched, reason := w.On.Matches(ev)
		if !matched {
			runLog.Printf("Workflow does not match event: path=%s, reason=%s", path, reason)
			fmt.Fprintln(cmd.OutOrStdout(), console.FormatInfoMessage(fmt.Sprintf("skipping %s: %s", w.Name, reason)))
			continue
		}

		if dryRun {
			if err := printPlan(cmd, w, opts.JobFilter); err != nil {
				fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
				failed = true
			}
			continue
		}

		r := runner.New(opts)
		result, err := r.Run(cmd.Context(), w)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			failed = true
			continue
		}
		results = append(results, result)
		printRunSummary(cmd, result)
		if result.Failed() {
			failed = true
		}
	}

	if jsonOut && !dryRun {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	}

	if failed {
		return errFailed
	}
	return nil
}

// printPlan renders the batched execution order of a dry run.
func printPlan(cmd *cobra.Command, w *workflow.Workflow, jobFilter string) error {
	plan, err := runner.BuildPlan(w, jobFilter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, console.FormatHeader(w.Name))
	for i, batch := range plan.Batches {
		fmt.Fprintf(out, "batch %d:\n", i+1)
		for _, job := range batch {
			fmt.Fprintf(out, "  %s\n", job.DisplayName())
			for _, step := range job.Steps {
				fmt.Fprintf(out, "    - %s\n", step.Label())
			}
		}
	}
	return nil
}

func printRunSummary(cmd *cobra.Command, result *runner.RunResult) {
	out := cmd.OutOrStdout()
	summary := fmt.Sprintf("%s: %s (%s)", result.Workflow, result.Status, timeutil.FormatElapsed(result.Duration))
	switch result.Status {
	case runner.StatusSuccess:
		fmt.Fprintln(out, console.FormatSuccessMessage(summary))
	case runner.StatusFailure:
		fmt.Fprintln(out, console.FormatErrorMessage(summary))
		for _, job := range result.Jobs {
			if !job.Failed() {
				continue
			}
			for _, step := range job.Steps {
				if step.Status != runner.StatusFailure {
					continue
				}
				fmt.Fprintln(out, console.FormatErrorMessage(fmt.Sprintf("  %s / %s: %s", job.Name, step.Name, step.Reason)))
				if len(step.OutputTail) > 0 {
					fmt.Fprintln(out, console.Indent(strings.Join(step.OutputTail, "\n"), "    "))
				}
			}
		}
	default:
		fmt.Fprintln(out, console.FormatWarningMessage(summary))
	}
}
