// Package runner executes parsed workflows on the local host: it resolves
// the job graph into batches, spawns run steps through a shell, handles the
// built-in action references, and folds exit codes into run conclusions
// with the platform's fail-fast and continue-on-error semantics.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/constants"
	"github.com/wfrun/wfrun/pkg/fileutil"
	"github.com/wfrun/wfrun/pkg/logger"
	"github.com/wfrun/wfrun/pkg/timeutil"
	"github.com/wfrun/wfrun/pkg/workflow"
)

var execLog = logger.New("runner:exec")

// minuteScale converts timeout-minutes values to wall-clock durations.
// Tests substitute a smaller unit.
var minuteScale = time.Minute

// Options configures a Runner.
type Options struct {
	// Event is the simulated repository event steps see in GITHUB_* vars.
	Event workflow.Event

	// Workspace is the directory steps run in. Defaults to the current
	// working directory.
	Workspace string

	// ExtraEnv is injected between workflow- and job-level env.
	ExtraEnv map[string]string

	// JobFilter restricts execution to one job and its transitive needs.
	JobFilter string

	// StrictUses fails on action references the runner cannot handle
	// locally instead of skipping them.
	StrictUses bool

	// AllowPythonFallback downgrades an interpreter version mismatch in
	// setup-python from a step failure to a warning.
	AllowPythonFallback bool

	// UsePTY runs command steps under a pseudo-terminal so invoked tools
	// keep their color output.
	UsePTY bool

	// FailFast stops scheduling further job batches once a job has
	// failed fatally.
	FailFast bool

	Verbose bool
	Stdout  io.Writer
}

// Runner executes workflow plans.
type Runner struct {
	opts Options
}

// syncWriter serializes writes from concurrently running jobs.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// New creates a Runner, filling in option defaults.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	opts.Stdout = &syncWriter{w: opts.Stdout}
	if opts.Workspace == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.Workspace = wd
		}
	}
	if opts.Event.Name == "" {
		opts.Event.Name = constants.DefaultEvent
	}
	return &Runner{opts: opts}
}

// Run plans and executes a workflow.
func (r *Runner) Run(ctx context.Context, w *workflow.Workflow) (*RunResult, error) {
	plan, err := BuildPlan(w, r.opts.JobFilter)
	if err != nil {
		return nil, err
	}
	return r.RunPlan(ctx, plan)
}

// RunPlan executes a prepared plan. Jobs within a batch run concurrently;
// a fatal job failure stops later batches when FailFast is set.
func (r *Runner) RunPlan(ctx context.Context, plan *Plan) (*RunResult, error) {
	w := plan.Workflow
	result := &RunResult{
		RunID:    uuid.NewString(),
		Workflow: w.Name,
		Path:     w.Path,
		Event:    r.opts.Event.Name,
	}
	execLog.Printf("Starting run: workflow=%s, run_id=%s, batches=%d", w.Name, result.RunID, len(plan.Batches))
	start := time.Now()

	aborted := false
	for _, batch := range plan.Batches {
		if aborted {
			for _, job := range batch {
				result.Jobs = append(result.Jobs, JobResult{
					ID:     job.ID,
					Name:   job.DisplayName(),
					Status: StatusSkipped,
				})
			}
			continue
		}

		jobResults := make([]JobResult, len(batch))
		p := pool.New().WithMaxGoroutines(len(batch))
		for i, job := range batch {
			p.Go(func() {
				jobResults[i] = r.runJob(ctx, w, job, result.RunID)
			})
		}
		p.Wait()

		result.Jobs = append(result.Jobs, jobResults...)
		for _, jr := range jobResults {
			if jr.Failed() && r.opts.FailFast {
				aborted = true
			}
		}
	}

	result.Duration = time.Since(start)
	result.conclude()
	execLog.Printf("Run finished: workflow=%s, status=%s, elapsed=%s", w.Name, result.Status, timeutil.FormatElapsed(result.Duration))
	return result, nil
}

func (r *Runner) runJob(ctx context.Context, w *workflow.Workflow, job *workflow.Job, runID string) JobResult {
	fmt.Fprintln(r.opts.Stdout, console.FormatHeader(fmt.Sprintf("%s / %s", w.Name, job.DisplayName())))

	jr := JobResult{ID: job.ID, Name: job.DisplayName()}
	start := time.Now()

	timeout := job.TimeoutMinutes
	if timeout <= 0 {
		timeout = constants.DefaultJobTimeoutMinutes
	}
	jobCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*minuteScale)
	defer cancel()

	env := buildJobEnv(w, job, r.opts.Event, runID, r.opts.Workspace, r.opts.ExtraEnv)
	defaults := w.Defaults.Merge(job.Defaults)

	failed := false
	for _, step := range job.Steps {
		cancelled := jobCtx.Err() != nil
		if !evalCondition(step.If, failed, cancelled) {
			execLog.Printf("Skipping step: job=%s, step=%s, failed=%v, cancelled=%v", job.ID, step.Label(), failed, cancelled)
			jr.Steps = append(jr.Steps, StepResult{
				Name:   step.Label(),
				Status: StatusSkipped,
				Reason: skipReason(step.If, failed, cancelled),
			})
			continue
		}

		var sr StepResult
		if step.IsUsesStep() {
			sr = r.runUsesStep(jobCtx, step, env)
		} else {
			sr = r.runCommandStep(jobCtx, step, defaults, env)
		}
		jr.Steps = append(jr.Steps, sr)
		r.printStepResult(sr)

		if sr.Status == StatusFailure {
			failed = true
		}
	}

	jr.Duration = time.Since(start)
	switch {
	case ctx.Err() != nil:
		jr.Status = StatusCancelled
	case failed && job.ContinueOnError:
		jr.Status = StatusAdvisory
	case failed || jobCtx.Err() != nil:
		// A job that exhausted its own timeout failed; cancelled is
		// reserved for parent-context cancellation.
		jr.Status = StatusFailure
	default:
		jr.Status = StatusSuccess
	}
	return jr
}

func (r *Runner) runCommandStep(ctx context.Context, step *workflow.Step, defaults workflow.Defaults, env map[string]string) StepResult {
	sr := StepResult{Name: step.Label()}

	shell := step.Shell
	if shell == "" {
		shell = defaults.Shell
	}
	argv, err := shellCommand(shell, step.Run)
	if err != nil {
		sr.Status = StatusFailure
		sr.ExitCode = -1
		sr.Reason = err.Error()
		return sr
	}

	dir := r.opts.Workspace
	workingDir := step.WorkingDirectory
	if workingDir == "" {
		workingDir = defaults.WorkingDirectory
	}
	if workingDir != "" {
		resolved, err := fileutil.ResolveDir(r.opts.Workspace, workingDir)
		if err != nil {
			sr.Status = StatusFailure
			sr.ExitCode = -1
			sr.Reason = err.Error()
			return sr
		}
		dir = resolved
	}

	stepCtx := ctx
	if step.TimeoutMinutes > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutMinutes)*minuteScale)
		defer cancel()
	}

	stepEnv := env
	if len(step.Env) > 0 {
		stepEnv = make(map[string]string, len(env)+len(step.Env))
		for k, v := range env {
			stepEnv[k] = v
		}
		for k, v := range step.Env {
			stepEnv[k] = v
		}
	}

	// A python shell prefers the interpreter resolved by setup-python.
	if argv[0] == "python3" {
		if resolved := stepEnv[constants.PythonEnvVar]; resolved != "" {
			argv[0] = resolved
		}
	}

	fmt.Fprintln(r.opts.Stdout, console.FormatCommandMessage(step.Label()))

	tail := newLineTail(constants.OutputTailLines)
	out := io.MultiWriter(r.opts.Stdout, tail)

	cmd := exec.CommandContext(stepCtx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = flattenEnv(stepEnv)

	start := time.Now()
	runErr := r.runProcess(cmd, out)
	sr.Duration = time.Since(start)
	sr.OutputTail = tail.Lines()
	sr.ExitCode = exitCode(cmd, runErr)

	switch {
	case runErr == nil:
		sr.Status = StatusSuccess
	case stepCtx.Err() != nil:
		sr.Status = StatusFailure
		sr.Reason = "step timed out or was cancelled"
	case step.Advisory():
		sr.Status = StatusAdvisory
		sr.Reason = fmt.Sprintf("exit code %d (continue-on-error)", sr.ExitCode)
	default:
		sr.Status = StatusFailure
		sr.Reason = fmt.Sprintf("exit code %d", sr.ExitCode)
	}

	execLog.Printf("Step finished: step=%s, status=%s, exit=%d, elapsed=%s", step.Label(), sr.Status, sr.ExitCode, timeutil.FormatDuration(sr.Duration))
	return sr
}

// runProcess runs the prepared command, under a pty when requested and
// available, falling back to plain pipes.
func (r *Runner) runProcess(cmd *exec.Cmd, out io.Writer) error {
	if r.opts.UsePTY {
		err := runWithPTY(cmd, out)
		if !errors.Is(err, errPTYUnavailable) {
			return err
		}
		execLog.Print("PTY unavailable, falling back to pipes")
	}
	cmd.Stdout = out
	cmd.Stderr = out
	return cmd.Run()
}

func (r *Runner) printStepResult(sr StepResult) {
	switch sr.Status {
	case StatusSuccess:
		fmt.Fprintln(r.opts.Stdout, console.FormatSuccessMessage(fmt.Sprintf("%s (%s)", sr.Name, timeutil.FormatElapsed(sr.Duration))))
	case StatusAdvisory:
		fmt.Fprintln(r.opts.Stdout, console.FormatWarningMessage(fmt.Sprintf("%s: %s", sr.Name, sr.Reason)))
	case StatusSkipped:
		if r.opts.Verbose {
			fmt.Fprintln(r.opts.Stdout, console.FormatVerboseMessage(fmt.Sprintf("skipped %s: %s", sr.Name, sr.Reason)))
		}
	case StatusFailure:
		fmt.Fprintln(r.opts.Stdout, console.FormatErrorMessage(fmt.Sprintf("%s: %s", sr.Name, sr.Reason)))
	}
}

// shellCommand builds the argv for a run step. The default shell matches
// the hosted runner on Linux: bash with errexit; an explicit bash shell
// additionally gets pipefail.
func shellCommand(shell, script string) ([]string, error) {
	switch shell {
	case "":
		return []string{"bash", "-e", "-c", script}, nil
	case "bash":
		return []string{"bash", "--noprofile", "--norc", "-e", "-o", "pipefail", "-c", script}, nil
	case "sh":
		return []string{"sh", "-e", "-c", script}, nil
	case "python":
		return []string{"python3", "-c", script}, nil
	default:
		return nil, fmt.Errorf("unsupported shell %q", shell)
	}
}

// exitCode extracts the process exit code; -1 when the process never ran.
func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}

func skipReason(cond string, failed, cancelled bool) string {
	if cond != "" {
		return fmt.Sprintf("condition %q not met", cond)
	}
	if cancelled {
		return "job cancelled"
	}
	if failed {
		return "earlier step failed"
	}
	return "not scheduled"
}
