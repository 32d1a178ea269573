package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/constants"
	"github.com/wfrun/wfrun/pkg/logger"
	"github.com/wfrun/wfrun/pkg/workflow"
)

var actionsLog = logger.New("runner:actions")

// The runner handles a small set of action references itself; everything
// else in `uses:` has no local equivalent and is skipped (or fails the run
// under --strict-uses). Reimplementing the hosted actions is a non-goal;
// these handlers only provide their local moral equivalent.

// runUsesStep dispatches an action reference to its local handler.
// Handlers may extend env for the steps that follow, the way setup
// actions do on the hosted runner.
func (r *Runner) runUsesStep(ctx context.Context, step *workflow.Step, env map[string]string) StepResult {
	sr := StepResult{Name: step.Label()}
	start := time.Now()

	action := step.Uses
	if name, _, ok := strings.Cut(action, "@"); ok {
		action = name
	}
	actionsLog.Printf("Handling uses step: action=%s", action)

	var err error
	switch action {
	case "actions/checkout":
		err = r.checkoutWorkspace(ctx)
	case "actions/setup-python":
		err = r.setupPython(ctx, step, env)
	default:
		if !r.opts.StrictUses {
			fmt.Fprintln(r.opts.Stdout, console.FormatWarningMessage(fmt.Sprintf("skipping %s: no local handler", step.Uses)))
			sr.Status = StatusSkipped
			sr.Reason = "no local handler"
			sr.Duration = time.Since(start)
			return sr
		}
		err = fmt.Errorf("no local handler for action %s", step.Uses)
	}

	sr.Duration = time.Since(start)
	switch {
	case err == nil:
		sr.Status = StatusSuccess
	case step.Advisory():
		sr.Status = StatusAdvisory
		sr.ExitCode = 1
		sr.Reason = fmt.Sprintf("%s (continue-on-error)", err)
	default:
		sr.Status = StatusFailure
		sr.ExitCode = 1
		sr.Reason = err.Error()
	}
	return sr
}

// checkoutWorkspace is the local stand-in for actions/checkout: the source
// is already on disk, so only sanity-check that the workspace looks like
// the repository root.
func (r *Runner) checkoutWorkspace(ctx context.Context) error {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		actionsLog.Print("git not found, trusting the workspace as-is")
		return nil
	}

	out, err := exec.CommandContext(ctx, gitPath, "-C", r.opts.Workspace, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		fmt.Fprintln(r.opts.Stdout, console.FormatWarningMessage("workspace is not a git repository, running against it anyway"))
		return nil
	}

	toplevel := strings.TrimSpace(string(out))
	if toplevel != r.opts.Workspace {
		actionsLog.Printf("Workspace is below the repository root: workspace=%s, toplevel=%s", r.opts.Workspace, toplevel)
	}
	return nil
}

// setupPython resolves the pinned interpreter version from with.python-version
// against the interpreters on PATH and exports the choice to later steps.
func (r *Runner) setupPython(ctx context.Context, step *workflow.Step, env map[string]string) error {
	want := step.WithString("python-version")

	path, actual, exact, err := resolvePython(ctx, want)
	if err != nil {
		return err
	}

	if !exact {
		msg := fmt.Sprintf("requested python %s, found %s (%s)", want, actual, path)
		if !r.opts.AllowPythonFallback {
			return fmt.Errorf("%s; pass --allow-python-fallback to use it anyway", msg)
		}
		fmt.Fprintln(r.opts.Stdout, console.FormatWarningMessage(msg))
	}

	env[constants.PythonEnvVar] = path
	if shim, shimErr := pythonShimDir(path); shimErr == nil {
		prependPath(env, shim)
	} else {
		actionsLog.Printf("Failed to build interpreter shim: %v", shimErr)
		prependPath(env, filepath.Dir(path))
	}
	fmt.Fprintln(r.opts.Stdout, console.FormatInfoMessage(fmt.Sprintf("using python %s at %s", actual, path)))
	return nil
}

// pythonShimDir builds a directory whose python and python3 entries link to
// the resolved interpreter. Prepended to PATH, it makes run steps invoking
// either name get the pinned version regardless of what the rest of PATH
// holds, the same effect the hosted setup action gets from its tool cache.
func pythonShimDir(interpreter string) (string, error) {
	dir, err := os.MkdirTemp("", "wfrun-python-")
	if err != nil {
		return "", err
	}
	for _, name := range []string{"python", "python3"} {
		if err := os.Symlink(interpreter, filepath.Join(dir, name)); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// resolvePython probes PATH for an interpreter matching the requested
// version. The version pin matches on prefix: "3.7" accepts any 3.7.x.
// When no exact match exists the best-effort interpreter is returned with
// exact=false so the caller can decide.
func resolvePython(ctx context.Context, version string) (path, actual string, exact bool, err error) {
	candidates := []string{"python3", "python"}
	if version != "" {
		candidates = append([]string{"python" + version}, candidates...)
	}

	var fallbackPath, fallbackVersion string
	for _, name := range candidates {
		p, lookErr := exec.LookPath(name)
		if lookErr != nil {
			continue
		}
		v, verErr := pythonVersion(ctx, p)
		if verErr != nil {
			actionsLog.Printf("Failed to query interpreter version: path=%s, err=%v", p, verErr)
			continue
		}
		if version == "" || versionMatches(version, v) {
			return p, v, true, nil
		}
		if fallbackPath == "" {
			fallbackPath, fallbackVersion = p, v
		}
	}

	if fallbackPath != "" {
		return fallbackPath, fallbackVersion, false, nil
	}
	return "", "", false, fmt.Errorf("no python interpreter found on PATH")
}

// pythonVersion runs `<interpreter> --version` and extracts the version
// number from output like "Python 3.7.10".
func pythonVersion(ctx context.Context, path string) (string, error) {
	out, err := exec.CommandContext(ctx, path, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(out))
	if len(fields) < 2 || fields[0] != "Python" {
		return "", fmt.Errorf("unexpected version output %q", strings.TrimSpace(string(out)))
	}
	return fields[1], nil
}

// versionMatches reports whether an installed version satisfies a pin:
// equal, or the pin is a prefix at a component boundary (3.7 accepts
// 3.7.10 but not 3.70.1).
func versionMatches(pin, installed string) bool {
	if pin == installed {
		return true
	}
	return strings.HasPrefix(installed, pin+".")
}
