package runner

import (
	"fmt"
	"os"
	"strings"

	"github.com/wfrun/wfrun/pkg/constants"
	"github.com/wfrun/wfrun/pkg/workflow"
)

// buildJobEnv assembles the environment a job's steps start from:
// the host environment, the CI contract variables, then workflow-, runner-,
// and job-level env in increasing precedence.
func buildJobEnv(w *workflow.Workflow, job *workflow.Job, ev workflow.Event, runID, workspace string, extra map[string]string) map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	// The environment contract steps can rely on, mirroring the hosted
	// runner's variables where they make sense locally.
	env["CI"] = "true"
	env["GITHUB_WORKFLOW"] = w.Name
	env["GITHUB_JOB"] = job.ID
	env["GITHUB_EVENT_NAME"] = ev.Name
	env["GITHUB_WORKSPACE"] = workspace
	env[constants.RunIDEnvVar] = runID
	if ev.Ref != "" {
		env["GITHUB_REF"] = ev.Ref
		env["GITHUB_REF_NAME"] = ev.ShortRef()
	}
	if ev.SHA != "" {
		env["GITHUB_SHA"] = ev.SHA
	}

	for k, v := range w.Env {
		env[k] = v
	}
	for k, v := range extra {
		env[k] = v
	}
	for k, v := range job.Env {
		env[k] = v
	}
	return env
}

// flattenEnv converts an env map to the KEY=VALUE slice exec.Cmd wants.
func flattenEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	return out
}

// prependPath returns env with dir prepended to its PATH entry.
func prependPath(env map[string]string, dir string) {
	if dir == "" {
		return
	}
	if current, ok := env["PATH"]; ok && current != "" {
		env["PATH"] = dir + string(os.PathListSeparator) + current
		return
	}
	env["PATH"] = dir
}
