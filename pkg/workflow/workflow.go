// Package workflow models CI workflow files: parsing the YAML into typed
// structures, validating them against an embedded JSON schema and
// actionlint, and matching simulated repository events against their
// triggers. Execution lives in pkg/runner.
package workflow

import (
	"fmt"
	"strings"
)

// Workflow is a parsed workflow file.
type Workflow struct {
	// Name is the workflow's display name, defaulting to the file name.
	Name string

	// Path is the source file, kept for diagnostics.
	Path string

	// On holds the parsed triggers.
	On Triggers

	// Env is workflow-level environment, inherited by every step.
	Env map[string]string

	// Defaults apply to run steps that don't override them.
	Defaults Defaults

	// JobOrder preserves declaration order of the jobs mapping.
	JobOrder []string

	// Jobs maps job id to its definition.
	Jobs map[string]*Job
}

// Job is one job of a workflow.
type Job struct {
	// ID is the key of the job in the jobs mapping.
	ID string

	// Name is the display name, defaulting to the ID.
	Name string

	// RunsOn is the declared runner label. The local runner records it
	// for display but always executes on the host.
	RunsOn []string

	// Needs lists job IDs that must succeed before this job starts.
	Needs []string

	Env             map[string]string
	Defaults        Defaults
	TimeoutMinutes  int
	ContinueOnError bool
	Steps           []*Step
}

// Defaults holds the `defaults.run` settings of a workflow or job.
type Defaults struct {
	Shell            string
	WorkingDirectory string
}

// Merge returns d overlaid with any fields set in override.
func (d Defaults) Merge(override Defaults) Defaults {
	merged := d
	if override.Shell != "" {
		merged.Shell = override.Shell
	}
	if override.WorkingDirectory != "" {
		merged.WorkingDirectory = override.WorkingDirectory
	}
	return merged
}

// DisplayName returns the job's name or its ID when no name is set.
func (j *Job) DisplayName() string {
	if j.Name != "" {
		return j.Name
	}
	return j.ID
}

// StepCount returns the total number of steps across all jobs.
func (w *Workflow) StepCount() int {
	n := 0
	for _, job := range w.Jobs {
		n += len(job.Steps)
	}
	return n
}

// OrderedJobs returns the jobs in declaration order.
func (w *Workflow) OrderedJobs() []*Job {
	jobs := make([]*Job, 0, len(w.JobOrder))
	for _, id := range w.JobOrder {
		jobs = append(jobs, w.Jobs[id])
	}
	return jobs
}

// validate checks cross-field constraints the schema cannot express.
func (w *Workflow) validate() error {
	if len(w.On.Events()) == 0 {
		return fmt.Errorf("%s: workflow has no 'on' triggers", w.Path)
	}
	if len(w.Jobs) == 0 {
		return fmt.Errorf("%s: workflow has no jobs", w.Path)
	}
	for _, id := range w.JobOrder {
		job := w.Jobs[id]
		if len(job.Steps) == 0 {
			return fmt.Errorf("%s: job %q has no steps", w.Path, id)
		}
		for _, need := range job.Needs {
			if _, ok := w.Jobs[need]; !ok {
				return fmt.Errorf("%s: job %q needs unknown job %q", w.Path, id, need)
			}
		}
	}
	return w.On.validate(w.Path)
}

// firstLine returns the first non-empty line of s, truncated for display.
func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > 60 {
			return line[:57] + "..."
		}
		return line
	}
	return ""
}

// stringifyMap converts a decoded YAML mapping to string values. Numeric
// env values (PORT: 8080) are common enough to tolerate.
func stringifyMap(m map[string]any) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out
}

// intValue extracts an int from a decoded YAML scalar of either int width.
func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
