package runner

import (
	"strings"
	"time"
)

// Status is the conclusion of a step, job, or run.
type Status string

const (
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusAdvisory  Status = "advisory" // failed, but marked continue-on-error
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

// StepResult records the outcome of one executed step.
type StepResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration_ns"`

	// OutputTail holds the last lines of combined output, for summaries.
	OutputTail []string `json:"output_tail,omitempty"`

	// Reason explains skips and failures in one line.
	Reason string `json:"reason,omitempty"`
}

// JobResult records the outcome of one job.
type JobResult struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Steps    []StepResult  `json:"steps"`
}

// Failed reports whether the job concluded in failure.
func (j *JobResult) Failed() bool {
	return j.Status == StatusFailure
}

// RunResult records the outcome of one workflow run.
type RunResult struct {
	RunID    string        `json:"run_id"`
	Workflow string        `json:"workflow"`
	Path     string        `json:"path"`
	Event    string        `json:"event"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration_ns"`
	Jobs     []JobResult   `json:"jobs"`
}

// Failed reports whether the run concluded in failure.
func (r *RunResult) Failed() bool {
	return r.Status == StatusFailure
}

// conclude folds job conclusions into the run conclusion: any fatal job
// failure fails the run; advisory failures do not.
func (r *RunResult) conclude() {
	r.Status = StatusSuccess
	for _, job := range r.Jobs {
		switch job.Status {
		case StatusFailure:
			r.Status = StatusFailure
			return
		case StatusCancelled:
			r.Status = StatusCancelled
		}
	}
}

// lineTail retains the last capacity lines written to it.
type lineTail struct {
	capacity int
	lines    []string
	partial  strings.Builder
}

func newLineTail(capacity int) *lineTail {
	return &lineTail{capacity: capacity}
}

// Write implements io.Writer; input is split on newlines as it arrives.
func (t *lineTail) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			t.push(t.partial.String())
			t.partial.Reset()
			continue
		}
		t.partial.WriteByte(b)
	}
	return len(p), nil
}

func (t *lineTail) push(line string) {
	t.lines = append(t.lines, line)
	if len(t.lines) > t.capacity {
		t.lines = t.lines[len(t.lines)-t.capacity:]
	}
}

// Lines returns the retained tail, including any unterminated final line.
func (t *lineTail) Lines() []string {
	lines := t.lines
	if t.partial.Len() > 0 {
		lines = append(lines, t.partial.String())
	}
	return lines
}
