package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/wfrun/wfrun/pkg/logger"
)

var parseLog = logger.New("workflow:parse")

type rawRunDefaults struct {
	Shell            string `yaml:"shell"`
	WorkingDirectory string `yaml:"working-directory"`
}

type rawDefaults struct {
	Run rawRunDefaults `yaml:"run"`
}

type rawJob struct {
	Name            string           `yaml:"name"`
	RunsOn          any              `yaml:"runs-on"`
	Needs           any              `yaml:"needs"`
	Env             map[string]any   `yaml:"env"`
	Defaults        rawDefaults      `yaml:"defaults"`
	TimeoutMinutes  int              `yaml:"timeout-minutes"`
	ContinueOnError bool             `yaml:"continue-on-error"`
	Steps           []map[string]any `yaml:"steps"`
}

type rawWorkflow struct {
	Name     string            `yaml:"name"`
	On       any               `yaml:"on"`
	Env      map[string]any    `yaml:"env"`
	Defaults rawDefaults       `yaml:"defaults"`
	Jobs     map[string]rawJob `yaml:"jobs"`
}

// jobOrderDoc captures only the declaration order of the jobs mapping;
// decoding into a plain map would lose it.
type jobOrderDoc struct {
	Jobs yaml.MapSlice `yaml:"jobs"`
}

// Parse reads and parses a workflow file.
func Parse(path string) (*Workflow, error) {
	parseLog.Printf("Parsing workflow file: path=%s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow: %w", err)
	}
	return ParseBytes(path, data)
}

// ParseBytes parses workflow YAML. The path is used only for error messages
// and the default workflow name.
func ParseBytes(path string, data []byte) (*Workflow, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%s: workflow file is empty", path)
	}

	var raw rawWorkflow
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid workflow YAML: %w", path, err)
	}

	var order jobOrderDoc
	if err := yaml.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("%s: invalid jobs mapping: %w", path, err)
	}

	triggers, err := parseTriggers(raw.On)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	w := &Workflow{
		Name: raw.Name,
		Path: path,
		On:   triggers,
		Env:  stringifyMap(raw.Env),
		Defaults: Defaults{
			Shell:            raw.Defaults.Run.Shell,
			WorkingDirectory: raw.Defaults.Run.WorkingDirectory,
		},
		Jobs: make(map[string]*Job, len(raw.Jobs)),
	}
	if w.Name == "" {
		w.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	for _, item := range order.Jobs {
		id, ok := item.Key.(string)
		if !ok {
			return nil, fmt.Errorf("%s: job key %v is not a string", path, item.Key)
		}
		rawJob, ok := raw.Jobs[id]
		if !ok {
			// Duplicate keys collapse in the typed decode; MapSlice keeps both.
			return nil, fmt.Errorf("%s: duplicate job id %q", path, id)
		}

		job, err := buildJob(id, rawJob)
		if err != nil {
			return nil, fmt.Errorf("%s: job %q: %w", path, id, err)
		}
		w.JobOrder = append(w.JobOrder, id)
		w.Jobs[id] = job
		delete(raw.Jobs, id)
	}

	if err := w.validate(); err != nil {
		return nil, err
	}

	parseLog.Printf("Parsed workflow: name=%s, jobs=%d, steps=%d", w.Name, len(w.Jobs), w.StepCount())
	return w, nil
}

func buildJob(id string, raw rawJob) (*Job, error) {
	job := &Job{
		ID:     id,
		Name:   raw.Name,
		RunsOn: stringList(raw.RunsOn),
		Needs:  stringList(raw.Needs),
		Env:    stringifyMap(raw.Env),
		Defaults: Defaults{
			Shell:            raw.Defaults.Run.Shell,
			WorkingDirectory: raw.Defaults.Run.WorkingDirectory,
		},
		TimeoutMinutes:  raw.TimeoutMinutes,
		ContinueOnError: raw.ContinueOnError,
	}

	for i, stepMap := range raw.Steps {
		step, err := MapToStep(stepMap)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		job.Steps = append(job.Steps, step)
	}

	return job, nil
}

// stringList normalizes a YAML value that may be a scalar or a sequence of
// scalars (needs, runs-on) to a string slice.
func stringList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return val
	}
	return []string{fmt.Sprint(v)}
}
