package workflow

import (
	"fmt"
	"maps"

	"github.com/wfrun/wfrun/pkg/logger"
)

var stepLog = logger.New("workflow:step")

// Step is a single step of a job: either a shell command (`run`) or a
// reference to a published action (`uses`). Exactly one of the two is set
// on a valid step.
type Step struct {
	Name             string
	ID               string
	If               string
	Uses             string
	Run              string
	Shell            string
	WorkingDirectory string
	With             map[string]any
	Env              map[string]string
	ContinueOnError  any // bool or expression string
	TimeoutMinutes   int
}

// IsUsesStep reports whether this step references an action.
func (s *Step) IsUsesStep() bool {
	return s.Uses != ""
}

// IsRunStep reports whether this step runs a command.
func (s *Step) IsRunStep() bool {
	return s.Run != ""
}

// Advisory reports whether a failure of this step is non-fatal.
// continue-on-error may be a bool or the literal strings "true"/"false";
// expressions we cannot evaluate count as fatal.
func (s *Step) Advisory() bool {
	switch v := s.ContinueOnError.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}

// Label returns the display name of the step: the explicit name when set,
// otherwise the command or action reference.
func (s *Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Uses != "" {
		return s.Uses
	}
	return firstLine(s.Run)
}

// MapToStep converts a decoded YAML mapping to a Step.
func MapToStep(stepMap map[string]any) (*Step, error) {
	if stepMap == nil {
		return nil, fmt.Errorf("step is empty")
	}

	step := &Step{}

	if name, ok := stepMap["name"].(string); ok {
		step.Name = name
	}
	if id, ok := stepMap["id"].(string); ok {
		step.ID = id
	}
	if ifCond, ok := stepMap["if"].(string); ok {
		step.If = ifCond
	}
	if uses, ok := stepMap["uses"].(string); ok {
		step.Uses = uses
	}
	if run, ok := stepMap["run"].(string); ok {
		step.Run = run
	}
	if shell, ok := stepMap["shell"].(string); ok {
		step.Shell = shell
	}
	if workingDir, ok := stepMap["working-directory"].(string); ok {
		step.WorkingDirectory = workingDir
	}
	if with, ok := stepMap["with"].(map[string]any); ok {
		step.With = with
	}
	if env, ok := stepMap["env"].(map[string]any); ok {
		step.Env = stringifyMap(env)
	}
	if continueOnError, ok := stepMap["continue-on-error"]; ok {
		// Preserve the original type (bool or string).
		step.ContinueOnError = continueOnError
	}
	step.TimeoutMinutes = intValue(stepMap["timeout-minutes"])

	if step.Run == "" && step.Uses == "" {
		return nil, fmt.Errorf("step %q must have either 'run' or 'uses'", step.Label())
	}
	if step.Run != "" && step.Uses != "" {
		return nil, fmt.Errorf("step %q cannot have both 'run' and 'uses'", step.Label())
	}

	stepLog.Printf("Converted step: name=%s, uses=%s", step.Name, step.Uses)
	return step, nil
}

// ToMap converts a Step back to a generic mapping, omitting zero fields.
func (s *Step) ToMap() map[string]any {
	result := make(map[string]any)

	if s.Name != "" {
		result["name"] = s.Name
	}
	if s.ID != "" {
		result["id"] = s.ID
	}
	if s.If != "" {
		result["if"] = s.If
	}
	if s.Uses != "" {
		result["uses"] = s.Uses
	}
	if s.Run != "" {
		result["run"] = s.Run
	}
	if s.Shell != "" {
		result["shell"] = s.Shell
	}
	if s.WorkingDirectory != "" {
		result["working-directory"] = s.WorkingDirectory
	}
	if len(s.With) > 0 {
		result["with"] = s.With
	}
	if len(s.Env) > 0 {
		result["env"] = s.Env
	}
	if s.ContinueOnError != nil {
		result["continue-on-error"] = s.ContinueOnError
	}
	if s.TimeoutMinutes > 0 {
		result["timeout-minutes"] = s.TimeoutMinutes
	}

	return result
}

// Clone creates a deep copy of the Step.
func (s *Step) Clone() *Step {
	clone := *s
	if s.With != nil {
		clone.With = make(map[string]any, len(s.With))
		maps.Copy(clone.With, s.With)
	}
	if s.Env != nil {
		clone.Env = make(map[string]string, len(s.Env))
		maps.Copy(clone.Env, s.Env)
	}
	return &clone
}

// WithString returns a string-typed value from the step's `with` block.
// Non-string scalars (a bare 3.7 is a float in YAML) are stringified.
func (s *Step) WithString(key string) string {
	v, ok := s.With[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}
