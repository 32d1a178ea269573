package runner

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfrun/wfrun/pkg/workflow"
)

func TestBuildJobEnvContract(t *testing.T) {
	w := parseWorkflow(t, `
name: Lint
on: push
env:
  SHARED: workflow
  OVERRIDE: workflow
jobs:
  build:
    env:
      OVERRIDE: job
    steps:
      - run: echo hi
`)
	job := w.Jobs["build"]
	require.NotNil(t, job)

	ev := workflow.Event{Name: "push", Ref: "refs/heads/main", SHA: "abc123"}
	env := buildJobEnv(w, job, ev, "run-1", "/tmp/workspace", map[string]string{"EXTRA": "cli", "OVERRIDE": "cli"})

	assert.Equal(t, "true", env["CI"])
	assert.Equal(t, "Lint", env["GITHUB_WORKFLOW"])
	assert.Equal(t, "build", env["GITHUB_JOB"])
	assert.Equal(t, "push", env["GITHUB_EVENT_NAME"])
	assert.Equal(t, "/tmp/workspace", env["GITHUB_WORKSPACE"])
	assert.Equal(t, "refs/heads/main", env["GITHUB_REF"])
	assert.Equal(t, "main", env["GITHUB_REF_NAME"])
	assert.Equal(t, "abc123", env["GITHUB_SHA"])
	assert.Equal(t, "run-1", env["WFRUN_RUN_ID"])

	assert.Equal(t, "workflow", env["SHARED"])
	assert.Equal(t, "cli", env["EXTRA"])
	assert.Equal(t, "job", env["OVERRIDE"], "job env wins over extra and workflow env")
}

func TestBuildJobEnvOmitsRefWhenUnset(t *testing.T) {
	w := parseWorkflow(t, `
on: push
jobs:
  build:
    steps:
      - run: echo hi
`)
	env := buildJobEnv(w, w.Jobs["build"], workflow.Event{Name: "push"}, "run-1", "/tmp", nil)
	_, hasRef := env["GITHUB_REF"]
	assert.False(t, hasRef)
	_, hasSHA := env["GITHUB_SHA"]
	assert.False(t, hasSHA)
}

func TestFlattenEnv(t *testing.T) {
	out := flattenEnv(map[string]string{"A": "1", "B": "two"})
	assert.Len(t, out, 2)
	assert.Contains(t, out, "A=1")
	assert.Contains(t, out, "B=two")
}

func TestPrependPath(t *testing.T) {
	sep := string(os.PathListSeparator)

	env := map[string]string{"PATH": "/usr/bin"}
	prependPath(env, "/opt/py/bin")
	assert.Equal(t, "/opt/py/bin"+sep+"/usr/bin", env["PATH"])

	empty := map[string]string{}
	prependPath(empty, "/opt/py/bin")
	assert.Equal(t, "/opt/py/bin", empty["PATH"])

	prependPath(env, "")
	assert.Equal(t, "/opt/py/bin"+sep+"/usr/bin", env["PATH"], "empty dir is a no-op")
}
