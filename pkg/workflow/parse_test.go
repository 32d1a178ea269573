package workflow

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLintWorkflow(t *testing.T) {
	w, err := Parse(filepath.Join("testdata", "lint.yml"))
	require.NoError(t, err)

	assert.Equal(t, "Lint", w.Name)
	assert.Equal(t, []string{"push"}, w.On.Events())
	assert.Nil(t, w.On.Filters("push"), "bare push trigger has no filters")

	require.Equal(t, []string{"build"}, w.JobOrder)
	job := w.Jobs["build"]
	require.NotNil(t, job)
	assert.Equal(t, []string{"ubuntu-latest"}, job.RunsOn)
	require.Len(t, job.Steps, 5)

	assert.True(t, job.Steps[0].IsUsesStep())
	assert.Equal(t, "actions/checkout@v2", job.Steps[0].Uses)

	setup := job.Steps[1]
	assert.Equal(t, "actions/setup-python@v1", setup.Uses)
	assert.Equal(t, "3.7", setup.WithString("python-version"))

	assert.True(t, job.Steps[2].IsRunStep())
	assert.Contains(t, job.Steps[3].Run, "--exit-zero")
	assert.Contains(t, job.Steps[4].Run, "--ignore-checks W3002")
}

func TestParseBytesDefaultsNameFromPath(t *testing.T) {
	w, err := ParseBytes(".github/workflows/ci.yml", []byte(`
on: push
jobs:
  test:
    runs-on: ubuntu-latest
    steps:
      - run: go test ./...
`))
	require.NoError(t, err)
	assert.Equal(t, "ci", w.Name)
}

func TestParseJobOrderPreserved(t *testing.T) {
	w, err := ParseBytes("multi.yml", []byte(`
on: push
jobs:
  zeta:
    steps:
      - run: echo zeta
  alpha:
    needs: zeta
    steps:
      - run: echo alpha
  mid:
    steps:
      - run: echo mid
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, w.JobOrder)
	assert.Equal(t, []string{"zeta"}, w.Jobs["alpha"].Needs)
}

func TestParseDefaultsAndEnv(t *testing.T) {
	w, err := ParseBytes("wf.yml", []byte(`
on: push
env:
  REGION: us-east-1
  PORT: 8080
defaults:
  run:
    shell: bash
    working-directory: svc
jobs:
  build:
    env:
      DEBUG: "1"
    defaults:
      run:
        working-directory: svc/api
    steps:
      - run: make build
        env:
          TARGET: release
`))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", w.Env["REGION"])
	assert.Equal(t, "8080", w.Env["PORT"], "numeric env values are stringified")
	assert.Equal(t, "bash", w.Defaults.Shell)

	job := w.Jobs["build"]
	assert.Equal(t, "svc/api", job.Defaults.WorkingDirectory)
	assert.Equal(t, "release", job.Steps[0].Env["TARGET"])

	merged := w.Defaults.Merge(job.Defaults)
	assert.Equal(t, "bash", merged.Shell)
	assert.Equal(t, "svc/api", merged.WorkingDirectory)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty file",
			yaml:    "   \n",
			wantErr: "empty",
		},
		{
			name:    "missing triggers",
			yaml:    "jobs:\n  a:\n    steps:\n      - run: echo hi\n",
			wantErr: "no 'on' triggers",
		},
		{
			name:    "no jobs",
			yaml:    "on: push\n",
			wantErr: "no jobs",
		},
		{
			name:    "job without steps",
			yaml:    "on: push\njobs:\n  a:\n    runs-on: ubuntu-latest\n",
			wantErr: "has no steps",
		},
		{
			name:    "step with neither run nor uses",
			yaml:    "on: push\njobs:\n  a:\n    steps:\n      - name: hollow\n",
			wantErr: "either 'run' or 'uses'",
		},
		{
			name:    "step with both run and uses",
			yaml:    "on: push\njobs:\n  a:\n    steps:\n      - uses: actions/checkout@v2\n        run: echo hi\n",
			wantErr: "both 'run' and 'uses'",
		},
		{
			name:    "unknown needs",
			yaml:    "on: push\njobs:\n  a:\n    needs: ghost\n    steps:\n      - run: echo hi\n",
			wantErr: "unknown job",
		},
		{
			name:    "branches and branches-ignore together",
			yaml:    "on:\n  push:\n    branches: [main]\n    branches-ignore: [dev]\njobs:\n  a:\n    steps:\n      - run: echo hi\n",
			wantErr: "cannot use both branches and branches-ignore",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBytes("bad.yml", []byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStepClone(t *testing.T) {
	step := &Step{
		Name: "install",
		Run:  "pip install flake8",
		Env:  map[string]string{"PIP_NO_CACHE_DIR": "1"},
		With: map[string]any{"key": "value"},
	}
	clone := step.Clone()
	clone.Env["PIP_NO_CACHE_DIR"] = "0"
	clone.With["key"] = "other"

	assert.Equal(t, "1", step.Env["PIP_NO_CACHE_DIR"])
	assert.Equal(t, "value", step.With["key"])
}

func TestStepAdvisory(t *testing.T) {
	assert.False(t, (&Step{Run: "x"}).Advisory())
	assert.True(t, (&Step{Run: "x", ContinueOnError: true}).Advisory())
	assert.True(t, (&Step{Run: "x", ContinueOnError: "true"}).Advisory())
	assert.False(t, (&Step{Run: "x", ContinueOnError: "${{ matrix.experimental }}"}).Advisory())
}

func TestStepToMapRoundTrip(t *testing.T) {
	step := &Step{
		Name:           "lint",
		Run:            "flake8 .",
		Shell:          "bash",
		TimeoutMinutes: 5,
	}
	m := step.ToMap()
	back, err := MapToStep(m)
	require.NoError(t, err)
	assert.Equal(t, step, back)
}
