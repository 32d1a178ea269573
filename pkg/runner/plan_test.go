package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wfrun/wfrun/pkg/workflow"
)

func parseWorkflow(t *testing.T, yaml string) *workflow.Workflow {
	t.Helper()
	w, err := workflow.ParseBytes("plan.yml", []byte(yaml))
	require.NoError(t, err)
	return w
}

func batchIDs(p *Plan) [][]string {
	out := make([][]string, 0, len(p.Batches))
	for _, batch := range p.Batches {
		ids := make([]string, 0, len(batch))
		for _, job := range batch {
			ids = append(ids, job.ID)
		}
		out = append(out, ids)
	}
	return out
}

func TestBuildPlanSingleJob(t *testing.T) {
	w := parseWorkflow(t, `
on: push
jobs:
  build:
    steps:
      - run: echo hi
`)
	plan, err := BuildPlan(w, "")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"build"}}, batchIDs(plan))
	assert.Equal(t, 1, plan.JobCount())
}

func TestBuildPlanBatchesByNeeds(t *testing.T) {
	w := parseWorkflow(t, `
on: push
jobs:
  lint:
    steps:
      - run: echo lint
  test:
    steps:
      - run: echo test
  package:
    needs: [lint, test]
    steps:
      - run: echo package
  publish:
    needs: package
    steps:
      - run: echo publish
`)
	plan, err := BuildPlan(w, "")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"lint", "test"},
		{"package"},
		{"publish"},
	}, batchIDs(plan))
}

func TestBuildPlanJobFilterPullsNeeds(t *testing.T) {
	w := parseWorkflow(t, `
on: push
jobs:
  a:
    steps:
      - run: echo a
  b:
    needs: a
    steps:
      - run: echo b
  c:
    steps:
      - run: echo c
`)
	plan, err := BuildPlan(w, "b")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}}, batchIDs(plan), "c is not part of b's closure")
}

func TestBuildPlanUnknownJob(t *testing.T) {
	w := parseWorkflow(t, `
on: push
jobs:
  a:
    steps:
      - run: echo a
`)
	_, err := BuildPlan(w, "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no job named")
}

func TestBuildPlanCycle(t *testing.T) {
	w := parseWorkflow(t, `
on: push
jobs:
  a:
    needs: b
    steps:
      - run: echo a
  b:
    needs: a
    steps:
      - run: echo b
`)
	_, err := BuildPlan(w, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}
