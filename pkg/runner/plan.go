package runner

import (
	"fmt"

	"github.com/wfrun/wfrun/pkg/logger"
	"github.com/wfrun/wfrun/pkg/workflow"
)

var planLog = logger.New("runner:plan")

// Plan is the execution order of a workflow's jobs: batches of jobs whose
// dependencies are all satisfied by earlier batches. Jobs within a batch
// are independent and run concurrently.
type Plan struct {
	Workflow *workflow.Workflow
	Batches  [][]*workflow.Job
}

// JobCount returns the number of planned jobs.
func (p *Plan) JobCount() int {
	n := 0
	for _, batch := range p.Batches {
		n += len(batch)
	}
	return n
}

// BuildPlan resolves the needs graph into ordered batches. When only is
// non-empty, the plan is restricted to that job and its transitive needs.
func BuildPlan(w *workflow.Workflow, only string) (*Plan, error) {
	planLog.Printf("Building plan: workflow=%s, only=%s", w.Name, only)

	wanted, err := selectJobs(w, only)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Workflow: w}
	scheduled := make(map[string]bool, len(wanted))

	for len(scheduled) < len(wanted) {
		var batch []*workflow.Job
		for _, id := range w.JobOrder {
			if !wanted[id] || scheduled[id] {
				continue
			}
			job := w.Jobs[id]
			if needsSatisfied(job, scheduled) {
				batch = append(batch, job)
			}
		}
		if len(batch) == 0 {
			return nil, fmt.Errorf("%s: dependency cycle among jobs %v", w.Path, unscheduled(w, wanted, scheduled))
		}
		for _, job := range batch {
			scheduled[job.ID] = true
		}
		plan.Batches = append(plan.Batches, batch)
	}

	planLog.Printf("Plan built: batches=%d, jobs=%d", len(plan.Batches), plan.JobCount())
	return plan, nil
}

// selectJobs returns the set of job IDs the plan covers.
func selectJobs(w *workflow.Workflow, only string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(w.Jobs))
	if only == "" {
		for _, id := range w.JobOrder {
			wanted[id] = true
		}
		return wanted, nil
	}

	if _, ok := w.Jobs[only]; !ok {
		return nil, fmt.Errorf("%s: no job named %q", w.Path, only)
	}

	// Walk the needs closure of the requested job.
	var visit func(id string)
	visit = func(id string) {
		if wanted[id] {
			return
		}
		wanted[id] = true
		for _, need := range w.Jobs[id].Needs {
			visit(need)
		}
	}
	visit(only)
	return wanted, nil
}

func needsSatisfied(job *workflow.Job, scheduled map[string]bool) bool {
	for _, need := range job.Needs {
		if !scheduled[need] {
			return false
		}
	}
	return true
}

func unscheduled(w *workflow.Workflow, wanted, scheduled map[string]bool) []string {
	var out []string
	for _, id := range w.JobOrder {
		if wanted[id] && !scheduled[id] {
			out = append(out, id)
		}
	}
	return out
}
