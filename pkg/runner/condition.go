package runner

import (
	"strings"

	"github.com/wfrun/wfrun/pkg/logger"
)

var conditionLog = logger.New("runner:condition")

// evalCondition decides whether a step with the given `if:` expression runs,
// given the job's state so far. Supported forms are the status functions
// success(), failure(), always(), and cancelled(), optionally negated with
// a leading !. Anything else is treated as success() with a debug note;
// full expression evaluation is out of scope for a local runner.
func evalCondition(cond string, jobFailed, cancelled bool) bool {
	c := strings.TrimSpace(cond)
	if inner, ok := strings.CutPrefix(c, "${{"); ok {
		c = strings.TrimSpace(strings.TrimSuffix(inner, "}}"))
	}

	negate := false
	if rest, ok := strings.CutPrefix(c, "!"); ok {
		negate = true
		c = strings.TrimSpace(rest)
	}

	var run bool
	switch c {
	case "", "success()":
		run = !jobFailed && !cancelled
	case "failure()":
		run = jobFailed && !cancelled
	case "always()":
		// always() runs even after cancellation, same as upstream.
		run = true
	case "cancelled()":
		run = cancelled
	default:
		conditionLog.Printf("Unsupported if expression, treating as success(): %q", cond)
		run = !jobFailed && !cancelled
	}

	if negate {
		return !run
	}
	return run
}
