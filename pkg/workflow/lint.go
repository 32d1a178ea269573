package workflow

import (
	"fmt"
	"io"

	"github.com/rhysd/actionlint"

	"github.com/wfrun/wfrun/pkg/logger"
)

var lintLog = logger.New("workflow:lint")

// LintIssue is one diagnostic from the actionlint pass.
type LintIssue struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// String formats the issue as file:line:col: message, matching what
// actionlint itself prints.
func (i LintIssue) String() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s]", i.Path, i.Line, i.Column, i.Message, i.Kind)
}

// Lint runs actionlint over a workflow file's content and returns its
// diagnostics. Shellcheck and pyflakes integration stays disabled; we lint
// structure, not the embedded scripts.
func Lint(path string, content []byte) ([]LintIssue, error) {
	lintLog.Printf("Linting workflow: path=%s, size=%d bytes", path, len(content))

	linter, err := actionlint.NewLinter(io.Discard, &actionlint.LinterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create linter: %w", err)
	}

	lintErrs, err := linter.Lint(path, content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to lint %s: %w", path, err)
	}

	issues := make([]LintIssue, 0, len(lintErrs))
	for _, e := range lintErrs {
		issues = append(issues, LintIssue{
			Path:    path,
			Line:    e.Line,
			Column:  e.Column,
			Kind:    e.Kind,
			Message: e.Message,
		})
	}

	lintLog.Printf("Lint complete: path=%s, issues=%d", path, len(issues))
	return issues, nil
}
