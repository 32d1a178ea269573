package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/logger"
	"github.com/wfrun/wfrun/pkg/workflow"
)

var validateLog = logger.New("cli:validate")

// fileReport is the per-file validation outcome for --json output.
type fileReport struct {
	Path   string               `json:"path"`
	Valid  bool                 `json:"valid"`
	Errors []string             `json:"errors,omitempty"`
	Issues []workflow.LintIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [workflow...]",
		Short: "Validate workflow files without running them",
		Long: `Validate workflow files in three passes: structural parsing, JSON-schema
validation, and actionlint. Lint warnings are advisory unless --strict is
given.

Examples:
  wfrun validate
  wfrun validate .github/workflows/lint.yml
  wfrun validate --strict --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			strict, _ := cmd.Flags().GetBool("strict")
			jsonOut, _ := cmd.Flags().GetBool("json")
			failFast := cfg.FailFast

			paths, err := workflow.Resolve(args, cfg.WorkflowDir)
			if err != nil {
				return err
			}

			var reports []fileReport
			failed := false
			for _, path := range paths {
				report := validateFile(path, strict)
				reports = append(reports, report)
				if !jsonOut {
					printFileReport(cmd, report)
				}
				if !report.Valid {
					failed = true
					if failFast {
						break
					}
				}
			}

			if jsonOut {
				data, err := json.MarshalIndent(reports, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}

			if failed {
				return errFailed
			}
			return nil
		},
	}

	cmd.Flags().Bool("strict", false, "Treat lint warnings as errors")
	cmd.Flags().Bool("fail-fast", true, "Stop at the first broken file")
	cmd.Flags().Bool("json", false, "Emit validation reports as JSON")

	return cmd
}

// validateFile runs the validation passes over one workflow file. Passes
// build on each other: a file that does not parse is not schema-checked,
// and a file that fails the schema is not linted.
func validateFile(path string, strict bool) fileReport {
	report := fileReport{Path: path}
	validateLog.Printf("Validating workflow: path=%s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	if _, err := workflow.ParseBytes(path, data); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	if err := workflow.ValidateSchema(path, data); err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}

	issues, err := workflow.Lint(path, data)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
		return report
	}
	report.Issues = issues

	report.Valid = len(issues) == 0 || !strict
	return report
}

func printFileReport(cmd *cobra.Command, report fileReport) {
	out := cmd.OutOrStdout()
	for _, msg := range report.Errors {
		fmt.Fprintln(out, console.FormatErrorMessage(fmt.Sprintf("%s: %s", report.Path, msg)))
	}
	for _, issue := range report.Issues {
		fmt.Fprintln(out, console.FormatLocationMessage(issue.Path, issue.Line, issue.Column, issue.Message))
	}
	if report.Valid && len(report.Issues) == 0 {
		fmt.Fprintln(out, console.FormatSuccessMessage(report.Path))
	}
}
