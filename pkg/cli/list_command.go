package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wfrun/wfrun/pkg/console"
	"github.com/wfrun/wfrun/pkg/workflow"
)

// listEntry is the per-workflow row for --json output.
type listEntry struct {
	Name   string   `json:"name"`
	Path   string   `json:"path"`
	Events []string `json:"events"`
	Jobs   int      `json:"jobs"`
	Steps  int      `json:"steps"`
}

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [dir]",
		Short: "List discovered workflows",
		Long: `List the workflows in a directory with their triggers and shape.
Files that fail to parse are listed with the parse error.

Examples:
  wfrun list
  wfrun list .github/workflows --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")

			dir := cfg.WorkflowDir
			if len(args) == 1 {
				dir = args[0]
			}
			paths, err := workflow.Discover(dir)
			if err != nil {
				return err
			}

			var entries []listEntry
			for _, path := range paths {
				w, err := workflow.Parse(path)
				if err != nil {
					fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
					continue
				}
				entries = append(entries, listEntry{
					Name:   w.Name,
					Path:   w.Path,
					Events: w.On.Events(),
					Jobs:   len(w.Jobs),
					Steps:  w.StepCount(),
				})
			}

			if jsonOut {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), console.FormatInfoMessage(fmt.Sprintf("no workflows found in %s", dir)))
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Name,
					e.Path,
					strconv.Itoa(e.Jobs),
					strconv.Itoa(e.Steps),
					strings.Join(e.Events, ", "),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), console.RenderTable([]string{"NAME", "FILE", "JOBS", "STEPS", "ON"}, rows))
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Emit the workflow list as JSON")

	return cmd
}
