package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/jetprop/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenario.yaml>...",
		Short: "Run propagation scenarios and check their expectations",
		Long: `Run each scenario file: propagate its program and compare every
declared output against the expected primal and series values within the
scenario's tolerance.

Exit codes: 0 all passed, 1 at least one failed, 2 command error.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args, cmd)
		},
	}

	return cmd
}

type scenarioReport struct {
	Scenario string `json:"scenario"`
	Passed   bool   `json:"passed"`
	Error    string `json:"error,omitempty"`
}

func runScenarios(opts *TestOptions, paths []string, cmd *cobra.Command) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	var reports []scenarioReport
	failed := 0

	for _, path := range paths {
		s, err := harness.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load scenario", err)
		}
		report := scenarioReport{Scenario: s.Name, Passed: true}
		result, err := harness.Run(s)
		if err == nil {
			err = harness.Check(result)
		}
		if err != nil {
			report.Passed = false
			report.Error = err.Error()
			failed++
		}
		reports = append(reports, report)
	}

	if f.IsJSON() {
		if err := f.PrintJSON(reports); err != nil {
			return WrapExitError(ExitCommandError, "failed to write report", err)
		}
	} else {
		for _, r := range reports {
			if r.Passed {
				f.Printf("PASS %s\n", r.Scenario)
			} else {
				f.Printf("FAIL %s\n%s\n", r.Scenario, r.Error)
			}
		}
		f.Printf("%d scenarios, %d failed\n", len(reports), failed)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", failed, len(reports)))
	}
	return nil
}
