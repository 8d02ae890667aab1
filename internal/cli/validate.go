package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/jetprop/internal/program"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <program.yaml>",
		Short: "Validate a jet program without running it",
		Long: `Load a jet program and run every static check: input shapes and
series rows, operation names and arities, operand references, and output
bindings. Nothing is propagated.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateProgram(opts, args[0], cmd)
		},
	}

	return cmd
}

type validateReport struct {
	Program string `json:"program"`
	Hash    string `json:"hash"`
	Inputs  int    `json:"inputs"`
	Steps   int    `json:"steps"`
	Order   int    `json:"order"`
	Valid   bool   `json:"valid"`
}

func validateProgram(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	prog, err := program.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load program", err)
	}
	if err := prog.Validate(); err != nil {
		return WrapExitError(ExitFailure, "program is invalid", err)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	report := validateReport{
		Program: prog.Name,
		Hash:    prog.Hash(),
		Inputs:  len(prog.Inputs),
		Steps:   len(prog.Steps),
		Order:   prog.Order(),
		Valid:   true,
	}
	if f.IsJSON() {
		return f.PrintJSON(report)
	}
	f.Printf("program %s is valid\n", report.Program)
	f.Printf("  hash: %s\n", report.Hash)
	f.Printf("  inputs: %d\n", report.Inputs)
	f.Printf("  steps: %d\n", report.Steps)
	f.Printf("  order: %d\n", report.Order)
	return nil
}
