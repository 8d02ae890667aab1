package cli

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/jetprop/internal/jet"
	"github.com/roach88/jetprop/internal/program"
	"github.com/roach88/jetprop/internal/tensor"
	"github.com/roach88/jetprop/internal/trace"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string

	// Tokens allows overriding the call token generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	Tokens trace.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program.yaml>",
		Short: "Propagate a jet program and print its outputs",
		Long: `Load a jet program, propagate its Taylor series, and print every
declared output's primal value and series coefficients.

With --db, each intercepted primitive application is also recorded to a
SQLite trace database under a fresh call token.

Example:
  jetprop run ./examples/expgrowth.yaml
  jetprop run --db ./trace.db ./examples/expgrowth.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite trace database (optional)")

	return cmd
}

// runOutput is the JSON shape of one program output.
type runOutput struct {
	Name   string      `json:"name"`
	Shape  []int       `json:"shape"`
	Primal []float64   `json:"primal"`
	Series [][]float64 `json:"series"`
}

type runReport struct {
	Program   string      `json:"program"`
	Hash      string      `json:"hash"`
	Order     int         `json:"order"`
	CallToken string      `json:"call_token,omitempty"`
	Outputs   []runOutput `json:"outputs"`
}

func runProgram(opts *RunOptions, path string, cmd *cobra.Command) error {
	configureLogging(opts.RootOptions)

	slog.Info("loading program", "path", path)
	prog, err := program.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load program", err)
	}
	compiled, err := prog.Compile()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile program", err)
	}
	slog.Info("program compiled", "name", prog.Name, "inputs", len(prog.Inputs), "steps", len(prog.Steps), "order", prog.Order())

	var jetOpts []jet.Option
	var callToken string
	if opts.Database != "" {
		st, err := trace.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open trace database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing trace database", "error", closeErr)
			}
		}()
		gen := opts.Tokens
		if gen == nil {
			gen = trace.UUIDv7Generator{}
		}
		rec := trace.NewRecorder(st, gen)
		callToken = rec.CallToken()
		jetOpts = append(jetOpts, jet.WithRecorder(rec))
		slog.Info("trace recording enabled", "db", opts.Database, "call", callToken)
	}

	outPrimal, outSeries, err := jet.Jet(compiled.Fn, compiled.Primals, compiled.Series, jetOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "propagation failed", err)
	}

	report := runReport{
		Program:   prog.Name,
		Hash:      prog.Hash(),
		Order:     prog.Order(),
		CallToken: callToken,
	}
	primals := resultList(outPrimal, len(prog.Outputs))
	series := resultList(outSeries, len(prog.Outputs))
	for i, name := range prog.Outputs {
		primal := primals[i].(*tensor.Array)
		coeffs := series[i].([]*tensor.Array)
		out := runOutput{Name: name, Shape: primal.Shape(), Primal: primal.Data()}
		for _, c := range coeffs {
			out.Series = append(out.Series, c.Data())
		}
		report.Outputs = append(report.Outputs, out)
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if f.IsJSON() {
		return f.PrintJSON(report)
	}
	f.Printf("program: %s\n", report.Program)
	f.Printf("hash: %s\n", report.Hash)
	f.Printf("order: %d\n", report.Order)
	if callToken != "" {
		f.Printf("call: %s\n", callToken)
	}
	for _, out := range report.Outputs {
		f.Printf("output %s shape=%v\n", out.Name, out.Shape)
		f.Printf("  primal: %s\n", formatFloats(out.Primal))
		for k, row := range out.Series {
			f.Printf("  series[%d]: %s\n", k, formatFloats(row))
		}
	}
	return nil
}

// resultList normalizes a propagation result structure to one entry per
// program output: single-output programs return a bare leaf, multi-output
// programs a []any.
func resultList(structure any, n int) []any {
	if n == 1 {
		return []any{structure}
	}
	return structure.([]any)
}

func formatFloats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

func configureLogging(opts *RootOptions) {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
