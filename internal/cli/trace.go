package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/jetprop/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Call string
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <trace.db>",
		Short: "Dump recorded propagation traces",
		Long: `List the primitive applications recorded in a trace database, in
interception order. With --call, only that call's applications are shown.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Call, "call", "", "only show applications of this call token")

	return cmd
}

type traceRow struct {
	Call          string  `json:"call"`
	Seq           int64   `json:"seq"`
	Op            string  `json:"op"`
	Order         int     `json:"order"`
	OperandShapes [][]int `json:"operand_shapes"`
	OutputShape   []int   `json:"output_shape"`
}

func dumpTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	st, err := trace.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open trace database", err)
	}
	defer st.Close()

	ctx := context.Background()
	var records []trace.Record
	if opts.Call != "" {
		records, err = st.ListByCall(ctx, opts.Call)
	} else {
		records, err = st.ListAll(ctx)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read trace", err)
	}

	rows := make([]traceRow, len(records))
	for i, r := range records {
		rows[i] = traceRow{
			Call:          r.CallToken,
			Seq:           r.Seq,
			Op:            r.Op,
			Order:         r.Order,
			OperandShapes: r.OperandShapes,
			OutputShape:   r.OutputShape,
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if f.IsJSON() {
		return f.PrintJSON(rows)
	}
	for _, row := range rows {
		operands, _ := json.Marshal(row.OperandShapes)
		output, _ := json.Marshal(row.OutputShape)
		f.Printf("[%s #%d] %s order=%d in=%s out=%s\n", row.Call, row.Seq, row.Op, row.Order, operands, output)
	}
	f.Printf("%d applications\n", len(rows))
	return nil
}
