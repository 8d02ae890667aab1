package program

import (
	"fmt"

	"github.com/roach88/jetprop/internal/prim"
)

// ValidationError reports one defect found in a program document.
type ValidationError struct {
	Program string
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("program %q: %s: %s", e.Program, e.Field, e.Message)
}

func (p *Program) invalid(field, format string, args ...any) error {
	return &ValidationError{Program: p.Name, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks the program document before compilation: input shapes
// and series rows must be well-formed and agree on one truncation order,
// every step must reference a registered op and defined operands, bindings
// must be unique, and outputs must name defined bindings.
func (p *Program) Validate() error {
	if p.Name == "" {
		return p.invalid("name", "must not be empty")
	}
	if len(p.Inputs) == 0 {
		return p.invalid("inputs", "at least one input is required")
	}

	defined := map[string]bool{}
	order := -1
	for i, in := range p.Inputs {
		field := fmt.Sprintf("inputs[%d]", i)
		if in.Name == "" {
			return p.invalid(field, "input name must not be empty")
		}
		if defined[in.Name] {
			return p.invalid(field, "duplicate binding %q", in.Name)
		}
		defined[in.Name] = true
		size := 1
		for _, d := range in.Shape {
			if d < 0 {
				return p.invalid(field, "negative dimension in shape %v", in.Shape)
			}
			size *= d
		}
		if len(in.Values) != size {
			return p.invalid(field, "shape %v needs %d values, got %d", in.Shape, size, len(in.Values))
		}
		for j, row := range in.Series {
			if len(row) != size {
				return p.invalid(field, "series row %d has %d elements, want %d", j, len(row), size)
			}
		}
		if order >= 0 && len(in.Series) != order {
			return p.invalid(field, "series has %d rows but input %q has %d; all inputs must share one truncation order",
				len(in.Series), p.Inputs[0].Name, order)
		}
		order = len(in.Series)
	}

	for i, st := range p.Steps {
		field := fmt.Sprintf("steps[%d]", i)
		if st.Out == "" {
			return p.invalid(field, "step output name must not be empty")
		}
		if defined[st.Out] {
			return p.invalid(field, "duplicate binding %q", st.Out)
		}
		op, ok := prim.Lookup(st.Op)
		if !ok {
			return p.invalid(field, "unknown operation %q", st.Op)
		}
		if op.Arity() != prim.Variadic && len(st.Args) != op.Arity() {
			return p.invalid(field, "%s expects %d operands, got %d", st.Op, op.Arity(), len(st.Args))
		}
		for _, arg := range st.Args {
			if !defined[arg] {
				return p.invalid(field, "undefined operand %q", arg)
			}
		}
		defined[st.Out] = true
	}

	if len(p.Outputs) == 0 {
		return p.invalid("outputs", "at least one output is required")
	}
	for i, out := range p.Outputs {
		if !defined[out] {
			return p.invalid(fmt.Sprintf("outputs[%d]", i), "undefined binding %q", out)
		}
	}
	return nil
}
