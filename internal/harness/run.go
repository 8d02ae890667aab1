package harness

import (
	"fmt"

	"github.com/roach88/jetprop/internal/jet"
	"github.com/roach88/jetprop/internal/program"
	"github.com/roach88/jetprop/internal/tensor"
)

// Output is one named program result: the primal array and its Taylor
// coefficients.
type Output struct {
	Name   string
	Primal *tensor.Array
	Coeffs []*tensor.Array
}

// Result captures one scenario execution.
type Result struct {
	Scenario *Scenario
	Program  *program.Program
	Outputs  []Output
}

// Run loads the scenario's program, propagates it, and returns the named
// outputs in program order. Expectations are not checked here; see Check.
func Run(s *Scenario) (*Result, error) {
	prog, err := program.Load(s.ProgramPath())
	if err != nil {
		return nil, err
	}
	compiled, err := prog.Compile()
	if err != nil {
		return nil, err
	}
	outPrimal, outSeries, err := jet.Jet(compiled.Fn, compiled.Primals, compiled.Series)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	primals, err := collect[*tensor.Array](outPrimal, len(prog.Outputs))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	coeffs, err := collect[[]*tensor.Array](outSeries, len(prog.Outputs))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	outputs := make([]Output, len(prog.Outputs))
	for i, name := range prog.Outputs {
		outputs[i] = Output{Name: name, Primal: primals[i], Coeffs: coeffs[i]}
	}
	return &Result{Scenario: s, Program: prog, Outputs: outputs}, nil
}

// collect unpacks a propagation result structure: a single leaf for
// one-output programs, a []any for several.
func collect[T any](structure any, n int) ([]T, error) {
	if n == 1 {
		leaf, ok := structure.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected result type %T", structure)
		}
		return []T{leaf}, nil
	}
	list, ok := structure.([]any)
	if !ok || len(list) != n {
		return nil, fmt.Errorf("expected %d results, got %T", n, structure)
	}
	out := make([]T, n)
	for i, e := range list {
		leaf, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("unexpected result type %T at position %d", e, i)
		}
		out[i] = leaf
	}
	return out, nil
}

// Output returns the result's output with the given name.
func (r *Result) Output(name string) (Output, bool) {
	for _, o := range r.Outputs {
		if o.Name == name {
			return o, true
		}
	}
	return Output{}, false
}
