package program

import (
	"fmt"

	"github.com/roach88/jetprop/internal/interp"
	"github.com/roach88/jetprop/internal/jet"
	"github.com/roach88/jetprop/internal/prim"
	"github.com/roach88/jetprop/internal/tensor"
)

// Compiled is a program ready to propagate: the function over intercepted
// values plus the concrete input arrays.
type Compiled struct {
	Fn      jet.Func
	Primals []*tensor.Array
	Series  [][]*tensor.Array
}

// Compile validates the program and builds its propagation function. The
// function applies the steps in order through the machine and returns the
// named outputs: a single value, or a []any of values when the program
// declares several.
func (p *Program) Compile() (*Compiled, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	primals := make([]*tensor.Array, len(p.Inputs))
	series := make([][]*tensor.Array, len(p.Inputs))
	for i, in := range p.Inputs {
		arr, err := tensor.New(in.Shape, in.Values)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in.Name, err)
		}
		primals[i] = arr
		series[i] = make([]*tensor.Array, len(in.Series))
		for j, row := range in.Series {
			if series[i][j], err = tensor.New(in.Shape, row); err != nil {
				return nil, fmt.Errorf("input %q series row %d: %w", in.Name, j, err)
			}
		}
	}

	steps := p.Steps
	inputs := p.Inputs
	outputs := p.Outputs
	fn := func(m *interp.Machine, args []interp.Value) (any, error) {
		env := make(map[string]interp.Value, len(inputs)+len(steps))
		for i, in := range inputs {
			env[in.Name] = args[i]
		}
		for _, st := range steps {
			op, _ := prim.Lookup(st.Op)
			operands := make([]interp.Value, len(st.Args))
			for i, arg := range st.Args {
				operands[i] = env[arg]
			}
			out, err := m.Apply(op, prim.Params(st.Params), operands...)
			if err != nil {
				return nil, fmt.Errorf("step %q: %w", st.Out, err)
			}
			env[st.Out] = out
		}
		if len(outputs) == 1 {
			return env[outputs[0]], nil
		}
		outs := make([]any, len(outputs))
		for i, name := range outputs {
			outs[i] = env[name]
		}
		return outs, nil
	}

	return &Compiled{Fn: fn, Primals: primals, Series: series}, nil
}
