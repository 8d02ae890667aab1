package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jetprop/internal/jet"
	"github.com/roach88/jetprop/internal/tensor"
)

const growthYAML = `
name: expgrowth
description: exponential of a linear ramp
inputs:
  - name: x
    shape: [2]
    values: [0.0, 1.0]
    series:
      - [1.0, 1.0]
steps:
  - out: y
    op: exp
    args: [x]
outputs: [y]
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(growthYAML))
	require.NoError(t, err)

	assert.Equal(t, "expgrowth", p.Name)
	require.Len(t, p.Inputs, 1)
	assert.Equal(t, "x", p.Inputs[0].Name)
	assert.Equal(t, []int{2}, p.Inputs[0].Shape)
	assert.Equal(t, []float64{0, 1}, p.Inputs[0].Values)
	require.Len(t, p.Steps, 1)
	assert.Equal(t, "exp", p.Steps[0].Op)
	assert.Equal(t, []string{"y"}, p.Outputs)
	assert.Equal(t, 1, p.Order())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("steps: {not: [valid"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "parse program")
}

func validProgram() *Program {
	return &Program{
		Name: "double",
		Inputs: []Input{{
			Name:   "x",
			Shape:  []int{2},
			Values: []float64{1, 2},
			Series: [][]float64{{1, 1}},
		}},
		Steps:   []Step{{Out: "y", Op: "add", Args: []string{"x", "x"}}},
		Outputs: []string{"y"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validProgram().Validate())

	cases := []struct {
		name    string
		mutate  func(*Program)
		field   string
		message string
	}{
		{
			name:    "empty name",
			mutate:  func(p *Program) { p.Name = "" },
			field:   "name",
			message: "must not be empty",
		},
		{
			name:    "no inputs",
			mutate:  func(p *Program) { p.Inputs = nil },
			field:   "inputs",
			message: "at least one input",
		},
		{
			name: "duplicate input",
			mutate: func(p *Program) {
				p.Inputs = append(p.Inputs, p.Inputs[0])
			},
			field:   "inputs[1]",
			message: `duplicate binding "x"`,
		},
		{
			name:    "values do not fill shape",
			mutate:  func(p *Program) { p.Inputs[0].Values = []float64{1} },
			field:   "inputs[0]",
			message: "needs 2 values, got 1",
		},
		{
			name:    "short series row",
			mutate:  func(p *Program) { p.Inputs[0].Series = [][]float64{{1}} },
			field:   "inputs[0]",
			message: "series row 0 has 1 elements, want 2",
		},
		{
			name: "inputs disagree on order",
			mutate: func(p *Program) {
				p.Inputs = append(p.Inputs, Input{
					Name:   "z",
					Shape:  []int{2},
					Values: []float64{3, 4},
					Series: [][]float64{{1, 1}, {0, 0}},
				})
			},
			field:   "inputs[1]",
			message: "one truncation order",
		},
		{
			name:    "step rebinds input",
			mutate:  func(p *Program) { p.Steps[0].Out = "x" },
			field:   "steps[0]",
			message: `duplicate binding "x"`,
		},
		{
			name:    "unknown op",
			mutate:  func(p *Program) { p.Steps[0].Op = "cosh" },
			field:   "steps[0]",
			message: `unknown operation "cosh"`,
		},
		{
			name:    "wrong arity",
			mutate:  func(p *Program) { p.Steps[0].Args = []string{"x"} },
			field:   "steps[0]",
			message: "add expects 2 operands, got 1",
		},
		{
			name:    "undefined operand",
			mutate:  func(p *Program) { p.Steps[0].Args = []string{"x", "w"} },
			field:   "steps[0]",
			message: `undefined operand "w"`,
		},
		{
			name:    "no outputs",
			mutate:  func(p *Program) { p.Outputs = nil },
			field:   "outputs",
			message: "at least one output",
		},
		{
			name:    "undefined output",
			mutate:  func(p *Program) { p.Outputs = []string{"q"} },
			field:   "outputs[0]",
			message: `undefined binding "q"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validProgram()
			tc.mutate(p)
			err := p.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Contains(t, verr.Message, tc.message)
		})
	}
}

func TestCompile_EndToEnd(t *testing.T) {
	p, err := Parse([]byte(growthYAML))
	require.NoError(t, err)

	c, err := p.Compile()
	require.NoError(t, err)
	require.Len(t, c.Primals, 1)
	require.Len(t, c.Series, 1)

	outPrimal, outSeries, err := jet.Jet(c.Fn, c.Primals, c.Series)
	require.NoError(t, err)

	primal := outPrimal.(*tensor.Array).Data()
	assert.InDelta(t, 1.0, primal[0], 1e-12)
	assert.InDelta(t, 2.718281828459045, primal[1], 1e-12)

	coeffs := outSeries.([]*tensor.Array)
	require.Len(t, coeffs, 1)
	// d/dt exp(x + t) at t=0 is exp(x)
	assert.InDelta(t, 1.0, coeffs[0].Data()[0], 1e-12)
	assert.InDelta(t, 2.718281828459045, coeffs[0].Data()[1], 1e-12)
}

func TestCompile_MultipleOutputs(t *testing.T) {
	p := validProgram()
	p.Steps = append(p.Steps, Step{Out: "n", Op: "neg", Args: []string{"x"}})
	p.Outputs = []string{"y", "n"}

	c, err := p.Compile()
	require.NoError(t, err)

	outPrimal, _, err := jet.Jet(c.Fn, c.Primals, c.Series)
	require.NoError(t, err)

	outs := outPrimal.([]any)
	require.Len(t, outs, 2)
	assert.Equal(t, []float64{2, 4}, outs[0].(*tensor.Array).Data())
	assert.Equal(t, []float64{-1, -2}, outs[1].(*tensor.Array).Data())
}

func TestCompile_RejectsInvalid(t *testing.T) {
	p := validProgram()
	p.Outputs = nil
	_, err := p.Compile()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestHash_IndependentOfFormatting(t *testing.T) {
	compact := []byte(`{name: expgrowth, inputs: [{name: x, shape: [2], values: [0.0, 1.0], series: [[1.0, 1.0]]}], steps: [{out: y, op: exp, args: [x]}], outputs: [y]}`)

	a, err := Parse([]byte(growthYAML))
	require.NoError(t, err)
	b, err := Parse(compact)
	require.NoError(t, err)

	assert.Equal(t, a.Hash(), b.Hash())
}

func TestHash_SensitiveToContent(t *testing.T) {
	a := validProgram()
	b := validProgram()
	b.Inputs[0].Values[1] = 3

	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestHash_NormalizesUnicode(t *testing.T) {
	composed := validProgram()
	composed.Name = "café"
	decomposed := validProgram()
	decomposed.Name = "café"

	assert.Equal(t, composed.Hash(), decomposed.Hash())
}
