package prim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jetprop/internal/tensor"
)

func TestLookup(t *testing.T) {
	op, ok := Lookup("exp")
	require.True(t, ok)
	assert.Equal(t, "exp", op.Name())
	assert.Equal(t, 1, op.Arity())

	_, ok = Lookup("no_such_op")
	assert.False(t, ok)
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()
	assert.IsType(t, []string{}, names)
	assert.Contains(t, names, "add")
	assert.Contains(t, names, "reduce_max")
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestBind_ArityChecked(t *testing.T) {
	x := tensor.FromSlice([]float64{1, 2})
	_, err := Add.Bind(nil, x)
	assert.ErrorContains(t, err, "expects 2 operands")
}

func TestBind_NilOperand(t *testing.T) {
	_, err := Neg.Bind(nil, nil)
	assert.ErrorContains(t, err, "operand 0 is nil")
}

func TestBind_Elementwise(t *testing.T) {
	x := tensor.FromSlice([]float64{1, 2})
	y := tensor.FromSlice([]float64{3, 4})
	out, err := Add.Bind(nil, x, y)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, out.Data())
}

func TestBind_ParamsConsumed(t *testing.T) {
	x := tensor.FromSlice([]float64{1, 2, 3, 4})

	out, err := Reshape.Bind(Params{"new_sizes": []int{2, 2}}, x)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, out.Shape())

	_, err = Reshape.Bind(Params{}, x)
	assert.ErrorContains(t, err, `missing parameter "new_sizes"`)
}

func TestBind_ReduceSumAxes(t *testing.T) {
	x, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	out, err := ReduceSum.Bind(Params{"axes": []int{0}}, x)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, out.Data())
}

func TestBind_ConcatVariadic(t *testing.T) {
	a := tensor.FromSlice([]float64{1})
	b := tensor.FromSlice([]float64{2})
	c := tensor.FromSlice([]float64{3})
	out, err := Concat.Bind(Params{"dimension": 0}, a, b, c)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, out.Data())
}

func TestParams_YAMLShapedValues(t *testing.T) {
	// yaml decodes lists as []any with int elements
	p := Params{"axes": []any{0, 1}, "window": 2}

	axes, err := p.Ints("axes")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, axes)

	w, err := p.Int("window")
	require.NoError(t, err)
	assert.Equal(t, 2, w)
}
