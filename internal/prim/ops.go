package prim

import "github.com/roach88/jetprop/internal/tensor"

// Operation identities. Linear ops apply independently to each Taylor
// coefficient; the rest have dedicated propagation rules (or none: Tanh is
// executable but carries no rule, so propagating through it fails with an
// unsupported-operation error).
var (
	Neg = register("neg", 1, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Neg(), nil
	})
	Identity = register("identity", 1, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Scale(1), nil
	})
	// Arrays are float64 end to end, so conversion is the identity. The op
	// exists so programs written against a multi-dtype runtime still load.
	ConvertElementType = register("convert_element_type", 1, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Scale(1), nil
	})
	Add = register("add", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Add(in[1])
	})
	Sub = register("sub", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Sub(in[1])
	})
	Mul = register("mul", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Mul(in[1])
	})
	Div = register("div", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Div(in[1])
	})
	Exp = register("exp", 1, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Exp(), nil
	})
	Log = register("log", 1, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Log(), nil
	})
	Tanh = register("tanh", 1, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Tanh(), nil
	})
	Reshape = register("reshape", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		shape, err := p.Ints("new_sizes")
		if err != nil {
			return nil, err
		}
		return in[0].Reshape(shape)
	})
	Transpose = register("transpose", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		perm, err := p.Ints("permutation")
		if err != nil {
			return nil, err
		}
		return in[0].Transpose(perm)
	})
	Reverse = register("rev", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		axes, err := p.Ints("dimensions")
		if err != nil {
			return nil, err
		}
		return in[0].Reverse(axes)
	})
	Slice = register("slice", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		starts, err := p.Ints("start_indices")
		if err != nil {
			return nil, err
		}
		limits, err := p.Ints("limit_indices")
		if err != nil {
			return nil, err
		}
		return in[0].Slice(starts, limits)
	})
	Concat = register("concatenate", Variadic, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		axis, err := p.Int("dimension")
		if err != nil {
			return nil, err
		}
		return tensor.Concat(axis, in...)
	})
	Pad = register("pad", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		lo, err := p.Ints("padding_low")
		if err != nil {
			return nil, err
		}
		hi, err := p.Ints("padding_high")
		if err != nil {
			return nil, err
		}
		return in[0].Pad(lo, hi)
	})
	BroadcastInDim = register("broadcast_in_dim", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		shape, err := p.Ints("shape")
		if err != nil {
			return nil, err
		}
		return in[0].BroadcastTo(shape)
	})
	ReduceSum = register("reduce_sum", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		axes, err := p.Ints("axes")
		if err != nil {
			return nil, err
		}
		return in[0].ReduceSum(axes)
	})
	ReduceMax = register("reduce_max", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		axes, err := p.Ints("axes")
		if err != nil {
			return nil, err
		}
		return in[0].ReduceMax(axes)
	})
	ReduceWindowSum = register("reduce_window_sum", 1, func(p Params, in []*tensor.Array) (*tensor.Array, error) {
		axis, err := p.Int("axis")
		if err != nil {
			return nil, err
		}
		width, err := p.Int("window")
		if err != nil {
			return nil, err
		}
		return in[0].WindowSum(axis, width)
	})
	Gather = register("gather", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Gather(in[1])
	})
	Dot = register("dot", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Dot(in[1])
	})
	Conv = register("conv", 2, func(_ Params, in []*tensor.Array) (*tensor.Array, error) {
		return in[0].Conv1D(in[1])
	})
)
