package jet

import (
	"github.com/roach88/jetprop/internal/prim"
	"github.com/roach88/jetprop/internal/tensor"
)

// Rule advances a truncated power series through one primitive. It is pure:
// given the operand primals, the materialized per-operand coefficient lists
// (all of one shared length K) and the op's non-differentiated parameters,
// it returns the output primal and its K coefficients.
type Rule func(primals []*tensor.Array, series [][]*tensor.Array, params prim.Params) (*tensor.Array, []*tensor.Array, error)

// rules maps operation identity to its propagation rule. Populated in init,
// read-only afterwards.
var rules = map[string]Rule{}

// defLinear registers the shared linear rule for an op that is linear in
// all of its array operands for fixed parameters: a linear map commutes
// with coefficient extraction, so the op applies termwise to same-order
// coefficients with no cross-order coupling.
func defLinear(op *prim.Op) {
	rules[op.Name()] = func(primals []*tensor.Array, series [][]*tensor.Array, params prim.Params) (*tensor.Array, []*tensor.Array, error) {
		primal, err := op.Bind(params, primals...)
		if err != nil {
			return nil, nil, err
		}
		order := len(series[0])
		coeffs := make([]*tensor.Array, order)
		kth := make([]*tensor.Array, len(series))
		for k := 0; k < order; k++ {
			for i := range series {
				kth[i] = series[i][k]
			}
			if coeffs[k], err = op.Bind(params, kth...); err != nil {
				return nil, nil, err
			}
		}
		return primal, coeffs, nil
	}
}

func init() {
	defLinear(prim.Neg)
	defLinear(prim.Identity)
	defLinear(prim.ConvertElementType)
	defLinear(prim.Add)
	defLinear(prim.Sub)
	defLinear(prim.Reshape)
	defLinear(prim.Transpose)
	defLinear(prim.Reverse)
	defLinear(prim.Slice)
	defLinear(prim.Concat)
	defLinear(prim.Pad)
	defLinear(prim.BroadcastInDim)
	defLinear(prim.ReduceSum)
	defLinear(prim.ReduceWindowSum)

	rules[prim.Exp.Name()] = expRule
	rules[prim.Log.Name()] = logRule
	rules[prim.Div.Name()] = divRule
	rules[prim.Mul.Name()] = bilinear(prim.Mul)
	rules[prim.Dot.Name()] = bilinear(prim.Dot)
	rules[prim.Conv.Name()] = bilinear(prim.Conv)
	rules[prim.Gather.Name()] = gatherRule
	rules[prim.ReduceMax.Name()] = reduceMaxRule
}

// fact returns n! as a float64. Orders are small, so the naive product is
// exact well past any practical truncation order.
func fact(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

// accumulate adds t into sum, treating a nil sum as zero.
func accumulate(sum, t *tensor.Array) (*tensor.Array, error) {
	if sum == nil {
		return t, nil
	}
	return sum.Add(t)
}

// expRule: v = exp(u). v_0 = exp(u_0) and for k >= 1
//
//	v_k = (k-1)! * Σ_{j=1}^{k} v_{k-j} u_j / ((k-j)! (j-1)!)
func expRule(primals []*tensor.Array, series [][]*tensor.Array, _ prim.Params) (*tensor.Array, []*tensor.Array, error) {
	u := append([]*tensor.Array{primals[0]}, series[0]...)
	v := make([]*tensor.Array, len(u))
	v[0] = primals[0].Exp()
	for k := 1; k < len(v); k++ {
		var sum *tensor.Array
		for j := 1; j <= k; j++ {
			t, err := v[k-j].Mul(u[j])
			if err != nil {
				return nil, nil, err
			}
			if sum, err = accumulate(sum, t.Scale(1/(fact(k-j)*fact(j-1)))); err != nil {
				return nil, nil, err
			}
		}
		v[k] = sum.Scale(fact(k - 1))
	}
	return v[0], v[1:], nil
}

// logRule: v = log(u). v_0 = log(u_0) and for k >= 1
//
//	v_k = (u_k - (k-1)! * Σ_{j=1}^{k-1} v_j u_{k-j} / ((k-j)! (j-1)!)) / u_0
func logRule(primals []*tensor.Array, series [][]*tensor.Array, _ prim.Params) (*tensor.Array, []*tensor.Array, error) {
	u := append([]*tensor.Array{primals[0]}, series[0]...)
	v := make([]*tensor.Array, len(u))
	v[0] = primals[0].Log()
	for k := 1; k < len(v); k++ {
		var conv *tensor.Array
		for j := 1; j < k; j++ {
			t, err := v[j].Mul(u[k-j])
			if err != nil {
				return nil, nil, err
			}
			if conv, err = accumulate(conv, t.Scale(1/(fact(k-j)*fact(j-1)))); err != nil {
				return nil, nil, err
			}
		}
		num := u[k]
		if conv != nil {
			var err error
			if num, err = u[k].Sub(conv.Scale(fact(k - 1))); err != nil {
				return nil, nil, err
			}
		}
		vk, err := num.Div(u[0])
		if err != nil {
			return nil, nil, err
		}
		v[k] = vk
	}
	return v[0], v[1:], nil
}

// divRule: v = u / w, defined through v·w = u. For every k >= 0
//
//	v_k = (u_k - k! * Σ_{j=0}^{k-1} v_j w_{k-j} / ((k-j)! j!)) / w_0
//
// The k=0 sum is empty, which reduces to the ordinary quotient.
func divRule(primals []*tensor.Array, series [][]*tensor.Array, _ prim.Params) (*tensor.Array, []*tensor.Array, error) {
	u := append([]*tensor.Array{primals[0]}, series[0]...)
	w := append([]*tensor.Array{primals[1]}, series[1]...)
	v := make([]*tensor.Array, len(u))
	for k := 0; k < len(v); k++ {
		var conv *tensor.Array
		for j := 0; j < k; j++ {
			t, err := v[j].Mul(w[k-j])
			if err != nil {
				return nil, nil, err
			}
			if conv, err = accumulate(conv, t.Scale(1/(fact(k-j)*fact(j)))); err != nil {
				return nil, nil, err
			}
		}
		num := u[k]
		if conv != nil {
			var err error
			if num, err = u[k].Sub(conv.Scale(fact(k))); err != nil {
				return nil, nil, err
			}
		}
		vk, err := num.Div(w[0])
		if err != nil {
			return nil, nil, err
		}
		v[k] = vk
	}
	return v[0], v[1:], nil
}

// bilinear builds the rule for an op bilinear in its two operands:
//
//	v_k = k! * Σ_{j=0}^{k} op(u_j, w_{k-j}) / ((k-j)! j!)
//
// which covers elementwise products, contractions and convolutions alike,
// since only bilinearity of the map is used.
func bilinear(op *prim.Op) Rule {
	return func(primals []*tensor.Array, series [][]*tensor.Array, params prim.Params) (*tensor.Array, []*tensor.Array, error) {
		u := append([]*tensor.Array{primals[0]}, series[0]...)
		w := append([]*tensor.Array{primals[1]}, series[1]...)
		v := make([]*tensor.Array, len(u))
		for k := 0; k < len(v); k++ {
			var sum *tensor.Array
			for j := 0; j <= k; j++ {
				t, err := op.Bind(params, u[j], w[k-j])
				if err != nil {
					return nil, nil, err
				}
				if sum, err = accumulate(sum, t.Scale(1/(fact(k-j)*fact(j)))); err != nil {
					return nil, nil, err
				}
			}
			v[k] = sum.Scale(fact(k))
		}
		return v[0], v[1:], nil
	}
}

// gatherRule reads the data operand at dynamic positions. The primal and
// every coefficient are gathered independently with the same indices; the
// index operand is never differentiated and its series is ignored.
func gatherRule(primals []*tensor.Array, series [][]*tensor.Array, params prim.Params) (*tensor.Array, []*tensor.Array, error) {
	data, indices := primals[0], primals[1]
	primal, err := prim.Gather.Bind(params, data, indices)
	if err != nil {
		return nil, nil, err
	}
	coeffs := make([]*tensor.Array, len(series[0]))
	for k, g := range series[0] {
		if coeffs[k], err = prim.Gather.Bind(params, g, indices); err != nil {
			return nil, nil, err
		}
	}
	return primal, coeffs, nil
}

// reduceMaxRule reduces with max over a set of axes. The primal's argmax
// structure defines one linear selection map that every coefficient is
// routed through: an indicator marks the positions attaining the group
// maximum, and ties share credit evenly, matching the symmetric
// sub-differential of max.
func reduceMaxRule(primals []*tensor.Array, series [][]*tensor.Array, params prim.Params) (*tensor.Array, []*tensor.Array, error) {
	operand := primals[0]
	axes, err := params.Ints("axes")
	if err != nil {
		return nil, nil, err
	}
	primal, err := operand.ReduceMax(axes)
	if err != nil {
		return nil, nil, err
	}
	keepShape := operand.Shape()
	for _, ax := range axes {
		keepShape[ax] = 1
	}
	reshaped, err := primal.Reshape(keepShape)
	if err != nil {
		return nil, nil, err
	}
	broadcast, err := reshaped.BroadcastTo(operand.Shape())
	if err != nil {
		return nil, nil, err
	}
	indicator, err := operand.EqualMask(broadcast)
	if err != nil {
		return nil, nil, err
	}
	counts, err := indicator.ReduceSum(axes)
	if err != nil {
		return nil, nil, err
	}
	coeffs := make([]*tensor.Array, len(series[0]))
	for k, g := range series[0] {
		masked, err := g.Mul(indicator)
		if err != nil {
			return nil, nil, err
		}
		summed, err := masked.ReduceSum(axes)
		if err != nil {
			return nil, nil, err
		}
		if coeffs[k], err = summed.Div(counts); err != nil {
			return nil, nil, err
		}
	}
	return primal, coeffs, nil
}
