package jet

import (
	"fmt"

	"github.com/roach88/jetprop/internal/interp"
	"github.com/roach88/jetprop/internal/prim"
	"github.com/roach88/jetprop/internal/tensor"
)

// Recorder observes intercepted primitive applications. Implementations
// must not influence propagation; a recording failure still aborts the
// call because a partial trace is worse than none.
type Recorder interface {
	RecordApply(op string, order int, operandShapes [][]int, outputShape []int) error
}

// Layer is the jet interception layer installed on an interp.Machine for
// the duration of one top-level call. It owns every Value it creates and
// replaces each intercepted application with a joint (primal, series)
// computation from the rule registry.
type Layer struct {
	rec Recorder
}

var _ interp.Interpreter = (*Layer)(nil)

// Owns implements interp.Interpreter.
func (l *Layer) Owns(v interp.Value) bool {
	jv, ok := v.(*Value)
	return ok && jv.layer == l
}

// Lift implements interp.Interpreter: concrete arrays enter the layer with
// the zero-series sentinel, placing no constraint on truncation order.
func (l *Layer) Lift(v interp.Value) (interp.Value, error) {
	if l.Owns(v) {
		return v, nil
	}
	arr, ok := v.Concrete()
	if !ok {
		return nil, fmt.Errorf("jet: cannot lift value of type %T into jet layer", v)
	}
	return &Value{layer: l, Primal: arr, Terms: ZeroSeries{}}, nil
}

// Process implements interp.Interpreter. Operands are unwrapped into
// (primal, series), the truncation order is reconciled across every
// non-sentinel series, zero sentinels are expanded and materialized, and
// the matching rule produces the output jet.
func (l *Layer) Process(op *prim.Op, params prim.Params, in []interp.Value) (interp.Value, error) {
	primals := make([]*tensor.Array, len(in))
	jets := make([]*Value, len(in))
	order := -1
	for i, v := range in {
		jv, ok := v.(*Value)
		if !ok || jv.layer != l {
			return nil, fmt.Errorf("jet: %s operand %d was not lifted into the jet layer", op.Name(), i)
		}
		jets[i] = jv
		primals[i] = jv.Primal
		if n := jv.Order(); n >= 0 {
			if order >= 0 && n != order {
				return nil, &PropagationError{
					Code:    ErrCodeInconsistentOrder,
					Op:      op.Name(),
					Message: fmt.Sprintf("operands carry truncation orders %d and %d", order, n),
				}
			}
			order = n
		}
	}
	if order < 0 {
		return nil, &PropagationError{
			Code:    ErrCodeInconsistentOrder,
			Op:      op.Name(),
			Message: "no operand establishes a truncation order",
		}
	}
	series := make([][]*tensor.Array, len(jets))
	for i, jv := range jets {
		series[i] = jv.Coefficients(order)
	}
	rule, ok := rules[op.Name()]
	if !ok {
		return nil, &PropagationError{
			Code:    ErrCodeUnsupportedOp,
			Op:      op.Name(),
			Message: "no propagation rule registered",
		}
	}
	primal, coeffs, err := rule(primals, series, params)
	if err != nil {
		return nil, fmt.Errorf("jet: %s rule: %w", op.Name(), err)
	}
	if l.rec != nil {
		shapes := make([][]int, len(primals))
		for i, p := range primals {
			shapes[i] = p.Shape()
		}
		if err := l.rec.RecordApply(op.Name(), order, shapes, primal.Shape()); err != nil {
			return nil, fmt.Errorf("jet: record %s: %w", op.Name(), err)
		}
	}
	return &Value{layer: l, Primal: primal, Terms: termsOf(coeffs)}, nil
}

// ProcessCall implements interp.Interpreter. Propagating jets across a
// user-defined sub-function boundary is unimplemented; the failure is
// unconditional and fatal rather than silently approximated.
func (l *Layer) ProcessCall(name string, _ []interp.Value) ([]interp.Value, error) {
	return nil, &PropagationError{
		Code:    ErrCodeCallBoundary,
		Op:      name,
		Message: "jet propagation across sub-function call boundaries is not implemented",
	}
}
