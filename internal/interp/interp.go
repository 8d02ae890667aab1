// Package interp provides the layered evaluation mechanism that primitive
// applications flow through.
//
// A Machine holds a stack of interpretation layers above a concrete
// bottom. Every application is offered to the topmost layer that owns one
// of its operands; remaining operands are lifted into that layer first.
// When no layer claims an operand the kernel runs concretely. Layers are
// installed for a bounded scope via With, which restores the previous
// stack on every exit path.
//
// The machine is single-threaded within one evaluation: each top-level
// call builds its own Machine, so no synchronization is needed.
package interp

import (
	"fmt"

	"github.com/roach88/jetprop/internal/prim"
	"github.com/roach88/jetprop/internal/tensor"
)

// Value is anything that can flow through an evaluation: a concrete array
// or a layer-owned wrapper carrying extra payload.
type Value interface {
	// Concrete returns the underlying array when the value carries no
	// layer-specific payload.
	Concrete() (*tensor.Array, bool)
}

// Lit wraps a concrete array as a Value.
type Lit struct {
	Arr *tensor.Array
}

// Concrete implements Value.
func (l Lit) Concrete() (*tensor.Array, bool) { return l.Arr, true }

// Lowerable is implemented by wrapped values that can shed their payload
// when it carries no information, dropping to a plainer Value.
type Lowerable interface {
	Lower() Value
}

// Interpreter is one interception layer on the machine stack.
type Interpreter interface {
	// Owns reports whether v was produced by this layer.
	Owns(v Value) bool

	// Lift wraps a concrete or lower-layer value for this layer.
	Lift(v Value) (Value, error)

	// Process intercepts one primitive application whose operands have all
	// been lifted into this layer.
	Process(op *prim.Op, params prim.Params, in []Value) (Value, error)

	// ProcessCall intercepts a named sub-function call boundary.
	ProcessCall(name string, in []Value) ([]Value, error)
}

// SubFunc is a user-defined sub-function invoked through Machine.Call.
type SubFunc func(m *Machine, in []Value) ([]Value, error)

// Machine is a per-call stack of interpretation layers.
type Machine struct {
	layers []Interpreter
}

// NewMachine creates a machine with only the concrete bottom.
func NewMachine() *Machine {
	return &Machine{}
}

// Depth returns the number of installed layers.
func (m *Machine) Depth() int { return len(m.layers) }

// With installs layer for the duration of fn and removes it afterwards,
// restoring the previous stack on every exit path including failure.
func (m *Machine) With(layer Interpreter, fn func() error) error {
	m.layers = append(m.layers, layer)
	defer func() {
		m.layers = m.layers[:len(m.layers)-1]
	}()
	return fn()
}

// Apply routes one primitive application. Operands that can shed their
// payload are lowered first; the topmost layer owning a remaining operand
// intercepts the application, and with no owner the kernel runs concretely.
func (m *Machine) Apply(op *prim.Op, params prim.Params, in ...Value) (Value, error) {
	lowered := make([]Value, len(in))
	for i, v := range in {
		if v == nil {
			return nil, fmt.Errorf("interp: %s operand %d is nil", op.Name(), i)
		}
		lowered[i] = lower(v)
	}
	for i := len(m.layers) - 1; i >= 0; i-- {
		layer := m.layers[i]
		if !ownsAny(layer, lowered) {
			continue
		}
		lifted := make([]Value, len(lowered))
		for j, v := range lowered {
			lv, err := layer.Lift(v)
			if err != nil {
				return nil, err
			}
			lifted[j] = lv
		}
		return layer.Process(op, params, lifted)
	}
	arrs := make([]*tensor.Array, len(lowered))
	for i, v := range lowered {
		arr, ok := v.Concrete()
		if !ok {
			return nil, fmt.Errorf("interp: %s operand %d escaped its layer", op.Name(), i)
		}
		arrs[i] = arr
	}
	out, err := op.Bind(params, arrs...)
	if err != nil {
		return nil, err
	}
	return Lit{Arr: out}, nil
}

// Call routes a named sub-function boundary. If any operand belongs to an
// installed layer the call is offered to that layer's ProcessCall;
// otherwise the sub-function simply runs.
func (m *Machine) Call(name string, fn SubFunc, in ...Value) ([]Value, error) {
	lowered := make([]Value, len(in))
	for i, v := range in {
		lowered[i] = lower(v)
	}
	for i := len(m.layers) - 1; i >= 0; i-- {
		if ownsAny(m.layers[i], lowered) {
			return m.layers[i].ProcessCall(name, lowered)
		}
	}
	return fn(m, lowered)
}

func ownsAny(layer Interpreter, vs []Value) bool {
	for _, v := range vs {
		if layer.Owns(v) {
			return true
		}
	}
	return false
}

// lower repeatedly sheds payload-free wrappers.
func lower(v Value) Value {
	for {
		l, ok := v.(Lowerable)
		if !ok {
			return v
		}
		next := l.Lower()
		if next == v {
			return v
		}
		v = next
	}
}
