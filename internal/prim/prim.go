// Package prim defines the primitive operations that array programs are
// built from.
//
// An Op is an opaque identity: propagation layers dispatch on it without
// knowing how it executes. Params carry the non-differentiated attributes
// of an application (axes, permutations, slice bounds). Bind executes the
// concrete kernel on plain arrays; interpretation layers intercept
// applications before Bind is reached.
//
// The identity table is populated once in init and read-only afterwards.
package prim

import (
	"fmt"
	"sort"

	"github.com/roach88/jetprop/internal/tensor"
)

// Variadic marks an Op that accepts any number of operands.
const Variadic = -1

// Op is an opaque primitive operation identity.
type Op struct {
	name   string
	arity  int
	kernel func(p Params, in []*tensor.Array) (*tensor.Array, error)
}

// Name returns the operation's registry name.
func (o *Op) Name() string { return o.name }

// Arity returns the number of operands the op expects, or Variadic.
func (o *Op) Arity() int { return o.arity }

// String implements fmt.Stringer.
func (o *Op) String() string { return o.name }

// Bind executes the concrete kernel on primal arrays.
func (o *Op) Bind(p Params, in ...*tensor.Array) (*tensor.Array, error) {
	if o.arity != Variadic && len(in) != o.arity {
		return nil, fmt.Errorf("prim: %s expects %d operands, got %d", o.name, o.arity, len(in))
	}
	for i, x := range in {
		if x == nil {
			return nil, fmt.Errorf("prim: %s operand %d is nil", o.name, i)
		}
	}
	out, err := o.kernel(p, in)
	if err != nil {
		return nil, fmt.Errorf("prim: %s: %w", o.name, err)
	}
	return out, nil
}

var registry = map[string]*Op{}

func register(name string, arity int, kernel func(Params, []*tensor.Array) (*tensor.Array, error)) *Op {
	if _, dup := registry[name]; dup {
		panic("prim: duplicate op " + name)
	}
	op := &Op{name: name, arity: arity, kernel: kernel}
	registry[name] = op
	return op
}

// Lookup returns the op registered under name.
func Lookup(name string) (*Op, bool) {
	op, ok := registry[name]
	return op, ok
}

// Names returns all registered op names in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
