// Package jetprop propagates truncated Taylor series ("jets") through
// array programs, computing a function's value together with its first K
// directional derivatives in one evaluation.
//
// A user function is written against a Machine and applies primitive
// operations through it. Jet installs an interception layer on the
// machine, replaces every primitive application with a joint
// (value, series) computation, and returns the output values alongside
// their Taylor coefficients.
//
// Example:
//
//	fn := func(m *jetprop.Machine, args []jetprop.Value) (any, error) {
//	    return m.Apply(jetprop.Exp, nil, args[0])
//	}
//	x := jetprop.Scalar(1.0)
//	s := jetprop.Scalar(1.0)
//	primal, series, err := jetprop.Jet(fn, []*jetprop.Array{x}, [][]*jetprop.Array{{s}})
package jetprop

import (
	"github.com/roach88/jetprop/internal/interp"
	"github.com/roach88/jetprop/internal/jet"
	"github.com/roach88/jetprop/internal/prim"
	"github.com/roach88/jetprop/internal/tensor"
)

// Array is a dense row-major float64 array.
type Array = tensor.Array

// Machine is the layered evaluation stack that primitive applications
// flow through.
type Machine = interp.Machine

// Value is anything flowing through an intercepted evaluation.
type Value = interp.Value

// Func is a user function over intercepted values.
type Func = jet.Func

// Op is an opaque primitive operation identity.
type Op = prim.Op

// Params carries the non-differentiated attributes of an application.
type Params = prim.Params

// Jet evaluates fn at primals while propagating the given truncated
// Taylor series. See the jet package for the full contract.
func Jet(fn Func, primals []*Array, series [][]*Array, opts ...jet.Option) (any, any, error) {
	return jet.Jet(fn, primals, series, opts...)
}

// New creates an array with the given shape and backing data.
func New(shape []int, data []float64) (*Array, error) { return tensor.New(shape, data) }

// Scalar creates a rank-0 array holding v.
func Scalar(v float64) *Array { return tensor.Scalar(v) }

// FromSlice creates a rank-1 array from vs.
func FromSlice(vs []float64) *Array { return tensor.FromSlice(vs) }

// LookupOp returns the primitive registered under name.
func LookupOp(name string) (*Op, bool) { return prim.Lookup(name) }

// Primitive operation identities, re-exported for building functions.
var (
	Neg       = prim.Neg
	Add       = prim.Add
	Sub       = prim.Sub
	Mul       = prim.Mul
	Div       = prim.Div
	Exp       = prim.Exp
	Log       = prim.Log
	Dot       = prim.Dot
	Conv      = prim.Conv
	Gather    = prim.Gather
	ReduceSum = prim.ReduceSum
	ReduceMax = prim.ReduceMax
)

// Error classification helpers, re-exported from the engine.
var (
	IsUnsupportedOp     = jet.IsUnsupportedOp
	IsInconsistentOrder = jet.IsInconsistentOrder
	IsCallBoundary      = jet.IsCallBoundary
	IsBadInput          = jet.IsBadInput
)
