// Package jet propagates truncated Taylor series through array programs.
//
// A jet pairs a primal array (the 0th-order coefficient) with the
// coefficients of orders 1..K along one direction. Propagating a function
// over jets yields its value and its first K directional derivatives in a
// single evaluation, using closed-form truncated-series recurrences per
// primitive instead of repeated differentiation.
//
// The package installs one interception layer on an interp.Machine for the
// duration of a top-level Jet call. Every primitive application reached
// during the call is replaced by a joint (value, series) computation
// looked up in a process-wide rule registry.
package jet

import (
	"github.com/roach88/jetprop/internal/interp"
	"github.com/roach88/jetprop/internal/tensor"
)

// Series is a sealed variant: either the zero-series sentinel or a
// materialized list of per-order terms. Only ZeroSeries and TermList
// implement it.
type Series interface {
	series()
}

// ZeroSeries is the "no derivative information" sentinel. A value carrying
// it places no constraint on the truncation order.
type ZeroSeries struct{}

func (ZeroSeries) series() {}

// TermList holds one term per order 1..K.
type TermList []Term

func (TermList) series() {}

// Term is a sealed variant over one series coefficient: either the
// known-zero sentinel or a concrete array. Only ZeroTerm and Coefficient
// implement it.
type Term interface {
	term()
}

// ZeroTerm marks a coefficient known to be exactly zero, without
// allocating a concrete zero array for it.
type ZeroTerm struct{}

func (ZeroTerm) term() {}

// Coefficient is a concrete array-valued series term.
type Coefficient struct {
	Arr *tensor.Array
}

func (Coefficient) term() {}

// Value is a jet flowing through an intercepted evaluation: a primal array
// paired with its series. Values are never mutated; every intercepted
// application produces a fresh one.
type Value struct {
	layer  *Layer
	Primal *tensor.Array
	Terms  Series
}

// Concrete implements interp.Value; a jet always carries payload.
func (v *Value) Concrete() (*tensor.Array, bool) { return nil, false }

// Lower implements interp.Lowerable: a jet whose series is the zero
// sentinel, or whose every term is the zero sentinel, is indistinguishable
// from its bare primal for any consumer that does not need series
// information, so it drops out of the interception layer entirely.
func (v *Value) Lower() interp.Value {
	switch terms := v.Terms.(type) {
	case ZeroSeries:
		return interp.Lit{Arr: v.Primal}
	case TermList:
		for _, t := range terms {
			if _, zero := t.(ZeroTerm); !zero {
				return v
			}
		}
		return interp.Lit{Arr: v.Primal}
	}
	return v
}

// Order returns the truncation order carried by the value, or -1 for the
// zero-series sentinel.
func (v *Value) Order() int {
	if terms, ok := v.Terms.(TermList); ok {
		return len(terms)
	}
	return -1
}

// Coefficients materializes the value's series as concrete arrays. Zero
// sentinels expand to zero arrays shaped like the primal; the zero-series
// sentinel expands to order zero-coefficient arrays.
func (v *Value) Coefficients(order int) []*tensor.Array {
	terms, ok := v.Terms.(TermList)
	if !ok {
		terms = make(TermList, order)
		for i := range terms {
			terms[i] = ZeroTerm{}
		}
	}
	out := make([]*tensor.Array, len(terms))
	for i, t := range terms {
		if c, ok := t.(Coefficient); ok {
			out[i] = c.Arr
		} else {
			out[i] = tensor.Zeros(v.Primal.Shape())
		}
	}
	return out
}

func termsOf(coeffs []*tensor.Array) TermList {
	terms := make(TermList, len(coeffs))
	for i, c := range coeffs {
		terms[i] = Coefficient{Arr: c}
	}
	return terms
}
