package jet

import (
	"github.com/roach88/jetprop/internal/flatten"
	"github.com/roach88/jetprop/internal/interp"
	"github.com/roach88/jetprop/internal/tensor"
)

// Func is a user-supplied function over intercepted values. It applies
// primitives through the machine and may return arbitrarily nested output
// containers (slices and string-keyed maps) of values.
type Func func(m *interp.Machine, args []interp.Value) (any, error)

// Option configures one top-level Jet call.
type Option func(*Layer)

// WithRecorder attaches a trace recorder observing every intercepted
// primitive application.
func WithRecorder(r Recorder) Option {
	return func(l *Layer) { l.rec = r }
}

// Jet evaluates fn at primals while propagating the given truncated Taylor
// series, returning the output primal structure and the matching structure
// of coefficient lists.
//
// primals must be atomic arrays, one per argument. series carries one
// coefficient list per argument; all lists must share one length K, which
// fixes the truncation order for the whole call. Outputs mirror the
// structure of fn's return value: wherever fn returned a value, the primal
// result holds a *tensor.Array and the series result holds a
// []*tensor.Array of K coefficients.
//
// Validation failures are reported before any propagation begins; every
// later failure aborts the whole call with no partial result.
func Jet(fn Func, primals []*tensor.Array, series [][]*tensor.Array, opts ...Option) (any, any, error) {
	order, err := validateInputs(primals, series)
	if err != nil {
		return nil, nil, err
	}

	layer := &Layer{}
	for _, opt := range opts {
		opt(layer)
	}

	m := interp.NewMachine()
	var outPrimal, outSeries any
	err = m.With(layer, func() error {
		args := make([]interp.Value, len(primals))
		for i := range primals {
			args[i] = &Value{layer: layer, Primal: primals[i], Terms: termsOf(series[i])}
		}
		out, err := fn(m, args)
		if err != nil {
			return err
		}

		leaves, def := flatten.Flatten(out)
		primalLeaves := make([]any, len(leaves))
		seriesLeaves := make([]any, len(leaves))
		for i, leaf := range leaves {
			p, terms, err := raise(layer, leaf, order)
			if err != nil {
				return err
			}
			primalLeaves[i] = p
			seriesLeaves[i] = terms
		}
		if outPrimal, err = def.Unflatten(primalLeaves); err != nil {
			return err
		}
		outSeries, err = def.Unflatten(seriesLeaves)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return outPrimal, outSeries, nil
}

func validateInputs(primals []*tensor.Array, series [][]*tensor.Array) (int, error) {
	if len(primals) == 0 {
		return 0, badInput("at least one primal argument is required")
	}
	if len(series) != len(primals) {
		return 0, badInput("got %d primal arguments but %d series", len(primals), len(series))
	}
	order := len(series[0])
	for i, terms := range series {
		if len(terms) != order {
			return 0, badInput("series terms have inconsistent lengths for different arguments (%d vs %d)", order, len(terms))
		}
		if primals[i] == nil {
			return 0, badInput("primal value at position %d is not an array", i)
		}
		for j, t := range terms {
			if t == nil {
				return 0, badInput("term %d for argument %d is not an array", j, i)
			}
		}
	}
	return order, nil
}

// raise converts one output leaf to its (primal, coefficients) pair.
// Constants that never touched the jet layer come back with materialized
// zero series, so callers see a uniform shape.
func raise(layer *Layer, leaf any, order int) (*tensor.Array, []*tensor.Array, error) {
	switch v := leaf.(type) {
	case *Value:
		if v.layer != layer {
			return nil, nil, badInput("output value belongs to a different propagation call")
		}
		return v.Primal, v.Coefficients(order), nil
	case interp.Lit:
		return v.Arr, zeroCoefficients(v.Arr, order), nil
	case *tensor.Array:
		return v, zeroCoefficients(v, order), nil
	default:
		return nil, nil, badInput("output leaf of type %T is not an array value", leaf)
	}
}

func zeroCoefficients(ref *tensor.Array, order int) []*tensor.Array {
	out := make([]*tensor.Array, order)
	for i := range out {
		out[i] = tensor.Zeros(ref.Shape())
	}
	return out
}
