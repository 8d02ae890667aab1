// Package tensor implements the dense array substrate that primitive
// operations execute on.
//
// Arrays are immutable row-major float64 buffers with an explicit shape.
// Every operation returns a fresh array; nothing in this package mutates
// its receiver or its arguments. Shape mismatches are reported as errors,
// never panics, so callers higher in the stack can surface them with
// context attached.
package tensor

import (
	"fmt"
	"slices"
)

// Array is a dense row-major N-dimensional float64 array.
// A rank-0 array (empty shape) holds a single scalar.
type Array struct {
	shape []int
	data  []float64
}

// New creates an array with the given shape and backing data.
// The data length must equal the product of the shape dimensions.
func New(shape []int, data []float64) (*Array, error) {
	n := sizeOf(shape)
	if len(data) != n {
		return nil, fmt.Errorf("tensor: shape %v needs %d elements, got %d", shape, n, len(data))
	}
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("tensor: negative dimension in shape %v", shape)
		}
	}
	return &Array{shape: slices.Clone(shape), data: slices.Clone(data)}, nil
}

// Zeros creates an array of the given shape filled with zeros.
func Zeros(shape []int) *Array {
	return &Array{shape: slices.Clone(shape), data: make([]float64, sizeOf(shape))}
}

// Full creates an array of the given shape with every element set to v.
func Full(shape []int, v float64) *Array {
	a := Zeros(shape)
	for i := range a.data {
		a.data[i] = v
	}
	return a
}

// Scalar creates a rank-0 array holding v.
func Scalar(v float64) *Array {
	return &Array{shape: nil, data: []float64{v}}
}

// FromSlice creates a rank-1 array from vs.
func FromSlice(vs []float64) *Array {
	return &Array{shape: []int{len(vs)}, data: slices.Clone(vs)}
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Size returns the total number of elements.
func (a *Array) Size() int { return len(a.data) }

// Data returns a copy of the flattened row-major elements.
func (a *Array) Data() []float64 { return slices.Clone(a.data) }

// At returns the element at the given multi-index.
func (a *Array) At(idx ...int) (float64, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("tensor: index rank %d does not match array rank %d", len(idx), len(a.shape))
	}
	off := 0
	st := stridesOf(a.shape)
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			return 0, fmt.Errorf("tensor: index %v out of bounds for shape %v", idx, a.shape)
		}
		off += x * st[i]
	}
	return a.data[off], nil
}

// Item returns the value of a single-element array.
func (a *Array) Item() (float64, error) {
	if len(a.data) != 1 {
		return 0, fmt.Errorf("tensor: Item on array of size %d", len(a.data))
	}
	return a.data[0], nil
}

// SameShape reports whether a and b have identical shapes.
func SameShape(a, b *Array) bool {
	return slices.Equal(a.shape, b.shape)
}

// String renders the shape and flattened contents, for diagnostics.
func (a *Array) String() string {
	return fmt.Sprintf("Array%v%v", a.shape, a.data)
}

func (a *Array) clone() *Array {
	return &Array{shape: slices.Clone(a.shape), data: slices.Clone(a.data)}
}

func sizeOf(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// stridesOf computes row-major strides for a shape.
func stridesOf(shape []int) []int {
	st := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = acc
		acc *= shape[i]
	}
	return st
}

// nextIndex advances idx through the odometer order of shape.
// Returns false when idx wraps past the last position.
func nextIndex(idx, shape []int) bool {
	for i := len(shape) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < shape[i] {
			return true
		}
		idx[i] = 0
	}
	return false
}
