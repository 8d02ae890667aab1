package tensor

import (
	"fmt"
	"math"
	"slices"
)

// Neg returns the elementwise negation.
func (a *Array) Neg() *Array { return a.mapUnary(func(x float64) float64 { return -x }) }

// Exp returns the elementwise natural exponential.
func (a *Array) Exp() *Array { return a.mapUnary(math.Exp) }

// Log returns the elementwise natural logarithm.
func (a *Array) Log() *Array { return a.mapUnary(math.Log) }

// Tanh returns the elementwise hyperbolic tangent.
func (a *Array) Tanh() *Array { return a.mapUnary(math.Tanh) }

// Scale returns the array with every element multiplied by c.
func (a *Array) Scale(c float64) *Array {
	return a.mapUnary(func(x float64) float64 { return c * x })
}

func (a *Array) mapUnary(f func(float64) float64) *Array {
	out := a.clone()
	for i, x := range out.data {
		out.data[i] = f(x)
	}
	return out
}

// Add returns the broadcast elementwise sum a + b.
func (a *Array) Add(b *Array) (*Array, error) { return zip(a, b, func(x, y float64) float64 { return x + y }) }

// Sub returns the broadcast elementwise difference a - b.
func (a *Array) Sub(b *Array) (*Array, error) { return zip(a, b, func(x, y float64) float64 { return x - y }) }

// Mul returns the broadcast elementwise product a * b.
func (a *Array) Mul(b *Array) (*Array, error) { return zip(a, b, func(x, y float64) float64 { return x * y }) }

// Div returns the broadcast elementwise quotient a / b.
func (a *Array) Div(b *Array) (*Array, error) { return zip(a, b, func(x, y float64) float64 { return x / y }) }

// EqualMask returns a broadcast elementwise indicator: 1 where a == b, 0 elsewhere.
func (a *Array) EqualMask(b *Array) (*Array, error) {
	return zip(a, b, func(x, y float64) float64 {
		if x == y {
			return 1
		}
		return 0
	})
}

// broadcastShapes computes the common shape of two operands under
// NumPy-style broadcasting: shapes are right-aligned, and each pair of
// dimensions must be equal or one of them must be 1.
func broadcastShapes(a, b []int) ([]int, error) {
	n := max(len(a), len(b))
	out := make([]int, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if i >= n-len(a) {
			da = a[i-(n-len(a))]
		}
		if i >= n-len(b) {
			db = b[i-(n-len(b))]
		}
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, fmt.Errorf("tensor: shapes %v and %v are not broadcast-compatible", a, b)
		}
	}
	return out, nil
}

// BroadcastTo materializes the array at the given broadcast shape.
func (a *Array) BroadcastTo(shape []int) (*Array, error) {
	common, err := broadcastShapes(a.shape, shape)
	if err != nil || !slices.Equal(common, shape) {
		return nil, fmt.Errorf("tensor: cannot broadcast shape %v to %v", a.shape, shape)
	}
	out := Zeros(shape)
	if out.Size() == 0 {
		return out, nil
	}
	srcStrides := broadcastStrides(a.shape, shape)
	idx := make([]int, len(shape))
	for i := 0; ; i++ {
		off := 0
		for d, x := range idx {
			off += x * srcStrides[d]
		}
		out.data[i] = a.data[off]
		if !nextIndex(idx, shape) {
			break
		}
	}
	return out, nil
}

// broadcastStrides returns strides into the source array for each dimension
// of the destination shape, with stride 0 for broadcast dimensions.
func broadcastStrides(src, dst []int) []int {
	st := stridesOf(src)
	out := make([]int, len(dst))
	shift := len(dst) - len(src)
	for i := range dst {
		if i < shift {
			continue
		}
		if src[i-shift] != 1 {
			out[i] = st[i-shift]
		}
	}
	return out
}

func zip(a, b *Array, f func(x, y float64) float64) (*Array, error) {
	shape, err := broadcastShapes(a.shape, b.shape)
	if err != nil {
		return nil, err
	}
	out := Zeros(shape)
	if out.Size() == 0 {
		return out, nil
	}
	sa := broadcastStrides(a.shape, shape)
	sb := broadcastStrides(b.shape, shape)
	idx := make([]int, len(shape))
	for i := 0; ; i++ {
		offA, offB := 0, 0
		for d, x := range idx {
			offA += x * sa[d]
			offB += x * sb[d]
		}
		out.data[i] = f(a.data[offA], b.data[offB])
		if !nextIndex(idx, shape) {
			break
		}
	}
	return out, nil
}
