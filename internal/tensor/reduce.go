package tensor

import (
	"fmt"
	"math"
)

// ReduceSum sums over the given axes. Reduced axes are removed from the
// output shape.
func (a *Array) ReduceSum(axes []int) (*Array, error) {
	return a.reduce(axes, 0, func(acc, x float64) float64 { return acc + x })
}

// ReduceMax takes the maximum over the given axes. Reduced axes are removed
// from the output shape.
func (a *Array) ReduceMax(axes []int) (*Array, error) {
	return a.reduce(axes, math.Inf(-1), func(acc, x float64) float64 { return math.Max(acc, x) })
}

func (a *Array) reduce(axes []int, init float64, f func(acc, x float64) float64) (*Array, error) {
	reduced := make([]bool, len(a.shape))
	for _, ax := range axes {
		if ax < 0 || ax >= len(a.shape) {
			return nil, fmt.Errorf("tensor: reduction axis %d out of range for shape %v", ax, a.shape)
		}
		if reduced[ax] {
			return nil, fmt.Errorf("tensor: duplicate reduction axis %d", ax)
		}
		reduced[ax] = true
	}
	var outShape []int
	for d, n := range a.shape {
		if !reduced[d] {
			outShape = append(outShape, n)
		}
	}
	out := Full(outShape, init)
	if a.Size() == 0 {
		return out, nil
	}
	outStrides := stridesOf(outShape)
	idx := make([]int, len(a.shape))
	for i := 0; ; i++ {
		off, k := 0, 0
		for d, x := range idx {
			if reduced[d] {
				continue
			}
			off += x * outStrides[k]
			k++
		}
		out.data[off] = f(out.data[off], a.data[i])
		if !nextIndex(idx, a.shape) {
			break
		}
	}
	return out, nil
}

// WindowSum computes a stride-1 valid moving-window sum of the given width
// along one axis. The output is shorter by width-1 along that axis.
func (a *Array) WindowSum(axis, width int) (*Array, error) {
	if axis < 0 || axis >= len(a.shape) {
		return nil, fmt.Errorf("tensor: window axis %d out of range for shape %v", axis, a.shape)
	}
	if width < 1 || width > a.shape[axis] {
		return nil, fmt.Errorf("tensor: window width %d invalid for axis length %d", width, a.shape[axis])
	}
	outShape := a.Shape()
	outShape[axis] = a.shape[axis] - width + 1
	out := Zeros(outShape)
	if out.Size() == 0 {
		return out, nil
	}
	srcStrides := stridesOf(a.shape)
	idx := make([]int, len(outShape))
	for i := 0; ; i++ {
		off := 0
		for d, x := range idx {
			off += x * srcStrides[d]
		}
		acc := 0.0
		for w := 0; w < width; w++ {
			acc += a.data[off+w*srcStrides[axis]]
		}
		out.data[i] = acc
		if !nextIndex(idx, outShape) {
			break
		}
	}
	return out, nil
}
