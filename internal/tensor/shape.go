package tensor

import (
	"fmt"
	"slices"
)

// Reshape returns the array reinterpreted at a new shape of equal size.
func (a *Array) Reshape(shape []int) (*Array, error) {
	if sizeOf(shape) != len(a.data) {
		return nil, fmt.Errorf("tensor: cannot reshape %v (size %d) to %v", a.shape, len(a.data), shape)
	}
	return &Array{shape: slices.Clone(shape), data: slices.Clone(a.data)}, nil
}

// Transpose permutes the array's dimensions by perm.
func (a *Array) Transpose(perm []int) (*Array, error) {
	if len(perm) != len(a.shape) {
		return nil, fmt.Errorf("tensor: permutation %v does not match rank %d", perm, len(a.shape))
	}
	seen := make([]bool, len(perm))
	outShape := make([]int, len(perm))
	for i, p := range perm {
		if p < 0 || p >= len(perm) || seen[p] {
			return nil, fmt.Errorf("tensor: invalid permutation %v", perm)
		}
		seen[p] = true
		outShape[i] = a.shape[p]
	}
	out := Zeros(outShape)
	if out.Size() == 0 {
		return out, nil
	}
	srcStrides := stridesOf(a.shape)
	idx := make([]int, len(outShape))
	for i := 0; ; i++ {
		off := 0
		for d, x := range idx {
			off += x * srcStrides[perm[d]]
		}
		out.data[i] = a.data[off]
		if !nextIndex(idx, outShape) {
			break
		}
	}
	return out, nil
}

// Reverse flips the array along the given axes.
func (a *Array) Reverse(axes []int) (*Array, error) {
	flip := make([]bool, len(a.shape))
	for _, ax := range axes {
		if ax < 0 || ax >= len(a.shape) {
			return nil, fmt.Errorf("tensor: reverse axis %d out of range for shape %v", ax, a.shape)
		}
		flip[ax] = true
	}
	out := Zeros(a.shape)
	if out.Size() == 0 {
		return out, nil
	}
	st := stridesOf(a.shape)
	idx := make([]int, len(a.shape))
	for i := 0; ; i++ {
		off := 0
		for d, x := range idx {
			if flip[d] {
				x = a.shape[d] - 1 - x
			}
			off += x * st[d]
		}
		out.data[i] = a.data[off]
		if !nextIndex(idx, a.shape) {
			break
		}
	}
	return out, nil
}

// Slice extracts the half-open hyperrectangle [starts, limits).
func (a *Array) Slice(starts, limits []int) (*Array, error) {
	if len(starts) != len(a.shape) || len(limits) != len(a.shape) {
		return nil, fmt.Errorf("tensor: slice bounds rank does not match shape %v", a.shape)
	}
	outShape := make([]int, len(a.shape))
	for i := range a.shape {
		if starts[i] < 0 || limits[i] > a.shape[i] || starts[i] > limits[i] {
			return nil, fmt.Errorf("tensor: slice [%v, %v) out of bounds for shape %v", starts, limits, a.shape)
		}
		outShape[i] = limits[i] - starts[i]
	}
	out := Zeros(outShape)
	if out.Size() == 0 {
		return out, nil
	}
	st := stridesOf(a.shape)
	idx := make([]int, len(outShape))
	for i := 0; ; i++ {
		off := 0
		for d, x := range idx {
			off += (starts[d] + x) * st[d]
		}
		out.data[i] = a.data[off]
		if !nextIndex(idx, outShape) {
			break
		}
	}
	return out, nil
}

// Concat joins the arrays along the given axis. All operands must agree on
// every other dimension.
func Concat(axis int, xs ...*Array) (*Array, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("tensor: concat of zero arrays")
	}
	rank := xs[0].Rank()
	if axis < 0 || axis >= rank {
		return nil, fmt.Errorf("tensor: concat axis %d out of range for rank %d", axis, rank)
	}
	outShape := xs[0].Shape()
	for _, x := range xs[1:] {
		if x.Rank() != rank {
			return nil, fmt.Errorf("tensor: concat rank mismatch: %v vs %v", xs[0].shape, x.shape)
		}
		for d := 0; d < rank; d++ {
			if d == axis {
				continue
			}
			if x.shape[d] != outShape[d] {
				return nil, fmt.Errorf("tensor: concat shape mismatch on axis %d: %v vs %v", d, xs[0].shape, x.shape)
			}
		}
		outShape[axis] += x.shape[axis]
	}
	out := Zeros(outShape)
	outStrides := stridesOf(outShape)
	base := 0
	for _, x := range xs {
		if x.Size() == 0 {
			continue
		}
		idx := make([]int, rank)
		for i := 0; ; i++ {
			off := 0
			for d, v := range idx {
				if d == axis {
					v += base
				}
				off += v * outStrides[d]
			}
			out.data[off] = x.data[i]
			if !nextIndex(idx, x.shape) {
				break
			}
		}
		base += x.shape[axis]
	}
	return out, nil
}

// Pad surrounds the array with zeros: lo[d] leading and hi[d] trailing
// zeros along each dimension d.
func (a *Array) Pad(lo, hi []int) (*Array, error) {
	if len(lo) != len(a.shape) || len(hi) != len(a.shape) {
		return nil, fmt.Errorf("tensor: pad config rank does not match shape %v", a.shape)
	}
	outShape := make([]int, len(a.shape))
	for d := range a.shape {
		if lo[d] < 0 || hi[d] < 0 {
			return nil, fmt.Errorf("tensor: negative padding %v/%v", lo, hi)
		}
		outShape[d] = lo[d] + a.shape[d] + hi[d]
	}
	out := Zeros(outShape)
	if a.Size() == 0 {
		return out, nil
	}
	outStrides := stridesOf(outShape)
	idx := make([]int, len(a.shape))
	for i := 0; ; i++ {
		off := 0
		for d, x := range idx {
			off += (lo[d] + x) * outStrides[d]
		}
		out.data[off] = a.data[i]
		if !nextIndex(idx, a.shape) {
			break
		}
	}
	return out, nil
}
