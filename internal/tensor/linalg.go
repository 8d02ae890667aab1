package tensor

import "fmt"

// Gather selects rows along axis 0 at the positions named by indices.
// indices must be rank-1; its values are truncated to integers. The output
// shape is [len(indices), trailing dims of a...].
func (a *Array) Gather(indices *Array) (*Array, error) {
	if a.Rank() == 0 {
		return nil, fmt.Errorf("tensor: gather from rank-0 array")
	}
	if indices.Rank() != 1 {
		return nil, fmt.Errorf("tensor: gather indices must be rank-1, got shape %v", indices.shape)
	}
	rowLen := len(a.data) / a.shape[0]
	outShape := a.Shape()
	outShape[0] = indices.Size()
	out := Zeros(outShape)
	for i, v := range indices.data {
		row := int(v)
		if row < 0 || row >= a.shape[0] {
			return nil, fmt.Errorf("tensor: gather index %d out of range [0, %d)", row, a.shape[0])
		}
		copy(out.data[i*rowLen:(i+1)*rowLen], a.data[row*rowLen:(row+1)*rowLen])
	}
	return out, nil
}

// Dot contracts the last axis of a with the first axis of b. Supported
// rank combinations are vector·vector (scalar result), matrix·vector,
// vector·matrix, and matrix·matrix.
func (a *Array) Dot(b *Array) (*Array, error) {
	if a.Rank() < 1 || a.Rank() > 2 || b.Rank() < 1 || b.Rank() > 2 {
		return nil, fmt.Errorf("tensor: dot supports rank 1 and 2 operands, got %v · %v", a.shape, b.shape)
	}
	k := a.shape[a.Rank()-1]
	if b.shape[0] != k {
		return nil, fmt.Errorf("tensor: dot contraction mismatch: %v · %v", a.shape, b.shape)
	}
	m := 1
	if a.Rank() == 2 {
		m = a.shape[0]
	}
	n := 1
	if b.Rank() == 2 {
		n = b.shape[1]
	}
	var outShape []int
	if a.Rank() == 2 {
		outShape = append(outShape, m)
	}
	if b.Rank() == 2 {
		outShape = append(outShape, n)
	}
	out := Zeros(outShape)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			acc := 0.0
			for t := 0; t < k; t++ {
				acc += a.data[i*k+t] * b.data[t*n+j]
			}
			out.data[i*n+j] = acc
		}
	}
	return out, nil
}

// Conv1D computes the valid cross-correlation of a rank-1 signal with a
// rank-1 kernel: out[i] = Σ_j a[i+j] * k[j].
func (a *Array) Conv1D(kernel *Array) (*Array, error) {
	if a.Rank() != 1 || kernel.Rank() != 1 {
		return nil, fmt.Errorf("tensor: conv1d needs rank-1 operands, got %v and %v", a.shape, kernel.shape)
	}
	kw := kernel.shape[0]
	if kw == 0 || kw > a.shape[0] {
		return nil, fmt.Errorf("tensor: conv1d kernel width %d invalid for signal length %d", kw, a.shape[0])
	}
	out := Zeros([]int{a.shape[0] - kw + 1})
	for i := range out.data {
		acc := 0.0
		for j := 0; j < kw; j++ {
			acc += a.data[i+j] * kernel.data[j]
		}
		out.data[i] = acc
	}
	return out, nil
}
