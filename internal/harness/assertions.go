package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/jetprop/internal/tensor"
)

// AssertionError is returned when a scenario expectation fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Scenario string
	Output   string
	Where    string // "primal" or "series[k]"
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s output %q %s\n", e.Scenario, e.Output, e.Where)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	return buf.String()
}

// Check verifies every expectation of the result's scenario. The first
// failing expectation is returned; nil means all passed.
func Check(r *Result) error {
	s := r.Scenario
	for _, exp := range s.Expect {
		out, ok := r.Output(exp.Output)
		if !ok {
			return &AssertionError{
				Scenario: s.Name,
				Output:   exp.Output,
				Where:    "output",
				Expected: "present in program outputs",
				Actual:   "not produced",
			}
		}
		if err := compare(s, exp.Output, "primal", exp.Primal, out.Primal); err != nil {
			return err
		}
		for k, row := range exp.Series {
			if k >= len(out.Coeffs) {
				return &AssertionError{
					Scenario: s.Name,
					Output:   exp.Output,
					Where:    fmt.Sprintf("series[%d]", k),
					Expected: fmt.Sprintf("order >= %d", k+1),
					Actual:   fmt.Sprintf("order %d", len(out.Coeffs)),
				}
			}
			if err := compare(s, exp.Output, fmt.Sprintf("series[%d]", k), row, out.Coeffs[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

func compare(s *Scenario, output, where string, want []float64, got *tensor.Array) error {
	data := got.Data()
	if len(data) != len(want) {
		return &AssertionError{
			Scenario: s.Name,
			Output:   output,
			Where:    where,
			Expected: fmt.Sprintf("%d elements", len(want)),
			Actual:   fmt.Sprintf("%d elements (shape %v)", len(data), got.Shape()),
		}
	}
	for i := range want {
		if math.Abs(data[i]-want[i]) > s.Tolerance {
			return &AssertionError{
				Scenario: s.Name,
				Output:   output,
				Where:    where,
				Expected: fmt.Sprintf("element %d = %g (tolerance %g)", i, want[i], s.Tolerance),
				Actual:   fmt.Sprintf("%g", data[i]),
			}
		}
	}
	return nil
}
