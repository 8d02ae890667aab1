package harness

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/jetprop/internal/tensor"
)

// Render produces a deterministic text form of a result, suitable for
// golden comparison.
func Render(r *Result) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", r.Scenario.Name)
	fmt.Fprintf(&buf, "program: %s\n", r.Program.Name)
	for _, out := range r.Outputs {
		fmt.Fprintf(&buf, "output %s shape=%v\n", out.Name, out.Primal.Shape())
		fmt.Fprintf(&buf, "  primal: %s\n", renderData(out.Primal))
		for k, c := range out.Coeffs {
			fmt.Fprintf(&buf, "  series[%d]: %s\n", k, renderData(c))
		}
	}
	return buf.String()
}

func renderData(a *tensor.Array) string {
	parts := make([]string, 0, a.Size())
	for _, v := range a.Data() {
		parts = append(parts, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}

// RunWithGolden executes a scenario, checks its expectations, and compares
// the rendered result against a golden file under testdata/.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *Scenario) {
	t.Helper()
	result, err := Run(s)
	if err != nil {
		t.Fatalf("scenario %s: %v", s.Name, err)
	}
	if err := Check(result); err != nil {
		t.Fatal(err)
	}
	g := goldie.New(t)
	g.Assert(t, s.Name, []byte(Render(result)))
}
