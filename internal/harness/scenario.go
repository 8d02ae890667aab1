// Package harness executes jet program scenarios and checks their numeric
// results against declared expectations, with optional golden snapshots of
// the rendered output.
package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario describes one propagation check: which program to run and what
// its outputs must be.
type Scenario struct {
	// Name identifies the scenario in test output and golden files.
	Name string `yaml:"name"`

	// Description is free-form documentation.
	Description string `yaml:"description,omitempty"`

	// Program is the program file path, relative to the scenario file.
	Program string `yaml:"program"`

	// Tolerance is the maximum absolute per-element deviation allowed.
	// Zero means exact comparison.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Expect holds one expectation per checked output.
	Expect []Expectation `yaml:"expect"`

	// dir is the scenario file's directory, for resolving Program.
	dir string
}

// Expectation pins one program output to expected numbers.
type Expectation struct {
	// Output names the program output binding to check.
	Output string `yaml:"output"`

	// Primal is the expected primal value in row-major order.
	Primal []float64 `yaml:"primal"`

	// Series holds the expected coefficient rows for orders 1..K.
	// An omitted Series checks only the primal.
	Series [][]float64 `yaml:"series,omitempty"`
}

// Load reads a scenario from a YAML file. The program path inside the
// scenario is resolved relative to the scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s: name must not be empty", path)
	}
	if s.Program == "" {
		return nil, fmt.Errorf("scenario %s: program must not be empty", path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// ProgramPath returns the scenario's program path resolved against the
// scenario file's directory.
func (s *Scenario) ProgramPath() string {
	if filepath.IsAbs(s.Program) || s.dir == "" {
		return s.Program
	}
	return filepath.Join(s.dir, s.Program)
}
