// Package program loads declarative jet programs from YAML and compiles
// them into executable propagation functions.
//
// A program names its inputs (primal values plus Taylor coefficient rows),
// a straight-line sequence of primitive applications, and which bindings
// to return. Programs exist so the CLI and the scenario harness can drive
// propagations without writing Go.
package program

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Program is one declarative propagation: inputs, a straight-line body,
// and the named outputs.
type Program struct {
	// Name identifies the program in traces and test output.
	Name string `yaml:"name"`

	// Description is free-form documentation.
	Description string `yaml:"description,omitempty"`

	// Inputs are the differentiated arguments, in positional order.
	Inputs []Input `yaml:"inputs"`

	// Steps are primitive applications executed in order.
	Steps []Step `yaml:"steps"`

	// Outputs names the bindings returned by the program.
	Outputs []string `yaml:"outputs"`
}

// Input is one atomic array argument with its Taylor series.
type Input struct {
	Name string `yaml:"name"`

	// Shape of the primal array; empty means scalar.
	Shape []int `yaml:"shape"`

	// Values are the primal elements in row-major order.
	Values []float64 `yaml:"values"`

	// Series holds one row per Taylor order 1..K; each row carries the
	// coefficient elements in row-major order at the input's shape.
	Series [][]float64 `yaml:"series"`
}

// Step is one primitive application binding its result to Out.
type Step struct {
	Out    string         `yaml:"out"`
	Op     string         `yaml:"op"`
	Args   []string       `yaml:"args"`
	Params map[string]any `yaml:"params,omitempty"`
}

// Load reads and parses a program file.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return Parse(data)
}

// Parse decodes a program from YAML bytes.
func Parse(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse program: %w", err)
	}
	return &p, nil
}

// Order returns the truncation order K declared by the program's inputs,
// assuming Validate has passed.
func (p *Program) Order() int {
	if len(p.Inputs) == 0 {
		return 0
	}
	return len(p.Inputs[0].Series)
}
