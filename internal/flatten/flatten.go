// Package flatten decomposes nested output containers into a flat leaf
// sequence plus a structure definition, and rebuilds them.
//
// Containers are []any slices and map[string]any maps (map children are
// visited in sorted key order so flattening is deterministic). Every other
// value is a leaf. It is used only at the orchestration output boundary;
// inputs to a propagation stay atomic.
package flatten

import (
	"fmt"
	"sort"
)

type kind int

const (
	kindLeaf kind = iota
	kindSlice
	kindMap
)

// Def describes the container structure stripped from a value during
// Flatten. It can rebuild an equal structure around a new leaf sequence.
type Def struct {
	kind     kind
	keys     []string // map children, parallel to children
	children []*Def
}

// Leaf reports whether the definition is a single leaf.
func (d *Def) Leaf() bool { return d.kind == kindLeaf }

// NumLeaves returns the number of leaves the definition covers.
func (d *Def) NumLeaves() int {
	if d.kind == kindLeaf {
		return 1
	}
	n := 0
	for _, c := range d.children {
		n += c.NumLeaves()
	}
	return n
}

// Flatten strips containers from v, returning its leaves in deterministic
// order together with the structure definition.
func Flatten(v any) ([]any, *Def) {
	var leaves []any
	def := walk(v, &leaves)
	return leaves, def
}

func walk(v any, leaves *[]any) *Def {
	switch t := v.(type) {
	case []any:
		d := &Def{kind: kindSlice, children: make([]*Def, len(t))}
		for i, e := range t {
			d.children[i] = walk(e, leaves)
		}
		return d
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := &Def{kind: kindMap, keys: keys, children: make([]*Def, len(keys))}
		for i, k := range keys {
			d.children[i] = walk(t[k], leaves)
		}
		return d
	default:
		*leaves = append(*leaves, v)
		return &Def{kind: kindLeaf}
	}
}

// Unflatten rebuilds the structure described by d around leaves.
// The leaf count must match the definition exactly.
func (d *Def) Unflatten(leaves []any) (any, error) {
	out, rest, err := d.build(leaves)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("flatten: %d leaves left over after unflatten", len(rest))
	}
	return out, nil
}

func (d *Def) build(leaves []any) (any, []any, error) {
	switch d.kind {
	case kindLeaf:
		if len(leaves) == 0 {
			return nil, nil, fmt.Errorf("flatten: ran out of leaves during unflatten")
		}
		return leaves[0], leaves[1:], nil
	case kindSlice:
		out := make([]any, len(d.children))
		var err error
		for i, c := range d.children {
			out[i], leaves, err = c.build(leaves)
			if err != nil {
				return nil, nil, err
			}
		}
		return out, leaves, nil
	default:
		out := make(map[string]any, len(d.keys))
		var err error
		for i, c := range d.children {
			out[d.keys[i]], leaves, err = c.build(leaves)
			if err != nil {
				return nil, nil, err
			}
		}
		return out, leaves, nil
	}
}
