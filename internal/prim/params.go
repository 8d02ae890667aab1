package prim

import "fmt"

// Params holds the non-differentiated attributes of a primitive
// application. Values are set by the caller that builds the application;
// kernels read them through the typed getters below.
type Params map[string]any

// Int reads an integer parameter.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing parameter %q", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("parameter %q is %T, want int", key, v)
	}
}

// Ints reads an integer-list parameter.
func (p Params) Ints(key string) ([]int, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", key)
	}
	switch ns := v.(type) {
	case []int:
		return ns, nil
	case []any:
		out := make([]int, len(ns))
		for i, e := range ns {
			switch n := e.(type) {
			case int:
				out[i] = n
			case int64:
				out[i] = int(n)
			case float64:
				out[i] = int(n)
			default:
				return nil, fmt.Errorf("parameter %q element %d is %T, want int", key, i, e)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("parameter %q is %T, want []int", key, v)
	}
}
