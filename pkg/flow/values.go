package flow

import "encoding/json"

// Values is a snapshot of a flow's answers keyed by field name. Unanswered
// fields map to nil in the finish snapshot; intermediate snapshots omit
// them entirely.
type Values map[string]any

// String returns the value under name as a string, or def.
func (v Values) String(name, def string) string {
	if s, ok := v[name].(string); ok {
		return s
	}
	return def
}

// Int returns the value under name as an int, tolerating the float64 shape
// a JSON round-trip produces, or def.
func (v Values) Int(name string, def int) int {
	switch n := v[name].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return def
}

// Bool returns the value under name as a bool, or def.
func (v Values) Bool(name string, def bool) bool {
	if b, ok := v[name].(bool); ok {
		return b
	}
	return def
}

// Strings returns the value under name as a string slice.
func (v Values) Strings(name string) []string {
	switch s := v[name].(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Has reports whether name holds a non-nil value.
func (v Values) Has(name string) bool {
	val, ok := v[name]
	return ok && val != nil
}
