package widget

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// ValueType names the coercion target for typed text widgets.
type ValueType int

const (
	TypeString ValueType = iota
	TypeInt
	TypeFloat
	TypeBool
)

// Option is one selectable choice: a stable key and its display label.
type Option struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// LookupOption returns the label for key, if present.
func LookupOption(opts []Option, key string) (string, bool) {
	for _, o := range opts {
		if o.Key == key {
			return o.Label, true
		}
	}
	return "", false
}

// callbackPayload is the wire shape of every widget callback.
type callbackPayload struct {
	Flow  string `json:"flow"`
	Value string `json:"value"`
}

// EncodeCallback builds the callback payload routing a button press back to
// the given flow.
func EncodeCallback(flowID, value string) string {
	b, _ := json.Marshal(callbackPayload{Flow: flowID, Value: value})
	return string(b)
}

// DecodeCallback parses a widget callback payload. ok is false for foreign
// or malformed data.
func DecodeCallback(data string) (flowID, value string, ok bool) {
	var p callbackPayload
	if err := json.Unmarshal([]byte(data), &p); err != nil || p.Flow == "" {
		return "", "", false
	}
	return p.Flow, p.Value, true
}

// Context carries everything a widget needs to render or react: the field's
// working value, its declaration metadata, sibling values and the theme. The
// engine builds a fresh Context per event.
type Context struct {
	FlowID    string
	FieldName string

	// Set reports whether the field slot holds a value; Value is that
	// value and may be nil for an explicitly skipped optional field.
	Set   bool
	Value any

	BaseType   ValueType
	Validators []Validator
	Optional   bool

	// State holds the flow's other committed values, keyed by field name.
	// Unset fields are absent.
	State map[string]any

	// Options holds resolved dynamic options for provider-backed fields,
	// in provider order.
	Options []Option

	Theme *Theme
}

// Callback wraps a widget token into this flow's callback payload.
func (c *Context) Callback(value string) string {
	return EncodeCallback(c.FlowID, value)
}

// String returns the working value as a string, or def.
func (c *Context) String(def string) string {
	if s, ok := c.Value.(string); ok {
		return s
	}
	return def
}

// Int returns the working value as an int, tolerating the float64 shape
// JSON round-trips produce, or def.
func (c *Context) Int(def int) int {
	switch v := c.Value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// Bool returns the working value as a bool, or def.
func (c *Context) Bool(def bool) bool {
	if b, ok := c.Value.(bool); ok {
		return b
	}
	return def
}

// Strings returns the working value as a string slice. JSON round-trips
// turn slices into []any; both shapes are accepted.
func (c *Context) Strings() []string {
	switch v := c.Value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// DecodeState decodes the working value into a widget state struct. Values
// loaded from a persisted session arrive as generic maps; in-memory values
// are the struct itself. Returns false when the slot holds neither.
func (c *Context) DecodeState(out any) bool {
	if !c.Set || c.Value == nil {
		return false
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return false
	}
	return dec.Decode(c.Value) == nil
}

// SelectedKeys splits a comma-joined selection value into its keys.
func SelectedKeys(joined string) map[string]bool {
	out := make(map[string]bool)
	if joined == "" {
		return out
	}
	start := 0
	for i := 0; i <= len(joined); i++ {
		if i == len(joined) || joined[i] == ',' {
			if i > start {
				out[joined[start:i]] = true
			}
			start = i + 1
		}
	}
	return out
}

// JoinKeys renders a selection set as a stable comma-joined string.
func JoinKeys(keys map[string]bool) string {
	list := make([]string, 0, len(keys))
	for k, on := range keys {
		if on {
			list = append(list, k)
		}
	}
	sort.Strings(list)
	joined := ""
	for i, k := range list {
		if i > 0 {
			joined += ","
		}
		joined += k
	}
	return joined
}

// FormatValue renders an arbitrary committed value for display, using the
// theme's placeholders for nil and booleans.
func FormatValue(v any, th *Theme) string {
	switch t := v.(type) {
	case nil:
		return th.Display.NoneValue
	case bool:
		if t {
			return th.Display.BoolTrue
		}
		return th.Display.BoolFalse
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []string:
		out := ""
		for i, s := range t {
			if i > 0 {
				out += ", "
			}
			out += s
		}
		return out
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return th.Display.NoneValue
		}
		return string(b)
	}
}
