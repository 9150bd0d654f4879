package flow

import (
	"context"

	"github.com/aretw0/tgflow/pkg/widget"
)

// OptionsProvider resolves the choices for a dynamic widget at prompt time.
// values holds the flow's committed values so providers can depend on
// earlier answers. Returning an empty slice is valid; the field then shows
// its empty fallback, or is skipped outright when optional.
type OptionsProvider func(ctx context.Context, values Values) ([]widget.Option, error)

// Field declares one flow field: its name, value type, the widget that
// prompts for it, and the rules governing when and how it is asked.
//
// A field with a nil Widget is never prompted; it only receives a value
// through Prefilled injection, typically from a command argument.
type Field struct {
	Name string
	Type widget.ValueType

	// Widget prompts for the value. Nil makes the field prefill-only.
	Widget widget.Widget

	// CommandArg binds the field to the next positional argument of the
	// launch command. A CommandArg field without a widget is implicitly
	// prefill-only.
	CommandArg bool

	// Optional fields may be skipped with /skip and auto-skip when a
	// dynamic provider yields nothing.
	Optional bool

	// Validators run against raw text answers in declaration order.
	Validators []widget.Validator

	// When gates the field: a false return hides it for this run. Nil
	// means always active.
	When func(values Values) bool

	// Options names the dynamic option provider for provider-backed
	// widgets.
	Options OptionsProvider
}

// prompted reports whether the field participates in the prompt sequence.
func (f *Field) prompted() bool { return f.Widget != nil }

// active reports whether the field is live given current values.
func (f *Field) active(values Values) bool {
	return f.When == nil || f.When(values)
}
