// Package widget implements the interactive prompt catalog: every field in
// a conversation flow is backed by one Widget, which renders a prompt plus
// keyboard and folds inbound messages or button presses into a Result.
//
// Widgets are stateless; per-conversation state lives in the field slot the
// engine passes through Context. Multi-step widgets such as the date picker
// keep a small view struct in that slot until they commit.
package widget

import (
	"fmt"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Widget is one interactive field prompt. Implementations must be safe for
// concurrent use; all mutable state travels through the Context.
type Widget interface {
	// Prompt returns the field's question text.
	Prompt() string

	// NeedsCallback reports whether the widget answers through buttons.
	// The engine uses it to pick rejection delivery and re-render policy.
	NeedsCallback() bool

	// Render produces the message text and keyboard for the current
	// working value. A nil keyboard sends a plain message.
	Render(ctx *Context) (string, *chat.Keyboard)

	// HandleMessage folds an inbound text or media message.
	HandleMessage(msg *chat.Message, ctx *Context) Result

	// HandleCallback folds a button press. value is the widget token
	// already stripped of the flow envelope.
	HandleCallback(value string, ctx *Context) Result
}

// rejectText is the stock message-path rejection for button-only widgets.
func rejectText(ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.UseButtons}
}

// noOptionsText renders the empty-provider fallback for dynamic widgets.
func noOptionsText(prompt string, ctx *Context) string {
	text := prompt + "\n\n" + ctx.Theme.Display.NoOptions
	if ctx.Optional {
		text += " Send /skip to continue."
	}
	return text
}

// noOptionsReject rejects interaction while a dynamic widget has nothing to
// offer.
func noOptionsReject(ctx *Context) Result {
	msg := "No options available."
	if ctx.Optional {
		msg += " Send /skip to skip."
	}
	return Reject{Message: msg}
}

// buildGrid lays buttons out in rows of the given width. columns values
// below one collapse to one.
func buildGrid(kb *chat.Keyboard, buttons []chat.Button, columns int) {
	if columns < 1 {
		columns = 1
	}
	for i, b := range buttons {
		kb.Add(b)
		if (i+1)%columns == 0 {
			kb.Row()
		}
	}
	kb.Row()
}

// optionKeyboard builds a plain option grid: each button's token is the
// option key itself.
func optionKeyboard(opts []Option, columns int, ctx *Context) *chat.Keyboard {
	kb := chat.NewInline()
	buttons := make([]chat.Button, 0, len(opts))
	for _, o := range opts {
		buttons = append(buttons, chat.Button{Text: o.Label, Data: ctx.Callback(o.Key)})
	}
	buildGrid(kb, buttons, columns)
	return kb
}

// radioKeyboard builds a single-choice grid with radio glyphs and a Done
// button. prefix namespaces the tokens, e.g. "radio" or "dr".
func radioKeyboard(opts []Option, columns int, selected string, prefix string, ctx *Context) *chat.Keyboard {
	kb := chat.NewInline()
	buttons := make([]chat.Button, 0, len(opts))
	for _, o := range opts {
		glyph := ctx.Theme.Selection.RadioOff
		if o.Key == selected {
			glyph = ctx.Theme.Selection.RadioOn
		}
		buttons = append(buttons, chat.Button{
			Text: glyph + " " + o.Label,
			Data: ctx.Callback(prefix + ":" + o.Key),
		})
	}
	buildGrid(kb, buttons, columns)
	kb.Text(ctx.Theme.Action.Done, ctx.Callback(prefix+":done")).Row()
	return kb
}

// checkedKeyboard builds a multi-choice grid with checkbox glyphs and a
// Done button.
func checkedKeyboard(opts []Option, columns int, selected map[string]bool, prefix string, ctx *Context) *chat.Keyboard {
	kb := chat.NewInline()
	buttons := make([]chat.Button, 0, len(opts))
	for _, o := range opts {
		glyph := ctx.Theme.Selection.Unchecked
		if selected[o.Key] {
			glyph = ctx.Theme.Selection.Checked
		}
		buttons = append(buttons, chat.Button{
			Text: glyph + " " + o.Label,
			Data: ctx.Callback(prefix + ":" + o.Key),
		})
	}
	buildGrid(kb, buttons, columns)
	kb.Text(ctx.Theme.Action.Done, ctx.Callback(prefix+":done")).Row()
	return kb
}

// handleRadioCB implements the shared radio protocol over the given option
// set.
func handleRadioCB(value, prefix string, opts []Option, ctx *Context) Result {
	if value == prefix+":done" {
		selected := ctx.String("")
		label, ok := LookupOption(opts, selected)
		if selected == "" || !ok {
			return Reject{Message: ctx.Theme.Errors.SelectOption}
		}
		return Advance{Value: selected, Summary: "Selected: " + label}
	}
	if key, found := strings.CutPrefix(value, prefix+":"); found {
		if _, ok := LookupOption(opts, key); ok {
			return Stay{Value: key}
		}
	}
	return NoOp{}
}

// handleCheckedCB implements the shared multi-select protocol over the
// given option set.
func handleCheckedCB(value, prefix string, opts []Option, minSel, maxSel int, ctx *Context) Result {
	selected := SelectedKeys(ctx.String(""))
	if value == prefix+":done" {
		if len(selected) < minSel {
			return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.MinSelect, minSel)}
		}
		labels := ""
		for _, o := range opts {
			if selected[o.Key] {
				if labels != "" {
					labels += ", "
				}
				labels += o.Label
			}
		}
		if labels == "" {
			labels = "(none)"
		}
		return Advance{Value: JoinKeys(selected), Summary: "Selected: " + labels}
	}
	key, found := strings.CutPrefix(value, prefix+":")
	if !found {
		return NoOp{}
	}
	if _, ok := LookupOption(opts, key); !ok {
		return NoOp{}
	}
	if selected[key] {
		delete(selected, key)
	} else {
		if maxSel > 0 && len(selected) >= maxSel {
			return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.MaxItems, maxSel)}
		}
		selected[key] = true
	}
	return Stay{Value: JoinKeys(selected)}
}
