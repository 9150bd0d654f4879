package widget

import (
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Text is the free-form answer widget. It validates the raw message, then
// coerces it to the field's base type.
type Text struct {
	Ask string
}

func (t *Text) Prompt() string      { return t.Ask }
func (t *Text) NeedsCallback() bool { return false }

func (t *Text) Render(_ *Context) (string, *chat.Keyboard) {
	return t.Ask, nil
}

func (t *Text) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Text == "" {
		return Reject{Message: ctx.Theme.Errors.SendText}
	}
	if errMsg := validateText(msg.Text, ctx); errMsg != "" {
		return Reject{Message: "Invalid: " + errMsg + ". Try again:"}
	}
	switch ctx.BaseType {
	case TypeInt:
		n, err := strconv.Atoi(strings.TrimSpace(msg.Text))
		if err != nil {
			return Reject{Message: ctx.Theme.Errors.SendNumber}
		}
		return Advance{Value: n, Summary: msg.Text}
	case TypeFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(msg.Text), 64)
		if err != nil {
			return Reject{Message: ctx.Theme.Errors.SendNumber}
		}
		return Advance{Value: f, Summary: msg.Text}
	case TypeBool:
		lower := strings.ToLower(strings.TrimSpace(msg.Text))
		truthy := lower == "yes" || lower == "true" || lower == "1" || lower == "y"
		return Advance{Value: truthy, Summary: msg.Text}
	default:
		return Advance{Value: msg.Text, Summary: msg.Text}
	}
}

func (t *Text) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendText}
}
