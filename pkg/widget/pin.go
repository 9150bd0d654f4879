package widget

import (
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Pin collects a fixed-length digit code on an inline numpad. Secret mode
// masks entered digits.
type Pin struct {
	Ask      string
	Length   int
	Mask     string
	EmptyDot string
	// Visible disables masking. The zero value keeps the code hidden.
	Visible bool
}

func (p *Pin) config() (length int, mask, empty string) {
	length, mask, empty = p.Length, p.Mask, p.EmptyDot
	if length == 0 {
		length = 4
	}
	if mask == "" {
		mask = "●"
	}
	if empty == "" {
		empty = "○"
	}
	return
}

func (p *Pin) Prompt() string      { return p.Ask }
func (p *Pin) NeedsCallback() bool { return true }

func (p *Pin) display(digits string) string {
	length, mask, empty := p.config()
	cells := make([]string, 0, length)
	for i := 0; i < length; i++ {
		switch {
		case i >= len(digits):
			cells = append(cells, empty)
		case p.Visible:
			cells = append(cells, string(digits[i]))
		default:
			cells = append(cells, mask)
		}
	}
	return strings.Join(cells, " ")
}

func (p *Pin) Render(ctx *Context) (string, *chat.Keyboard) {
	digits := ctx.String("")
	text := p.Ask + "\n\n" + p.display(digits)

	kb := chat.NewInline()
	for d := 1; d <= 9; d++ {
		kb.Text(string(rune('0'+d)), ctx.Callback("pin:"+string(rune('0'+d))))
		if d%3 == 0 {
			kb.Row()
		}
	}
	kb.Text("⌫", ctx.Callback("pin:del")).
		Text("0", ctx.Callback("pin:0")).
		Text(ctx.Theme.Action.Done, ctx.Callback("pin:ok")).
		Row()
	return text, kb
}

func (p *Pin) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (p *Pin) HandleCallback(value string, ctx *Context) Result {
	length, mask, _ := p.config()
	digits := ctx.String("")
	switch value {
	case "pin:del":
		if digits == "" {
			return NoOp{}
		}
		return Stay{Value: digits[:len(digits)-1]}
	case "pin:ok":
		if len(digits) < length {
			return Reject{Message: ctx.Theme.Errors.EnterPin}
		}
		summary := digits
		if !p.Visible {
			summary = strings.Repeat(mask, length)
		}
		return Advance{Value: digits, Summary: summary}
	}
	if d, ok := strings.CutPrefix(value, "pin:"); ok && len(d) == 1 && d[0] >= '0' && d[0] <= '9' {
		if len(digits) < length {
			return Stay{Value: digits + d}
		}
		return NoOp{}
	}
	return NoOp{}
}
