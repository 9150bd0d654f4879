package widget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Number accepts a typed number inside a range, optionally offering quick-
// select shortcut buttons.
type Number struct {
	Ask       string
	Min       float64
	Max       float64
	Shortcuts []int
}

func (n *Number) bounds() (min, max float64) {
	min, max = n.Min, n.Max
	if max == 0 {
		max = 999999
	}
	return
}

func (n *Number) Prompt() string      { return n.Ask }
func (n *Number) NeedsCallback() bool { return len(n.Shortcuts) > 0 }

func (n *Number) Render(ctx *Context) (string, *chat.Keyboard) {
	if len(n.Shortcuts) == 0 {
		return n.Ask, nil
	}
	kb := chat.NewInline()
	var buttons []chat.Button
	for _, v := range n.Shortcuts {
		buttons = append(buttons, chat.Button{
			Text: strconv.Itoa(v),
			Data: ctx.Callback("num:" + strconv.Itoa(v)),
		})
	}
	buildGrid(kb, buttons, 4)
	return n.Ask + "\n\nQuick select or type a number:", kb
}

func (n *Number) accept(raw string, ctx *Context) Result {
	min, max := n.bounds()
	raw = strings.TrimSpace(raw)
	if ctx.BaseType == TypeFloat {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Reject{Message: ctx.Theme.Errors.SendNumber}
		}
		if f < min || f > max {
			return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.RangeError, min, max)}
		}
		return Advance{Value: f, Summary: raw}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return Reject{Message: ctx.Theme.Errors.SendNumber}
	}
	if float64(v) < min || float64(v) > max {
		return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.RangeError, int(min), int(max))}
	}
	return Advance{Value: v, Summary: raw}
}

func (n *Number) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Text == "" {
		return Reject{Message: ctx.Theme.Errors.SendNumber}
	}
	return n.accept(msg.Text, ctx)
}

func (n *Number) HandleCallback(value string, ctx *Context) Result {
	if raw, ok := strings.CutPrefix(value, "num:"); ok {
		return n.accept(raw, ctx)
	}
	return NoOp{}
}
