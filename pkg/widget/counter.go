package widget

import (
	"strconv"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Counter is a stepped integer picker with increment and decrement buttons
// and an explicit Done commit.
type Counter struct {
	Ask     string
	Min     int
	Max     int
	Step    int
	Default int
}

func (c *Counter) bounds() (min, max, step int) {
	min, max, step = c.Min, c.Max, c.Step
	if max == 0 {
		max = 999999
	}
	if step == 0 {
		step = 1
	}
	return
}

func (c *Counter) Prompt() string      { return c.Ask }
func (c *Counter) NeedsCallback() bool { return true }

func (c *Counter) Render(ctx *Context) (string, *chat.Keyboard) {
	current := ctx.Int(c.Default)
	kb := chat.NewInline().
		Text(ctx.Theme.Action.Decrement, ctx.Callback("counter:dec")).
		Text(strconv.Itoa(current), ctx.Callback("counter:noop")).
		Text(ctx.Theme.Action.Increment, ctx.Callback("counter:inc")).
		Row().
		Text(ctx.Theme.Action.Done, ctx.Callback("counter:done")).
		Row()
	return c.Ask, kb
}

func (c *Counter) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (c *Counter) HandleCallback(value string, ctx *Context) Result {
	min, max, step := c.bounds()
	current := ctx.Int(c.Default)
	switch value {
	case "counter:inc":
		next := current + step
		if next > max {
			next = max
		}
		return Stay{Value: next}
	case "counter:dec":
		next := current - step
		if next < min {
			next = min
		}
		return Stay{Value: next}
	case "counter:done":
		return Advance{Value: current, Summary: "Value: " + strconv.Itoa(current)}
	default:
		return NoOp{}
	}
}
