package widget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Rating is a star scale. Tapping a value previews it; a confirm button
// commits.
type Rating struct {
	Ask      string
	MaxStars int
	Filled   string
	Empty    string
}

func (r *Rating) config() (max int, filled, empty string) {
	max, filled, empty = r.MaxStars, r.Filled, r.Empty
	if max == 0 {
		max = 5
	}
	if filled == "" {
		filled = "★"
	}
	if empty == "" {
		empty = "☆"
	}
	return
}

func (r *Rating) stars(current int) string {
	max, filled, empty := r.config()
	return strings.Repeat(filled, current) + strings.Repeat(empty, max-current)
}

func (r *Rating) Prompt() string      { return r.Ask }
func (r *Rating) NeedsCallback() bool { return true }

func (r *Rating) Render(ctx *Context) (string, *chat.Keyboard) {
	max, filled, _ := r.config()
	current := ctx.Int(0)

	text := r.Ask
	if current > 0 {
		text += "\n\n" + r.stars(current)
	}

	kb := chat.NewInline()
	for i := 1; i <= max; i++ {
		label := strconv.Itoa(i)
		if i <= current {
			label = filled
		}
		kb.Text(label, ctx.Callback("rate:"+strconv.Itoa(i)))
	}
	kb.Row()
	if current > 0 {
		kb.Text("Confirm "+r.stars(current), ctx.Callback("rate:done")).Row()
	}
	return text, kb
}

func (r *Rating) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (r *Rating) HandleCallback(value string, ctx *Context) Result {
	max, _, _ := r.config()
	current := ctx.Int(0)
	if value == "rate:done" {
		if current == 0 {
			return Reject{Message: ctx.Theme.Errors.SelectRating}
		}
		summary := fmt.Sprintf("%s (%d/%d)", r.stars(current), current, max)
		return Advance{Value: current, Summary: summary}
	}
	if raw, ok := strings.CutPrefix(value, "rate:"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > max {
			return NoOp{}
		}
		return Stay{Value: n}
	}
	return NoOp{}
}
