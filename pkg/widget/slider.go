package widget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Slider adjusts an integer with small and big step buttons over a drawn
// bar, committing on Done.
type Slider struct {
	Ask      string
	Min      int
	Max      int
	Step     int
	BigStep  int
	Default  int
	Presets  []int
	BarWidth int
	Filled   string
	Empty    string
}

func (s *Slider) config() (min, max, step, big, width int, filled, empty string) {
	min, max, step, big, width = s.Min, s.Max, s.Step, s.BigStep, s.BarWidth
	if max == 0 {
		max = 100
	}
	if step == 0 {
		step = 1
	}
	if big == 0 {
		big = 10
	}
	if width == 0 {
		width = 10
	}
	filled, empty = s.Filled, s.Empty
	if filled == "" {
		filled = "█"
	}
	if empty == "" {
		empty = "░"
	}
	return
}

func (s *Slider) bar(current int) string {
	min, max, _, _, width, filled, empty := s.config()
	span := max - min
	cells := 0
	if span > 0 {
		cells = (current - min) * width / span
	}
	if cells < 0 {
		cells = 0
	}
	if cells > width {
		cells = width
	}
	return strings.Repeat(filled, cells) + strings.Repeat(empty, width-cells)
}

func (s *Slider) clamp(v int) int {
	min, max, _, _, _, _, _ := s.config()
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func (s *Slider) Prompt() string      { return s.Ask }
func (s *Slider) NeedsCallback() bool { return true }

func (s *Slider) Render(ctx *Context) (string, *chat.Keyboard) {
	_, _, _, big, _, _, _ := s.config()
	current := ctx.Int(s.Default)
	text := fmt.Sprintf("%s\n\n%s %d", s.Ask, s.bar(current), current)

	kb := chat.NewInline().
		Text(ctx.Theme.Nav.Prev, ctx.Callback("sl:left")).
		Text(fmt.Sprintf("%s%d", ctx.Theme.Action.Decrement, big), ctx.Callback("sl:dec")).
		Text(strconv.Itoa(current), ctx.Callback("sl:noop")).
		Text(fmt.Sprintf("%s%d", ctx.Theme.Action.Increment, big), ctx.Callback("sl:inc")).
		Text(ctx.Theme.Nav.Next, ctx.Callback("sl:right")).
		Row()
	if len(s.Presets) > 0 {
		for _, p := range s.Presets {
			kb.Text(strconv.Itoa(p), ctx.Callback("sl:p:"+strconv.Itoa(p)))
		}
		kb.Row()
	}
	kb.Text(ctx.Theme.Action.Done, ctx.Callback("sl:done")).Row()
	return text, kb
}

func (s *Slider) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.UseSlider}
}

func (s *Slider) HandleCallback(value string, ctx *Context) Result {
	_, _, step, big, _, _, _ := s.config()
	current := ctx.Int(s.Default)
	switch value {
	case "sl:left":
		return Stay{Value: s.clamp(current - step)}
	case "sl:right":
		return Stay{Value: s.clamp(current + step)}
	case "sl:dec":
		return Stay{Value: s.clamp(current - big)}
	case "sl:inc":
		return Stay{Value: s.clamp(current + big)}
	case "sl:done":
		summary := fmt.Sprintf("%s %d", s.bar(current), current)
		return Advance{Value: current, Summary: summary}
	case "sl:noop":
		return NoOp{}
	}
	if raw, ok := strings.CutPrefix(value, "sl:p:"); ok {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return NoOp{}
		}
		return Stay{Value: s.clamp(p)}
	}
	return NoOp{}
}
