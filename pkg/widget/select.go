package widget

import (
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Select presents a fixed option grid; tapping a choice commits it.
type Select struct {
	Ask     string
	Columns int
	Options []Option
}

func (s *Select) Prompt() string      { return s.Ask }
func (s *Select) NeedsCallback() bool { return true }

func (s *Select) Render(ctx *Context) (string, *chat.Keyboard) {
	return s.Ask, optionKeyboard(s.Options, s.Columns, ctx)
}

func (s *Select) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (s *Select) HandleCallback(value string, ctx *Context) Result {
	if label, ok := LookupOption(s.Options, value); ok {
		return Advance{Value: value, Summary: "Selected: " + label}
	}
	return NoOp{}
}

// EnumSelect derives a Select from a closed value set, title-casing each
// value into its label.
func EnumSelect(ask string, columns int, values []string) *Select {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Key: v, Label: TitleLabel(v)})
	}
	return &Select{Ask: ask, Columns: columns, Options: opts}
}

// TitleLabel turns a machine name like "in_progress" into "In Progress".
func TitleLabel(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Confirm is a two-button yes/no question committing a boolean.
type Confirm struct {
	Ask      string
	YesLabel string
	NoLabel  string
}

func (c *Confirm) Prompt() string      { return c.Ask }
func (c *Confirm) NeedsCallback() bool { return true }

func (c *Confirm) labels(ctx *Context) (string, string) {
	yes, no := c.YesLabel, c.NoLabel
	if yes == "" {
		yes = ctx.Theme.Action.Yes
	}
	if no == "" {
		no = ctx.Theme.Action.No
	}
	return yes, no
}

func (c *Confirm) Render(ctx *Context) (string, *chat.Keyboard) {
	yes, no := c.labels(ctx)
	kb := chat.NewInline().
		Text(yes, ctx.Callback("yes")).
		Text(no, ctx.Callback("no")).
		Row()
	return c.Ask, kb
}

func (c *Confirm) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.UseButtons}
}

func (c *Confirm) HandleCallback(value string, ctx *Context) Result {
	if value != "yes" && value != "no" {
		return NoOp{}
	}
	yes, no := c.labels(ctx)
	label := no
	if value == "yes" {
		label = yes
	}
	return Advance{Value: value == "yes", Summary: "Selected: " + label}
}

// Toggle is a one-button boolean switch; each tap flips the value and the
// flip commits it.
type Toggle struct {
	Ask      string
	OnLabel  string
	OffLabel string
}

func (t *Toggle) Prompt() string      { return t.Ask }
func (t *Toggle) NeedsCallback() bool { return true }

func (t *Toggle) state(ctx *Context) (bool, string, string) {
	on, off := t.OnLabel, t.OffLabel
	if on == "" {
		on = "On"
	}
	if off == "" {
		off = "Off"
	}
	return ctx.Bool(false), on, off
}

func (t *Toggle) Render(ctx *Context) (string, *chat.Keyboard) {
	current, on, off := t.state(ctx)
	glyph, label := ctx.Theme.Selection.ToggleOff, off
	if current {
		glyph, label = ctx.Theme.Selection.ToggleOn, on
	}
	kb := chat.NewInline().Text(glyph+" "+label, ctx.Callback("toggle")).Row()
	return t.Ask, kb
}

func (t *Toggle) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (t *Toggle) HandleCallback(value string, ctx *Context) Result {
	if value != "toggle" {
		return NoOp{}
	}
	current, on, off := t.state(ctx)
	next := !current
	label := off
	if next {
		label = on
	}
	return Advance{Value: next, Summary: label}
}
