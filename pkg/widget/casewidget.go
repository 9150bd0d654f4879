package widget

import "github.com/aretw0/tgflow/pkg/chat"

// Case shows one of several text variants keyed by an earlier field's
// committed value, with an acknowledge button. The shown text is committed
// as the field value.
type Case struct {
	// Selector names the sibling field whose value picks the variant.
	Selector string
	Variants map[string]string
}

func (c *Case) Prompt() string      { return "" }
func (c *Case) NeedsCallback() bool { return true }

func (c *Case) text(ctx *Context) string {
	key, _ := ctx.State[c.Selector].(string)
	if key == "" {
		if v, ok := ctx.State[c.Selector]; ok && v != nil {
			key = FormatValue(v, ctx.Theme)
		}
	}
	if variant, ok := c.Variants[key]; ok {
		return variant
	}
	return "(no variant matched)"
}

func (c *Case) Render(ctx *Context) (string, *chat.Keyboard) {
	kb := chat.NewInline().Text(ctx.Theme.Action.OK, ctx.Callback("case:ok")).Row()
	return c.text(ctx), kb
}

func (c *Case) advance(ctx *Context) Result {
	text := c.text(ctx)
	summary := text
	if summary == "" {
		summary = "(none)"
	}
	return Advance{Value: text, Summary: summary}
}

func (c *Case) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return c.advance(ctx)
}

func (c *Case) HandleCallback(value string, ctx *Context) Result {
	if value == "case:ok" {
		return c.advance(ctx)
	}
	return NoOp{}
}
