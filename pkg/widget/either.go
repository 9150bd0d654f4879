package widget

import "github.com/aretw0/tgflow/pkg/chat"

// Either composes two widgets over one field: events go to Primary first,
// and only its rejections fall through to Secondary. Typical use pairs a
// button widget with a free-text fallback.
type Either struct {
	Primary   Widget
	Secondary Widget
}

func (e *Either) Prompt() string { return e.Primary.Prompt() }

func (e *Either) NeedsCallback() bool {
	return e.Primary.NeedsCallback() || e.Secondary.NeedsCallback()
}

func (e *Either) Render(ctx *Context) (string, *chat.Keyboard) {
	text, kb := e.Primary.Render(ctx)
	if sp := e.Secondary.Prompt(); sp != "" {
		text += "\n\n" + sp
	}
	return text, kb
}

func (e *Either) HandleMessage(msg *chat.Message, ctx *Context) Result {
	res := e.Primary.HandleMessage(msg, ctx)
	if _, rejected := res.(Reject); rejected {
		return e.Secondary.HandleMessage(msg, ctx)
	}
	return res
}

func (e *Either) HandleCallback(value string, ctx *Context) Result {
	res := e.Primary.HandleCallback(value, ctx)
	if _, rejected := res.(Reject); rejected {
		return e.Secondary.HandleCallback(value, ctx)
	}
	return res
}
