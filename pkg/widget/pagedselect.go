package widget

import (
	"fmt"

	"github.com/aretw0/tgflow/pkg/chat"
)

// PagedSelect presents a long option list one page at a time. The working
// value is the current page index; a tapped option commits its key.
type PagedSelect struct {
	Ask      string
	Columns  int
	PageSize int
	Options  []Option
}

func (p *PagedSelect) pageSize() int {
	if p.PageSize == 0 {
		return 6
	}
	return p.PageSize
}

func (p *PagedSelect) pages() int {
	size := p.pageSize()
	n := (len(p.Options) + size - 1) / size
	if n < 1 {
		n = 1
	}
	return n
}

func (p *PagedSelect) page(ctx *Context) int {
	page := ctx.Int(0)
	if page < 0 {
		page = 0
	}
	if last := p.pages() - 1; page > last {
		page = last
	}
	return page
}

func (p *PagedSelect) Prompt() string      { return p.Ask }
func (p *PagedSelect) NeedsCallback() bool { return true }

func (p *PagedSelect) Render(ctx *Context) (string, *chat.Keyboard) {
	page, size, total := p.page(ctx), p.pageSize(), p.pages()
	start := page * size
	end := start + size
	if end > len(p.Options) {
		end = len(p.Options)
	}

	kb := chat.NewInline()
	var buttons []chat.Button
	for _, o := range p.Options[start:end] {
		buttons = append(buttons, chat.Button{Text: o.Label, Data: ctx.Callback(o.Key)})
	}
	buildGrid(kb, buttons, p.Columns)

	if total > 1 {
		if page > 0 {
			kb.Text(ctx.Theme.Nav.PrevLabel, ctx.Callback("si:prev"))
		}
		kb.Text(fmt.Sprintf(ctx.Theme.Display.PageFormat, page+1, total), ctx.Callback("si:noop"))
		if page < total-1 {
			kb.Text(ctx.Theme.Nav.NextLabel, ctx.Callback("si:next"))
		}
		kb.Row()
	}
	return p.Ask, kb
}

func (p *PagedSelect) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (p *PagedSelect) HandleCallback(value string, ctx *Context) Result {
	page := p.page(ctx)
	switch value {
	case "si:prev":
		if page > 0 {
			page--
		}
		return Stay{Value: page}
	case "si:next":
		if page < p.pages()-1 {
			page++
		}
		return Stay{Value: page}
	case "si:noop":
		return NoOp{}
	}
	if label, ok := LookupOption(p.Options, value); ok {
		return Advance{Value: value, Summary: "Selected: " + label}
	}
	return NoOp{}
}
