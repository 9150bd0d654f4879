package widget

import "github.com/aretw0/tgflow/pkg/chat"

// MultiSelect is a checkbox grid over a fixed option set. The working value
// is the sorted comma-joined key set; Done commits it.
type MultiSelect struct {
	Ask         string
	Columns     int
	MinSelected int
	MaxSelected int
	Options     []Option
}

func (m *MultiSelect) Prompt() string      { return m.Ask }
func (m *MultiSelect) NeedsCallback() bool { return true }

func (m *MultiSelect) Render(ctx *Context) (string, *chat.Keyboard) {
	selected := SelectedKeys(ctx.String(""))
	return m.Ask, checkedKeyboard(m.Options, m.Columns, selected, "ms", ctx)
}

func (m *MultiSelect) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (m *MultiSelect) HandleCallback(value string, ctx *Context) Result {
	return handleCheckedCB(value, "ms", m.Options, m.MinSelected, m.MaxSelected, ctx)
}

// Radio is a single-choice grid with an explicit Done commit, letting the
// user change their pick before committing.
type Radio struct {
	Ask     string
	Columns int
	Options []Option
}

func (r *Radio) Prompt() string      { return r.Ask }
func (r *Radio) NeedsCallback() bool { return true }

func (r *Radio) Render(ctx *Context) (string, *chat.Keyboard) {
	return r.Ask, radioKeyboard(r.Options, r.Columns, ctx.String(""), "radio", ctx)
}

func (r *Radio) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (r *Radio) HandleCallback(value string, ctx *Context) Result {
	return handleRadioCB(value, "radio", r.Options, ctx)
}
