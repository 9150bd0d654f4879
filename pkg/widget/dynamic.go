package widget

import "github.com/aretw0/tgflow/pkg/chat"

// DynamicSelect is Select over provider-resolved options. When the
// provider returned nothing it renders the empty fallback and rejects all
// interaction.
type DynamicSelect struct {
	Ask     string
	Columns int
}

func (d *DynamicSelect) Prompt() string      { return d.Ask }
func (d *DynamicSelect) NeedsCallback() bool { return true }

func (d *DynamicSelect) Render(ctx *Context) (string, *chat.Keyboard) {
	if len(ctx.Options) == 0 {
		return noOptionsText(d.Ask, ctx), nil
	}
	return d.Ask, optionKeyboard(ctx.Options, d.Columns, ctx)
}

func (d *DynamicSelect) HandleMessage(_ *chat.Message, ctx *Context) Result {
	if len(ctx.Options) == 0 {
		return noOptionsReject(ctx)
	}
	return rejectText(ctx)
}

func (d *DynamicSelect) HandleCallback(value string, ctx *Context) Result {
	if label, ok := LookupOption(ctx.Options, value); ok {
		return Advance{Value: value, Summary: "Selected: " + label}
	}
	return NoOp{}
}

// DynamicRadio is Radio over provider-resolved options.
type DynamicRadio struct {
	Ask     string
	Columns int
}

func (d *DynamicRadio) Prompt() string      { return d.Ask }
func (d *DynamicRadio) NeedsCallback() bool { return true }

func (d *DynamicRadio) Render(ctx *Context) (string, *chat.Keyboard) {
	if len(ctx.Options) == 0 {
		return noOptionsText(d.Ask, ctx), nil
	}
	return d.Ask, radioKeyboard(ctx.Options, d.Columns, ctx.String(""), "dr", ctx)
}

func (d *DynamicRadio) HandleMessage(_ *chat.Message, ctx *Context) Result {
	if len(ctx.Options) == 0 {
		return noOptionsReject(ctx)
	}
	return rejectText(ctx)
}

func (d *DynamicRadio) HandleCallback(value string, ctx *Context) Result {
	return handleRadioCB(value, "dr", ctx.Options, ctx)
}

// DynamicMultiSelect is MultiSelect over provider-resolved options.
type DynamicMultiSelect struct {
	Ask         string
	Columns     int
	MinSelected int
	MaxSelected int
}

func (d *DynamicMultiSelect) Prompt() string      { return d.Ask }
func (d *DynamicMultiSelect) NeedsCallback() bool { return true }

func (d *DynamicMultiSelect) Render(ctx *Context) (string, *chat.Keyboard) {
	if len(ctx.Options) == 0 {
		return noOptionsText(d.Ask, ctx), nil
	}
	selected := SelectedKeys(ctx.String(""))
	return d.Ask, checkedKeyboard(ctx.Options, d.Columns, selected, "dms", ctx)
}

func (d *DynamicMultiSelect) HandleMessage(_ *chat.Message, ctx *Context) Result {
	if len(ctx.Options) == 0 {
		return noOptionsReject(ctx)
	}
	return rejectText(ctx)
}

func (d *DynamicMultiSelect) HandleCallback(value string, ctx *Context) Result {
	return handleCheckedCB(value, "dms", ctx.Options, d.MinSelected, d.MaxSelected, ctx)
}
