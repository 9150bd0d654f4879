package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tgflow/pkg/chat"
)

var colorOpts = []Option{
	{Key: "red", Label: "Red"},
	{Key: "green", Label: "Green"},
	{Key: "blue", Label: "Blue"},
}

func TestSelect_TapCommits(t *testing.T) {
	w := &Select{Ask: "Color?", Options: colorOpts}

	adv, ok := w.HandleCallback("green", testCtx()).(Advance)
	assert.True(t, ok)
	assert.Equal(t, "green", adv.Value)
	assert.Equal(t, "Selected: Green", adv.Summary)

	_, noop := w.HandleCallback("purple", testCtx()).(NoOp)
	assert.True(t, noop)
}

func TestSelect_RejectsText(t *testing.T) {
	w := &Select{Ask: "Color?", Options: colorOpts}
	rej := w.HandleMessage(&chat.Message{Text: "green"}, testCtx()).(Reject)
	assert.Equal(t, "Please use the buttons above.", rej.Message)
}

func TestEnumSelect_TitleCasesLabels(t *testing.T) {
	w := EnumSelect("Status?", 2, []string{"in_progress", "done"})
	assert.Equal(t, []Option{
		{Key: "in_progress", Label: "In Progress"},
		{Key: "done", Label: "Done"},
	}, w.Options)
}

func TestConfirm_CommitsBool(t *testing.T) {
	w := &Confirm{Ask: "Sure?"}

	adv := w.HandleCallback("yes", testCtx()).(Advance)
	assert.Equal(t, true, adv.Value)
	assert.Equal(t, "Selected: Yes", adv.Summary)

	adv = w.HandleCallback("no", testCtx()).(Advance)
	assert.Equal(t, false, adv.Value)

	_, noop := w.HandleCallback("maybe", testCtx()).(NoOp)
	assert.True(t, noop)
}

func TestToggle_FlipCommits(t *testing.T) {
	w := &Toggle{Ask: "Notifications?"}

	ctx := testCtx()
	adv := w.HandleCallback("toggle", ctx).(Advance)
	assert.Equal(t, true, adv.Value)
	assert.Equal(t, "On", adv.Summary)

	ctx.Set, ctx.Value = true, true
	adv = w.HandleCallback("toggle", ctx).(Advance)
	assert.Equal(t, false, adv.Value)
	assert.Equal(t, "Off", adv.Summary)
}

func TestRadio_RequiresSelectionBeforeDone(t *testing.T) {
	w := &Radio{Ask: "Color?", Options: colorOpts}

	rej := w.HandleCallback("radio:done", testCtx()).(Reject)
	assert.Equal(t, "Please select an option first.", rej.Message)

	stay := w.HandleCallback("radio:blue", testCtx()).(Stay)
	assert.Equal(t, "blue", stay.Value)

	ctx := testCtx()
	ctx.Set, ctx.Value = true, "blue"
	adv := w.HandleCallback("radio:done", ctx).(Advance)
	assert.Equal(t, "blue", adv.Value)
	assert.Equal(t, "Selected: Blue", adv.Summary)
}

func TestMultiSelect_TogglesAndJoins(t *testing.T) {
	w := &MultiSelect{Ask: "Colors?", Options: colorOpts}

	stay := w.HandleCallback("ms:red", testCtx()).(Stay)
	assert.Equal(t, "red", stay.Value)

	ctx := testCtx()
	ctx.Set, ctx.Value = true, "red"
	stay = w.HandleCallback("ms:blue", ctx).(Stay)
	assert.Equal(t, "blue,red", stay.Value)

	// Toggling off removes from the working set.
	ctx.Value = "blue,red"
	stay = w.HandleCallback("ms:red", ctx).(Stay)
	assert.Equal(t, "blue", stay.Value)
}

func TestMultiSelect_Bounds(t *testing.T) {
	w := &MultiSelect{Ask: "Colors?", Options: colorOpts, MinSelected: 1, MaxSelected: 2}

	rej := w.HandleCallback("ms:done", testCtx()).(Reject)
	assert.Equal(t, "Select at least 1", rej.Message)

	ctx := testCtx()
	ctx.Set, ctx.Value = true, "blue,red"
	rej = w.HandleCallback("ms:green", ctx).(Reject)
	assert.Equal(t, "Max 2 items", rej.Message)

	adv := w.HandleCallback("ms:done", ctx).(Advance)
	assert.Equal(t, "blue,red", adv.Value)
	assert.Equal(t, "Selected: Red, Blue", adv.Summary)
}

func TestPagedSelect_Navigation(t *testing.T) {
	opts := make([]Option, 0, 7)
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		opts = append(opts, Option{Key: k, Label: k})
	}
	w := &PagedSelect{Ask: "Pick:", PageSize: 3, Options: opts}

	stay := w.HandleCallback("si:next", testCtx()).(Stay)
	assert.Equal(t, 1, stay.Value)

	// The last page clamps.
	ctx := testCtx()
	ctx.Set, ctx.Value = true, 2
	stay = w.HandleCallback("si:next", ctx).(Stay)
	assert.Equal(t, 2, stay.Value)

	adv := w.HandleCallback("g", ctx).(Advance)
	assert.Equal(t, "g", adv.Value)
}

func TestPagedSelect_NavRowOnlyWhenPaged(t *testing.T) {
	small := &PagedSelect{Ask: "Pick:", Columns: 3, PageSize: 6, Options: colorOpts}
	_, kb := small.Render(testCtx())
	assert.Len(t, kb.Rows(), 1)

	big := &PagedSelect{Ask: "Pick:", Columns: 2, PageSize: 2, Options: colorOpts}
	_, kb = big.Render(testCtx())
	rows := kb.Rows()
	nav := rows[len(rows)-1]
	// First page: no prev button, indicator plus next.
	assert.Len(t, nav, 2)
	assert.Equal(t, "1/2", nav[0].Text)
}

func TestDynamicSelect_EmptyFallback(t *testing.T) {
	w := &DynamicSelect{Ask: "Pick a slot:"}

	ctx := testCtx()
	text, kb := w.Render(ctx)
	assert.Nil(t, kb)
	assert.Equal(t, "Pick a slot:\n\n(no options available)", text)

	rej := w.HandleMessage(&chat.Message{Text: "x"}, ctx).(Reject)
	assert.Equal(t, "No options available.", rej.Message)

	ctx.Optional = true
	text, _ = w.Render(ctx)
	assert.Contains(t, text, "Send /skip to continue.")
	rej = w.HandleMessage(&chat.Message{Text: "x"}, ctx).(Reject)
	assert.Equal(t, "No options available. Send /skip to skip.", rej.Message)
}

func TestDynamicSelect_UsesResolvedOptions(t *testing.T) {
	w := &DynamicSelect{Ask: "Pick:"}
	ctx := testCtx()
	ctx.Options = colorOpts

	adv := w.HandleCallback("red", ctx).(Advance)
	assert.Equal(t, "red", adv.Value)
	assert.Equal(t, "Selected: Red", adv.Summary)
}
