package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/tgflow/pkg/chat"
)

func testCtx() *Context {
	return &Context{
		FlowID:    "f1",
		FieldName: "answer",
		Theme:     DefaultTheme(),
	}
}

func TestText_CommitsString(t *testing.T) {
	w := &Text{Ask: "Name?"}
	res := w.HandleMessage(&chat.Message{Text: "Ada"}, testCtx())

	adv, ok := res.(Advance)
	assert.True(t, ok)
	assert.Equal(t, "Ada", adv.Value)
	assert.Equal(t, "Ada", adv.Summary)
}

func TestText_RejectsEmptyMessage(t *testing.T) {
	w := &Text{Ask: "Name?"}
	res := w.HandleMessage(&chat.Message{}, testCtx())

	rej, ok := res.(Reject)
	assert.True(t, ok)
	assert.Equal(t, "Please send a text message.", rej.Message)
}

func TestText_CoercesInt(t *testing.T) {
	w := &Text{Ask: "Age?"}
	ctx := testCtx()
	ctx.BaseType = TypeInt

	res := w.HandleMessage(&chat.Message{Text: " 42 "}, ctx)
	adv, ok := res.(Advance)
	assert.True(t, ok)
	assert.Equal(t, 42, adv.Value)

	res = w.HandleMessage(&chat.Message{Text: "not a number"}, ctx)
	rej, ok := res.(Reject)
	assert.True(t, ok)
	assert.Equal(t, "Please enter a number.", rej.Message)
}

func TestText_CoercesFloatAndBool(t *testing.T) {
	w := &Text{Ask: "?"}

	ctx := testCtx()
	ctx.BaseType = TypeFloat
	adv := w.HandleMessage(&chat.Message{Text: "3.14"}, ctx).(Advance)
	assert.Equal(t, 3.14, adv.Value)

	ctx.BaseType = TypeBool
	for raw, want := range map[string]bool{"yes": true, "TRUE": true, "1": true, "y": true, "no": false, "maybe": false} {
		adv := w.HandleMessage(&chat.Message{Text: raw}, ctx).(Advance)
		assert.Equal(t, want, adv.Value, "input %q", raw)
	}
}

func TestText_ValidatorsRunInOrder(t *testing.T) {
	w := &Text{Ask: "Code?"}
	ctx := testCtx()
	ctx.Validators = []Validator{
		MinLen(3),
		Pattern(`^[A-Z]+$`, "uppercase letters"),
	}

	rej := w.HandleMessage(&chat.Message{Text: "ab"}, ctx).(Reject)
	assert.Equal(t, "Invalid: Too short (min 3 chars). Try again:", rej.Message)

	rej = w.HandleMessage(&chat.Message{Text: "abcd"}, ctx).(Reject)
	assert.Equal(t, "Invalid: Invalid format (expected uppercase letters). Try again:", rej.Message)

	adv := w.HandleMessage(&chat.Message{Text: "ABCD"}, ctx).(Advance)
	assert.Equal(t, "ABCD", adv.Value)
}

func TestText_CallbackRejected(t *testing.T) {
	w := &Text{Ask: "Name?"}
	rej, ok := w.HandleCallback("anything", testCtx()).(Reject)
	assert.True(t, ok)
	assert.Equal(t, "Please send a text message.", rej.Message)
}

func TestMaxLen_CountsRunes(t *testing.T) {
	v := MaxLen(3)
	th := DefaultTheme()
	assert.Empty(t, v.Validate("äöü", th))
	assert.NotEmpty(t, v.Validate("äöüä", th))
}
