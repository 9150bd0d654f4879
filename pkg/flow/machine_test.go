package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMsg struct {
	chatID int64
	msgID  int64
	text   string
	kb     *chat.Keyboard
}

// fakeTransport records every outbound call for assertions.
type fakeTransport struct {
	nextID   int64
	sent     []fakeMsg
	edited   []fakeMsg
	deleted  []int64
	answered []string
	editErr  error
}

func (f *fakeTransport) SendMessage(_ context.Context, chatID int64, text string, kb *chat.Keyboard) (int64, error) {
	f.nextID++
	f.sent = append(f.sent, fakeMsg{chatID: chatID, msgID: f.nextID, text: text, kb: kb})
	return f.nextID, nil
}

func (f *fakeTransport) EditMessage(_ context.Context, chatID, messageID int64, text string, kb *chat.Keyboard) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edited = append(f.edited, fakeMsg{chatID: chatID, msgID: messageID, text: text, kb: kb})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _, messageID int64) error {
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, text string, _ bool) error {
	f.answered = append(f.answered, callbackID+"|"+text)
	return nil
}

func (f *fakeTransport) lastSent(t *testing.T) fakeMsg {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func textMsg(text string) *chat.Message {
	return &chat.Message{ID: 100, ChatID: 1, FromID: 7, Text: text}
}

func press(m *Machine, msgID int64, value string) *chat.Callback {
	return &chat.Callback{
		ID:        "cb1",
		ChatID:    1,
		FromID:    7,
		MessageID: msgID,
		Data:      widget.EncodeCallback(m.ID(), value),
	}
}

func taskDef() Definition {
	return Definition{
		Name:    "task",
		Command: "task",
		Fields: []Field{
			{Name: "title", Type: widget.TypeString, Widget: &widget.Text{Ask: "Title?"}},
			{Name: "qty", Type: widget.TypeInt, Widget: &widget.Counter{Ask: "Qty?", Min: 1, Max: 10, Default: 1}},
		},
		Finish: func(_ context.Context, v Values) (Outcome, error) {
			return Outcome{Text: fmt.Sprintf("Created %s x%d.", v.String("title", ""), v.Int("qty", 0))}, nil
		},
	}
}

func TestNew_Validation(t *testing.T) {
	finish := func(_ context.Context, _ Values) (Outcome, error) { return Outcome{}, nil }
	text := &widget.Text{Ask: "?"}

	cases := []struct {
		name string
		def  Definition
		want string
	}{
		{"no name", Definition{Command: "x", Finish: finish}, "needs a name"},
		{"no command", Definition{Name: "x", Finish: finish}, "needs a command"},
		{"no finish", Definition{Name: "x", Command: "x"}, "no finish handler"},
		{
			"duplicate field",
			Definition{Name: "x", Command: "x", Finish: finish, Fields: []Field{
				{Name: "a", Widget: text},
				{Name: "a", Widget: text},
			}},
			"duplicate field",
		},
		{
			"no prompted fields",
			Definition{Name: "x", Command: "x", Finish: finish, Fields: []Field{
				{Name: "a", CommandArg: true},
			}},
			"no widget-backed fields",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.def)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMachine_ID_StableAndDistinct(t *testing.T) {
	a, err := New(taskDef())
	require.NoError(t, err)
	b, err := New(taskDef())
	require.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID())
	assert.Len(t, a.ID(), 8)

	other := taskDef()
	other.Name = "order"
	c, err := New(other)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestMachine_RunToCompletion(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, "Title?", tp.lastSent(t).text)

	inst, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, "Groceries", inst.Slots["title"])
	assert.Equal(t, "Qty?", tp.lastSent(t).text)

	promptID := tp.lastSent(t).msgID
	inst, err = m.OnCallback(ctx, tp, inst, press(m, promptID, "counter:inc"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, 2, inst.Slots["qty"])
	require.NotEmpty(t, tp.edited)
	assert.Equal(t, promptID, tp.edited[len(tp.edited)-1].msgID)

	inst, err = m.OnCallback(ctx, tp, inst, press(m, promptID, "counter:done"))
	require.NoError(t, err)
	assert.Nil(t, inst)
	assert.Equal(t, "Qty?\n\nValue: 2", tp.edited[len(tp.edited)-1].text)
	assert.Equal(t, "Created Groceries x2.", tp.lastSent(t).text)
}

func TestMachine_PrefillCoercesArgs(t *testing.T) {
	var got Values
	def := Definition{
		Name:    "order",
		Command: "order",
		Fields: []Field{
			{Name: "count", Type: widget.TypeInt, CommandArg: true},
			{Name: "rush", Type: widget.TypeBool, CommandArg: true},
			{Name: "note", Type: widget.TypeString, Widget: &widget.Text{Ask: "Note?"}},
		},
		Finish: func(_ context.Context, v Values) (Outcome, error) {
			got = v
			return Outcome{Text: "ok"}, nil
		},
	}
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}

	inst, err := m.Start(t.Context(), tp, textMsg("/order 5 yes"), []string{"5", "yes"})
	require.NoError(t, err)
	require.NotNil(t, inst)

	inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("fragile"))
	require.NoError(t, err)
	assert.Nil(t, inst)
	assert.Equal(t, 5, got.Int("count", 0))
	assert.True(t, got.Bool("rush", false))
	assert.Equal(t, "fragile", got.String("note", ""))
}

func TestMachine_RejectPaths(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)

	// Text widget rejection is a plain message.
	inst, err = m.OnMessage(ctx, tp, inst, textMsg(""))
	require.NoError(t, err)
	assert.Equal(t, "Please send a text message.", tp.lastSent(t).text)

	inst, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)

	// A button widget re-renders its prompt under the rejection, and the
	// slots collected so far are untouched.
	inst, err = m.OnMessage(ctx, tp, inst, textMsg("three"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	last := tp.lastSent(t)
	assert.Equal(t, "Qty?\n\nPlease use the buttons above.", last.text)
	assert.NotNil(t, last.kb)
	assert.Equal(t, map[string]any{"title": "Groceries"}, inst.Slots)

	// An unknown token is acknowledged without output.
	sends := len(tp.sent)
	inst, err = m.OnCallback(ctx, tp, inst, press(m, 2, "counter:bogus"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Len(t, tp.sent, sends)
	assert.Equal(t, "cb1|", tp.answered[len(tp.answered)-1])
}

func TestMachine_ForeignCallbackIgnored(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)

	for _, data := range []string{"not json", widget.EncodeCallback("deadbeef", "counter:inc")} {
		cb := &chat.Callback{ID: "cb1", ChatID: 1, FromID: 7, Data: data}
		got, err := m.OnCallback(ctx, tp, inst, cb)
		require.NoError(t, err)
		assert.Same(t, inst, got)
	}
	assert.Empty(t, tp.answered)
	assert.Empty(t, tp.edited)
}

func TestMachine_SkipOptionalField(t *testing.T) {
	def := taskDef()
	def.Fields[0].Optional = true
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)

	inst, err = m.OnMessage(ctx, tp, inst, textMsg("/skip"))
	require.NoError(t, err)
	require.NotNil(t, inst)

	v, answered := inst.Slots["title"]
	assert.True(t, answered)
	assert.Nil(t, v)
	assert.Equal(t, "Qty?", tp.lastSent(t).text)
}

func TestMachine_SkipRequiresOptional(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)

	// On a required text field /skip is just an answer.
	inst, err = m.OnMessage(ctx, tp, inst, textMsg("/skip"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, "/skip", inst.Slots["title"])
}

func TestMachine_BackClearsPreviousAnswer(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)
	inst, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)

	inst, err = m.Back(ctx, tp, inst, textMsg("/back"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	_, answered := inst.Slots["title"]
	assert.False(t, answered)
	assert.Equal(t, 0, inst.Step)
	assert.Equal(t, "Title?", tp.lastSent(t).text)

	// At the first field back just re-prompts.
	inst, err = m.Back(ctx, tp, inst, textMsg("/back"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, "Title?", tp.lastSent(t).text)
}

func TestMachine_LaunchModes(t *testing.T) {
	t.Run("standard treats the command as input", func(t *testing.T) {
		m, err := New(taskDef())
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
		require.NoError(t, err)
		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
		require.NoError(t, err)

		// Re-issuing the command reaches the counter widget as text and
		// is rejected; the collected answer survives.
		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("/task"))
		require.NoError(t, err)
		require.NotNil(t, inst)
		assert.Equal(t, "Groceries", inst.Slots["title"])
		assert.Equal(t, "Qty?\n\nPlease use the buttons above.", tp.lastSent(t).text)
	})

	t.Run("standard command text can answer a text field", func(t *testing.T) {
		m, err := New(taskDef())
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
		require.NoError(t, err)

		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("/task"))
		require.NoError(t, err)
		assert.Equal(t, "/task", inst.Slots["title"])
	})

	t.Run("exclusive refuses", func(t *testing.T) {
		def := taskDef()
		def.LaunchMode = LaunchExclusive
		m, err := New(def)
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
		require.NoError(t, err)
		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
		require.NoError(t, err)

		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("/task"))
		require.NoError(t, err)
		require.NotNil(t, inst)
		assert.Equal(t, "Already in /task. Send /cancel to abort.", tp.lastSent(t).text)
		assert.Equal(t, "Groceries", inst.Slots["title"])
	})

	t.Run("single top re-renders", func(t *testing.T) {
		def := taskDef()
		def.LaunchMode = LaunchSingleTop
		m, err := New(def)
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
		require.NoError(t, err)
		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
		require.NoError(t, err)

		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("/task"))
		require.NoError(t, err)
		require.NotNil(t, inst)
		assert.Equal(t, "Qty?", tp.lastSent(t).text)
		assert.Equal(t, "Groceries", inst.Slots["title"])
	})

	t.Run("reset starts over", func(t *testing.T) {
		def := taskDef()
		def.LaunchMode = LaunchReset
		m, err := New(def)
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
		require.NoError(t, err)
		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
		require.NoError(t, err)

		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("/task"))
		require.NoError(t, err)
		require.NotNil(t, inst)
		assert.Empty(t, inst.Slots)
		assert.Equal(t, "Title?", tp.lastSent(t).text)
	})

	t.Run("prefix does not relaunch", func(t *testing.T) {
		def := taskDef()
		def.LaunchMode = LaunchExclusive
		m, err := New(def)
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
		require.NoError(t, err)

		// "/taskforce" is an answer, not a relaunch.
		inst, err = m.OnMessage(t.Context(), tp, inst, textMsg("/taskforce"))
		require.NoError(t, err)
		assert.Equal(t, "/taskforce", inst.Slots["title"])
	})
}

func TestMachine_ProgressPrefix(t *testing.T) {
	def := taskDef()
	def.Progress = true
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}

	inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
	require.NoError(t, err)
	assert.Equal(t, "█░ 1/2\n\nTitle?", tp.lastSent(t).text)

	_, err = m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
	require.NoError(t, err)
	assert.Equal(t, "██ 2/2\n\nQty?", tp.lastSent(t).text)
}

func TestMachine_SummaryScreen(t *testing.T) {
	def := taskDef()
	def.Summary = true
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)
	inst, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)

	promptID := tp.lastSent(t).msgID
	inst, err = m.OnCallback(ctx, tp, inst, press(m, promptID, "counter:done"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.True(t, inst.SummaryPending)
	review := tp.lastSent(t)
	assert.Equal(t, "Review your answers:\n\n  Title: Groceries\n  Qty: 1", review.text)
	require.NotNil(t, review.kb)

	// Text is refused while the review screen is up.
	inst, err = m.OnMessage(ctx, tp, inst, textMsg("wait"))
	require.NoError(t, err)
	require.NotNil(t, inst)
	assert.Equal(t, "Please use the buttons above.", tp.lastSent(t).text)

	// A stray widget press is swallowed.
	inst, err = m.OnCallback(ctx, tp, inst, press(m, promptID, "counter:inc"))
	require.NoError(t, err)
	require.NotNil(t, inst)

	inst, err = m.OnCallback(ctx, tp, inst, press(m, review.msgID, summaryToken))
	require.NoError(t, err)
	assert.Nil(t, inst)
	assert.Equal(t, "Created Groceries x1.", tp.lastSent(t).text)
}

func TestMachine_WhenGatesField(t *testing.T) {
	var got Values
	def := Definition{
		Name:    "signup",
		Command: "signup",
		Fields: []Field{
			{Name: "newsletter", Type: widget.TypeBool, Widget: &widget.Confirm{Ask: "Subscribe?"}},
			{
				Name:   "email",
				Widget: &widget.Text{Ask: "Email?"},
				When:   func(v Values) bool { return v.Bool("newsletter", false) },
			},
		},
		Finish: func(_ context.Context, v Values) (Outcome, error) {
			got = v
			return Outcome{Text: "done"}, nil
		},
	}
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/signup"), nil)
	require.NoError(t, err)

	inst, err = m.OnCallback(ctx, tp, inst, press(m, 1, "no"))
	require.NoError(t, err)
	assert.Nil(t, inst)
	assert.Equal(t, false, got["newsletter"])
	assert.Nil(t, got["email"])
	assert.Equal(t, "done", tp.lastSent(t).text)
}

func TestMachine_DynamicOptions(t *testing.T) {
	opts := []widget.Option{{Key: "p1", Label: "Alpha"}, {Key: "p2", Label: "Beta"}}
	newDef := func(provider OptionsProvider, optional bool) Definition {
		return Definition{
			Name:    "assign",
			Command: "assign",
			Fields: []Field{
				{
					Name:     "project",
					Widget:   &widget.DynamicSelect{Ask: "Project?"},
					Optional: optional,
					Options:  provider,
				},
				{Name: "note", Widget: &widget.Text{Ask: "Note?"}},
			},
			Finish: func(_ context.Context, _ Values) (Outcome, error) {
				return Outcome{Text: "ok"}, nil
			},
		}
	}

	t.Run("resolves and selects", func(t *testing.T) {
		provider := func(_ context.Context, _ Values) ([]widget.Option, error) { return opts, nil }
		m, err := New(newDef(provider, false))
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/assign"), nil)
		require.NoError(t, err)
		assert.Equal(t, opts, inst.Options["project"])

		inst, err = m.OnCallback(t.Context(), tp, inst, press(m, 1, "p2"))
		require.NoError(t, err)
		require.NotNil(t, inst)
		assert.Equal(t, "p2", inst.Slots["project"])
		assert.Equal(t, "Note?", tp.lastSent(t).text)
	})

	t.Run("empty optional auto-skips", func(t *testing.T) {
		provider := func(_ context.Context, _ Values) ([]widget.Option, error) { return nil, nil }
		m, err := New(newDef(provider, true))
		require.NoError(t, err)
		tp := &fakeTransport{}

		inst, err := m.Start(t.Context(), tp, textMsg("/assign"), nil)
		require.NoError(t, err)
		require.NotNil(t, inst)

		v, answered := inst.Slots["project"]
		assert.True(t, answered)
		assert.Nil(t, v)
		assert.Equal(t, "Note?", tp.lastSent(t).text)
	})

	t.Run("provider error shows empty fallback", func(t *testing.T) {
		provider := func(_ context.Context, _ Values) ([]widget.Option, error) {
			return nil, errors.New("backend down")
		}
		m, err := New(newDef(provider, false))
		require.NoError(t, err)
		tp := &fakeTransport{}

		_, err = m.Start(t.Context(), tp, textMsg("/assign"), nil)
		require.NoError(t, err)
		assert.Equal(t, "Project?\n\n(no options available)", tp.lastSent(t).text)
	})
}

func TestMachine_ShowEdit(t *testing.T) {
	def := taskDef()
	def.ShowMode = ShowEdit
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)
	require.Len(t, tp.sent, 1)
	assert.Equal(t, int64(1), inst.MessageID)

	// The next prompt rewrites the same message.
	inst, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)
	require.Len(t, tp.sent, 1)
	require.NotEmpty(t, tp.edited)
	assert.Equal(t, int64(1), tp.edited[len(tp.edited)-1].msgID)
	assert.Equal(t, "Qty?", tp.edited[len(tp.edited)-1].text)
}

func TestMachine_ShowEdit_FallsBackWhenEditFails(t *testing.T) {
	def := taskDef()
	def.ShowMode = ShowEdit
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{editErr: errors.New("message gone")}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)

	inst, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)
	require.Len(t, tp.sent, 2)
	assert.Equal(t, "Qty?", tp.lastSent(t).text)
	assert.Equal(t, int64(2), inst.MessageID)
}

func TestMachine_ShowDeleteAndSend(t *testing.T) {
	def := taskDef()
	def.ShowMode = ShowDeleteAndSend
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := m.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)

	_, err = m.OnMessage(ctx, tp, inst, textMsg("Groceries"))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, tp.deleted)
	require.Len(t, tp.sent, 2)
	assert.Equal(t, "Qty?", tp.lastSent(t).text)
}

func TestMachine_SubFlowStack(t *testing.T) {
	stack := NewStack()
	newMachine := func(name string, out Outcome) *Machine {
		m, err := New(Definition{
			Name:    name,
			Command: name,
			Fields: []Field{
				{Name: "v", Widget: &widget.Text{Ask: "?"}},
			},
			Finish: func(_ context.Context, _ Values) (Outcome, error) { return out, nil },
		}, WithStack(stack))
		require.NoError(t, err)
		return m
	}
	parent := newMachine("task", Outcome{Text: "Task created.", NextCommand: "detail", SubFlow: true})
	child := newMachine("detail", Outcome{Text: "Detail saved."})
	tp := &fakeTransport{}
	ctx := t.Context()

	inst, err := parent.Start(ctx, tp, textMsg("/task"), nil)
	require.NoError(t, err)
	inst, err = parent.OnMessage(ctx, tp, inst, textMsg("x"))
	require.NoError(t, err)
	assert.Nil(t, inst)
	assert.Equal(t, "Task created.\n\nSend /detail to continue.", tp.lastSent(t).text)
	assert.Equal(t, 1, stack.Depth("7"))

	inst, err = child.Start(ctx, tp, textMsg("/detail"), nil)
	require.NoError(t, err)
	inst, err = child.OnMessage(ctx, tp, inst, textMsg("y"))
	require.NoError(t, err)
	assert.Nil(t, inst)
	assert.Equal(t, "Detail saved.\n\nSend /task to go back.", tp.lastSent(t).text)
	assert.Equal(t, 0, stack.Depth("7"))
}

func TestMachine_Cancel(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}

	require.NoError(t, m.Cancel(t.Context(), tp, 1))
	assert.Equal(t, "Cancelled.", tp.lastSent(t).text)
}

func TestMachine_FinishErrorKeepsInstance(t *testing.T) {
	def := taskDef()
	def.Fields = def.Fields[:1]
	def.Finish = func(_ context.Context, _ Values) (Outcome, error) {
		return Outcome{}, errors.New("storage unavailable")
	}
	m, err := New(def)
	require.NoError(t, err)
	tp := &fakeTransport{}

	inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
	require.NoError(t, err)

	got, err := m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
	require.Error(t, err)
	assert.NotNil(t, got)
}

func TestMachine_TransitionsDoNotMutateInput(t *testing.T) {
	m, err := New(taskDef())
	require.NoError(t, err)
	tp := &fakeTransport{}

	inst, err := m.Start(t.Context(), tp, textMsg("/task"), nil)
	require.NoError(t, err)

	next, err := m.OnMessage(t.Context(), tp, inst, textMsg("Groceries"))
	require.NoError(t, err)
	require.NotNil(t, next)
	_, before := inst.Slots["title"]
	assert.False(t, before)
	assert.Equal(t, "Groceries", next.Slots["title"])
}

func TestInstance_EncodeDecodeRoundTrip(t *testing.T) {
	inst := NewInstance()
	inst.Slots["title"] = "Groceries"
	inst.Slots["qty"] = 2
	inst.Step = 1
	inst.Entered = true
	inst.MessageID = 42

	data, err := inst.Encode()
	require.NoError(t, err)
	got, err := DecodeInstance(data)
	require.NoError(t, err)

	assert.Equal(t, "Groceries", got.Slots["title"])
	assert.Equal(t, 2, Values(got.Slots).Int("qty", 0))
	assert.Equal(t, 1, got.Step)
	assert.True(t, got.Entered)
	assert.Equal(t, int64(42), got.MessageID)

	_, err = DecodeInstance([]byte("{broken"))
	require.Error(t, err)
}

func TestProgressPrefix_CapsBarAtTen(t *testing.T) {
	fields := make([]Field, 0, 12)
	for i := 0; i < 12; i++ {
		fields = append(fields, Field{
			Name:   fmt.Sprintf("f%d", i),
			Widget: &widget.Text{Ask: "?"},
		})
	}
	m, err := New(Definition{
		Name: "long", Command: "long", Fields: fields,
		Finish: func(_ context.Context, _ Values) (Outcome, error) { return Outcome{}, nil },
	})
	require.NoError(t, err)

	prefix := m.progressPrefix(0)
	bar, rest, _ := strings.Cut(prefix, " ")
	assert.Len(t, []rune(bar), 10)
	assert.Equal(t, "1/12\n\n", rest)
}
