package flow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/internal/logging"
	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/widget"
)

// Configuration errors surfaced by New.
var (
	ErrNoPromptedFields = errors.New("flow declares no widget-backed fields")
	ErrNoFinish         = errors.New("flow declares no finish handler")
	ErrDuplicateField   = errors.New("duplicate field name")
)

// summaryToken is the callback value of the review screen's Done button.
const summaryToken = "_summary:ok"

// Machine drives one flow definition: it renders prompts, folds widget
// results into instance transitions, and runs the finish handler. A
// Machine is immutable after New and safe for concurrent use; all run
// state lives in the Instance.
type Machine struct {
	def      Definition
	id       string
	prompted []int
	theme    *widget.Theme
	logger   *slog.Logger
	stack    *Stack
}

// Option configures a Machine.
type Option func(*Machine)

// WithTheme overrides the default widget theme.
func WithTheme(th *widget.Theme) Option {
	return func(m *Machine) {
		if th != nil {
			m.theme = th
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStack attaches the shared sub-flow return stack.
func WithStack(s *Stack) Option {
	return func(m *Machine) { m.stack = s }
}

// New validates the definition and compiles it into a Machine.
func New(def Definition, opts ...Option) (*Machine, error) {
	if def.Name == "" {
		return nil, fmt.Errorf("flow definition needs a name")
	}
	if def.Command == "" {
		return nil, fmt.Errorf("flow %q: definition needs a command", def.Name)
	}
	if def.Finish == nil {
		return nil, fmt.Errorf("flow %q: %w", def.Name, ErrNoFinish)
	}

	seen := make(map[string]bool, len(def.Fields))
	var prompted []int
	for i, f := range def.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("flow %q: field %d has no name", def.Name, i)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("flow %q: %w: %s", def.Name, ErrDuplicateField, f.Name)
		}
		seen[f.Name] = true
		if f.prompted() {
			prompted = append(prompted, i)
		}
	}
	if len(prompted) == 0 {
		return nil, fmt.Errorf("flow %q: %w", def.Name, ErrNoPromptedFields)
	}

	sum := sha256.Sum256([]byte(def.Name))
	m := &Machine{
		def:      def,
		id:       hex.EncodeToString(sum[:])[:8],
		prompted: prompted,
		theme:    widget.DefaultTheme(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ID returns the flow's stable callback-routing identifier.
func (m *Machine) ID() string { return m.id }

// Command returns the launch command without the leading slash.
func (m *Machine) Command() string { return m.def.Command }

// Name returns the flow's declared name.
func (m *Machine) Name() string { return m.def.Name }

// CanCancel reports whether /cancel aborts this flow.
func (m *Machine) CanCancel() bool { return !m.def.DisableCancel }

// CanBack reports whether /back steps this flow backwards.
func (m *Machine) CanBack() bool { return !m.def.DisableBack }

func (m *Machine) field(promptIdx int) *Field {
	return &m.def.Fields[m.prompted[promptIdx]]
}

func (m *Machine) currentField(inst *Instance) *Field {
	if inst.Step < 0 || inst.Step >= len(m.prompted) {
		return nil
	}
	return m.field(inst.Step)
}

func (m *Machine) findNextActive(inst *Instance, from int) int {
	values := inst.values()
	for i := from + 1; i < len(m.prompted); i++ {
		if m.field(i).active(values) {
			return i
		}
	}
	return -1
}

func (m *Machine) findPrevActive(inst *Instance, from int) int {
	values := inst.values()
	for i := from - 1; i >= 0; i-- {
		if m.field(i).active(values) {
			return i
		}
	}
	return -1
}

func (m *Machine) widgetContext(inst *Instance, f *Field) *widget.Context {
	val, set := inst.Slots[f.Name]
	return &widget.Context{
		FlowID:     m.id,
		FieldName:  f.Name,
		Set:        set,
		Value:      val,
		BaseType:   f.Type,
		Validators: f.Validators,
		Optional:   f.Optional,
		State:      inst.values(),
		Options:    inst.Options[f.Name],
		Theme:      m.theme,
	}
}

// Start enters the flow for a launch command. args are the positional
// command arguments, prefilled into CommandArg fields in declaration
// order. A nil returned instance means the flow already completed.
func (m *Machine) Start(ctx context.Context, tp ports.Transport, msg *chat.Message, args []string) (*Instance, error) {
	inst := NewInstance()
	m.prefill(inst, args)
	inst.Entered = true
	return m.advanceFrom(ctx, tp, msg.ChatID, msg.UserKey(), inst, -1)
}

func (m *Machine) prefill(inst *Instance, args []string) {
	i := 0
	for _, f := range m.def.Fields {
		if !f.CommandArg || i >= len(args) {
			continue
		}
		raw := args[i]
		i++
		switch f.Type {
		case widget.TypeInt:
			if n, err := strconv.Atoi(raw); err == nil {
				inst.Slots[f.Name] = n
			}
		case widget.TypeFloat:
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				inst.Slots[f.Name] = v
			}
		case widget.TypeBool:
			lower := strings.ToLower(raw)
			inst.Slots[f.Name] = lower == "yes" || lower == "true" || lower == "1" || lower == "y"
		default:
			inst.Slots[f.Name] = raw
		}
	}
}

// advanceFrom moves to the next active field after the given prompt index,
// resolving dynamic options on the way and falling through to the summary
// or finish when the sequence is exhausted. It mutates inst and returns it,
// or nil once the flow has ended.
func (m *Machine) advanceFrom(ctx context.Context, tp ports.Transport, chatID int64, userKey string, inst *Instance, from int) (*Instance, error) {
	next := m.findNextActive(inst, from)
	if next < 0 {
		if m.def.Summary && !inst.SummaryPending {
			return inst, m.showSummary(ctx, tp, chatID, inst)
		}
		if err := m.finish(ctx, tp, chatID, userKey, inst); err != nil {
			return inst, err
		}
		return nil, nil
	}

	inst.Step = next
	f := m.field(next)
	if f.Options != nil {
		opts, err := f.Options(ctx, inst.values())
		if err != nil {
			m.logger.Error("options provider failed",
				"flow", m.def.Name, "field", f.Name, "err", err)
			opts = nil
		}
		if len(opts) == 0 && f.Optional {
			inst.Slots[f.Name] = nil
			return m.advanceFrom(ctx, tp, chatID, userKey, inst, next)
		}
		if inst.Options == nil {
			inst.Options = make(map[string][]widget.Option)
		}
		inst.Options[f.Name] = opts
	}
	return inst, m.renderField(ctx, tp, chatID, inst, f)
}

// renderField draws the field's widget through the show-mode sender.
func (m *Machine) renderField(ctx context.Context, tp ports.Transport, chatID int64, inst *Instance, f *Field) error {
	text, kb := f.Widget.Render(m.widgetContext(inst, f))
	if m.def.Progress {
		text = m.progressPrefix(inst.Step) + text
	}
	return m.display(ctx, tp, chatID, inst, text, kb)
}

func (m *Machine) rerenderCurrent(ctx context.Context, tp ports.Transport, chatID int64, inst *Instance) error {
	f := m.currentField(inst)
	if f == nil {
		return nil
	}
	return m.renderField(ctx, tp, chatID, inst, f)
}

// OnMessage folds an inbound text or media message into the flow.
func (m *Machine) OnMessage(ctx context.Context, tp ports.Transport, inst *Instance, msg *chat.Message) (*Instance, error) {
	inst = inst.clone()
	chatID, userKey := msg.ChatID, msg.UserKey()

	if inst.SummaryPending {
		if _, err := tp.SendMessage(ctx, chatID, m.theme.Errors.UseButtons, nil); err != nil {
			return inst, err
		}
		return inst, nil
	}
	if !inst.Entered {
		inst.Entered = true
		return m.advanceFrom(ctx, tp, chatID, userKey, inst, -1)
	}

	if m.def.LaunchMode != LaunchStandard {
		if rest, ok := strings.CutPrefix(msg.Text, "/"+m.def.Command); ok && (rest == "" || strings.HasPrefix(rest, " ")) {
			return m.relaunch(ctx, tp, chatID, userKey, inst, strings.Fields(rest))
		}
	}

	f := m.currentField(inst)
	if f == nil {
		return inst, nil
	}

	if msg.Text == "/skip" && f.Optional {
		inst.Slots[f.Name] = nil
		return m.advanceFrom(ctx, tp, chatID, userKey, inst, inst.Step)
	}

	switch r := f.Widget.HandleMessage(msg, m.widgetContext(inst, f)).(type) {
	case widget.Advance:
		inst.Slots[f.Name] = r.Value
		return m.advanceFrom(ctx, tp, chatID, userKey, inst, inst.Step)
	case widget.Stay:
		inst.Slots[f.Name] = r.Value
		return inst, m.rerenderCurrent(ctx, tp, chatID, inst)
	case widget.Reject:
		if f.Widget.NeedsCallback() {
			text, kb := f.Widget.Render(m.widgetContext(inst, f))
			_, err := tp.SendMessage(ctx, chatID, text+"\n\n"+r.Message, kb)
			return inst, err
		}
		_, err := tp.SendMessage(ctx, chatID, r.Message, nil)
		return inst, err
	default:
		return inst, nil
	}
}

// relaunch applies the definition's launch mode when the user re-issues
// the flow's own command mid-run.
func (m *Machine) relaunch(ctx context.Context, tp ports.Transport, chatID int64, userKey string, inst *Instance, args []string) (*Instance, error) {
	switch m.def.LaunchMode {
	case LaunchExclusive:
		text := fmt.Sprintf(m.theme.Errors.FlowActive, m.def.Command)
		_, err := tp.SendMessage(ctx, chatID, text, nil)
		return inst, err
	case LaunchSingleTop:
		return inst, m.rerenderCurrent(ctx, tp, chatID, inst)
	default:
		fresh := NewInstance()
		m.prefill(fresh, args)
		fresh.Entered = true
		return m.advanceFrom(ctx, tp, chatID, userKey, fresh, -1)
	}
}

// OnCallback folds a button press into the flow. Foreign or malformed
// payloads are ignored without side effects.
func (m *Machine) OnCallback(ctx context.Context, tp ports.Transport, inst *Instance, cb *chat.Callback) (*Instance, error) {
	flowID, value, ok := widget.DecodeCallback(cb.Data)
	if !ok || flowID != m.id {
		return inst, nil
	}
	inst = inst.clone()
	chatID, userKey := cb.ChatID, cb.UserKey()

	if inst.SummaryPending {
		if err := tp.AnswerCallback(ctx, cb.ID, "", false); err != nil {
			m.logger.Debug("answer callback failed", "err", err)
		}
		if value != summaryToken {
			return inst, nil
		}
		if err := m.finish(ctx, tp, chatID, userKey, inst); err != nil {
			return inst, err
		}
		return nil, nil
	}

	f := m.currentField(inst)
	if f == nil {
		return inst, tp.AnswerCallback(ctx, cb.ID, "", false)
	}

	switch r := f.Widget.HandleCallback(value, m.widgetContext(inst, f)).(type) {
	case widget.NoOp:
		return inst, tp.AnswerCallback(ctx, cb.ID, "", false)

	case widget.Stay:
		if err := tp.AnswerCallback(ctx, cb.ID, "", false); err != nil {
			m.logger.Debug("answer callback failed", "err", err)
		}
		inst.Slots[f.Name] = r.Value
		text, kb := f.Widget.Render(m.widgetContext(inst, f))
		if m.def.Progress {
			text = m.progressPrefix(inst.Step) + text
		}
		if kb != nil && !kb.IsInline() {
			m.logger.Warn("reply keyboard cannot be edited in place",
				"flow", m.def.Name, "field", f.Name)
			id, err := tp.SendMessage(ctx, chatID, text, kb)
			if err != nil {
				return inst, err
			}
			if m.def.ShowMode != ShowSend {
				inst.MessageID = id
			}
			return inst, nil
		}
		if err := tp.EditMessage(ctx, chatID, cb.MessageID, text, kb); err != nil {
			m.logger.Debug("edit failed", "flow", m.def.Name, "err", err)
		}
		return inst, nil

	case widget.Advance:
		if err := tp.AnswerCallback(ctx, cb.ID, "", false); err != nil {
			m.logger.Debug("answer callback failed", "err", err)
		}
		inst.Slots[f.Name] = r.Value
		selection := r.Summary
		if p := f.Widget.Prompt(); p != "" {
			selection = p + "\n\n" + r.Summary
		}
		if m.def.ShowMode == ShowEdit {
			next, err := m.advanceFrom(ctx, tp, chatID, userKey, inst, inst.Step)
			if err != nil {
				return next, err
			}
			if next == nil {
				if editErr := tp.EditMessage(ctx, chatID, cb.MessageID, selection, nil); editErr != nil {
					m.logger.Debug("edit failed", "flow", m.def.Name, "err", editErr)
				}
			}
			return next, nil
		}
		if err := tp.EditMessage(ctx, chatID, cb.MessageID, selection, nil); err != nil {
			m.logger.Debug("edit failed", "flow", m.def.Name, "err", err)
		}
		return m.advanceFrom(ctx, tp, chatID, userKey, inst, inst.Step)

	case widget.Reject:
		return inst, tp.AnswerCallback(ctx, cb.ID, r.Message, false)

	default:
		return inst, nil
	}
}

// Back clears the previous active field's answer and re-prompts it. At the
// first field it just re-renders the current prompt.
func (m *Machine) Back(ctx context.Context, tp ports.Transport, inst *Instance, msg *chat.Message) (*Instance, error) {
	inst = inst.clone()
	chatID := msg.ChatID

	from := inst.Step
	if inst.SummaryPending {
		from = len(m.prompted)
	}
	prev := m.findPrevActive(inst, from)
	if prev < 0 {
		return inst, m.rerenderCurrent(ctx, tp, chatID, inst)
	}

	f := m.field(prev)
	delete(inst.Slots, f.Name)
	inst.Step = prev
	inst.SummaryPending = false
	if f.Options != nil {
		opts, err := f.Options(ctx, inst.values())
		if err != nil {
			m.logger.Error("options provider failed",
				"flow", m.def.Name, "field", f.Name, "err", err)
			opts = nil
		}
		if inst.Options == nil {
			inst.Options = make(map[string][]widget.Option)
		}
		inst.Options[f.Name] = opts
	}
	return inst, m.renderField(ctx, tp, chatID, inst, f)
}

// Cancel acknowledges an aborted run. The caller deletes the session.
func (m *Machine) Cancel(ctx context.Context, tp ports.Transport, chatID int64) error {
	_, err := tp.SendMessage(ctx, chatID, m.theme.Action.Cancel, nil)
	return err
}

// finish snapshots the answers, runs the finish handler and delivers the
// completion message, weaving in sub-flow stack hints.
func (m *Machine) finish(ctx context.Context, tp ports.Transport, chatID int64, userKey string, inst *Instance) error {
	values := make(Values, len(m.def.Fields))
	for _, f := range m.def.Fields {
		if v, ok := inst.Slots[f.Name]; ok {
			values[f.Name] = v
		} else {
			values[f.Name] = nil
		}
	}

	outcome, err := m.def.Finish(ctx, values)
	if err != nil {
		m.logger.Error("finish handler failed", "flow", m.def.Name, "err", err)
		return err
	}

	text := outcome.Text
	if m.stack != nil {
		if outcome.SubFlow && outcome.NextCommand != "" {
			m.stack.Push(userKey, Frame{Command: m.def.Command})
			text = fmt.Sprintf("%s\n\nSend /%s to continue.", text, outcome.NextCommand)
		} else if frame, ok := m.stack.Pop(userKey); ok {
			text = fmt.Sprintf("%s\n\nSend /%s to go back.", text, frame.Command)
		}
	}

	_, err = tp.SendMessage(ctx, chatID, text, outcome.Keyboard)
	return err
}
