package browse

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/flow"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/session"
	"github.com/aretw0/tgflow/pkg/widget"
)

// SettingsField is one editable entry of a settings panel.
type SettingsField struct {
	Name   string
	Label  string
	Type   widget.ValueType
	Widget widget.Widget
}

// SettingsConfig declares a settings panel: an overview card with one
// button per field, each editing through its regular widget.
type SettingsConfig struct {
	Name    string
	Command string
	Title   string
	Fields  []SettingsField

	// Load fetches the user's current values.
	Load func(ctx context.Context, userKey string) (flow.Values, error)
	// Save applies one edited field.
	Save func(ctx context.Context, userKey, field string, value any) error
}

// settingsSession tracks which field is being edited and its working
// value, mirroring a flow instance slot.
type settingsSession struct {
	Editing    string `json:"editing,omitempty"`
	Working    any    `json:"working,omitempty"`
	WorkingSet bool   `json:"working_set,omitempty"`
}

// Settings drives one settings panel. Its callbacks ride the widget
// envelope, so it routes by flow ID like a machine does.
type Settings struct {
	cfg      SettingsConfig
	id       string
	fields   map[string]*SettingsField
	sessions *session.Store[settingsSession]
	theme    *widget.Theme
	logger   *slog.Logger
}

// NewSettings validates the config and builds the controller.
func NewSettings(cfg SettingsConfig, mgr *session.Manager, opts ...Option) (*Settings, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("settings config needs a command")
	}
	if cfg.Load == nil || cfg.Save == nil {
		return nil, fmt.Errorf("settings %q: config needs load and save funcs", cfg.Command)
	}
	if len(cfg.Fields) == 0 {
		return nil, fmt.Errorf("settings %q: config needs at least one field", cfg.Command)
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Command
	}

	fields := make(map[string]*SettingsField, len(cfg.Fields))
	for i := range cfg.Fields {
		f := &cfg.Fields[i]
		if f.Name == "" || f.Widget == nil {
			return nil, fmt.Errorf("settings %q: field %d needs a name and a widget", cfg.Command, i)
		}
		if _, dup := fields[f.Name]; dup {
			return nil, fmt.Errorf("settings %q: duplicate field %q", cfg.Command, f.Name)
		}
		if f.Label == "" {
			f.Label = widget.TitleLabel(f.Name)
		}
		fields[f.Name] = f
	}

	sum := sha256.Sum256([]byte("settings:" + cfg.Name))
	o := applyOpts(opts)
	return &Settings{
		cfg:      cfg,
		id:       hex.EncodeToString(sum[:])[:8],
		fields:   fields,
		sessions: session.NewStore[settingsSession](mgr, "settings:"+cfg.Name+":"),
		theme:    o.theme,
		logger:   o.logger,
	}, nil
}

// Command returns the launch command without the leading slash.
func (s *Settings) Command() string { return s.cfg.Command }

// ID returns the callback-routing identifier.
func (s *Settings) ID() string { return s.id }

// Matches reports whether a callback payload belongs to this panel.
func (s *Settings) Matches(data string) bool {
	flowID, _, ok := widget.DecodeCallback(data)
	return ok && flowID == s.id
}

func (s *Settings) widgetContext(f *SettingsField, values flow.Values, sess *settingsSession) *widget.Context {
	return &widget.Context{
		FlowID:    s.id,
		FieldName: f.Name,
		Set:       sess.WorkingSet,
		Value:     sess.Working,
		BaseType:  f.Type,
		State:     map[string]any(values),
		Theme:     s.theme,
	}
}

func (s *Settings) overview(ctx context.Context, userKey string) (string, *chat.Keyboard, error) {
	values, err := s.cfg.Load(ctx, userKey)
	if err != nil {
		return "", nil, fmt.Errorf("settings %q: load failed: %w", s.cfg.Command, err)
	}

	title := s.cfg.Title
	if title == "" {
		title = "Settings"
	}
	kb := chat.NewInline()
	var lines []string
	for i := range s.cfg.Fields {
		f := &s.cfg.Fields[i]
		current := widget.FormatValue(values[f.Name], s.theme)
		lines = append(lines, f.Label+": "+current)
		kb.Text(f.Label+": "+current, widget.EncodeCallback(s.id, "field:"+f.Name)).Row()
	}
	return title + "\n\n" + strings.Join(lines, "\n"), kb, nil
}

// HandleCommand renders the overview and resets the edit session.
func (s *Settings) HandleCommand(ctx context.Context, tp ports.Transport, msg *chat.Message) error {
	text, kb, err := s.overview(ctx, msg.UserKey())
	if err != nil {
		return err
	}
	if err := s.sessions.Set(ctx, msg.UserKey(), settingsSession{}); err != nil {
		return err
	}
	_, err = tp.SendMessage(ctx, msg.ChatID, text, kb)
	return err
}

// renderField draws a field's widget with the Back button appended.
func (s *Settings) renderField(f *SettingsField, values flow.Values, sess *settingsSession) (string, *chat.Keyboard) {
	text, kb := f.Widget.Render(s.widgetContext(f, values, sess))
	if kb == nil {
		kb = chat.NewInline()
	}
	if kb.IsInline() {
		kb.Text(s.theme.Nav.BackArrow, widget.EncodeCallback(s.id, "back")).Row()
	}
	return text, kb
}

func (s *Settings) answer(ctx context.Context, tp ports.Transport, cb *chat.Callback, text string, alert bool) {
	if err := tp.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		s.logger.Debug("answer callback failed", "settings", s.cfg.Name, "err", err)
	}
}

func (s *Settings) edit(ctx context.Context, tp ports.Transport, cb *chat.Callback, text string, kb *chat.Keyboard) {
	if err := tp.EditMessage(ctx, cb.ChatID, cb.MessageID, text, kb); err != nil {
		s.logger.Debug("edit failed", "settings", s.cfg.Name, "err", err)
	}
}

func (s *Settings) showOverview(ctx context.Context, tp ports.Transport, cb *chat.Callback) error {
	text, kb, err := s.overview(ctx, cb.UserKey())
	if err != nil {
		return err
	}
	if err := s.sessions.Set(ctx, cb.UserKey(), settingsSession{}); err != nil {
		return err
	}
	s.edit(ctx, tp, cb, text, kb)
	s.answer(ctx, tp, cb, "", false)
	return nil
}

// HandleCallback processes a button press previously matched by Matches.
func (s *Settings) HandleCallback(ctx context.Context, tp ports.Transport, cb *chat.Callback) error {
	flowID, value, ok := widget.DecodeCallback(cb.Data)
	if !ok || flowID != s.id {
		return nil
	}
	userKey := cb.UserKey()
	sess, _, err := s.sessions.Get(ctx, userKey)
	if err != nil {
		return err
	}

	if value == "back" {
		return s.showOverview(ctx, tp, cb)
	}

	if name, isEntry := strings.CutPrefix(value, "field:"); isEntry {
		f, known := s.fields[name]
		if !known {
			s.answer(ctx, tp, cb, "", false)
			return nil
		}
		values, err := s.cfg.Load(ctx, userKey)
		if err != nil {
			return err
		}
		sess = settingsSession{Editing: name}
		if v, has := values[name]; has && v != nil {
			sess.Working, sess.WorkingSet = v, true
		}
		if err := s.sessions.Set(ctx, userKey, sess); err != nil {
			return err
		}
		text, kb := s.renderField(f, values, &sess)
		s.edit(ctx, tp, cb, text, kb)
		s.answer(ctx, tp, cb, "", false)
		return nil
	}

	f, editing := s.fields[sess.Editing]
	if !editing {
		s.answer(ctx, tp, cb, "", false)
		return nil
	}
	values, err := s.cfg.Load(ctx, userKey)
	if err != nil {
		return err
	}

	switch r := f.Widget.HandleCallback(value, s.widgetContext(f, values, &sess)).(type) {
	case widget.Advance:
		if err := s.cfg.Save(ctx, userKey, f.Name, r.Value); err != nil {
			s.logger.Error("save failed", "settings", s.cfg.Name, "field", f.Name, "err", err)
			s.answer(ctx, tp, cb, "Something went wrong.", true)
			return nil
		}
		return s.showOverview(ctx, tp, cb)

	case widget.Stay:
		sess.Working, sess.WorkingSet = r.Value, true
		if err := s.sessions.Set(ctx, userKey, sess); err != nil {
			return err
		}
		text, kb := s.renderField(f, values, &sess)
		s.edit(ctx, tp, cb, text, kb)
		s.answer(ctx, tp, cb, "", false)
		return nil

	case widget.Reject:
		s.answer(ctx, tp, cb, r.Message, true)
		return nil

	default:
		s.answer(ctx, tp, cb, "", false)
		return nil
	}
}

// HandleText consumes a typed answer while a text-capable field is being
// edited. Returns false when the message is not for this panel.
func (s *Settings) HandleText(ctx context.Context, tp ports.Transport, msg *chat.Message) (bool, error) {
	if strings.HasPrefix(msg.Text, "/") {
		return false, nil
	}
	userKey := msg.UserKey()
	sess, ok, err := s.sessions.Get(ctx, userKey)
	if err != nil || !ok || sess.Editing == "" {
		return false, err
	}
	f, known := s.fields[sess.Editing]
	if !known || f.Widget.NeedsCallback() {
		return false, nil
	}
	values, err := s.cfg.Load(ctx, userKey)
	if err != nil {
		return true, err
	}

	switch r := f.Widget.HandleMessage(msg, s.widgetContext(f, values, &sess)).(type) {
	case widget.Advance:
		if err := s.cfg.Save(ctx, userKey, f.Name, r.Value); err != nil {
			return true, err
		}
		if err := s.sessions.Set(ctx, userKey, settingsSession{}); err != nil {
			return true, err
		}
		text, kb, err := s.overview(ctx, userKey)
		if err != nil {
			return true, err
		}
		_, err = tp.SendMessage(ctx, msg.ChatID, text, kb)
		return true, err

	case widget.Stay:
		sess.Working, sess.WorkingSet = r.Value, true
		if err := s.sessions.Set(ctx, userKey, sess); err != nil {
			return true, err
		}
		text, kb := s.renderField(f, values, &sess)
		_, err = tp.SendMessage(ctx, msg.ChatID, text, kb)
		return true, err

	case widget.Reject:
		_, err = tp.SendMessage(ctx, msg.ChatID, r.Message, nil)
		return true, err

	default:
		return true, nil
	}
}
