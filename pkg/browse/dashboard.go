package browse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/widget"
)

// DashboardConfig declares a single-entity view with action buttons, e.g.
// an account or status card.
type DashboardConfig struct {
	Name    string
	Command string

	// Query fetches the entity for the invoking user. A nil entity
	// renders the not-found text.
	Query func(ctx context.Context, userKey string) (any, error)

	Card    func(entity any) string
	Actions []Action
}

// Dashboard drives one single-entity view.
type Dashboard struct {
	cfg       DashboardConfig
	name      string
	actions   map[string]*Action
	redirects *RedirectStore
	theme     *widget.Theme
	logger    *slog.Logger
}

// NewDashboard validates the config and builds the controller.
func NewDashboard(cfg DashboardConfig, opts ...Option) (*Dashboard, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("dashboard config needs a command")
	}
	if cfg.Query == nil {
		return nil, fmt.Errorf("dashboard %q: config needs a query", cfg.Command)
	}
	name := controllerName(cfg.Name, cfg.Command)
	actions := make(map[string]*Action, len(cfg.Actions))
	for i := range cfg.Actions {
		act := &cfg.Actions[i]
		if act.Name == "" || strings.HasPrefix(act.Name, "_") {
			return nil, fmt.Errorf("dashboard %q: invalid action name %q", cfg.Command, act.Name)
		}
		if _, dup := actions[act.Name]; dup {
			return nil, fmt.Errorf("dashboard %q: duplicate action %q", cfg.Command, act.Name)
		}
		worst := encodeRef(ref{Name: name, Action: confirmPrefix + act.Name})
		if len(worst) > refLimit {
			return nil, fmt.Errorf("dashboard %q: action %q overflows callback payload (%d bytes)",
				cfg.Command, act.Name, len(worst))
		}
		actions[act.Name] = act
	}

	o := applyOpts(opts)
	return &Dashboard{
		cfg:       cfg,
		name:      name,
		actions:   actions,
		redirects: o.redirects,
		theme:     o.theme,
		logger:    o.logger,
	}, nil
}

// Command returns the launch command without the leading slash.
func (d *Dashboard) Command() string { return d.cfg.Command }

// Name returns the callback-routing prefix.
func (d *Dashboard) Name() string { return d.name }

// Matches reports whether a callback payload belongs to this controller.
func (d *Dashboard) Matches(data string) bool {
	r, ok := decodeRef(data)
	return ok && r.Name == d.name
}

func (d *Dashboard) card(entity any) string {
	if d.cfg.Card != nil {
		return d.cfg.Card(entity)
	}
	return defaultCard(entity, d.theme)
}

func (d *Dashboard) ref(action string) string {
	return encodeRef(ref{Name: d.name, Action: action})
}

func (d *Dashboard) render(ctx context.Context, userKey string) (string, *chat.Keyboard, error) {
	entity, err := d.cfg.Query(ctx, userKey)
	if err != nil {
		return "", nil, fmt.Errorf("dashboard %q: query failed: %w", d.cfg.Command, err)
	}
	if entity == nil {
		return d.theme.Display.EntityNotFound, nil, nil
	}

	kb := chat.NewInline()
	for _, row := range actionRows(d.cfg.Actions) {
		for _, act := range row {
			kb.Text(act.Label, d.ref(act.Name))
		}
		kb.Row()
	}
	if kb.Empty() {
		kb = nil
	}
	return d.card(entity), kb, nil
}

// HandleCommand renders the dashboard.
func (d *Dashboard) HandleCommand(ctx context.Context, tp ports.Transport, msg *chat.Message) error {
	text, kb, err := d.render(ctx, msg.UserKey())
	if err != nil {
		return err
	}
	_, err = tp.SendMessage(ctx, msg.ChatID, text, kb)
	return err
}

func (d *Dashboard) edit(ctx context.Context, tp ports.Transport, cb *chat.Callback, text string, kb *chat.Keyboard) {
	if err := tp.EditMessage(ctx, cb.ChatID, cb.MessageID, text, kb); err != nil {
		d.logger.Debug("edit failed", "dashboard", d.name, "err", err)
	}
}

func (d *Dashboard) answer(ctx context.Context, tp ports.Transport, cb *chat.Callback, text string, alert bool) {
	if err := tp.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		d.logger.Debug("answer callback failed", "dashboard", d.name, "err", err)
	}
}

func (d *Dashboard) refreshView(ctx context.Context, tp ports.Transport, cb *chat.Callback, prefix string) error {
	text, kb, err := d.render(ctx, cb.UserKey())
	if err != nil {
		return err
	}
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	d.edit(ctx, tp, cb, text, kb)
	d.answer(ctx, tp, cb, "", false)
	return nil
}

// HandleCallback processes a button press previously matched by Matches.
func (d *Dashboard) HandleCallback(ctx context.Context, tp ports.Transport, cb *chat.Callback) error {
	r, ok := decodeRef(cb.Data)
	if !ok || r.Name != d.name {
		return nil
	}
	if r.Action == "noop" {
		d.answer(ctx, tp, cb, "", false)
		return nil
	}

	name, confirmed := r.Action, false
	if stripped, isConfirm := strings.CutPrefix(name, confirmPrefix); isConfirm {
		name, confirmed = stripped, true
	}
	act, ok := d.actions[name]
	if !ok {
		d.answer(ctx, tp, cb, "", false)
		return nil
	}

	entity, err := d.cfg.Query(ctx, cb.UserKey())
	if err != nil {
		return err
	}
	if entity == nil {
		d.edit(ctx, tp, cb, d.theme.Display.EntityNotFound, nil)
		d.answer(ctx, tp, cb, "", false)
		return nil
	}

	res, err := act.Handle(ctx, entity, confirmed)
	if err != nil {
		d.logger.Error("action failed", "dashboard", d.name, "action", name, "err", err)
		d.answer(ctx, tp, cb, "Something went wrong.", true)
		return nil
	}
	if _, loops := res.(Confirm); loops && confirmed {
		d.logger.Warn("confirmed action returned another confirm, forcing refresh",
			"dashboard", d.name, "action", name)
		res = Refresh{}
	}

	switch out := res.(type) {
	case Refresh:
		return d.refreshView(ctx, tp, cb, out.Message)
	case Stay:
		d.answer(ctx, tp, cb, out.Message, out.Alert)
		return nil
	case Redirect:
		if out.Context != nil {
			d.redirects.Put(cb.UserKey(), out.Command, out.Context)
		}
		text := "/" + out.Command
		if out.Message != "" {
			text = out.Message + "\n\n/" + out.Command
		}
		d.edit(ctx, tp, cb, text, nil)
		d.answer(ctx, tp, cb, "", false)
		return nil
	case Confirm:
		kb := chat.NewInline().
			Text(d.theme.Action.Yes, d.ref(confirmPrefix+name)).
			Text(d.theme.Action.No, d.ref("noop")).
			Row()
		d.edit(ctx, tp, cb, out.Prompt, kb)
		d.answer(ctx, tp, cb, "", false)
		return nil
	default:
		d.answer(ctx, tp, cb, "", false)
		return nil
	}
}
