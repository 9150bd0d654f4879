package browse

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/tgflow/internal/logging"
	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/session"
	"github.com/aretw0/tgflow/pkg/widget"
)

// Config declares a paginated entity browser.
type Config struct {
	// Name is the short callback prefix. Defaults to the first six
	// characters of Command; keep it short, callback payloads are
	// limited to 64 bytes.
	Name    string
	Command string

	PageSize int
	// EmptyText replaces the entity list when the query yields nothing.
	EmptyText string

	// Query builds the entity source for the current filter and search.
	Query func(ctx context.Context, q Query) (Source, error)

	// EntityID extracts the stable numeric ID embedded in action
	// callbacks. Required when Actions are declared.
	EntityID func(entity any) int64

	// Card renders one entity. Defaults to sorted "Label: value" lines
	// over its exported fields.
	Card func(entity any) string

	Actions []Action
	Filters []Filter
}

// browseSession is the per-user view state.
type browseSession struct {
	Page   int    `json:"page"`
	Filter string `json:"filter,omitempty"`
	Search string `json:"search,omitempty"`
}

// Browse drives one entity browser. Safe for concurrent use.
type Browse struct {
	cfg       Config
	name      string
	actions   map[string]*Action
	sessions  *session.Store[browseSession]
	redirects *RedirectStore
	theme     *widget.Theme
	logger    *slog.Logger
}

// Option configures a controller.
type Option func(*controllerOpts)

type controllerOpts struct {
	theme     *widget.Theme
	logger    *slog.Logger
	redirects *RedirectStore
}

// WithTheme overrides the default theme.
func WithTheme(th *widget.Theme) Option {
	return func(o *controllerOpts) {
		if th != nil {
			o.theme = th
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *controllerOpts) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRedirects shares a redirect store across controllers.
func WithRedirects(r *RedirectStore) Option {
	return func(o *controllerOpts) { o.redirects = r }
}

func applyOpts(opts []Option) controllerOpts {
	o := controllerOpts{
		theme:     widget.DefaultTheme(),
		logger:    logging.NewNop(),
		redirects: NewRedirectStore(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func controllerName(name, command string) string {
	if name != "" {
		return name
	}
	if len(command) > 6 {
		command = command[:6]
	}
	return strings.ToLower(command)
}

// New validates the config and builds the controller.
func New(cfg Config, mgr *session.Manager, opts ...Option) (*Browse, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("browse config needs a command")
	}
	if cfg.Query == nil {
		return nil, fmt.Errorf("browse %q: config needs a query", cfg.Command)
	}
	if len(cfg.Actions) > 0 && cfg.EntityID == nil {
		return nil, fmt.Errorf("browse %q: actions need an EntityID func", cfg.Command)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.EmptyText == "" {
		cfg.EmptyText = "Nothing here yet."
	}

	name := controllerName(cfg.Name, cfg.Command)
	actions := make(map[string]*Action, len(cfg.Actions))
	for i := range cfg.Actions {
		act := &cfg.Actions[i]
		if act.Name == "" || strings.HasPrefix(act.Name, "_") {
			return nil, fmt.Errorf("browse %q: invalid action name %q", cfg.Command, act.Name)
		}
		if _, dup := actions[act.Name]; dup {
			return nil, fmt.Errorf("browse %q: duplicate action %q", cfg.Command, act.Name)
		}
		// Worst-case payload must fit the transport's callback limit.
		worst := encodeRef(ref{Name: name, Action: confirmPrefix + act.Name, Entity: 1 << 62, Page: 9999})
		if len(worst) > refLimit {
			return nil, fmt.Errorf("browse %q: action %q overflows callback payload (%d bytes)",
				cfg.Command, act.Name, len(worst))
		}
		actions[act.Name] = act
	}

	o := applyOpts(opts)
	return &Browse{
		cfg:       cfg,
		name:      name,
		actions:   actions,
		sessions:  session.NewStore[browseSession](mgr, "browse:"+name+":"),
		redirects: o.redirects,
		theme:     o.theme,
		logger:    o.logger,
	}, nil
}

const confirmPrefix = "_confirm_"

// Command returns the launch command without the leading slash.
func (b *Browse) Command() string { return b.cfg.Command }

// Name returns the callback-routing prefix.
func (b *Browse) Name() string { return b.name }

// Matches reports whether a callback payload belongs to this controller.
func (b *Browse) Matches(data string) bool {
	r, ok := decodeRef(data)
	return ok && r.Name == b.name
}

func (b *Browse) card(entity any) string {
	if b.cfg.Card != nil {
		return b.cfg.Card(entity)
	}
	return defaultCard(entity, b.theme)
}

func (b *Browse) ref(action string, entity int64, page int) string {
	return encodeRef(ref{Name: b.name, Action: action, Entity: entity, Page: page})
}

// render builds the current page's text and keyboard, clamping the session
// page in place. n is the number of entities shown.
func (b *Browse) render(ctx context.Context, sess *browseSession) (text string, kb *chat.Keyboard, n int, err error) {
	src, err := b.cfg.Query(ctx, Query{FilterKey: sess.Filter, Search: sess.Search})
	if err != nil {
		return "", nil, 0, fmt.Errorf("browse %q: query failed: %w", b.cfg.Command, err)
	}
	count, err := src.Count(ctx)
	if err != nil {
		return "", nil, 0, fmt.Errorf("browse %q: count failed: %w", b.cfg.Command, err)
	}

	totalPages := (count + b.cfg.PageSize - 1) / b.cfg.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if sess.Page < 0 {
		sess.Page = 0
	}
	if sess.Page > totalPages-1 {
		sess.Page = totalPages - 1
	}

	entities, err := src.FetchPage(ctx, sess.Page*b.cfg.PageSize, b.cfg.PageSize)
	if err != nil {
		return "", nil, 0, fmt.Errorf("browse %q: fetch failed: %w", b.cfg.Command, err)
	}

	kb = chat.NewInline()
	for _, f := range b.cfg.Filters {
		glyph := b.theme.Selection.TabInactive
		if f.Key == sess.Filter {
			glyph = b.theme.Selection.TabActive
		}
		kb.Text(glyph+" "+f.Label, b.ref("_tab_"+f.Key, 0, 0))
	}
	kb.Row()

	if totalPages > 1 {
		kb.Text(b.theme.Nav.PrevLabel, b.ref("prev", 0, sess.Page-1)).
			Text(fmt.Sprintf(b.theme.Display.PageFormat, sess.Page+1, totalPages), b.ref("noop", 0, 0)).
			Text(b.theme.Nav.NextLabel, b.ref("next", 0, sess.Page+1)).
			Row()
	}

	var cards []string
	for i, e := range entities {
		cards = append(cards, b.card(e))
		if len(b.actions) == 0 {
			continue
		}
		id := b.cfg.EntityID(e)
		for _, row := range actionRows(b.cfg.Actions) {
			for _, act := range row {
				label := act.Label
				if len(entities) > 1 {
					label = fmt.Sprintf("%d. %s", i+1, act.Label)
				}
				kb.Text(label, b.ref(act.Name, id, 0))
			}
			kb.Row()
		}
	}

	if len(entities) == 0 {
		return b.cfg.EmptyText, kb, 0, nil
	}
	return strings.Join(cards, "\n\n"), kb, len(entities), nil
}

// actionRows groups actions by their Row in declaration order.
func actionRows(actions []Action) [][]*Action {
	var order []int
	byRow := make(map[int][]*Action)
	for i := range actions {
		act := &actions[i]
		if _, seen := byRow[act.Row]; !seen {
			order = append(order, act.Row)
		}
		byRow[act.Row] = append(byRow[act.Row], act)
	}
	rows := make([][]*Action, 0, len(order))
	for _, r := range order {
		rows = append(rows, byRow[r])
	}
	return rows
}

// HandleCommand opens the browser at page zero.
func (b *Browse) HandleCommand(ctx context.Context, tp ports.Transport, msg *chat.Message) error {
	sess := browseSession{}
	text, kb, _, err := b.render(ctx, &sess)
	if err != nil {
		return err
	}
	if err := b.sessions.Set(ctx, msg.UserKey(), sess); err != nil {
		return err
	}
	_, err = tp.SendMessage(ctx, msg.ChatID, text, kb)
	return err
}

func (b *Browse) edit(ctx context.Context, tp ports.Transport, cb *chat.Callback, text string, kb *chat.Keyboard) {
	if err := tp.EditMessage(ctx, cb.ChatID, cb.MessageID, text, kb); err != nil {
		b.logger.Debug("edit failed", "browse", b.name, "err", err)
	}
}

func (b *Browse) answer(ctx context.Context, tp ports.Transport, cb *chat.Callback, text string, alert bool) {
	if err := tp.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		b.logger.Debug("answer callback failed", "browse", b.name, "err", err)
	}
}

// HandleCallback processes a button press previously matched by Matches.
func (b *Browse) HandleCallback(ctx context.Context, tp ports.Transport, cb *chat.Callback) error {
	r, ok := decodeRef(cb.Data)
	if !ok || r.Name != b.name {
		return nil
	}
	userKey := cb.UserKey()
	sess, _, err := b.sessions.Get(ctx, userKey)
	if err != nil {
		return err
	}

	if tab, isTab := strings.CutPrefix(r.Action, "_tab_"); isTab {
		sess.Filter, sess.Page = tab, 0
		return b.refreshView(ctx, tp, cb, &sess, "")
	}

	switch r.Action {
	case "noop":
		b.answer(ctx, tp, cb, "", false)
		return nil
	case "prev", "next":
		sess.Page = r.Page
		return b.refreshView(ctx, tp, cb, &sess, "")
	}

	return b.runAction(ctx, tp, cb, &sess, r)
}

func (b *Browse) refreshView(ctx context.Context, tp ports.Transport, cb *chat.Callback, sess *browseSession, prefix string) error {
	text, kb, _, err := b.render(ctx, sess)
	if err != nil {
		return err
	}
	if prefix != "" {
		text = prefix + "\n\n" + text
	}
	if err := b.sessions.Set(ctx, cb.UserKey(), *sess); err != nil {
		return err
	}
	b.edit(ctx, tp, cb, text, kb)
	b.answer(ctx, tp, cb, "", false)
	return nil
}

func (b *Browse) fetchEntity(ctx context.Context, sess *browseSession, id int64) (any, error) {
	src, err := b.cfg.Query(ctx, Query{FilterKey: sess.Filter, Search: sess.Search})
	if err != nil {
		return nil, err
	}
	if byID, ok := src.(ByID); ok {
		return byID.FetchByID(ctx, id)
	}
	count, err := src.Count(ctx)
	if err != nil {
		return nil, err
	}
	entities, err := src.FetchPage(ctx, 0, count)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if b.cfg.EntityID(e) == id {
			return e, nil
		}
	}
	return nil, nil
}

func (b *Browse) runAction(ctx context.Context, tp ports.Transport, cb *chat.Callback, sess *browseSession, r ref) error {
	name, confirmed := r.Action, false
	if stripped, isConfirm := strings.CutPrefix(name, confirmPrefix); isConfirm {
		name, confirmed = stripped, true
	}
	act, ok := b.actions[name]
	if !ok {
		b.answer(ctx, tp, cb, "", false)
		return nil
	}

	entity, err := b.fetchEntity(ctx, sess, r.Entity)
	if err != nil {
		return err
	}
	if entity == nil {
		b.edit(ctx, tp, cb, b.theme.Display.EntityNotFound, nil)
		b.answer(ctx, tp, cb, "", false)
		return nil
	}

	res, err := act.Handle(ctx, entity, confirmed)
	if err != nil {
		b.logger.Error("action failed", "browse", b.name, "action", name, "err", err)
		b.answer(ctx, tp, cb, "Something went wrong.", true)
		return nil
	}

	// A confirmed pass asking to confirm again would loop forever.
	if _, loops := res.(Confirm); loops && confirmed {
		b.logger.Warn("confirmed action returned another confirm, forcing refresh",
			"browse", b.name, "action", name)
		res = Refresh{}
	}

	return b.dispatchResult(ctx, tp, cb, sess, name, r.Entity, res)
}

func (b *Browse) dispatchResult(ctx context.Context, tp ports.Transport, cb *chat.Callback, sess *browseSession, action string, entity int64, res Result) error {
	switch out := res.(type) {
	case Refresh:
		return b.refreshView(ctx, tp, cb, sess, out.Message)

	case Stay:
		b.answer(ctx, tp, cb, out.Message, out.Alert)
		return nil

	case Redirect:
		if out.Context != nil {
			b.redirects.Put(cb.UserKey(), out.Command, out.Context)
		}
		text := "/" + out.Command
		if out.Message != "" {
			text = out.Message + "\n\n/" + out.Command
		}
		b.edit(ctx, tp, cb, text, nil)
		b.answer(ctx, tp, cb, "", false)
		return nil

	case Confirm:
		kb := chat.NewInline().
			Text(b.theme.Action.Yes, b.ref(confirmPrefix+action, entity, 0)).
			Text(b.theme.Action.No, b.ref("noop", 0, 0)).
			Row()
		b.edit(ctx, tp, cb, out.Prompt, kb)
		b.answer(ctx, tp, cb, "", false)
		return nil

	default:
		b.answer(ctx, tp, cb, "", false)
		return nil
	}
}
