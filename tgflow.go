package tgflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/tgflow/internal/logging"
	"github.com/aretw0/tgflow/pkg/adapters/memory"
	"github.com/aretw0/tgflow/pkg/browse"
	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/flow"
	"github.com/aretw0/tgflow/pkg/observability"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/registry"
	"github.com/aretw0/tgflow/pkg/session"
	"github.com/aretw0/tgflow/pkg/widget"
)

// CommandFunc handles a plain bot command outside of any flow.
type CommandFunc func(ctx context.Context, tp ports.Transport, msg *chat.Message, args []string) error

// textHandler consumes free-form text that no flow claimed.
type textHandler interface {
	HandleText(ctx context.Context, tp ports.Transport, msg *chat.Message) (bool, error)
}

// callbackHandler consumes button presses in its own callback namespace.
type callbackHandler interface {
	Matches(data string) bool
	HandleCallback(ctx context.Context, tp ports.Transport, cb *chat.Callback) error
}

// App is the high-level entry point for the tgflow library. It owns the
// session manager, routes inbound updates to the registered flows and
// controllers, and persists flow state between updates.
type App struct {
	transport ports.Transport
	store     ports.SessionStore
	locker    ports.DistributedLocker
	sessions  *session.Manager
	theme     *widget.Theme
	logger    *slog.Logger
	metrics   *observability.Metrics
	ttl       time.Duration
	stack     *flow.Stack
	redirects *browse.RedirectStore

	commands  *registry.Registry[func(ctx context.Context, msg *chat.Message, args []string) error]
	flows     []*flow.Machine
	flowsByID map[string]*flow.Machine
	settings  map[string]*browse.Settings
	texters   []textHandler
	callbacks []callbackHandler
}

// Option defines a functional option for configuring the App.
type Option func(*App)

// WithStore swaps the session backend. Defaults to the in-memory store,
// which is fine for a single process and lost on restart.
func WithStore(store ports.SessionStore) Option {
	return func(a *App) {
		a.store = store
	}
}

// WithLocker enables cross-replica serialization of session writes.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(a *App) {
		a.locker = locker
	}
}

// WithTheme overrides the default glyphs and strings used by widgets
// and controllers.
func WithTheme(th *widget.Theme) Option {
	return func(a *App) {
		a.theme = th
	}
}

// WithLogger sets a custom structured logger for the app.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithMetrics attaches Prometheus collectors. Without it the app records
// nothing.
func WithMetrics(m *observability.Metrics) Option {
	return func(a *App) {
		a.metrics = m
	}
}

// WithSessionTTL sets how long idle conversation state survives.
// Defaults to one hour.
func WithSessionTTL(ttl time.Duration) Option {
	return func(a *App) {
		a.ttl = ttl
	}
}

// New creates an App that sends through the given transport.
func New(tp ports.Transport, opts ...Option) *App {
	a := &App{
		transport: tp,
		theme:     widget.DefaultTheme(),
		logger:    logging.NewNop(),
		ttl:       time.Hour,
		stack:     flow.NewStack(),
		redirects: browse.NewRedirectStore(),
		commands:  registry.New[func(ctx context.Context, msg *chat.Message, args []string) error](),
		flowsByID: make(map[string]*flow.Machine),
		settings:  make(map[string]*browse.Settings),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	mgrOpts := []session.Option{
		session.WithLogger(a.logger),
		session.WithTTL(a.ttl),
	}
	if a.locker != nil {
		mgrOpts = append(mgrOpts, session.WithLocker(a.locker))
	}
	a.sessions = session.NewManager(a.store, mgrOpts...)
	return a
}

// Sessions exposes the session manager, mainly for adapters and tests.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Redirects exposes the handoff context store populated by browse
// actions that return a Redirect.
func (a *App) Redirects() *browse.RedirectStore {
	return a.redirects
}

// RegisterFlow compiles a flow definition and mounts it on its command.
func (a *App) RegisterFlow(def flow.Definition) (*flow.Machine, error) {
	m, err := flow.New(def,
		flow.WithTheme(a.theme),
		flow.WithLogger(a.logger),
		flow.WithStack(a.stack),
	)
	if err != nil {
		return nil, err
	}
	if _, ok := a.flowsByID[m.ID()]; ok {
		return nil, fmt.Errorf("flow %q: id collision with an already registered flow", m.Name())
	}
	if err := a.commands.Register(m.Command(), func(ctx context.Context, msg *chat.Message, args []string) error {
		return a.runFlowCommand(ctx, m, msg, args)
	}); err != nil {
		return nil, err
	}
	a.flowsByID[m.ID()] = m
	a.flows = append(a.flows, m)
	return m, nil
}

// RegisterBrowse mounts a paginated entity browser on its command.
func (a *App) RegisterBrowse(cfg browse.Config) (*browse.Browse, error) {
	b, err := browse.New(cfg, a.sessions, a.controllerOpts()...)
	if err != nil {
		return nil, err
	}
	if err := a.mountController(b.Command(), b.HandleCommand); err != nil {
		return nil, err
	}
	a.callbacks = append(a.callbacks, b)
	return b, nil
}

// RegisterSearch mounts a browse controller that first prompts for a
// search term.
func (a *App) RegisterSearch(cfg browse.SearchConfig) (*browse.Search, error) {
	s, err := browse.NewSearch(cfg, a.sessions, a.controllerOpts()...)
	if err != nil {
		return nil, err
	}
	if err := a.mountController(s.Command(), s.HandleCommand); err != nil {
		return nil, err
	}
	a.callbacks = append(a.callbacks, s)
	a.texters = append(a.texters, s)
	return s, nil
}

// RegisterDashboard mounts a single-entity action panel on its command.
func (a *App) RegisterDashboard(cfg browse.DashboardConfig) (*browse.Dashboard, error) {
	d, err := browse.NewDashboard(cfg, a.controllerOpts()...)
	if err != nil {
		return nil, err
	}
	if err := a.mountController(d.Command(), d.HandleCommand); err != nil {
		return nil, err
	}
	a.callbacks = append(a.callbacks, d)
	return d, nil
}

// RegisterSettings mounts a settings panel on its command. Its buttons
// share the widget callback envelope, so the panel is routed by id like
// a flow.
func (a *App) RegisterSettings(cfg browse.SettingsConfig) (*browse.Settings, error) {
	s, err := browse.NewSettings(cfg, a.sessions, a.controllerOpts()...)
	if err != nil {
		return nil, err
	}
	if _, ok := a.settings[s.ID()]; ok {
		return nil, fmt.Errorf("settings %q: id collision with an already registered panel", cfg.Name)
	}
	if err := a.mountController(s.Command(), s.HandleCommand); err != nil {
		return nil, err
	}
	a.settings[s.ID()] = s
	a.texters = append(a.texters, s)
	return s, nil
}

// Command mounts a plain handler on a bot command, e.g. "start" for
// /start. Registration fails if a flow or controller already owns the
// name.
func (a *App) Command(name string, fn CommandFunc) error {
	return a.commands.Register(name, func(ctx context.Context, msg *chat.Message, args []string) error {
		return fn(ctx, a.transport, msg, args)
	})
}

func (a *App) controllerOpts() []browse.Option {
	return []browse.Option{
		browse.WithTheme(a.theme),
		browse.WithLogger(a.logger),
		browse.WithRedirects(a.redirects),
	}
}

func (a *App) mountController(command string, fn func(context.Context, ports.Transport, *chat.Message) error) error {
	return a.commands.Register(command, func(ctx context.Context, msg *chat.Message, _ []string) error {
		return fn(ctx, a.transport, msg)
	})
}

func flowKey(flowID, userKey string) string {
	return "flow:" + flowID + ":" + userKey
}

// HandleUpdate routes one inbound update. Updates for the same user are
// serialized so flow state never races with itself; pass a locker to
// extend that guarantee across replicas.
func (a *App) HandleUpdate(ctx context.Context, u chat.Update) error {
	switch {
	case u.Callback != nil:
		defer a.observe("callback")()
		return a.sessions.WithLock(ctx, "user:"+u.Callback.UserKey(), func(ctx context.Context) error {
			return a.handleCallback(ctx, u.Callback)
		})
	case u.Message != nil:
		defer a.observe("message")()
		return a.sessions.WithLock(ctx, "user:"+u.Message.UserKey(), func(ctx context.Context) error {
			return a.handleMessage(ctx, u.Message)
		})
	default:
		return nil
	}
}

func (a *App) handleMessage(ctx context.Context, msg *chat.Message) error {
	if name, args, ok := parseCommand(msg.Text); ok {
		switch name {
		case "cancel":
			return a.cancelActive(ctx, msg)
		case "back":
			return a.backActive(ctx, msg)
		}
		if h, ok := a.commands.Lookup(name); ok {
			return h(ctx, msg, args)
		}
		// Unknown commands fall through so an active flow can treat
		// them as text, /skip included.
	}
	return a.routeText(ctx, msg)
}

// parseCommand splits "/cmd arg1 arg2" into name and args. A "@botname"
// suffix on the command is stripped.
func parseCommand(text string) (name string, args []string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", nil, false
	}
	name = strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", nil, false
	}
	return name, fields[1:], true
}

// activeFlow finds the first registered flow with live state for the
// user. Corrupt state is dropped and the scan continues.
func (a *App) activeFlow(ctx context.Context, userKey string) (*flow.Machine, *flow.Instance, string, error) {
	for _, m := range a.flows {
		key := flowKey(m.ID(), userKey)
		data, err := a.sessions.Load(ctx, key)
		if errors.Is(err, ports.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, "", err
		}
		inst, err := flow.DecodeInstance(data)
		if err != nil {
			a.logger.Warn("dropping corrupt flow state", "flow", m.Name(), "user", userKey, "err", err)
			if derr := a.sessions.Delete(ctx, key); derr != nil {
				return nil, nil, "", derr
			}
			continue
		}
		return m, inst, key, nil
	}
	return nil, nil, "", nil
}

func (a *App) cancelActive(ctx context.Context, msg *chat.Message) error {
	m, inst, key, err := a.activeFlow(ctx, msg.UserKey())
	if err != nil || m == nil {
		return err
	}
	if !m.CanCancel() {
		next, err := m.OnMessage(ctx, a.transport, inst, msg)
		if err != nil {
			return err
		}
		return a.persistFlow(ctx, m, key, next, false)
	}
	if err := m.Cancel(ctx, a.transport, msg.ChatID); err != nil {
		return err
	}
	a.flowEnded(m, true)
	return a.sessions.Delete(ctx, key)
}

func (a *App) backActive(ctx context.Context, msg *chat.Message) error {
	m, inst, key, err := a.activeFlow(ctx, msg.UserKey())
	if err != nil || m == nil {
		return err
	}
	if !m.CanBack() {
		next, err := m.OnMessage(ctx, a.transport, inst, msg)
		if err != nil {
			return err
		}
		return a.persistFlow(ctx, m, key, next, false)
	}
	next, err := m.Back(ctx, a.transport, inst, msg)
	if err != nil {
		return err
	}
	return a.persistFlow(ctx, m, key, next, false)
}

func (a *App) runFlowCommand(ctx context.Context, m *flow.Machine, msg *chat.Message, args []string) error {
	key := flowKey(m.ID(), msg.UserKey())
	data, err := a.sessions.Load(ctx, key)
	switch {
	case err == nil:
		inst, derr := flow.DecodeInstance(data)
		if derr == nil {
			next, err := m.OnMessage(ctx, a.transport, inst, msg)
			if err != nil {
				return err
			}
			return a.persistFlow(ctx, m, key, next, false)
		}
		a.logger.Warn("dropping corrupt flow state", "flow", m.Name(), "user", msg.UserKey(), "err", derr)
	case !errors.Is(err, ports.ErrNotFound):
		return err
	}
	next, err := m.Start(ctx, a.transport, msg, args)
	if err != nil {
		return err
	}
	a.flowStarted(m)
	return a.persistFlow(ctx, m, key, next, true)
}

func (a *App) routeText(ctx context.Context, msg *chat.Message) error {
	m, inst, key, err := a.activeFlow(ctx, msg.UserKey())
	if err != nil {
		return err
	}
	if m != nil {
		next, err := m.OnMessage(ctx, a.transport, inst, msg)
		if err != nil {
			return err
		}
		return a.persistFlow(ctx, m, key, next, false)
	}
	for _, h := range a.texters {
		handled, err := h.HandleText(ctx, a.transport, msg)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}
	a.logger.Debug("unrouted message", "user", msg.UserKey())
	return nil
}

func (a *App) handleCallback(ctx context.Context, cb *chat.Callback) error {
	if flowID, _, ok := widget.DecodeCallback(cb.Data); ok {
		if m, ok := a.flowsByID[flowID]; ok {
			return a.runFlowCallback(ctx, m, cb)
		}
		if s, ok := a.settings[flowID]; ok {
			return s.HandleCallback(ctx, a.transport, cb)
		}
	}
	for _, h := range a.callbacks {
		if h.Matches(cb.Data) {
			return h.HandleCallback(ctx, a.transport, cb)
		}
	}
	// Stale or foreign button: just stop the spinner.
	return a.transport.AnswerCallback(ctx, cb.ID, "", false)
}

func (a *App) runFlowCallback(ctx context.Context, m *flow.Machine, cb *chat.Callback) error {
	key := flowKey(m.ID(), cb.UserKey())
	data, err := a.sessions.Load(ctx, key)
	if errors.Is(err, ports.ErrNotFound) {
		return a.transport.AnswerCallback(ctx, cb.ID, "", false)
	}
	if err != nil {
		return err
	}
	inst, err := flow.DecodeInstance(data)
	if err != nil {
		a.logger.Warn("dropping corrupt flow state", "flow", m.Name(), "user", cb.UserKey(), "err", err)
		if derr := a.sessions.Delete(ctx, key); derr != nil {
			return derr
		}
		return a.transport.AnswerCallback(ctx, cb.ID, "", false)
	}
	next, err := m.OnCallback(ctx, a.transport, inst, cb)
	if err != nil {
		return err
	}
	return a.persistFlow(ctx, m, key, next, false)
}

// persistFlow saves the instance that came back from the machine, or
// deletes the session when the flow has ended.
func (a *App) persistFlow(ctx context.Context, m *flow.Machine, key string, next *flow.Instance, fresh bool) error {
	if next == nil {
		a.flowEnded(m, false)
		if fresh {
			// Never stored; a delete would be a no-op but still a
			// round trip.
			return nil
		}
		return a.sessions.Delete(ctx, key)
	}
	data, err := next.Encode()
	if err != nil {
		return err
	}
	return a.sessions.Save(ctx, key, data)
}

func (a *App) observe(kind string) func() {
	if a.metrics == nil {
		return func() {}
	}
	a.metrics.UpdatesTotal.WithLabelValues(kind).Inc()
	start := time.Now()
	return func() {
		a.metrics.UpdateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}
}

func (a *App) flowStarted(m *flow.Machine) {
	if a.metrics == nil {
		return
	}
	a.metrics.FlowsStarted.WithLabelValues(m.Name()).Inc()
	a.metrics.ActiveFlows.Inc()
}

func (a *App) flowEnded(m *flow.Machine, cancelled bool) {
	if a.metrics == nil {
		return
	}
	if cancelled {
		a.metrics.FlowsCancelled.WithLabelValues(m.Name()).Inc()
	} else {
		a.metrics.FlowsCompleted.WithLabelValues(m.Name()).Inc()
	}
	a.metrics.ActiveFlows.Dec()
}
