package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/tgflow"
	"github.com/aretw0/tgflow/pkg/browse"
	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/flow"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/widget"
)

// demoTask is the entity the demo bot browses.
type demoTask struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Qty   int    `json:"qty"`
	Done  bool   `json:"done"`
}

// demoState is the in-memory backend of the demo bot.
type demoState struct {
	mu     sync.Mutex
	nextID int64
	tasks  []*demoTask
	prefs  map[string]map[string]any
}

func newDemoState() *demoState {
	d := &demoState{prefs: make(map[string]map[string]any)}
	d.add("Water the plants", 1)
	d.add("Buy coffee beans", 2)
	d.add("Ship the release", 1)
	return d
}

func (d *demoState) add(title string, qty int) *demoTask {
	d.nextID++
	t := &demoTask{ID: d.nextID, Title: title, Qty: qty}
	d.tasks = append(d.tasks, t)
	return t
}

func (d *demoState) snapshot(q browse.Query) []any {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []any
	for _, t := range d.tasks {
		switch q.FilterKey {
		case "open":
			if t.Done {
				continue
			}
		case "done":
			if !t.Done {
				continue
			}
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (d *demoState) find(id int64) *demoTask {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (d *demoState) remove(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, t := range d.tasks {
		if t.ID == id {
			d.tasks = append(d.tasks[:i], d.tasks[i+1:]...)
			return
		}
	}
}

// RegisterDemo wires the demo bot: a task-creation flow, a feedback
// flow, a task browser with search, and a settings panel. It doubles as
// a living example of the library surface.
func RegisterDemo(app *tgflow.App) error {
	state := newDemoState()

	if err := app.Command("start", func(ctx context.Context, tp ports.Transport, msg *chat.Message, _ []string) error {
		_, err := tp.SendMessage(ctx, msg.ChatID,
			"Demo bot. Try /task, /tasks, /find, /feedback or /prefs.", nil)
		return err
	}); err != nil {
		return err
	}

	if _, err := app.RegisterFlow(flow.Definition{
		Name:    "task",
		Command: "task",
		Fields: []flow.Field{
			{
				Name:       "title",
				Type:       widget.TypeString,
				Widget:     &widget.Text{Ask: "What needs doing?"},
				Validators: []widget.Validator{widget.MinLen(3)},
				CommandArg: true,
			},
			{
				Name:   "qty",
				Type:   widget.TypeInt,
				Widget: &widget.Counter{Ask: "How many times?", Min: 1, Max: 10, Default: 1},
			},
			{
				Name:     "due",
				Type:     widget.TypeString,
				Widget:   &widget.DatePicker{Ask: "Due date?"},
				Optional: true,
			},
		},
		Progress: true,
		Summary:  true,
		Finish: func(ctx context.Context, v flow.Values) (flow.Outcome, error) {
			state.mu.Lock()
			t := state.add(v.String("title", "untitled"), v.Int("qty", 1))
			state.mu.Unlock()
			return flow.Outcome{
				Text:        fmt.Sprintf("Task #%d created.", t.ID),
				NextCommand: "tasks",
			}, nil
		},
	}); err != nil {
		return err
	}

	if _, err := app.RegisterFlow(flow.Definition{
		Name:       "feedback",
		Command:    "feedback",
		LaunchMode: flow.LaunchExclusive,
		ShowMode:   flow.ShowEdit,
		Fields: []flow.Field{
			{
				Name:   "stars",
				Type:   widget.TypeInt,
				Widget: &widget.Rating{Ask: "How are we doing?"},
			},
			{
				Name:     "comment",
				Type:     widget.TypeString,
				Widget:   &widget.Text{Ask: "Anything to add?"},
				Optional: true,
				When: func(v flow.Values) bool {
					return v.Int("stars", 5) < 5
				},
			},
		},
		Finish: func(ctx context.Context, v flow.Values) (flow.Outcome, error) {
			return flow.Outcome{Text: "Thanks for the feedback!"}, nil
		},
	}); err != nil {
		return err
	}

	taskActions := []browse.Action{
		{
			Name:  "done",
			Label: "Done",
			Handle: func(ctx context.Context, entity any, _ bool) (browse.Result, error) {
				t := entity.(*demoTask)
				state.mu.Lock()
				t.Done = true
				state.mu.Unlock()
				return browse.Refresh{Message: "Marked done."}, nil
			},
		},
		{
			Name:  "del",
			Label: "Delete",
			Handle: func(ctx context.Context, entity any, confirmed bool) (browse.Result, error) {
				t := entity.(*demoTask)
				if !confirmed {
					return browse.Confirm{Prompt: fmt.Sprintf("Delete %q?", t.Title)}, nil
				}
				state.remove(t.ID)
				return browse.Refresh{Message: "Deleted."}, nil
			},
		},
	}
	taskCard := func(entity any) string {
		t := entity.(*demoTask)
		status := "open"
		if t.Done {
			status = "done"
		}
		return fmt.Sprintf("#%d %s (x%d, %s)", t.ID, t.Title, t.Qty, status)
	}
	taskID := func(entity any) int64 { return entity.(*demoTask).ID }
	taskQuery := func(ctx context.Context, q browse.Query) (browse.Source, error) {
		return &browse.SliceSource{Items: state.snapshot(q)}, nil
	}

	if _, err := app.RegisterBrowse(browse.Config{
		Name:      "tsk",
		Command:   "tasks",
		PageSize:  3,
		EmptyText: "No tasks yet. Create one with /task.",
		Query:     taskQuery,
		EntityID:  taskID,
		Card:      taskCard,
		Actions:   taskActions,
		Filters: []browse.Filter{
			{Key: "open", Label: "Open"},
			{Key: "done", Label: "Done"},
		},
	}); err != nil {
		return err
	}

	if _, err := app.RegisterSearch(browse.SearchConfig{
		Config: browse.Config{
			Name:      "fnd",
			Command:   "find",
			PageSize:  3,
			EmptyText: "Nothing matched.",
			Query:     taskQuery,
			EntityID:  taskID,
			Card:      taskCard,
			Actions:   taskActions,
		},
		Prompt: "What are you looking for?",
	}); err != nil {
		return err
	}

	if _, err := app.RegisterSettings(browse.SettingsConfig{
		Name:    "prefs",
		Command: "prefs",
		Title:   "Preferences",
		Fields: []browse.SettingsField{
			{
				Name:   "notifications",
				Type:   widget.TypeBool,
				Widget: &widget.Toggle{Ask: "Notifications?"},
			},
			{
				Name:   "language",
				Type:   widget.TypeString,
				Widget: widget.EnumSelect("Pick a language:", 2, []string{"english", "portuguese", "spanish"}),
			},
			{
				Name:   "digest_time",
				Type:   widget.TypeString,
				Widget: &widget.TimePicker{Ask: "When should the digest arrive?"},
			},
		},
		Load: func(ctx context.Context, userKey string) (flow.Values, error) {
			state.mu.Lock()
			defer state.mu.Unlock()
			v := flow.Values{"notifications": true, "language": "english", "digest_time": "09:00"}
			for k, val := range state.prefs[userKey] {
				v[k] = val
			}
			return v, nil
		},
		Save: func(ctx context.Context, userKey, field string, value any) error {
			state.mu.Lock()
			defer state.mu.Unlock()
			if state.prefs[userKey] == nil {
				state.prefs[userKey] = make(map[string]any)
			}
			state.prefs[userKey][field] = value
			return nil
		},
	}); err != nil {
		return err
	}

	return nil
}
