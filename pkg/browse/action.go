package browse

import "context"

// Result is the closed outcome set of an entity action.
type Result interface {
	isActionResult()
}

// Refresh re-renders the current view, optionally prefixing a message.
type Refresh struct {
	Message string
}

// Stay leaves the view untouched and surfaces Message as a callback toast,
// or as a popup when Alert is set.
type Stay struct {
	Message string
	Alert   bool
}

// Redirect hands the user to another command, optionally stashing context
// for that command to pick up.
type Redirect struct {
	Command string
	Message string
	Context map[string]any
}

// Confirm replaces the view with a yes/no prompt; the action re-runs with
// confirmed=true on yes.
type Confirm struct {
	Prompt string
}

func (Refresh) isActionResult()  {}
func (Stay) isActionResult()     {}
func (Redirect) isActionResult() {}
func (Confirm) isActionResult()  {}

// Action is one button under a browsed entity. Handle runs when pressed;
// confirmed is true on the second pass of a Confirm round trip, and a
// confirmed invocation must not ask to confirm again.
type Action struct {
	// Name routes the callback; unique per controller, must not start
	// with '_'.
	Name  string
	Label string
	// Row groups actions into keyboard rows.
	Row int

	Handle func(ctx context.Context, entity any, confirmed bool) (Result, error)
}

// Filter is one tab above the entity list.
type Filter struct {
	Key   string
	Label string
}
