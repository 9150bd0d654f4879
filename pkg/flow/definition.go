package flow

import (
	"context"

	"github.com/aretw0/tgflow/pkg/chat"
)

// ShowMode controls how consecutive prompts are displayed.
type ShowMode int

const (
	// ShowSend posts every prompt as a new message.
	ShowSend ShowMode = iota
	// ShowEdit rewrites one message in place. Reply keyboards cannot be
	// edited and fall back to a fresh send with a warning.
	ShowEdit
	// ShowDeleteAndSend deletes the previous prompt before sending the
	// next one.
	ShowDeleteAndSend
)

// LaunchMode controls what re-issuing the launch command does while the
// flow is already active.
type LaunchMode int

const (
	// LaunchStandard treats the re-issued command text as ordinary input
	// for the current field.
	LaunchStandard LaunchMode = iota
	// LaunchReset discards progress and starts over.
	LaunchReset
	// LaunchExclusive refuses with a hint to /cancel first.
	LaunchExclusive
	// LaunchSingleTop re-renders the current prompt.
	LaunchSingleTop
)

// Outcome is what a finish handler returns: the completion text plus
// optional flow-chaining directives.
type Outcome struct {
	Text string

	// NextCommand suggests the command to run next. Combined with
	// SubFlow it pushes this flow onto the user's return stack.
	NextCommand string
	SubFlow     bool

	// Keyboard optionally attaches buttons to the completion message.
	Keyboard *chat.Keyboard
}

// FinishFunc receives the final answer snapshot. Every declared field is
// present; unanswered fields are nil.
type FinishFunc func(ctx context.Context, values Values) (Outcome, error)

// Definition declares a conversation flow. Name identifies the flow for
// callback routing and must be unique; Command is the slash command without
// the leading '/'.
type Definition struct {
	Name    string
	Command string
	Fields  []Field
	Finish  FinishFunc

	ShowMode   ShowMode
	LaunchMode LaunchMode

	// Progress prefixes each prompt with a position bar.
	Progress bool
	// Summary inserts a review screen before finishing.
	Summary bool

	// Cancel and back are available unless disabled.
	DisableCancel bool
	DisableBack   bool
}
