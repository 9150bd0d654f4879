package widget

import (
	"fmt"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// ListBuilder collects free-form items one message at a time, with undo and
// an explicit Done commit. The committed value is the item slice.
type ListBuilder struct {
	Ask string
	Min int
	Max int
}

func (l *ListBuilder) max() int {
	if l.Max == 0 {
		return 100
	}
	return l.Max
}

func (l *ListBuilder) Prompt() string      { return l.Ask }
func (l *ListBuilder) NeedsCallback() bool { return true }

func (l *ListBuilder) Render(ctx *Context) (string, *chat.Keyboard) {
	items := ctx.Strings()
	var b strings.Builder
	b.WriteString(l.Ask)
	if len(items) > 0 {
		b.WriteString("\n\n")
		for i, item := range items {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
	}
	fmt.Fprintf(&b, "\nSend a message to add (%d/%d):", len(items), l.max())

	if len(items) == 0 {
		return b.String(), nil
	}
	kb := chat.NewInline()
	if len(items) >= l.Min {
		kb.Text(fmt.Sprintf("Done (%d items)", len(items)), ctx.Callback("lb:done"))
	}
	kb.Text(ctx.Theme.Action.RemoveLast, ctx.Callback("lb:undo")).Row()
	return b.String(), kb
}

func (l *ListBuilder) HandleMessage(msg *chat.Message, ctx *Context) Result {
	items := ctx.Strings()
	if msg.Text == "" {
		return Reject{Message: ctx.Theme.Errors.SendText}
	}
	if len(items) >= l.max() {
		return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.MaxReached, l.max())}
	}
	if errMsg := validateText(msg.Text, ctx); errMsg != "" {
		return Reject{Message: "Invalid: " + errMsg + ". Try again:"}
	}
	return Stay{Value: append(items, msg.Text)}
}

func (l *ListBuilder) HandleCallback(value string, ctx *Context) Result {
	items := ctx.Strings()
	switch value {
	case "lb:done":
		if len(items) < l.Min {
			return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.MinRequired, l.Min)}
		}
		shown := items
		suffix := ""
		if len(shown) > 3 {
			shown, suffix = shown[:3], ", ..."
		}
		summary := fmt.Sprintf("%d items: %s%s", len(items), strings.Join(shown, ", "), suffix)
		return Advance{Value: items, Summary: summary}
	case "lb:undo":
		if len(items) == 0 {
			return NoOp{}
		}
		return Stay{Value: items[:len(items)-1]}
	}
	return NoOp{}
}
