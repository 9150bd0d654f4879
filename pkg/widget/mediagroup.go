package widget

import (
	"fmt"

	"github.com/aretw0/tgflow/pkg/chat"
)

// MediaGroup collects several file uploads into one field. Accept narrows
// which kinds count: "photo", "document", "video" or "any".
type MediaGroup struct {
	Ask    string
	Min    int
	Max    int
	Accept string
}

func (g *MediaGroup) limits() (min, max int) {
	min, max = g.Min, g.Max
	if min == 0 {
		min = 1
	}
	if max == 0 {
		max = 10
	}
	return
}

func (g *MediaGroup) Prompt() string      { return g.Ask }
func (g *MediaGroup) NeedsCallback() bool { return true }

func (g *MediaGroup) Render(ctx *Context) (string, *chat.Keyboard) {
	min, max := g.limits()
	items := ctx.Strings()
	text := fmt.Sprintf("%s\n\n📎 %d/%d files added", g.Ask, len(items), max)
	if len(items) == 0 {
		return text, nil
	}
	kb := chat.NewInline()
	if len(items) >= min {
		kb.Text(fmt.Sprintf("%s (%d)", ctx.Theme.Action.Done, len(items)), ctx.Callback("mg:done"))
	}
	kb.Text(ctx.Theme.Action.RemoveLast, ctx.Callback("mg:undo")).Row()
	return text, kb
}

func (g *MediaGroup) fileID(msg *chat.Message) string {
	accept := g.Accept
	if accept == "" {
		accept = "any"
	}
	if (accept == "photo" || accept == "any") && len(msg.Photos) > 0 {
		return msg.Photos[len(msg.Photos)-1]
	}
	if (accept == "document" || accept == "any") && msg.Document != "" {
		return msg.Document
	}
	if (accept == "video" || accept == "any") && msg.Video != "" {
		return msg.Video
	}
	return ""
}

func (g *MediaGroup) HandleMessage(msg *chat.Message, ctx *Context) Result {
	_, max := g.limits()
	items := ctx.Strings()
	id := g.fileID(msg)
	if id == "" {
		return Reject{Message: ctx.Theme.Errors.SendMedia}
	}
	if len(items) >= max {
		return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.MaxReached, max)}
	}
	return Stay{Value: append(items, id)}
}

func (g *MediaGroup) HandleCallback(value string, ctx *Context) Result {
	min, _ := g.limits()
	items := ctx.Strings()
	switch value {
	case "mg:done":
		if len(items) < min {
			return Reject{Message: fmt.Sprintf(ctx.Theme.Errors.MinRequired, min)}
		}
		return Advance{Value: items, Summary: fmt.Sprintf("%d files", len(items))}
	case "mg:undo":
		if len(items) == 0 {
			return NoOp{}
		}
		return Stay{Value: items[:len(items)-1]}
	}
	return NoOp{}
}
