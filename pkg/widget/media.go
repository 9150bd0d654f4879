package widget

import (
	"fmt"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Photo accepts a photo upload and commits the highest-resolution file ID.
type Photo struct {
	Ask string
}

func (p *Photo) Prompt() string      { return p.Ask }
func (p *Photo) NeedsCallback() bool { return false }

func (p *Photo) Render(_ *Context) (string, *chat.Keyboard) { return p.Ask, nil }

func (p *Photo) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if len(msg.Photos) == 0 {
		return Reject{Message: ctx.Theme.Errors.SendPhoto}
	}
	return Advance{Value: msg.Photos[len(msg.Photos)-1], Summary: "Photo uploaded"}
}

func (p *Photo) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendPhoto}
}

// Document accepts any document upload and commits its file ID.
type Document struct {
	Ask string
}

func (d *Document) Prompt() string      { return d.Ask }
func (d *Document) NeedsCallback() bool { return false }

func (d *Document) Render(_ *Context) (string, *chat.Keyboard) { return d.Ask, nil }

func (d *Document) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Document == "" {
		return Reject{Message: ctx.Theme.Errors.SendDocument}
	}
	return Advance{Value: msg.Document, Summary: "Document uploaded"}
}

func (d *Document) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendDocument}
}

// Video accepts a video upload and commits its file ID.
type Video struct {
	Ask string
}

func (v *Video) Prompt() string      { return v.Ask }
func (v *Video) NeedsCallback() bool { return false }

func (v *Video) Render(_ *Context) (string, *chat.Keyboard) { return v.Ask, nil }

func (v *Video) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Video == "" {
		return Reject{Message: ctx.Theme.Errors.SendVideo}
	}
	return Advance{Value: msg.Video, Summary: "Video uploaded"}
}

func (v *Video) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendVideo}
}

// Voice accepts a voice note and commits its file ID.
type Voice struct {
	Ask string
}

func (v *Voice) Prompt() string      { return v.Ask }
func (v *Voice) NeedsCallback() bool { return false }

func (v *Voice) Render(_ *Context) (string, *chat.Keyboard) { return v.Ask, nil }

func (v *Voice) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Voice == "" {
		return Reject{Message: ctx.Theme.Errors.SendVoice}
	}
	return Advance{Value: msg.Voice, Summary: "Voice message recorded"}
}

func (v *Voice) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendVoice}
}

// LocationInput accepts a shared location and commits it as a chat.Location.
type LocationInput struct {
	Ask string
}

func (l *LocationInput) Prompt() string      { return l.Ask }
func (l *LocationInput) NeedsCallback() bool { return false }

func (l *LocationInput) Render(_ *Context) (string, *chat.Keyboard) { return l.Ask, nil }

func (l *LocationInput) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Location == nil {
		return Reject{Message: ctx.Theme.Errors.SendLocation}
	}
	loc := *msg.Location
	return Advance{
		Value:   loc,
		Summary: fmt.Sprintf("Location: %.4f, %.4f", loc.Latitude, loc.Longitude),
	}
}

func (l *LocationInput) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendLocation}
}

// ContactInput asks for the user's contact via the platform share button.
// It is the one widget that renders a reply keyboard, so it is incompatible
// with edit-in-place display.
type ContactInput struct {
	Ask        string
	ButtonText string
}

func (c *ContactInput) Prompt() string      { return c.Ask }
func (c *ContactInput) NeedsCallback() bool { return false }

func (c *ContactInput) Render(_ *Context) (string, *chat.Keyboard) {
	label := c.ButtonText
	if label == "" {
		label = "📱 Share Contact"
	}
	kb := chat.NewReply().Resize().OneTime().
		Add(chat.Button{Text: label, RequestContact: true}).Row()
	return c.Ask, kb
}

func (c *ContactInput) HandleMessage(msg *chat.Message, ctx *Context) Result {
	if msg.Contact == nil {
		return Reject{Message: ctx.Theme.Errors.SendContact}
	}
	phone := msg.Contact.PhoneNumber
	return Advance{Value: phone, Summary: "Phone: " + phone}
}

func (c *ContactInput) HandleCallback(_ string, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.SendContact}
}
