package widget

import (
	"strings"
	"time"

	"github.com/aretw0/tgflow/pkg/chat"
)

// TimeSlotPicker lays provider-supplied slots out under per-day headers.
// Slot keys must carry an ISO date before 'T', e.g. "2026-03-02T10:00".
type TimeSlotPicker struct {
	Ask     string
	Columns int
	// DateFormat is the Go layout for the day headers.
	DateFormat string
}

func (t *TimeSlotPicker) dateFormat() string {
	if t.DateFormat == "" {
		return "Mon Jan 02"
	}
	return t.DateFormat
}

func (t *TimeSlotPicker) columns() int {
	if t.Columns == 0 {
		return 3
	}
	return t.Columns
}

func (t *TimeSlotPicker) Prompt() string      { return t.Ask }
func (t *TimeSlotPicker) NeedsCallback() bool { return true }

func (t *TimeSlotPicker) Render(ctx *Context) (string, *chat.Keyboard) {
	if len(ctx.Options) == 0 {
		return noOptionsText(t.Ask, ctx), nil
	}
	kb := chat.NewInline()
	currentDate := ""
	var row []chat.Button
	flush := func() {
		if len(row) > 0 {
			buildGrid(kb, row, t.columns())
			row = nil
		}
	}
	for _, o := range ctx.Options {
		date, _, _ := strings.Cut(o.Key, "T")
		if date != currentDate {
			flush()
			currentDate = date
			header := date
			if parsed, err := time.Parse("2006-01-02", date); err == nil {
				header = parsed.Format(t.dateFormat())
			}
			kb.Text("— "+header+" —", ctx.Callback("ts:noop")).Row()
		}
		row = append(row, chat.Button{Text: o.Label, Data: ctx.Callback("ts:" + o.Key)})
	}
	flush()
	return t.Ask, kb
}

func (t *TimeSlotPicker) HandleMessage(_ *chat.Message, ctx *Context) Result {
	if len(ctx.Options) == 0 {
		return noOptionsReject(ctx)
	}
	return rejectText(ctx)
}

func (t *TimeSlotPicker) HandleCallback(value string, ctx *Context) Result {
	if value == "ts:noop" {
		return NoOp{}
	}
	if key, ok := strings.CutPrefix(value, "ts:"); ok {
		if label, found := LookupOption(ctx.Options, key); found {
			return Advance{Value: key, Summary: "Selected: " + label}
		}
	}
	return NoOp{}
}
