package widget

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// TimePicker selects a time of day in two steps: hour grid, then minute
// grid. It commits an "HH:MM" string.
type TimePicker struct {
	Ask         string
	MinHour     int
	MaxHour     int
	StepMinutes int
}

type timeView struct {
	View string `json:"view"`
	Hour int    `json:"hour"`
}

func (t *TimePicker) bounds() (minH, maxH, step int) {
	minH, maxH, step = t.MinHour, t.MaxHour, t.StepMinutes
	if maxH == 0 {
		maxH = 23
	}
	if step == 0 {
		step = 15
	}
	return
}

func (t *TimePicker) Prompt() string      { return t.Ask }
func (t *TimePicker) NeedsCallback() bool { return true }

func (t *TimePicker) view(ctx *Context) timeView {
	var v timeView
	if ctx.DecodeState(&v) && v.View != "" {
		return v
	}
	return timeView{View: "hour"}
}

func (t *TimePicker) Render(ctx *Context) (string, *chat.Keyboard) {
	minH, maxH, step := t.bounds()
	v := t.view(ctx)
	kb := chat.NewInline()
	if v.View == "minute" {
		var buttons []chat.Button
		for m := 0; m < 60; m += step {
			buttons = append(buttons, chat.Button{
				Text: fmt.Sprintf(":%02d", m),
				Data: ctx.Callback("tp:m:" + strconv.Itoa(m)),
			})
		}
		buildGrid(kb, buttons, 4)
		kb.Text(ctx.Theme.Nav.BackArrow, ctx.Callback("tp:back")).Row()
		text := fmt.Sprintf("%s\n\n%02d:__ - select minutes:", t.Ask, v.Hour)
		return text, kb
	}
	var buttons []chat.Button
	for h := minH; h <= maxH; h++ {
		buttons = append(buttons, chat.Button{
			Text: fmt.Sprintf("%02d", h),
			Data: ctx.Callback("tp:h:" + strconv.Itoa(h)),
		})
	}
	buildGrid(kb, buttons, 6)
	return t.Ask + "\n\nSelect hour:", kb
}

func (t *TimePicker) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.UseTimePicker}
}

func (t *TimePicker) HandleCallback(value string, ctx *Context) Result {
	minH, maxH, step := t.bounds()
	v := t.view(ctx)
	if h, ok := strings.CutPrefix(value, "tp:h:"); ok {
		hour, err := strconv.Atoi(h)
		if err != nil || hour < minH || hour > maxH {
			return NoOp{}
		}
		return Stay{Value: timeView{View: "minute", Hour: hour}}
	}
	if m, ok := strings.CutPrefix(value, "tp:m:"); ok {
		minute, err := strconv.Atoi(m)
		if err != nil || minute < 0 || minute >= 60 || minute%step != 0 {
			return NoOp{}
		}
		stamp := fmt.Sprintf("%02d:%02d", v.Hour, minute)
		return Advance{Value: stamp, Summary: stamp}
	}
	if value == "tp:back" {
		return Stay{Value: timeView{View: "hour"}}
	}
	return NoOp{}
}
