package widget

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// RecurrencePicker builds a weekly schedule in three steps: weekday set,
// hour, then minute. It commits a "0,2@10:30" style string where the digits
// before '@' are Monday-based weekday indexes.
type RecurrencePicker struct {
	Ask         string
	MinHour     int
	MaxHour     int
	StepMinutes int
}

type recurrenceView struct {
	View string `json:"view"`
	Days string `json:"days"`
	Hour int    `json:"hour"`
}

func (r *RecurrencePicker) bounds() (minH, maxH, step int) {
	minH, maxH, step = r.MinHour, r.MaxHour, r.StepMinutes
	if maxH == 0 {
		maxH = 23
	}
	if step == 0 {
		step = 15
	}
	return
}

func (r *RecurrencePicker) Prompt() string      { return r.Ask }
func (r *RecurrencePicker) NeedsCallback() bool { return true }

func (r *RecurrencePicker) view(ctx *Context) recurrenceView {
	var v recurrenceView
	if ctx.DecodeState(&v) && v.View != "" {
		return v
	}
	return recurrenceView{View: "days"}
}

func sortedDayIdx(days string) []int {
	var idx []int
	for d := range SelectedKeys(days) {
		if n, err := strconv.Atoi(d); err == nil && n >= 0 && n < 7 {
			idx = append(idx, n)
		}
	}
	sort.Ints(idx)
	return idx
}

func dayNames(days string) string {
	var names []string
	for _, n := range sortedDayIdx(days) {
		names = append(names, weekdayNames[n])
	}
	return strings.Join(names, ", ")
}

func (r *RecurrencePicker) Render(ctx *Context) (string, *chat.Keyboard) {
	v := r.view(ctx)
	kb := chat.NewInline()
	switch v.View {
	case "hour":
		minH, maxH, _ := r.bounds()
		var buttons []chat.Button
		for h := minH; h <= maxH; h++ {
			buttons = append(buttons, chat.Button{
				Text: fmt.Sprintf("%02d", h),
				Data: ctx.Callback("rc:h:" + strconv.Itoa(h)),
			})
		}
		buildGrid(kb, buttons, 6)
		kb.Text(ctx.Theme.Nav.BackArrow, ctx.Callback("rc:back:days")).Row()
		return fmt.Sprintf("%s\n\n%s\nSelect hour:", r.Ask, dayNames(v.Days)), kb
	case "minute":
		_, _, step := r.bounds()
		var buttons []chat.Button
		for m := 0; m < 60; m += step {
			buttons = append(buttons, chat.Button{
				Text: fmt.Sprintf(":%02d", m),
				Data: ctx.Callback("rc:m:" + strconv.Itoa(m)),
			})
		}
		buildGrid(kb, buttons, 4)
		kb.Text(ctx.Theme.Nav.BackArrow, ctx.Callback("rc:back:hour")).Row()
		return fmt.Sprintf("%s\n\n%s at %02d:__\nSelect minutes:", r.Ask, dayNames(v.Days), v.Hour), kb
	default:
		selected := SelectedKeys(v.Days)
		for i, name := range weekdayNames {
			glyph := ctx.Theme.Selection.Unchecked
			if selected[strconv.Itoa(i)] {
				glyph = ctx.Theme.Selection.Checked
			}
			kb.Text(glyph+" "+name, ctx.Callback("rc:d:"+strconv.Itoa(i))).Row()
		}
		if len(selected) > 0 {
			kb.Text(ctx.Theme.Nav.Next+" Next", ctx.Callback("rc:next")).Row()
		}
		return r.Ask, kb
	}
}

func (r *RecurrencePicker) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (r *RecurrencePicker) HandleCallback(value string, ctx *Context) Result {
	minH, maxH, step := r.bounds()
	v := r.view(ctx)
	if d, ok := strings.CutPrefix(value, "rc:d:"); ok {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 || n > 6 {
			return NoOp{}
		}
		selected := SelectedKeys(v.Days)
		if selected[d] {
			delete(selected, d)
		} else {
			selected[d] = true
		}
		v.Days = JoinKeys(selected)
		return Stay{Value: v}
	}
	switch value {
	case "rc:next":
		if len(SelectedKeys(v.Days)) == 0 {
			return Reject{Message: ctx.Theme.Errors.SelectDays}
		}
		v.View = "hour"
		return Stay{Value: v}
	case "rc:back:days":
		v.View = "days"
		return Stay{Value: v}
	case "rc:back:hour":
		v.View = "hour"
		return Stay{Value: v}
	}
	if h, ok := strings.CutPrefix(value, "rc:h:"); ok {
		hour, err := strconv.Atoi(h)
		if err != nil || hour < minH || hour > maxH {
			return NoOp{}
		}
		v.View, v.Hour = "minute", hour
		return Stay{Value: v}
	}
	if m, ok := strings.CutPrefix(value, "rc:m:"); ok {
		minute, err := strconv.Atoi(m)
		if err != nil || minute < 0 || minute >= 60 || minute%step != 0 {
			return NoOp{}
		}
		var days []string
		for _, n := range sortedDayIdx(v.Days) {
			days = append(days, strconv.Itoa(n))
		}
		stamp := fmt.Sprintf("%s@%02d:%02d", strings.Join(days, ","), v.Hour, minute)
		summary := fmt.Sprintf("%s at %02d:%02d", dayNames(v.Days), v.Hour, minute)
		return Advance{Value: stamp, Summary: summary}
	}
	return NoOp{}
}
