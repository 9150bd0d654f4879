package widget

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/tgflow/pkg/chat"
)

// DatePicker is an inline calendar with day and month views. It commits the
// picked date as an ISO "2006-01-02" string.
type DatePicker struct {
	Ask string
	// Min and Max bound the pickable range inclusively. Zero means
	// unbounded.
	Min time.Time
	Max time.Time

	// Now is injected in tests; nil uses time.Now.
	Now func() time.Time
}

type dateView struct {
	Year  int    `json:"y"`
	Month int    `json:"m"`
	View  string `json:"view"`
}

func (d *DatePicker) Prompt() string      { return d.Ask }
func (d *DatePicker) NeedsCallback() bool { return true }

func (d *DatePicker) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *DatePicker) view(ctx *Context) dateView {
	var v dateView
	if ctx.DecodeState(&v) && v.Year != 0 {
		if v.View == "" {
			v.View = "day"
		}
		return v
	}
	today := d.now()
	return dateView{Year: today.Year(), Month: int(today.Month()), View: "day"}
}

func (d *DatePicker) inRange(day time.Time) bool {
	if !d.Min.IsZero() && day.Before(d.Min) {
		return false
	}
	if !d.Max.IsZero() && day.After(d.Max) {
		return false
	}
	return true
}

// monthWeeks lays the month out Monday-first; zero cells pad partial weeks.
func monthWeeks(year, month int) [][]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lead := (int(first.Weekday()) + 6) % 7
	days := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()

	cells := make([]int, lead, lead+days)
	for day := 1; day <= days; day++ {
		cells = append(cells, day)
	}
	for len(cells)%7 != 0 {
		cells = append(cells, 0)
	}

	weeks := make([][]int, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		weeks = append(weeks, cells[i:i+7])
	}
	return weeks
}

func (d *DatePicker) Render(ctx *Context) (string, *chat.Keyboard) {
	v := d.view(ctx)
	if v.View == "month" {
		return d.Ask, d.renderMonthView(v, ctx)
	}
	return d.Ask, d.renderDayView(v, ctx)
}

func (d *DatePicker) renderDayView(v dateView, ctx *Context) *chat.Keyboard {
	kb := chat.NewInline()
	title := fmt.Sprintf("%s %d", time.Month(v.Month).String(), v.Year)
	kb.Text(ctx.Theme.Nav.Prev, ctx.Callback("dp:pm")).
		Text(title, ctx.Callback("dp:mv")).
		Text(ctx.Theme.Nav.Next, ctx.Callback("dp:nm")).
		Row()
	for _, wd := range []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"} {
		kb.Text(wd, ctx.Callback("dp:noop"))
	}
	kb.Row()
	for _, week := range monthWeeks(v.Year, v.Month) {
		for _, day := range week {
			if day == 0 {
				kb.Text(" ", ctx.Callback("dp:noop"))
				continue
			}
			date := time.Date(v.Year, time.Month(v.Month), day, 0, 0, 0, 0, time.UTC)
			if !d.inRange(date) {
				kb.Text(ctx.Theme.Display.DisabledDate, ctx.Callback("dp:noop"))
				continue
			}
			kb.Text(strconv.Itoa(day), ctx.Callback("dp:d:"+date.Format("2006-01-02")))
		}
		kb.Row()
	}
	return kb
}

func (d *DatePicker) renderMonthView(v dateView, ctx *Context) *chat.Keyboard {
	kb := chat.NewInline()
	kb.Text(ctx.Theme.Nav.Prev, ctx.Callback("dp:py")).
		Text(strconv.Itoa(v.Year), ctx.Callback("dp:noop")).
		Text(ctx.Theme.Nav.Next, ctx.Callback("dp:ny")).
		Row()
	for m := 1; m <= 12; m++ {
		abbr := time.Month(m).String()[:3]
		kb.Text(abbr, ctx.Callback("dp:m:"+strconv.Itoa(m)))
		if m%3 == 0 {
			kb.Row()
		}
	}
	return kb
}

func (d *DatePicker) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return Reject{Message: ctx.Theme.Errors.UseCalendar}
}

func (d *DatePicker) HandleCallback(value string, ctx *Context) Result {
	v := d.view(ctx)
	switch value {
	case "dp:pm":
		v.Month--
		if v.Month < 1 {
			v.Month, v.Year = 12, v.Year-1
		}
		return Stay{Value: v}
	case "dp:nm":
		v.Month++
		if v.Month > 12 {
			v.Month, v.Year = 1, v.Year+1
		}
		return Stay{Value: v}
	case "dp:py":
		v.Year--
		return Stay{Value: v}
	case "dp:ny":
		v.Year++
		return Stay{Value: v}
	case "dp:mv":
		v.View = "month"
		return Stay{Value: v}
	case "dp:noop":
		return NoOp{}
	}
	if m, ok := strings.CutPrefix(value, "dp:m:"); ok {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return NoOp{}
		}
		v.Month, v.View = month, "day"
		return Stay{Value: v}
	}
	if iso, ok := strings.CutPrefix(value, "dp:d:"); ok {
		date, err := time.Parse("2006-01-02", iso)
		if err != nil || !d.inRange(date) {
			return NoOp{}
		}
		return Advance{Value: iso, Summary: date.Format(ctx.Theme.Display.DateFormat)}
	}
	return NoOp{}
}
