package widget

import (
	"sort"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
)

// SummaryReview shows every committed sibling value for a final check and
// commits true on confirmation. Labels overrides the auto-generated field
// labels.
type SummaryReview struct {
	Labels map[string]string
	// Order fixes the display order. Fields absent from Order are
	// appended alphabetically.
	Order []string
}

func (s *SummaryReview) Prompt() string      { return "" }
func (s *SummaryReview) NeedsCallback() bool { return true }

func (s *SummaryReview) label(field string) string {
	if l, ok := s.Labels[field]; ok {
		return l
	}
	return TitleLabel(field)
}

func (s *SummaryReview) Render(ctx *Context) (string, *chat.Keyboard) {
	seen := make(map[string]bool)
	var fields []string
	for _, f := range s.Order {
		if v, ok := ctx.State[f]; ok && v != nil && f != ctx.FieldName {
			fields = append(fields, f)
			seen[f] = true
		}
	}
	var rest []string
	for f, v := range ctx.State {
		if !seen[f] && v != nil && f != ctx.FieldName {
			rest = append(rest, f)
		}
	}
	sort.Strings(rest)
	fields = append(fields, rest...)

	var b strings.Builder
	b.WriteString("Review your answers:\n")
	for _, f := range fields {
		b.WriteString("\n  " + s.label(f) + ": " + FormatValue(ctx.State[f], ctx.Theme))
	}
	if len(fields) == 0 {
		b.Reset()
		b.WriteString("(no data)")
	}
	kb := chat.NewInline().Text(ctx.Theme.Action.Done, ctx.Callback("sr:ok")).Row()
	return b.String(), kb
}

func (s *SummaryReview) HandleMessage(_ *chat.Message, ctx *Context) Result {
	return rejectText(ctx)
}

func (s *SummaryReview) HandleCallback(value string, _ *Context) Result {
	if value == "sr:ok" {
		return Advance{Value: true, Summary: "Confirmed"}
	}
	return NoOp{}
}
