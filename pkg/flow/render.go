package flow

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/aretw0/tgflow/pkg/ports"
	"github.com/aretw0/tgflow/pkg/widget"
)

// display delivers a prompt according to the definition's show mode,
// updating the tracked message ID on inst as a side effect.
func (m *Machine) display(ctx context.Context, tp ports.Transport, chatID int64, inst *Instance, text string, kb *chat.Keyboard) error {
	switch m.def.ShowMode {
	case ShowEdit:
		if kb != nil && !kb.IsInline() {
			m.logger.Warn("reply keyboard cannot be edited in place, sending new message",
				"flow", m.def.Name)
			return m.sendTracked(ctx, tp, chatID, inst, text, kb)
		}
		if inst.MessageID == 0 {
			return m.sendTracked(ctx, tp, chatID, inst, text, kb)
		}
		if err := tp.EditMessage(ctx, chatID, inst.MessageID, text, kb); err != nil {
			m.logger.Warn("edit failed, sending new message",
				"flow", m.def.Name, "err", err)
			return m.sendTracked(ctx, tp, chatID, inst, text, kb)
		}
		return nil

	case ShowDeleteAndSend:
		if inst.MessageID != 0 {
			if err := tp.DeleteMessage(ctx, chatID, inst.MessageID); err != nil {
				m.logger.Debug("delete failed", "flow", m.def.Name, "err", err)
			}
		}
		return m.sendTracked(ctx, tp, chatID, inst, text, kb)

	default:
		_, err := tp.SendMessage(ctx, chatID, text, kb)
		return err
	}
}

func (m *Machine) sendTracked(ctx context.Context, tp ports.Transport, chatID int64, inst *Instance, text string, kb *chat.Keyboard) error {
	id, err := tp.SendMessage(ctx, chatID, text, kb)
	if err != nil {
		return err
	}
	inst.MessageID = id
	return nil
}

// progressPrefix draws the position bar shown above each prompt.
func (m *Machine) progressPrefix(step int) string {
	total := len(m.prompted)
	pos := step + 1
	barLen := total
	if barLen > 10 {
		barLen = 10
	}
	filled := int(math.Round(float64(pos) / float64(total) * float64(barLen)))
	return strings.Repeat("█", filled) + strings.Repeat("░", barLen-filled) +
		fmt.Sprintf(" %d/%d\n\n", pos, total)
}

// showSummary renders the pre-finish review screen.
func (m *Machine) showSummary(ctx context.Context, tp ports.Transport, chatID int64, inst *Instance) error {
	var lines []string
	for _, f := range m.def.Fields {
		v, ok := inst.Slots[f.Name]
		if !ok || v == nil {
			continue
		}
		lines = append(lines, "  "+widget.TitleLabel(f.Name)+": "+widget.FormatValue(v, m.theme))
	}
	text := "(no data)"
	if len(lines) > 0 {
		text = "Review your answers:\n\n" + strings.Join(lines, "\n")
	}

	kb := chat.NewInline().
		Text(m.theme.Action.Done, widget.EncodeCallback(m.id, summaryToken)).
		Row()

	inst.Step = len(m.prompted)
	inst.SummaryPending = true
	return m.display(ctx, tp, chatID, inst, text, kb)
}
