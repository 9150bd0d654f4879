package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/tgflow/pkg/chat"
)

// chatID is the single pseudo-chat a console session runs in.
const chatID int64 = 1

// Transport is a development stand-in for a real messaging platform. It
// prints messages to a terminal, shows inline buttons as a numbered
// list, and lets Run translate typed numbers back into button presses.
type Transport struct {
	mu      sync.Mutex
	out     io.Writer
	render  func(string) (string, error)
	profile termenv.Profile

	nextID  int64
	buttons map[int64][]chat.Button // inline buttons by message ID
	lastKB  int64                   // most recent message with buttons
}

// Option configures the console transport.
type Option func(*Transport)

// WithWriter redirects output, mainly for tests.
func WithWriter(w io.Writer) Option {
	return func(t *Transport) {
		t.out = w
	}
}

// WithPlainOutput disables markdown rendering and colors.
func WithPlainOutput() Option {
	return func(t *Transport) {
		t.render = nil
		t.profile = termenv.Ascii
	}
}

// New creates a console transport. Markdown rendering and colors are on
// only when stdout is a terminal.
func New(opts ...Option) *Transport {
	t := &Transport{
		out:     os.Stdout,
		profile: termenv.Ascii,
		buttons: make(map[int64][]chat.Button),
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.profile = termenv.ColorProfile()
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle()); err == nil {
			t.render = r.Render
		}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) styled(s string, color string) string {
	if t.profile == termenv.Ascii {
		return s
	}
	return termenv.String(s).Foreground(t.profile.Color(color)).String()
}

func (t *Transport) printMessage(id int64, header, text string, kb *chat.Keyboard) {
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, t.styled(fmt.Sprintf("%s #%d", header, id), "#818cf8"))
	body := text
	if t.render != nil {
		if r, err := t.render(text); err == nil {
			body = strings.TrimRight(r, "\n")
		}
	}
	fmt.Fprintln(t.out, body)

	delete(t.buttons, id)
	if kb == nil || kb.Empty() {
		return
	}
	if !kb.IsInline() {
		for _, row := range kb.Rows() {
			for _, btn := range row {
				fmt.Fprintln(t.out, t.styled("  ["+btn.Text+"]", "#a78bfa"))
			}
		}
		fmt.Fprintln(t.out, t.styled("  (reply keyboard: type the label to press)", "#6b7280"))
		return
	}
	var flat []chat.Button
	for _, row := range kb.Rows() {
		flat = append(flat, row...)
	}
	for i, btn := range flat {
		fmt.Fprintln(t.out, t.styled(fmt.Sprintf("  %d. %s", i+1, btn.Text), "#a78bfa"))
	}
	t.buttons[id] = flat
	t.lastKB = id
}

// SendMessage prints a new message and returns its pseudo ID.
func (t *Transport) SendMessage(_ context.Context, _ int64, text string, kb *chat.Keyboard) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	t.printMessage(t.nextID, "bot", text, kb)
	return t.nextID, nil
}

// EditMessage reprints the message under its original ID.
func (t *Transport) EditMessage(_ context.Context, _ int64, messageID int64, text string, kb *chat.Keyboard) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printMessage(messageID, "bot (edited)", text, kb)
	return nil
}

// DeleteMessage notes the removal; the terminal scrollback stays.
func (t *Transport) DeleteMessage(_ context.Context, _ int64, messageID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.buttons, messageID)
	fmt.Fprintln(t.out, t.styled(fmt.Sprintf("(message #%d deleted)", messageID), "#6b7280"))
	return nil
}

// AnswerCallback prints the acknowledgment text, if any.
func (t *Transport) AnswerCallback(_ context.Context, _ string, text string, alert bool) error {
	if text == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if alert {
		fmt.Fprintln(t.out, t.styled("⚠ "+text, "#fb7185"))
	} else {
		fmt.Fprintln(t.out, t.styled("· "+text, "#6b7280"))
	}
	return nil
}

// press resolves a typed number into the matching button of the latest
// keyboard-bearing message.
func (t *Transport) press(n int) (*chat.Callback, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	flat, ok := t.buttons[t.lastKB]
	if !ok || n < 1 || n > len(flat) {
		return nil, false
	}
	t.nextID++
	return &chat.Callback{
		ID:        strconv.FormatInt(t.nextID, 10),
		FromID:    chatID,
		ChatID:    chatID,
		MessageID: t.lastKB,
		Data:      flat[n-1].Data,
	}, true
}

// Run reads stdin lines until EOF or context cancellation. A bare number
// presses that button on the latest keyboard; anything else is sent as a
// text message.
func Run(ctx context.Context, t *Transport, in io.Reader, handler func(context.Context, chat.Update) error) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(t.out, t.styled("console mode: type a message, or a button number to press it", "#6b7280"))
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var u chat.Update
		if n, err := strconv.Atoi(line); err == nil {
			cb, ok := t.press(n)
			if !ok {
				fmt.Fprintln(t.out, t.styled("no such button", "#fb7185"))
				continue
			}
			u = chat.Update{Callback: cb}
		} else {
			t.mu.Lock()
			t.nextID++
			id := t.nextID
			t.mu.Unlock()
			u = chat.Update{Message: &chat.Message{
				ID:     id,
				ChatID: chatID,
				FromID: chatID,
				Text:   line,
			}}
		}
		if err := handler(ctx, u); err != nil {
			fmt.Fprintln(t.out, t.styled("error: "+err.Error(), "#fb7185"))
		}
	}
	return scanner.Err()
}
