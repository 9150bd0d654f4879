package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tgflow/pkg/chat"
)

const defaultBaseURL = "https://api.telegram.org"

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: api error %d: %s", e.Code, e.Description)
}

// Bot talks to the Telegram Bot API over HTTP and implements
// ports.Transport.
type Bot struct {
	token   string
	baseURL string
	client  *http.Client
}

// BotOption configures the Bot.
type BotOption func(*Bot)

// WithBaseURL points the client at a different API host, e.g. a local
// bot API server or a test stub.
func WithBaseURL(u string) BotOption {
	return func(b *Bot) {
		b.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(c *http.Client) BotOption {
	return func(b *Bot) {
		b.client = c
	}
}

// New creates a Bot API client for the given token.
func New(token string, opts ...BotOption) (*Bot, error) {
	if token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	b := &Bot{
		token:   token,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 90 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

// call posts one Bot API method and decodes the result payload into out
// when out is non-nil.
func (b *Bot) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: encoding %s request: %w", method, err)
	}
	url := b.baseURL + "/bot" + b.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: calling %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: reading %s response: %w", method, err)
	}
	var ar apiResponse
	if err := json.Unmarshal(raw, &ar); err != nil {
		return fmt.Errorf("telegram: decoding %s response: %w", method, err)
	}
	if !ar.OK {
		return &APIError{Code: ar.ErrorCode, Description: ar.Description}
	}
	if out != nil {
		if err := json.Unmarshal(ar.Result, out); err != nil {
			return fmt.Errorf("telegram: decoding %s result: %w", method, err)
		}
	}
	return nil
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

type replyButton struct {
	Text           string `json:"text"`
	RequestContact bool   `json:"request_contact,omitempty"`
}

type inlineMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type replyMarkup struct {
	Keyboard        [][]replyButton `json:"keyboard"`
	ResizeKeyboard  bool            `json:"resize_keyboard,omitempty"`
	OneTimeKeyboard bool            `json:"one_time_keyboard,omitempty"`
}

// markup converts a keyboard into the Bot API reply_markup value.
func markup(kb *chat.Keyboard) any {
	if kb == nil || kb.Empty() {
		return nil
	}
	rows := kb.Rows()
	if kb.IsInline() {
		m := inlineMarkup{}
		for _, row := range rows {
			var r []inlineButton
			for _, btn := range row {
				r = append(r, inlineButton{Text: btn.Text, CallbackData: btn.Data})
			}
			m.InlineKeyboard = append(m.InlineKeyboard, r)
		}
		return m
	}
	m := replyMarkup{
		ResizeKeyboard:  kb.IsResize(),
		OneTimeKeyboard: kb.IsOneTime(),
	}
	for _, row := range rows {
		var r []replyButton
		for _, btn := range row {
			r = append(r, replyButton{Text: btn.Text, RequestContact: btn.RequestContact})
		}
		m.Keyboard = append(m.Keyboard, r)
	}
	return m
}

type sendMessageRequest struct {
	ChatID      int64  `json:"chat_id"`
	Text        string `json:"text"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

// SendMessage posts a new message and returns its ID.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string, kb *chat.Keyboard) (int64, error) {
	var sent wireMessage
	err := b.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup(kb),
	}, &sent)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

type editMessageRequest struct {
	ChatID      int64  `json:"chat_id"`
	MessageID   int64  `json:"message_id"`
	Text        string `json:"text"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

// EditMessage rewrites a message's text and inline keyboard. Editing to
// identical content is treated as success.
func (b *Bot) EditMessage(ctx context.Context, chatID, messageID int64, text string, kb *chat.Keyboard) error {
	err := b.call(ctx, "editMessageText", editMessageRequest{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ReplyMarkup: markup(kb),
	}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified") {
		return nil
	}
	return err
}

type deleteMessageRequest struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int64 `json:"message_id"`
}

// DeleteMessage removes a message. An already-deleted message is success.
func (b *Bot) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	err := b.call(ctx, "deleteMessage", deleteMessageRequest{
		ChatID:    chatID,
		MessageID: messageID,
	}, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message to delete not found") {
		return nil
	}
	return err
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
	ShowAlert       bool   `json:"show_alert,omitempty"`
}

// AnswerCallback acknowledges a button press.
func (b *Bot) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	return b.call(ctx, "answerCallbackQuery", answerCallbackRequest{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	}, nil)
}
