package telegram

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/tgflow/pkg/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// apiStub fakes the Bot API: per-method responses plus a capture of the
// last request body per method.
type apiStub struct {
	t         *testing.T
	responses map[string]string
	requests  map[string]map[string]any
}

func newStub(t *testing.T) (*apiStub, *httptest.Server) {
	t.Helper()
	stub := &apiStub{
		t:         t,
		responses: make(map[string]string),
		requests:  make(map[string]map[string]any),
	}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	require.Equal(s.t, "/botTEST-TOKEN/", r.URL.Path[:len("/botTEST-TOKEN/")])
	method := r.URL.Path[len("/botTEST-TOKEN/"):]

	body, err := io.ReadAll(r.Body)
	require.NoError(s.t, err)
	var payload map[string]any
	require.NoError(s.t, json.Unmarshal(body, &payload))
	s.requests[method] = payload

	resp, ok := s.responses[method]
	if !ok {
		resp = `{"ok":true,"result":true}`
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, resp)
}

func newTestBot(t *testing.T) (*Bot, *apiStub) {
	t.Helper()
	stub, srv := newStub(t)
	bot, err := New("TEST-TOKEN", WithBaseURL(srv.URL))
	require.NoError(t, err)
	return bot, stub
}

func TestNew_RequiresToken(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestSendMessage_InlineKeyboard(t *testing.T) {
	bot, stub := newTestBot(t)
	stub.responses["sendMessage"] = `{"ok":true,"result":{"message_id":99}}`

	kb := chat.NewInline().
		Text("Yes", "cb-yes").Text("No", "cb-no").Row()
	id, err := bot.SendMessage(t.Context(), 42, "Sure?", kb)
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)

	req := stub.requests["sendMessage"]
	assert.Equal(t, float64(42), req["chat_id"])
	assert.Equal(t, "Sure?", req["text"])

	markup := req["reply_markup"].(map[string]any)
	rows := markup["inline_keyboard"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].([]any)
	require.Len(t, row, 2)
	first := row[0].(map[string]any)
	assert.Equal(t, "Yes", first["text"])
	assert.Equal(t, "cb-yes", first["callback_data"])
}

func TestSendMessage_ReplyKeyboard(t *testing.T) {
	bot, stub := newTestBot(t)
	stub.responses["sendMessage"] = `{"ok":true,"result":{"message_id":1}}`

	kb := chat.NewReply().Resize().OneTime().
		Add(chat.Button{Text: "Share", RequestContact: true}).Row()
	_, err := bot.SendMessage(t.Context(), 42, "Contact?", kb)
	require.NoError(t, err)

	markup := stub.requests["sendMessage"]["reply_markup"].(map[string]any)
	assert.Equal(t, true, markup["resize_keyboard"])
	assert.Equal(t, true, markup["one_time_keyboard"])
	row := markup["keyboard"].([]any)[0].([]any)
	btn := row[0].(map[string]any)
	assert.Equal(t, "Share", btn["text"])
	assert.Equal(t, true, btn["request_contact"])
}

func TestSendMessage_NoKeyboardOmitsMarkup(t *testing.T) {
	bot, stub := newTestBot(t)
	stub.responses["sendMessage"] = `{"ok":true,"result":{"message_id":1}}`

	_, err := bot.SendMessage(t.Context(), 42, "hi", nil)
	require.NoError(t, err)
	_, has := stub.requests["sendMessage"]["reply_markup"]
	assert.False(t, has)
}

func TestSendMessage_APIError(t *testing.T) {
	bot, stub := newTestBot(t)
	stub.responses["sendMessage"] = `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`

	_, err := bot.SendMessage(t.Context(), 42, "hi", nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Code)
	assert.Contains(t, apiErr.Error(), "blocked")
}

func TestEditMessage_NotModifiedIsSuccess(t *testing.T) {
	bot, stub := newTestBot(t)
	stub.responses["editMessageText"] = `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified"}`

	assert.NoError(t, bot.EditMessage(t.Context(), 42, 7, "same", nil))

	stub.responses["editMessageText"] = `{"ok":false,"error_code":400,"description":"Bad Request: message to edit not found"}`
	assert.Error(t, bot.EditMessage(t.Context(), 42, 7, "same", nil))
}

func TestDeleteMessage_AlreadyGoneIsSuccess(t *testing.T) {
	bot, stub := newTestBot(t)
	stub.responses["deleteMessage"] = `{"ok":false,"error_code":400,"description":"Bad Request: message to delete not found"}`

	assert.NoError(t, bot.DeleteMessage(t.Context(), 42, 7))
}

func TestAnswerCallback_Payload(t *testing.T) {
	bot, stub := newTestBot(t)

	require.NoError(t, bot.AnswerCallback(t.Context(), "cbq1", "Saved.", true))
	req := stub.requests["answerCallbackQuery"]
	assert.Equal(t, "cbq1", req["callback_query_id"])
	assert.Equal(t, "Saved.", req["text"])
	assert.Equal(t, true, req["show_alert"])
}
