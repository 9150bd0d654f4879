package telegram

import (
	"encoding/json"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Wire types for the slice of the Bot API surface the library consumes.
// Fields the engine never reads are omitted on purpose.

type wireUpdate struct {
	UpdateID      int64              `json:"update_id"`
	Message       *wireMessage       `json:"message"`
	CallbackQuery *wireCallbackQuery `json:"callback_query"`
}

type wireMessage struct {
	MessageID int64         `json:"message_id"`
	From      *wireUser     `json:"from"`
	Chat      wireChat      `json:"chat"`
	Text      string        `json:"text"`
	Photo     []wirePhoto   `json:"photo"`
	Document  *wireFile     `json:"document"`
	Video     *wireFile     `json:"video"`
	Voice     *wireFile     `json:"voice"`
	Location  *wireLocation `json:"location"`
	Contact   *wireContact  `json:"contact"`
	Caption   string        `json:"caption"`
}

type wireCallbackQuery struct {
	ID      string       `json:"id"`
	From    wireUser     `json:"from"`
	Message *wireMessage `json:"message"`
	Data    string       `json:"data"`
}

type wireUser struct {
	ID int64 `json:"id"`
}

type wireChat struct {
	ID int64 `json:"id"`
}

type wirePhoto struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireFile struct {
	FileID string `json:"file_id"`
}

type wireLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type wireContact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
}

// mapUpdate lowers a Bot API update into the transport-neutral form the
// engine consumes. Updates of kinds the engine has no use for map to the
// zero Update.
func mapUpdate(u wireUpdate) chat.Update {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		cb := &chat.Callback{
			ID:     cq.ID,
			FromID: cq.From.ID,
			Data:   cq.Data,
		}
		if cq.Message != nil {
			cb.ChatID = cq.Message.Chat.ID
			cb.MessageID = cq.Message.MessageID
		}
		return chat.Update{Callback: cb}
	case u.Message != nil:
		wm := u.Message
		msg := &chat.Message{
			ID:     wm.MessageID,
			ChatID: wm.Chat.ID,
			Text:   wm.Text,
		}
		if wm.From != nil {
			msg.FromID = wm.From.ID
		}
		if msg.Text == "" {
			msg.Text = wm.Caption
		}
		// Telegram orders photo sizes ascending already; keep the
		// order so the last entry is the largest.
		for _, p := range wm.Photo {
			msg.Photos = append(msg.Photos, p.FileID)
		}
		if wm.Document != nil {
			msg.Document = wm.Document.FileID
		}
		if wm.Video != nil {
			msg.Video = wm.Video.FileID
		}
		if wm.Voice != nil {
			msg.Voice = wm.Voice.FileID
		}
		if wm.Location != nil {
			msg.Location = &chat.Location{
				Latitude:  wm.Location.Latitude,
				Longitude: wm.Location.Longitude,
			}
		}
		if wm.Contact != nil {
			msg.Contact = &chat.Contact{
				PhoneNumber: wm.Contact.PhoneNumber,
				FirstName:   wm.Contact.FirstName,
			}
		}
		return chat.Update{Message: msg}
	default:
		return chat.Update{}
	}
}

// MapRawUpdate decodes an update that arrived outside the poller, e.g.
// through a webhook body already unmarshalled by the caller.
func MapRawUpdate(data []byte) (chat.Update, error) {
	var u wireUpdate
	if err := json.Unmarshal(data, &u); err != nil {
		return chat.Update{}, err
	}
	return mapUpdate(u), nil
}
