package ports

import (
	"context"

	"github.com/aretw0/tgflow/pkg/chat"
)

// Transport sends, edits and deletes chat messages and acknowledges button
// presses. Adapters implement it for a concrete platform.
type Transport interface {
	// SendMessage posts a new message and returns its ID.
	SendMessage(ctx context.Context, chatID int64, text string, kb *chat.Keyboard) (int64, error)

	// EditMessage rewrites an existing message's text and inline
	// keyboard. Reply keyboards cannot be attached this way.
	EditMessage(ctx context.Context, chatID, messageID int64, text string, kb *chat.Keyboard) error

	// DeleteMessage removes a message. Implementations should treat an
	// already-gone message as success.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// AnswerCallback acknowledges a button press. An empty text just
	// stops the client spinner; alert promotes the text to a popup.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}
