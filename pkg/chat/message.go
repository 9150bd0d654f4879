// Package chat defines the transport-neutral conversation types shared by
// widgets, flows and adapters: inbound messages and callback presses,
// keyboards, and the compact callback payload helpers.
package chat

import "strconv"

// Location is a shared geographic point.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Contact is a shared contact card.
type Contact struct {
	PhoneNumber string `json:"phone_number"`
	FirstName   string `json:"first_name"`
}

// Message is an inbound chat message. Exactly the fields the widget set
// consumes; adapters map their platform update into this shape.
type Message struct {
	ID     int64
	ChatID int64
	FromID int64

	Text string

	// Photos holds file identifiers ordered by ascending resolution.
	Photos   []string
	Document string
	Video    string
	Voice    string
	Location *Location
	Contact  *Contact
}

// UserKey returns the session key for this message: the sender ID when
// known, the chat ID otherwise.
func (m *Message) UserKey() string {
	if m.FromID != 0 {
		return strconv.FormatInt(m.FromID, 10)
	}
	return strconv.FormatInt(m.ChatID, 10)
}

// Callback is an inbound button press.
type Callback struct {
	ID        string
	FromID    int64
	ChatID    int64
	MessageID int64
	Data      string
}

// UserKey returns the session key for this callback.
func (c *Callback) UserKey() string {
	return strconv.FormatInt(c.FromID, 10)
}

// Update is one inbound transport event. Exactly one field is non-nil.
type Update struct {
	Message  *Message
	Callback *Callback
}
