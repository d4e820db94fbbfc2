// Package telegram holds the Bot API types and the thin HTTP client used to
// act on moderation decisions. Only the fields this system reads are
// declared; the Bot API tolerates unknown fields in both directions.
package telegram

// Update is an incoming webhook payload. Exactly one of the pointer fields
// is set per update; this system only cares about new and edited messages.
type Update struct {
	UpdateID      int64    `json:"update_id"`
	Message       *Message `json:"message,omitempty"`
	EditedMessage *Message `json:"edited_message,omitempty"`
}

// Msg returns the message carried by the update, preferring a new message
// over an edited one. Returns nil when the update carries neither.
func (u *Update) Msg() *Message {
	if u.Message != nil {
		return u.Message
	}
	return u.EditedMessage
}

// Message is a chat message as delivered by the Bot API.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
	Caption   string `json:"caption,omitempty"`
}

// ContentText returns the filterable text of the message: the text field,
// falling back to the media caption. Empty means there is nothing to
// evaluate.
func (m *Message) ContentText() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}

// User identifies a message sender.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Chat identifies the chat a message was posted in.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}
