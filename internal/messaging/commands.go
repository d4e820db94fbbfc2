package messaging

// DeleteCommand is published to enforce.delete by the webhook receiver when
// a message must be removed. The enforcer does not report back; deletion is
// fire-and-forget from the receiver's perspective.
type DeleteCommand struct {
	ActionID  string `json:"action_id"`
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
}

// LogCommand is published to enforce.log alongside a DeleteCommand. It
// carries everything the enforcer needs to write the audit record and the
// human-readable log entry: display labels are resolved by the receiver,
// the preview is already truncated.
type LogCommand struct {
	ActionID  string `json:"action_id"`
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	MessageID int64  `json:"message_id"`
	ChatLabel string `json:"chat_label"`
	UserLabel string `json:"user_label"`
	Keyword   string `json:"keyword"`
	Plural    bool   `json:"plural,omitempty"`
	SeenCount int64  `json:"seen_count"`
	Preview   string `json:"preview,omitempty"`
}
