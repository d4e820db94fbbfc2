package telegram

import (
	"strconv"
	"strings"
)

// PreviewLimit is the maximum number of characters included in a log
// preview of deleted text.
const PreviewLimit = 200

// ChatLabel returns a human-readable chat identifier for log lines:
// the chat title, then @username, then the numeric ID.
func ChatLabel(c Chat) string {
	if c.Title != "" {
		return c.Title
	}
	if c.Username != "" {
		return "@" + c.Username
	}
	return strconv.FormatInt(c.ID, 10)
}

// UserLabel returns a human-readable user identifier for log lines:
// @username, then "first last", then the numeric ID.
func UserLabel(u *User) string {
	if u == nil {
		return "?"
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	return strconv.FormatInt(u.ID, 10)
}

// Preview truncates text to PreviewLimit characters, appending an ellipsis
// when truncated. Truncation counts runes, never splitting a character.
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		return text
	}
	return string(runes[:PreviewLimit]) + "…"
}
