package domain

import "strings"

// Conversation represents a monitored Slack direct or group-direct thread.
type Conversation struct {
	ID      string
	IsGroup bool
}

// Attachment describes a single file carried by a message.
type Attachment struct {
	ID          string
	Name        string
	MimeType    string
	DownloadURL string
	Size        int
}

// Message represents a message fetched from a conversation.
type Message struct {
	ConversationID string
	SenderID       string // empty for system/unknown senders
	TS             Timestamp
	Subtype        string
	Text           string
	Attachments    []Attachment
}

// discardedSubtypes are message subtypes that are never forwarded: system
// events, edits, deletions and bot traffic.
var discardedSubtypes = map[string]struct{}{
	"message_deleted": {},
	"message_changed": {},
	"channel_join":    {},
	"channel_leave":   {},
	"channel_topic":   {},
	"channel_purpose": {},
	"channel_name":    {},
	"bot_message":     {},
}

// IsSystemEvent reports whether the message has a subtype that should be
// discarded without forwarding.
func (m *Message) IsSystemEvent() bool {
	_, ok := discardedSubtypes[m.Subtype]
	return ok
}

// IsFrom reports whether the message was authored by the given user.
func (m *Message) IsFrom(userID string) bool {
	return m.SenderID != "" && m.SenderID == userID
}

// Preview returns the trimmed text body of the message.
func (m *Message) Preview() string {
	return strings.TrimSpace(m.Text)
}
