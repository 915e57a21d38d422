package entity

import "time"

// Message kinds. A deleted message is terminal: once Type becomes
// MessageTypeDeleted it never transitions back, its body is replaced by
// DeletedBody and its file reference is cleared.
const (
	MessageTypeText    = "text"
	MessageTypeImage   = "image"
	MessageTypeAudio   = "audio"
	MessageTypeVideo   = "video"
	MessageTypeEmoji   = "emoji"
	MessageTypeDeleted = "deleted"
)

// DeletedBody is the placeholder shown in place of a soft-deleted message.
const DeletedBody = "This message was deleted"

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	SenderID   string    `json:"sender" firestore:"senderId"`
	ReceiverID string    `json:"receiver" firestore:"receiverId"`
	Body       string    `json:"message" firestore:"body"`
	FileURL    string    `json:"fileUrl,omitempty" firestore:"fileUrl,omitempty"`
	Type       string    `json:"type" firestore:"type"`
	Read       bool      `json:"read" firestore:"read"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
}

// Deleted reports whether the message has reached its terminal state.
func (m *Message) Deleted() bool {
	return m.Type == MessageTypeDeleted
}

// ValidMessageType reports whether t is a kind a client may send.
// MessageTypeDeleted is excluded: it is only ever set server-side.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio, MessageTypeVideo, MessageTypeEmoji:
		return true
	}
	return false
}
