package chat

import (
	"strings"
	"time"
)

// Message is an entry in a conversation.
// Read starts false and only ever moves to true, set by the non-sender.
type Message struct {
	ID             string         `db:"id"`
	ConversationID ConversationID `db:"conversation_id"`
	SenderID       string         `db:"sender_id"`
	Body           string         `db:"message"`
	CreatedAt      time.Time      `db:"created_at"`
	Read           bool           `db:"read"`
}

// NewMessage validates an outgoing message. The body is trimmed and must not
// be empty afterwards.
func NewMessage(conversationID ConversationID, senderID string, body string) (Message, error) {
	if conversationID.IsZero() {
		return Message{}, ErrInvalidConversationID
	}
	if senderID == "" {
		return Message{}, ErrMissingSender
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}
	return Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           trimmed,
	}, nil
}

// UnreadFor tells whether the message is still unread inbound traffic for userID.
func (m Message) UnreadFor(userID string) bool {
	return !m.Read && m.SenderID != userID
}

// MarkReadBy flips Read to true when reader is not the sender.
// It reports whether the message changed.
func (m *Message) MarkReadBy(reader string) bool {
	if !m.UnreadFor(reader) {
		return false
	}
	m.Read = true
	return true
}
