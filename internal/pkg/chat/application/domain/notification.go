package chat

import "time"

// NotificationKindMessage is recorded when a message lands while its recipient is offline.
const NotificationKindMessage = "chat_message"

// Notification is a persisted, per-user inbox item.
type Notification struct {
	ID             string         `db:"id"`
	UserID         string         `db:"user_id"`
	Kind           string         `db:"kind"`
	ConversationID ConversationID `db:"conversation_id"`
	MessageID      string         `db:"message_id"`
	Body           string         `db:"body"`
	CreatedAt      time.Time      `db:"created_at"`
}
