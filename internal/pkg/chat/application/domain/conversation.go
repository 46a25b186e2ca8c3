package chat

import (
	"time"

	"github.com/google/uuid"
)

// ConversationID identifies a 1:1 conversation.
// The zero value is not a valid id; values come from ParseConversationID,
// which repositories use when hydrating rows returned by the backend.
type ConversationID struct {
	id uuid.UUID
}

// ParseConversationID validates s and returns the typed identifier.
// Placeholder ids such as "not-a-uuid" or the nil UUID are rejected.
func ParseConversationID(s string) (ConversationID, error) {
	u, err := uuid.Parse(s)
	if err != nil || u == uuid.Nil {
		return ConversationID{}, ErrInvalidConversationID
	}
	return ConversationID{id: u}, nil
}

// NewConversationID returns a fresh random identifier. Used by in-memory stores.
func NewConversationID() ConversationID {
	return ConversationID{id: uuid.New()}
}

func (c ConversationID) String() string {
	if c.IsZero() {
		return ""
	}
	return c.id.String()
}

func (c ConversationID) IsZero() bool { return c.id == uuid.Nil }

func (c ConversationID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Conversation represents a 1:1 thread between exactly two users.
type Conversation struct {
	ID             ConversationID `db:"id"`
	ParticipantIDs [2]string      `db:"participant_ids"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID string) (string, bool) {
	switch userID {
	case c.ParticipantIDs[0]:
		return c.ParticipantIDs[1], true
	case c.ParticipantIDs[1]:
		return c.ParticipantIDs[0], true
	}
	return "", false
}

// ConversationSummary is a conversation as seen from one participant's inbox.
type ConversationSummary struct {
	Conversation       Conversation
	OtherParticipantID string
	LastMessage        *Message
	UnreadCount        int
}
