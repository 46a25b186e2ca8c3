package chat

import (
	"errors"
)

// Domain-level errors for chat behaviors
var (
	ErrInvalidConversationID = errors.New("chat: invalid conversation id")
	ErrNotParticipant        = errors.New("chat: user is not a participant in the conversation")
	ErrEmptyMessage          = errors.New("chat: empty message body")
	ErrMissingSender         = errors.New("chat: sender id is required")
	ErrSelfConversation      = errors.New("chat: a conversation needs two distinct users")
	ErrInvalidParticipants   = errors.New("chat: conversation must have exactly two distinct participants")
	// ErrInvalidUserID is returned by stores that constrain the id format.
	ErrInvalidUserID = errors.New("chat: malformed user id")
)

// Chat is the domain aggregate for a conversation and its membership rules.
//
// The application layer hydrates it with the participant ids loaded from the
// repository before asking it questions; it holds no persistence concerns.
type Chat struct {
	ID           ConversationID
	Participants map[string]Participant // keyed by userID
}

// NewChat builds the aggregate from the participant ids returned by the backend.
func NewChat(id ConversationID, participantIDs []string) (*Chat, error) {
	if id.IsZero() {
		return nil, ErrInvalidConversationID
	}
	c := &Chat{ID: id, Participants: make(map[string]Participant, len(participantIDs))}
	for _, uid := range participantIDs {
		if uid == "" {
			continue
		}
		c.Participants[uid] = Participant{ConversationID: id, UserID: uid}
	}
	if len(c.Participants) != 2 {
		return nil, ErrInvalidParticipants
	}
	return c, nil
}

// HasParticipant tells whether userID is part of this chat.
func (c *Chat) HasParticipant(userID string) bool {
	if c == nil || c.Participants == nil {
		return false
	}
	_, ok := c.Participants[userID]
	return ok
}

// OtherParticipant returns the member that is not userID.
// It fails with ErrNotParticipant when userID is not a member, so callers
// never learn who else is in a conversation they do not belong to.
func (c *Chat) OtherParticipant(userID string) (string, error) {
	if !c.HasParticipant(userID) {
		return "", ErrNotParticipant
	}
	for uid := range c.Participants {
		if uid != userID {
			return uid, nil
		}
	}
	return "", ErrInvalidParticipants
}
