package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConversationID(t *testing.T) {
	id, err := ParseConversationID("5d3c2f4e-8a51-4c1f-9bb4-1a2b3c4d5e6f")
	require.NoError(t, err)
	assert.False(t, id.IsZero())
	assert.Equal(t, "5d3c2f4e-8a51-4c1f-9bb4-1a2b3c4d5e6f", id.String())

	for _, raw := range []string{"not-a-uuid", "", "00000000-0000-0000-0000-000000000000", "mock-conversation-1"} {
		id, err := ParseConversationID(raw)
		assert.ErrorIs(t, err, ErrInvalidConversationID, raw)
		assert.True(t, id.IsZero(), raw)
	}
}

func TestConversationIDMarshalText(t *testing.T) {
	id := NewConversationID()
	b, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.String(), string(b))
}

func TestNewMessage(t *testing.T) {
	id := NewConversationID()

	m, err := NewMessage(id, "alice", "  Olá  ")
	require.NoError(t, err)
	assert.Equal(t, "Olá", m.Body)
	assert.False(t, m.Read)

	_, err = NewMessage(id, "alice", " \t\n ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = NewMessage(ConversationID{}, "alice", "hi")
	assert.ErrorIs(t, err, ErrInvalidConversationID)

	_, err = NewMessage(id, "", "hi")
	assert.ErrorIs(t, err, ErrMissingSender)
}

func TestMarkReadBy(t *testing.T) {
	m := Message{SenderID: "alice"}

	assert.False(t, m.MarkReadBy("alice"), "sender cannot mark own message read")
	assert.False(t, m.Read)

	assert.True(t, m.MarkReadBy("bob"))
	assert.True(t, m.Read)

	assert.False(t, m.MarkReadBy("bob"), "second mark is a no-op")
	assert.True(t, m.Read)
}

func TestChatOtherParticipant(t *testing.T) {
	id := NewConversationID()
	c, err := NewChat(id, []string{"alice", "bob"})
	require.NoError(t, err)

	other, err := c.OtherParticipant("alice")
	require.NoError(t, err)
	assert.Equal(t, "bob", other)

	_, err = c.OtherParticipant("mallory")
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = NewChat(id, []string{"alice", "alice"})
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}

func TestConversationOther(t *testing.T) {
	c := Conversation{ParticipantIDs: [2]string{"alice", "bob"}}
	other, ok := c.Other("bob")
	assert.True(t, ok)
	assert.Equal(t, "alice", other)

	_, ok = c.Other("carol")
	assert.False(t, ok)
}

func TestProfileFullName(t *testing.T) {
	assert.Equal(t, "João Silva", Profile{FirstName: "João", LastName: "Silva"}.FullName())
	assert.Equal(t, "João", Profile{FirstName: "João"}.FullName())
	assert.Equal(t, "Silva", Profile{LastName: "Silva"}.FullName())
}
