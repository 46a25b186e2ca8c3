package changefeed

import (
	"context"
	"testing"
	"time"

	"evento-chat/internal/infrastructure/pubsub"
	chat "evento-chat/internal/pkg/chat/application/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const convID = "5d3c2f4e-8a51-4c1f-9bb4-1a2b3c4d5e6f"

func TestDecodeInsert(t *testing.T) {
	payload := `{"type":"INSERT","record":{"id":"0b9f6a0e-6c51-4d5e-8f3c-0a1b2c3d4e5f","conversation_id":"` + convID + `",` +
		`"sender_id":"a1","message":"Olá","read":false,"created_at":"2024-05-01T10:00:00.123456+00:00"}}`

	ev, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, chat.ChangeInsert, ev.Type)
	assert.Equal(t, convID, ev.Message.ConversationID.String())
	assert.Equal(t, "a1", ev.Message.SenderID)
	assert.Equal(t, "Olá", ev.Message.Body)
	assert.False(t, ev.Message.Read)
	assert.Equal(t, 2024, ev.Message.CreatedAt.Year())
}

func TestDecodeUpdateWithoutBody(t *testing.T) {
	payload := `{"type":"UPDATE","record":{"id":"m1","conversation_id":"` + convID + `","sender_id":"a1","read":true,"created_at":"2024-05-01T10:00:00Z"}}`
	ev, err := Decode([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, chat.ChangeUpdate, ev.Type)
	assert.True(t, ev.Message.Read)
	assert.Empty(t, ev.Message.Body)
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode([]byte(`{"type":"DELETE","record":{"conversation_id":"` + convID + `"}}`))
	assert.ErrorIs(t, err, ErrUnknownChange)

	_, err = Decode([]byte(`{"type":"INSERT","record":{"conversation_id":"not-a-uuid"}}`))
	assert.ErrorIs(t, err, chat.ErrInvalidConversationID)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestPublishReachesBothTopics(t *testing.T) {
	b := pubsub.NewBroker[chat.ChangeEvent](nil, 4)
	defer b.Close()

	id, err := chat.ParseConversationID(convID)
	require.NoError(t, err)

	scoped := make(chan chat.ChangeEvent, 1)
	global := make(chan chat.ChangeEvent, 1)
	other := make(chan chat.ChangeEvent, 1)
	_, err = b.Subscribe(chat.MessagesTopic(id), func(ctx context.Context, ev chat.ChangeEvent) { scoped <- ev })
	require.NoError(t, err)
	_, err = b.Subscribe(chat.AllMessagesTopic, func(ctx context.Context, ev chat.ChangeEvent) { global <- ev })
	require.NoError(t, err)
	_, err = b.Subscribe(chat.MessagesTopic(chat.NewConversationID()), func(ctx context.Context, ev chat.ChangeEvent) { other <- ev })
	require.NoError(t, err)

	ev := chat.ChangeEvent{Type: chat.ChangeInsert, Message: chat.Message{ID: "m1", ConversationID: id}}
	Publish(b, ev)

	for _, ch := range []chan chat.ChangeEvent{scoped, global} {
		select {
		case got := <-ch:
			assert.Equal(t, "m1", got.Message.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
	select {
	case <-other:
		t.Fatal("event leaked to another conversation")
	case <-time.After(30 * time.Millisecond):
	}
}
