// Package changefeed turns chat_messages row changes into broker events.
//
// In the postgres driver the rows arrive through LISTEN/NOTIFY; the memory
// driver calls Publish directly from its change hook.
package changefeed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"evento-chat/internal/infrastructure/pubsub"
	chat "evento-chat/internal/pkg/chat/application/domain"
)

var ErrUnknownChange = errors.New("changefeed: unsupported change type")

type notification struct {
	Type   string `json:"type"`
	Record record `json:"record"`
}

type record struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Message        string    `json:"message"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// Decode parses a NOTIFY payload of the form {"type": TG_OP, "record": row}.
func Decode(payload []byte) (chat.ChangeEvent, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return chat.ChangeEvent{}, fmt.Errorf("changefeed: decode: %w", err)
	}
	typ := chat.ChangeType(n.Type)
	if typ != chat.ChangeInsert && typ != chat.ChangeUpdate {
		return chat.ChangeEvent{}, fmt.Errorf("%w: %q", ErrUnknownChange, n.Type)
	}
	convID, err := chat.ParseConversationID(n.Record.ConversationID)
	if err != nil {
		return chat.ChangeEvent{}, fmt.Errorf("changefeed: record %q: %w", n.Record.ID, err)
	}
	return chat.ChangeEvent{
		Type: typ,
		Message: chat.Message{
			ID:             n.Record.ID,
			ConversationID: convID,
			SenderID:       n.Record.SenderID,
			Body:           n.Record.Message,
			CreatedAt:      n.Record.CreatedAt,
			Read:           n.Record.Read,
		},
	}, nil
}

// Publish fans ev out to its conversation topic and to the global topic.
func Publish(b *pubsub.Broker[chat.ChangeEvent], ev chat.ChangeEvent) {
	b.Publish(chat.MessagesTopic(ev.Message.ConversationID), ev)
	b.Publish(chat.AllMessagesTopic, ev)
}
