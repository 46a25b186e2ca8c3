package controller

import (
	"time"

	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/view"
)

type messagePayload struct {
	ID             string              `json:"id"`
	ConversationID chat.ConversationID `json:"conversation_id"`
	SenderID       string              `json:"sender_id"`
	Message        string              `json:"message"`
	CreatedAt      time.Time           `json:"created_at"`
	Read           bool                `json:"read"`
}

type profilePayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type conversationItemPayload struct {
	ConversationID chat.ConversationID `json:"conversation_id"`
	Other          profilePayload      `json:"other"`
	OtherFullName  string              `json:"other_full_name"`
	LastMessage    *messagePayload     `json:"last_message"`
	UnreadCount    int                 `json:"unread_count"`
	HasUnread      bool                `json:"has_unread"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func toMessagePayload(m chat.Message) messagePayload {
	return messagePayload{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Message:        m.Body,
		CreatedAt:      m.CreatedAt,
		Read:           m.Read,
	}
}

func toMessagePayloads(msgs []chat.Message) []messagePayload {
	out := make([]messagePayload, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessagePayload(m))
	}
	return out
}

func toProfilePayload(p chat.Profile) profilePayload {
	return profilePayload{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName}
}

func toConversationItems(items []view.ConversationListItem) []conversationItemPayload {
	out := make([]conversationItemPayload, 0, len(items))
	for _, it := range items {
		p := conversationItemPayload{
			ConversationID: it.ConversationID,
			Other:          toProfilePayload(it.Other),
			OtherFullName:  it.OtherFullName,
			UnreadCount:    it.UnreadCount,
			HasUnread:      it.HasUnread,
			UpdatedAt:      it.UpdatedAt,
		}
		if it.LastMessage != nil {
			m := toMessagePayload(*it.LastMessage)
			p.LastMessage = &m
		}
		out = append(out, p)
	}
	return out
}

type notificationPayload struct {
	ID             string              `json:"id"`
	Kind           string              `json:"kind"`
	ConversationID chat.ConversationID `json:"conversation_id"`
	MessageID      string              `json:"message_id"`
	Body           string              `json:"body"`
	CreatedAt      time.Time           `json:"created_at"`
}

func toNotificationPayloads(list []chat.Notification) []notificationPayload {
	out := make([]notificationPayload, 0, len(list))
	for _, n := range list {
		out = append(out, notificationPayload{
			ID:             n.ID,
			Kind:           n.Kind,
			ConversationID: n.ConversationID,
			MessageID:      n.MessageID,
			Body:           n.Body,
			CreatedAt:      n.CreatedAt,
		})
	}
	return out
}
