// Package view builds read models for conversation screens.
package view

import (
	"strings"
	"time"

	chat "evento-chat/internal/pkg/chat/application/domain"
)

// ConversationListItem is one row of a user's inbox.
type ConversationListItem struct {
	ConversationID chat.ConversationID
	Other          chat.Profile
	OtherFullName  string
	LastMessage    *chat.Message
	UnreadCount    int
	HasUnread      bool
	UpdatedAt      time.Time
}

// BuildConversationList joins summaries with the other participants'
// profiles and keeps the rows whose other full name or last message body
// contains search, case-insensitively. An empty search keeps every row.
// Input order is preserved.
func BuildConversationList(summaries []chat.ConversationSummary, profiles map[string]chat.Profile, search string) []ConversationListItem {
	needle := strings.ToLower(strings.TrimSpace(search))
	items := make([]ConversationListItem, 0, len(summaries))
	for _, s := range summaries {
		other, ok := profiles[s.OtherParticipantID]
		if !ok {
			other = chat.Profile{ID: s.OtherParticipantID}
		}
		item := ConversationListItem{
			ConversationID: s.Conversation.ID,
			Other:          other,
			OtherFullName:  other.FullName(),
			LastMessage:    s.LastMessage,
			UnreadCount:    s.UnreadCount,
			HasUnread:      s.UnreadCount > 0,
			UpdatedAt:      s.Conversation.UpdatedAt,
		}
		if needle != "" && !matches(item, needle) {
			continue
		}
		items = append(items, item)
	}
	return items
}

func matches(item ConversationListItem, needle string) bool {
	if strings.Contains(strings.ToLower(item.OtherFullName), needle) {
		return true
	}
	return item.LastMessage != nil && strings.Contains(strings.ToLower(item.LastMessage.Body), needle)
}
