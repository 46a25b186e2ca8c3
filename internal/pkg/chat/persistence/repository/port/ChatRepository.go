package repository

import (
	"context"

	chat "evento-chat/internal/pkg/chat/application/domain"
)

//go:generate mockgen -source=ChatRepository.go -destination=../mock/ChatRepository.go -package=mock

// ChatRepository defines persistence operations for the chat domain.
// Implementations own all row state; callers never cache writes.
type ChatRepository interface {
	// CreateOrGetConversation returns the single conversation for the unordered pair (a, b).
	CreateOrGetConversation(ctx context.Context, userA string, userB string) (chat.ConversationID, error)
	ListParticipantIDs(ctx context.Context, conversationID chat.ConversationID) ([]string, error)
	ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error)
	// GetMessagesByConversation returns the newest limit messages after skipping
	// offset newer ones, ordered by created_at, oldest first.
	GetMessagesByConversation(ctx context.Context, conversationID chat.ConversationID, limit int, offset int) ([]chat.Message, error)
	SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error)
	// MarkMessagesRead flips read=false to true for messages not sent by readerID.
	MarkMessagesRead(ctx context.Context, conversationID chat.ConversationID, readerID string) (int64, error)
}
