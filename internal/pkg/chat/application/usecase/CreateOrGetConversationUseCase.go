package usecase

import (
	"context"
	"strings"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
)

type CreateOrGetConversationInput struct {
	UserID      string
	OtherUserID string
}

// CreateOrGetConversationUseCase returns the single conversation between two
// users, creating it on first contact.
type CreateOrGetConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateOrGetConversationUseCase(repo repository.ChatRepository) *CreateOrGetConversationUseCase {
	return &CreateOrGetConversationUseCase{Repo: repo}
}

func (uc *CreateOrGetConversationUseCase) Execute(ctx context.Context, in CreateOrGetConversationInput) (chat.ConversationID, error) {
	a := strings.TrimSpace(in.UserID)
	b := strings.TrimSpace(in.OtherUserID)
	if a == "" || b == "" {
		return chat.ConversationID{}, chat.ErrInvalidParticipants
	}
	if a == b {
		return chat.ConversationID{}, chat.ErrSelfConversation
	}

	id, err := uc.Repo.CreateOrGetConversation(ctx, a, b)
	if err != nil {
		return chat.ConversationID{}, persistenceErr(err)
	}
	return id, nil
}
