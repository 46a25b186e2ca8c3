package usecase

import (
	"context"
	"fmt"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
)

type ListParticipantsInput struct {
	ConversationID chat.ConversationID
}

// ListParticipantsUseCase returns the user ids of a conversation. It is used
// by server-side fan-out only and never exposed to clients.
type ListParticipantsUseCase struct {
	Repo repository.ChatRepository
}

func NewListParticipantsUseCase(repo repository.ChatRepository) *ListParticipantsUseCase {
	return &ListParticipantsUseCase{Repo: repo}
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, in ListParticipantsInput) ([]string, error) {
	if in.ConversationID.IsZero() {
		return nil, chat.ErrInvalidConversationID
	}
	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return ids, nil
}
