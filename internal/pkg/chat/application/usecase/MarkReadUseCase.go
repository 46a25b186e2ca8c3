package usecase

import (
	"context"
	"fmt"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
)

type MarkReadInput struct {
	ConversationID chat.ConversationID
	ReaderID       string
}

// MarkReadUseCase flips every unread message not sent by the reader to read.
// Running it again is a no-op that reports zero rows.
type MarkReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkReadUseCase(repo repository.ChatRepository) *MarkReadUseCase {
	return &MarkReadUseCase{Repo: repo}
}

func (uc *MarkReadUseCase) Execute(ctx context.Context, in MarkReadInput) (int64, error) {
	if in.ConversationID.IsZero() {
		return 0, chat.ErrInvalidConversationID
	}
	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	c, err := chat.NewChat(in.ConversationID, ids)
	if err != nil || !c.HasParticipant(in.ReaderID) {
		return 0, chat.ErrNotParticipant
	}

	n, err := uc.Repo.MarkMessagesRead(ctx, in.ConversationID, in.ReaderID)
	if err != nil {
		return 0, persistenceErr(err)
	}
	return n, nil
}
