package usecase

import (
	"context"
	"fmt"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 200
)

// GetMessageInput carries parameters to fetch messages of a conversation
type GetMessageInput struct {
	ConversationID chat.ConversationID
	Limit          int
	Offset         int
}

// GetMessageUseCase fetches the latest window of a conversation, oldest first.
// Offset pages backwards into older history.
// Callers validate membership before invoking it.
type GetMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewGetMessageUseCase(repo repository.ChatRepository) *GetMessageUseCase {
	return &GetMessageUseCase{Repo: repo}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	if in.ConversationID.IsZero() {
		return nil, chat.ErrInvalidConversationID
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	msgs, err := uc.Repo.GetMessagesByConversation(ctx, in.ConversationID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	return msgs, nil
}
