package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
	profilerepo "evento-chat/internal/repository/port"
)

// ValidateConversationInput identifies the conversation a user wants to open.
// Then, when set, runs only after validation succeeded.
type ValidateConversationInput struct {
	ConversationID chat.ConversationID
	UserID         string
	Then           func(ctx context.Context, v ValidatedConversation) error
}

// ValidatedConversation is what a participant may learn about a conversation.
type ValidatedConversation struct {
	Chat  *chat.Chat
	Other chat.Profile
}

// ValidateConversationUseCase confirms the user belongs to the conversation
// and resolves the other participant. It fails closed: any doubt about
// membership is reported as chat.ErrNotParticipant.
type ValidateConversationUseCase struct {
	Repo     repository.ChatRepository
	Profiles profilerepo.ProfileRepository
}

func NewValidateConversationUseCase(repo repository.ChatRepository, profiles profilerepo.ProfileRepository) *ValidateConversationUseCase {
	return &ValidateConversationUseCase{Repo: repo, Profiles: profiles}
}

func (uc *ValidateConversationUseCase) Execute(ctx context.Context, in ValidateConversationInput) (*ValidatedConversation, error) {
	if in.ConversationID.IsZero() {
		return nil, chat.ErrInvalidConversationID
	}
	if in.UserID == "" {
		return nil, chat.ErrNotParticipant
	}

	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	c, err := chat.NewChat(in.ConversationID, ids)
	if err != nil {
		// unknown or malformed conversations look the same as foreign ones
		return nil, chat.ErrNotParticipant
	}
	otherID, err := c.OtherParticipant(in.UserID)
	if err != nil {
		return nil, chat.ErrNotParticipant
	}

	other := chat.Profile{ID: otherID}
	if uc.Profiles != nil {
		p, err := uc.Profiles.FindByID(ctx, otherID)
		switch {
		case err == nil:
			other = *p
		case errors.Is(err, profilerepo.ErrProfileNotFound):
		default:
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	v := ValidatedConversation{Chat: c, Other: other}
	if in.Then != nil {
		if err := in.Then(ctx, v); err != nil {
			return nil, err
		}
	}
	return &v, nil
}
