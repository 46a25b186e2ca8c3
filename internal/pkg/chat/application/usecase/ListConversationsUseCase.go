package usecase

import (
	"context"
	"fmt"

	"evento-chat/internal/pkg/chat/application/view"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
	profilerepo "evento-chat/internal/repository/port"
)

type ListConversationsInput struct {
	UserID string
	Search string
}

// ListConversationsUseCase loads the user's inbox and applies the search filter.
type ListConversationsUseCase struct {
	Repo     repository.ChatRepository
	Profiles profilerepo.ProfileRepository
}

func NewListConversationsUseCase(repo repository.ChatRepository, profiles profilerepo.ProfileRepository) *ListConversationsUseCase {
	return &ListConversationsUseCase{Repo: repo, Profiles: profiles}
}

func (uc *ListConversationsUseCase) Execute(ctx context.Context, in ListConversationsInput) ([]view.ConversationListItem, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	summaries, err := uc.Repo.ListConversationsForUser(ctx, in.UserID)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if len(summaries) == 0 {
		return []view.ConversationListItem{}, nil
	}

	otherIDs := make([]string, 0, len(summaries))
	for _, s := range summaries {
		otherIDs = append(otherIDs, s.OtherParticipantID)
	}
	profiles, err := uc.Profiles.FindByIDs(ctx, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return view.BuildConversationList(summaries, profiles, in.Search), nil
}
