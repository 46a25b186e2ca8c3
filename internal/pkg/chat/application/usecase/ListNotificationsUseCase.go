package usecase

import (
	"context"
	"errors"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
)

const DefaultNotificationLimit = 50

type ListNotificationsInput struct {
	UserID string
	Limit  int
}

// ListNotificationsUseCase returns the offline notifications queued for a
// user, newest first.
type ListNotificationsUseCase struct {
	Repo repository.NotificationRepository
}

func NewListNotificationsUseCase(repo repository.NotificationRepository) *ListNotificationsUseCase {
	return &ListNotificationsUseCase{Repo: repo}
}

func (uc *ListNotificationsUseCase) Execute(ctx context.Context, in ListNotificationsInput) ([]chat.Notification, error) {
	if in.UserID == "" {
		return nil, errors.New("user_id is required")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}
	out, err := uc.Repo.ListNotifications(ctx, in.UserID, limit)
	if err != nil {
		return nil, persistenceErr(err)
	}
	if out == nil {
		out = []chat.Notification{}
	}
	return out, nil
}
