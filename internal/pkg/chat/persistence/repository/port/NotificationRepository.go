package repository

import (
	"context"

	chat "evento-chat/internal/pkg/chat/application/domain"
)

// NotificationRepository stores per-user inbox notifications.
// SaveNotification must be idempotent per (user, message).
type NotificationRepository interface {
	SaveNotification(ctx context.Context, n chat.Notification) error
	ListNotifications(ctx context.Context, userID string, limit int) ([]chat.Notification, error)
}
