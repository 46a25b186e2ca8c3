package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	qport "evento-chat/internal/infrastructure/queue/port"
	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NotifyOfflineTaskType records an inbox notification for a recipient who
// had no live session when a message arrived.
const NotifyOfflineTaskType = "chat:notify_offline"

// NotifyOfflineQueue is the queue the task is enqueued on.
const NotifyOfflineQueue = "chat"

// NotifyOfflinePayload is the JSON payload transported via the queue.
type NotifyOfflinePayload struct {
	UserID         string `json:"userId"`
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	Body           string `json:"body"`
}

func NewNotifyOfflineTask(p NotifyOfflinePayload) (qport.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return qport.Task{}, err
	}
	return qport.Task{Type: NotifyOfflineTaskType, Payload: b}, nil
}

// RegisterNotifyOfflineTask binds the handler to srv. Saving is idempotent per
// (user, message), so retries are safe.
func RegisterNotifyOfflineTask(srv qport.Server, repo repository.NotificationRepository, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflinePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return fmt.Errorf("%w: decode payload: %v", asynq.SkipRetry, err)
		}
		convID, err := chat.ParseConversationID(p.ConversationID)
		if err != nil || p.UserID == "" || p.MessageID == "" {
			return fmt.Errorf("%w: incomplete payload", asynq.SkipRetry)
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		err = repo.SaveNotification(ctx, chat.Notification{
			UserID:         p.UserID,
			Kind:           chat.NotificationKindMessage,
			ConversationID: convID,
			MessageID:      p.MessageID,
			Body:           p.Body,
		})
		if err != nil {
			return err
		}
		log.Debug("offline notification stored",
			zap.String("user_id", p.UserID),
			zap.String("conversation_id", p.ConversationID),
		)
		return nil
	})
}
