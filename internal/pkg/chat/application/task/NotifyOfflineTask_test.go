package task

import (
	"context"
	"errors"
	"testing"

	queueAdapter "evento-chat/internal/infrastructure/queue/adapter"
	qport "evento-chat/internal/infrastructure/queue/port"
	chat "evento-chat/internal/pkg/chat/application/domain"
	repoAdapter "evento-chat/internal/pkg/chat/persistence/repository/adapter"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture records the handler registered for a task type.
type capture struct {
	handlers map[string]qport.Handler
}

func (c *capture) Register(taskType string, h qport.Handler) {
	if c.handlers == nil {
		c.handlers = make(map[string]qport.Handler)
	}
	c.handlers[taskType] = h
}
func (c *capture) Run(ctx context.Context) error  { return nil }
func (c *capture) Stop(ctx context.Context) error { return nil }

func TestNotifyOfflineStoresNotificationOnce(t *testing.T) {
	ctx := context.Background()
	repo := repoAdapter.NewMemoryChatRepository()
	q := queueAdapter.NewInlineQueue(nil)
	RegisterNotifyOfflineTask(q, repo, nil)

	convID := chat.NewConversationID()
	task, err := NewNotifyOfflineTask(NotifyOfflinePayload{
		UserID:         "bob",
		ConversationID: convID.String(),
		MessageID:      "m1",
		Body:           "Olá",
	})
	require.NoError(t, err)
	assert.Equal(t, NotifyOfflineTaskType, task.Type)

	for i := 0; i < 2; i++ {
		_, err = q.Enqueue(ctx, task)
		require.NoError(t, err)
	}

	list, err := repo.ListNotifications(ctx, "bob", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, convID, list[0].ConversationID)
	assert.Equal(t, chat.NotificationKindMessage, list[0].Kind)
	assert.Equal(t, "Olá", list[0].Body)
}

func TestNotifyOfflineSkipsRetryOnBadPayload(t *testing.T) {
	srv := &capture{}
	RegisterNotifyOfflineTask(srv, repoAdapter.NewMemoryChatRepository(), nil)
	h := srv.handlers[NotifyOfflineTaskType]
	require.NotNil(t, h)

	err := h(context.Background(), qport.Task{Type: NotifyOfflineTaskType, Payload: []byte("{")})
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = h(context.Background(), qport.Task{Type: NotifyOfflineTaskType, Payload: []byte(`{"userId":"bob","conversationId":"not-a-uuid","messageId":"m1"}`)})
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}
