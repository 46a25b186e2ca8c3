// Package inbox pushes conversation_updated frames to participants so their
// conversation lists refresh, and queues offline notifications.
package inbox

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"evento-chat/internal/infrastructure/pubsub"
	qport "evento-chat/internal/infrastructure/queue/port"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/task"
	"evento-chat/internal/pkg/chat/application/usecase"

	"go.uber.org/zap"
)

// FrameType is the websocket frame type sent on every conversation change.
const FrameType = "conversation_updated"

type Frame struct {
	Type           string              `json:"type"`
	ConversationID chat.ConversationID `json:"conversation_id"`
	Change         chat.ChangeType     `json:"change"`
	MessageID      string              `json:"message_id"`
	SenderID       string              `json:"sender_id"`
}

type userNotifier interface {
	NotifyUser(userID string, payload []byte) bool
}

type onlineChecker interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}

type Notifier struct {
	broker       *pubsub.Broker[chat.ChangeEvent]
	participants *usecase.ListParticipantsUseCase
	sessions     userNotifier
	presence     onlineChecker
	queue        qport.Client
	log          *zap.Logger

	mu  sync.Mutex
	sub *pubsub.Subscription[chat.ChangeEvent]
}

func NewNotifier(
	broker *pubsub.Broker[chat.ChangeEvent],
	participants *usecase.ListParticipantsUseCase,
	sessions userNotifier,
	presence onlineChecker,
	queue qport.Client,
	log *zap.Logger,
) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		broker:       broker,
		participants: participants,
		sessions:     sessions,
		presence:     presence,
		queue:        queue,
		log:          log,
	}
}

// Start subscribes to every chat_messages change.
func (n *Notifier) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sub != nil {
		return nil
	}
	sub, err := n.broker.Subscribe(chat.AllMessagesTopic, n.handle)
	if err != nil {
		return err
	}
	n.sub = sub
	return nil
}

func (n *Notifier) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sub != nil {
		n.sub.Unsubscribe()
		n.sub = nil
	}
}

func (n *Notifier) handle(ctx context.Context, ev chat.ChangeEvent) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ids, err := n.participants.Execute(ctx, usecase.ListParticipantsInput{ConversationID: ev.Message.ConversationID})
	if err != nil {
		n.log.Warn("inbox: list participants failed",
			zap.String("conversation_id", ev.Message.ConversationID.String()),
			zap.Error(err),
		)
		return
	}

	payload, err := json.Marshal(Frame{
		Type:           FrameType,
		ConversationID: ev.Message.ConversationID,
		Change:         ev.Type,
		MessageID:      ev.Message.ID,
		SenderID:       ev.Message.SenderID,
	})
	if err != nil {
		n.log.Error("inbox: encode frame", zap.Error(err))
		return
	}

	for _, userID := range ids {
		delivered := n.sessions.NotifyUser(userID, payload)
		if delivered || ev.Type != chat.ChangeInsert || userID == ev.Message.SenderID {
			continue
		}
		n.notifyOffline(ctx, userID, ev.Message)
	}
}

func (n *Notifier) notifyOffline(ctx context.Context, userID string, m chat.Message) {
	if n.presence != nil {
		online, err := n.presence.IsOnline(ctx, userID)
		if err != nil {
			n.log.Warn("inbox: presence lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		if online {
			// connected to another node, which delivers the frame itself
			return
		}
	}
	if n.queue == nil {
		return
	}
	t, err := task.NewNotifyOfflineTask(task.NotifyOfflinePayload{
		UserID:         userID,
		ConversationID: m.ConversationID.String(),
		MessageID:      m.ID,
		Body:           m.Body,
	})
	if err != nil {
		n.log.Error("inbox: build task", zap.Error(err))
		return
	}
	if _, err := n.queue.Enqueue(ctx, t, qport.EnqueueOption{Queue: task.NotifyOfflineQueue, MaxRetry: 5}); err != nil {
		n.log.Warn("inbox: enqueue offline notification failed", zap.String("user_id", userID), zap.Error(err))
	}
}
