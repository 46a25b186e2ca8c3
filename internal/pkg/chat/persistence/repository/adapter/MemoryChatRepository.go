package adapter

import (
	"context"
	"sort"
	"sync"
	"time"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"

	"github.com/google/uuid"
)

// MemoryChatRepository keeps chat rows in process memory. It backs the
// "memory" store driver and tests, and emulates the database change triggers
// through OnChange.
type MemoryChatRepository struct {
	mu            sync.RWMutex
	conversations map[chat.ConversationID]*chat.Conversation
	pairs         map[[2]string]chat.ConversationID
	messages      map[chat.ConversationID][]chat.Message
	notifications map[string][]chat.Notification
	now           func() time.Time

	// OnChange is called after every committed insert or read-flag update,
	// outside the repository lock.
	OnChange func(ev chat.ChangeEvent)
}

func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		conversations: make(map[chat.ConversationID]*chat.Conversation),
		pairs:         make(map[[2]string]chat.ConversationID),
		messages:      make(map[chat.ConversationID][]chat.Message),
		notifications: make(map[string][]chat.Notification),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var (
	_ repository.ChatRepository         = (*MemoryChatRepository)(nil)
	_ repository.NotificationRepository = (*MemoryChatRepository)(nil)
)

func orderedPair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (r *MemoryChatRepository) CreateOrGetConversation(ctx context.Context, userA string, userB string) (chat.ConversationID, error) {
	if userA == "" || userB == "" || userA == userB {
		return chat.ConversationID{}, chat.ErrSelfConversation
	}
	key := orderedPair(userA, userB)

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.pairs[key]; ok {
		return id, nil
	}
	id := chat.NewConversationID()
	r.pairs[key] = id
	r.conversations[id] = &chat.Conversation{ID: id, ParticipantIDs: key, UpdatedAt: r.now()}
	return id, nil
}

func (r *MemoryChatRepository) ListParticipantIDs(ctx context.Context, conversationID chat.ConversationID) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return nil, nil
	}
	return []string{c.ParticipantIDs[0], c.ParticipantIDs[1]}, nil
}

func (r *MemoryChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []chat.ConversationSummary
	for id, c := range r.conversations {
		other, ok := c.Other(userID)
		if !ok {
			continue
		}
		s := chat.ConversationSummary{Conversation: *c, OtherParticipantID: other}
		msgs := r.messages[id]
		if n := len(msgs); n > 0 {
			last := msgs[n-1]
			s.LastMessage = &last
		}
		for _, m := range msgs {
			if m.UnreadFor(userID) {
				s.UnreadCount++
			}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return activity(out[i]).After(activity(out[j]))
	})
	return out, nil
}

func activity(s chat.ConversationSummary) time.Time {
	if s.LastMessage != nil {
		return s.LastMessage.CreatedAt
	}
	return s.Conversation.UpdatedAt
}

func (r *MemoryChatRepository) GetMessagesByConversation(ctx context.Context, conversationID chat.ConversationID, limit int, offset int) ([]chat.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.messages[conversationID]
	end := len(msgs) - offset
	if end <= 0 {
		return nil, nil
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	out := make([]chat.Message, end-start)
	copy(out, msgs[start:end])
	return out, nil
}

func (r *MemoryChatRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	r.mu.Lock()
	c, ok := r.conversations[m.ConversationID]
	if !ok {
		r.mu.Unlock()
		return chat.Message{}, chat.ErrInvalidConversationID
	}
	m.ID = uuid.NewString()
	m.CreatedAt = r.now()
	if msgs := r.messages[m.ConversationID]; len(msgs) > 0 && !m.CreatedAt.After(msgs[len(msgs)-1].CreatedAt) {
		// keep created_at strictly increasing so ordering is stable
		m.CreatedAt = msgs[len(msgs)-1].CreatedAt.Add(time.Microsecond)
	}
	m.Read = false
	r.messages[m.ConversationID] = append(r.messages[m.ConversationID], m)
	c.UpdatedAt = m.CreatedAt
	r.mu.Unlock()

	r.emit(chat.ChangeEvent{Type: chat.ChangeInsert, Message: m})
	return m, nil
}

func (r *MemoryChatRepository) MarkMessagesRead(ctx context.Context, conversationID chat.ConversationID, readerID string) (int64, error) {
	r.mu.Lock()
	var changed []chat.Message
	msgs := r.messages[conversationID]
	for i := range msgs {
		if msgs[i].MarkReadBy(readerID) {
			changed = append(changed, msgs[i])
		}
	}
	r.mu.Unlock()

	for _, m := range changed {
		r.emit(chat.ChangeEvent{Type: chat.ChangeUpdate, Message: m})
	}
	return int64(len(changed)), nil
}

func (r *MemoryChatRepository) SaveNotification(ctx context.Context, n chat.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.notifications[n.UserID] {
		if existing.MessageID == n.MessageID {
			return nil
		}
	}
	n.ID = uuid.NewString()
	n.CreatedAt = r.now()
	r.notifications[n.UserID] = append(r.notifications[n.UserID], n)
	return nil
}

func (r *MemoryChatRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]chat.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.notifications[userID]
	out := make([]chat.Notification, 0, len(all))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *MemoryChatRepository) emit(ev chat.ChangeEvent) {
	if r.OnChange != nil {
		r.OnChange(ev)
	}
}
