package usecase

import (
	"context"
	"fmt"
	"sync"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
)

// SendMessageInput carries the data needed to send a new message.
// InputKey names the composer the send came from; sends with the same
// (sender, conversation, input key) are serialized.
type SendMessageInput struct {
	ConversationID chat.ConversationID
	SenderID       string
	Body           string
	InputKey       string
}

// SendMessageUseCase appends a message to a conversation.
// The body is validated before the repository is touched.
type SendMessageUseCase struct {
	Repo repository.ChatRepository

	inFlightLock sync.Mutex
	inFlight     map[string]struct{}
}

func NewSendMessageUseCase(repo repository.ChatRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, inFlight: make(map[string]struct{})}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Body)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%s:%s", in.SenderID, in.ConversationID, in.InputKey)
	if !uc.tryAcquireInFlight(key) {
		return nil, ErrSendInFlight
	}
	defer uc.releaseInFlight(key)

	ids, err := uc.Repo.ListParticipantIDs(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	c, err := chat.NewChat(in.ConversationID, ids)
	if err != nil || !c.HasParticipant(in.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	saved, err := uc.Repo.SaveMessage(ctx, msg)
	if err != nil {
		return nil, persistenceErr(err)
	}
	return &saved, nil
}

func (uc *SendMessageUseCase) tryAcquireInFlight(key string) bool {
	uc.inFlightLock.Lock()
	defer uc.inFlightLock.Unlock()
	if uc.inFlight == nil {
		uc.inFlight = make(map[string]struct{})
	}
	if _, exists := uc.inFlight[key]; exists {
		return false
	}
	uc.inFlight[key] = struct{}{}
	return true
}

func (uc *SendMessageUseCase) releaseInFlight(key string) {
	uc.inFlightLock.Lock()
	defer uc.inFlightLock.Unlock()
	delete(uc.inFlight, key)
}
