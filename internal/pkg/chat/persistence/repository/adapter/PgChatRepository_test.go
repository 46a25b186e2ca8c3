package adapter

import (
	"context"
	"testing"

	chat "evento-chat/internal/pkg/chat/application/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPgRejectsMalformedUserIDsBeforeQuerying(t *testing.T) {
	ctx := context.Background()
	repo := NewPgChatRepository(nil)

	_, err := repo.CreateOrGetConversation(ctx, uuid.NewString(), "bob")
	assert.ErrorIs(t, err, chat.ErrInvalidUserID)

	_, err = repo.ListConversationsForUser(ctx, "bob")
	assert.ErrorIs(t, err, chat.ErrInvalidUserID)

	_, err = repo.MarkMessagesRead(ctx, chat.NewConversationID(), "bob")
	assert.ErrorIs(t, err, chat.ErrInvalidUserID)

	_, err = NewPgNotificationRepository(nil).ListNotifications(ctx, "bob", 10)
	assert.ErrorIs(t, err, chat.ErrInvalidUserID)

	// well-formed ids reach the pool check
	_, err = repo.CreateOrGetConversation(ctx, uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, errNilPool)
}
