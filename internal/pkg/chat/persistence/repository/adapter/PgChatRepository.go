package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "evento-chat/internal/pkg/chat/application/domain"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

var errNilPool = errors.New("PgChatRepository: nil pool")

// checkUserIDs rejects ids the uuid columns would fail to cast.
func checkUserIDs(ids ...string) error {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("%w: %q", chat.ErrInvalidUserID, id)
		}
	}
	return nil
}

// CreateOrGetConversation delegates to the create_or_get_conversation function,
// which keys conversations by the ordered (least, greatest) user pair.
func (r *PgChatRepository) CreateOrGetConversation(ctx context.Context, userA string, userB string) (chat.ConversationID, error) {
	if err := checkUserIDs(userA, userB); err != nil {
		return chat.ConversationID{}, err
	}
	if r == nil || r.pool == nil {
		return chat.ConversationID{}, errNilPool
	}
	var raw string
	err := r.pool.QueryRow(ctx,
		"SELECT create_or_get_conversation($1::uuid, $2::uuid)::text",
		userA, userB,
	).Scan(&raw)
	if err != nil {
		return chat.ConversationID{}, err
	}
	return chat.ParseConversationID(raw)
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, conversationID chat.ConversationID) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT user_id::text
		FROM conversation_participants
		WHERE conversation_id = $1::uuid
		ORDER BY user_id
	`, conversationID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

func (r *PgChatRepository) ListConversationsForUser(ctx context.Context, userID string) ([]chat.ConversationSummary, error) {
	if err := checkUserIDs(userID); err != nil {
		return nil, err
	}
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.updated_at, other.user_id::text,
		       lm.id::text, lm.sender_id::text, lm.message, lm.read, lm.created_at,
		       (SELECT count(*) FROM chat_messages um
		         WHERE um.conversation_id = c.id AND um.read = false AND um.sender_id <> me.user_id) AS unread
		FROM conversation_participants me
		JOIN conversations c ON c.id = me.conversation_id
		JOIN conversation_participants other
		  ON other.conversation_id = c.id AND other.user_id <> me.user_id
		LEFT JOIN LATERAL (
			SELECT id, sender_id, message, read, created_at
			FROM chat_messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC
			LIMIT 1
		) lm ON true
		WHERE me.user_id = $1::uuid
		ORDER BY COALESCE(lm.created_at, c.updated_at) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.ConversationSummary
	for rows.Next() {
		var (
			rawID     string
			updatedAt time.Time
			otherID   string
			lmID      *string
			lmSender  *string
			lmBody    *string
			lmRead    *bool
			lmCreated *time.Time
			unread    int64
		)
		if err := rows.Scan(&rawID, &updatedAt, &otherID, &lmID, &lmSender, &lmBody, &lmRead, &lmCreated, &unread); err != nil {
			return nil, err
		}
		id, err := chat.ParseConversationID(rawID)
		if err != nil {
			return nil, fmt.Errorf("conversation %q: %w", rawID, err)
		}
		s := chat.ConversationSummary{
			Conversation: chat.Conversation{
				ID:             id,
				ParticipantIDs: [2]string{userID, otherID},
				UpdatedAt:      updatedAt,
			},
			OtherParticipantID: otherID,
			UnreadCount:        int(unread),
		}
		if lmID != nil {
			s.LastMessage = &chat.Message{
				ID:             *lmID,
				ConversationID: id,
				SenderID:       deref(lmSender),
				Body:           deref(lmBody),
				Read:           lmRead != nil && *lmRead,
			}
			if lmCreated != nil {
				s.LastMessage.CreatedAt = *lmCreated
			}
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// GetMessagesByConversation selects the newest window and returns it oldest first.
func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID chat.ConversationID, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, sender_id::text, message, read, created_at
		FROM (
			SELECT id, sender_id, message, read, created_at
			FROM chat_messages
			WHERE conversation_id = $1::uuid
			ORDER BY created_at DESC, id DESC
			LIMIT $2 OFFSET $3
		) recent
		ORDER BY created_at ASC, id ASC
	`, conversationID.String(), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		msg := chat.Message{ConversationID: conversationID}
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.Body, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

// SaveMessage inserts the row letting the database generate id, created_at and read.
func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if err := checkUserIDs(m.SenderID); err != nil {
		return chat.Message{}, err
	}
	if r == nil || r.pool == nil {
		return chat.Message{}, errNilPool
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_messages (conversation_id, sender_id, message)
		VALUES ($1::uuid, $2::uuid, $3)
		RETURNING id::text, created_at, read
	`, m.ConversationID.String(), m.SenderID, m.Body).Scan(&m.ID, &m.CreatedAt, &m.Read)
	return m, err
}

func (r *PgChatRepository) MarkMessagesRead(ctx context.Context, conversationID chat.ConversationID, readerID string) (int64, error) {
	if err := checkUserIDs(readerID); err != nil {
		return 0, err
	}
	if r == nil || r.pool == nil {
		return 0, errNilPool
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat_messages
		SET read = true
		WHERE conversation_id = $1::uuid AND read = false AND sender_id <> $2::uuid
	`, conversationID.String(), readerID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// PgNotificationRepository persists offline notifications.
type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

var _ repository.NotificationRepository = (*PgNotificationRepository)(nil)

func (r *PgNotificationRepository) SaveNotification(ctx context.Context, n chat.Notification) error {
	if r == nil || r.pool == nil {
		return errNilPool
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (user_id, kind, conversation_id, message_id, body)
		VALUES ($1::uuid, $2, $3::uuid, $4::uuid, $5)
		ON CONFLICT (user_id, message_id) DO NOTHING
	`, n.UserID, n.Kind, n.ConversationID.String(), n.MessageID, n.Body)
	return err
}

func (r *PgNotificationRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]chat.Notification, error) {
	if err := checkUserIDs(userID); err != nil {
		return nil, err
	}
	if r == nil || r.pool == nil {
		return nil, errNilPool
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, user_id::text, kind, conversation_id::text, message_id::text, body, created_at
		FROM notifications
		WHERE user_id = $1::uuid
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Notification
	for rows.Next() {
		var (
			n      chat.Notification
			rawCID string
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &rawCID, &n.MessageID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		if n.ConversationID, err = chat.ParseConversationID(rawCID); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
