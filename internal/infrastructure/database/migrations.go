package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ChangesChannel is the NOTIFY channel fed by the chat_messages triggers.
const ChangesChannel = "chat_messages_changes"

// migrationLockKey serializes migrations across nodes starting together.
const migrationLockKey = 7305114

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{1, "user_profiles", `
		CREATE TABLE IF NOT EXISTS user_profiles (
			id         uuid PRIMARY KEY,
			first_name text NOT NULL DEFAULT '',
			last_name  text NOT NULL DEFAULT '',
			updated_at timestamptz NOT NULL DEFAULT now()
		);
	`},
	{2, "conversations", `
		CREATE TABLE IF NOT EXISTS conversations (
			id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_low   uuid NOT NULL,
			user_high  uuid NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now(),
			CONSTRAINT conversations_ordered_pair CHECK (user_low < user_high),
			CONSTRAINT conversations_pair_unique UNIQUE (user_low, user_high)
		);

		CREATE TABLE IF NOT EXISTS conversation_participants (
			conversation_id uuid NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			user_id         uuid NOT NULL,
			joined_at       timestamptz NOT NULL DEFAULT now(),
			PRIMARY KEY (conversation_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS conversation_participants_user_idx
			ON conversation_participants (user_id);
	`},
	{3, "chat_messages", `
		CREATE TABLE IF NOT EXISTS chat_messages (
			id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			conversation_id uuid NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			sender_id       uuid NOT NULL,
			message         text NOT NULL CHECK (btrim(message) <> ''),
			read            boolean NOT NULL DEFAULT false,
			created_at      timestamptz NOT NULL DEFAULT clock_timestamp()
		);
		CREATE INDEX IF NOT EXISTS chat_messages_conversation_created_idx
			ON chat_messages (conversation_id, created_at);
		CREATE INDEX IF NOT EXISTS chat_messages_unread_idx
			ON chat_messages (conversation_id, sender_id) WHERE read = false;
	`},
	{4, "create_or_get_conversation", `
		CREATE OR REPLACE FUNCTION create_or_get_conversation(user_id_one uuid, user_id_two uuid)
		RETURNS uuid
		LANGUAGE plpgsql AS $$
		DECLARE
			lo   uuid := LEAST(user_id_one, user_id_two);
			hi   uuid := GREATEST(user_id_one, user_id_two);
			conv uuid;
		BEGIN
			IF user_id_one IS NULL OR user_id_two IS NULL OR user_id_one = user_id_two THEN
				RAISE EXCEPTION 'create_or_get_conversation: two distinct users required'
					USING ERRCODE = '22023';
			END IF;

			INSERT INTO conversations (user_low, user_high)
			VALUES (lo, hi)
			ON CONFLICT (user_low, user_high) DO NOTHING
			RETURNING id INTO conv;

			IF conv IS NULL THEN
				SELECT id INTO conv FROM conversations WHERE user_low = lo AND user_high = hi;
			ELSE
				INSERT INTO conversation_participants (conversation_id, user_id)
				VALUES (conv, lo), (conv, hi);
			END IF;
			RETURN conv;
		END
		$$;
	`},
	{5, "chat_messages_triggers", `
		CREATE OR REPLACE FUNCTION touch_conversation() RETURNS trigger
		LANGUAGE plpgsql AS $$
		BEGIN
			UPDATE conversations SET updated_at = NEW.created_at WHERE id = NEW.conversation_id;
			RETURN NEW;
		END
		$$;

		CREATE OR REPLACE FUNCTION keep_read_monotonic() RETURNS trigger
		LANGUAGE plpgsql AS $$
		BEGIN
			IF OLD.read AND NOT NEW.read THEN
				NEW.read := true;
			END IF;
			RETURN NEW;
		END
		$$;

		CREATE OR REPLACE FUNCTION notify_chat_message_change() RETURNS trigger
		LANGUAGE plpgsql AS $$
		DECLARE
			payload text;
		BEGIN
			payload := json_build_object('type', TG_OP, 'record', row_to_json(NEW))::text;
			-- NOTIFY payloads are capped at 8000 bytes; listeners refetch the body anyway
			IF octet_length(payload) > 7900 THEN
				payload := json_build_object('type', TG_OP, 'record', to_jsonb(NEW) - 'message')::text;
			END IF;
			PERFORM pg_notify('chat_messages_changes', payload);
			RETURN NEW;
		END
		$$;

		DROP TRIGGER IF EXISTS chat_messages_touch ON chat_messages;
		CREATE TRIGGER chat_messages_touch
			AFTER INSERT ON chat_messages
			FOR EACH ROW EXECUTE FUNCTION touch_conversation();

		DROP TRIGGER IF EXISTS chat_messages_read_monotonic ON chat_messages;
		CREATE TRIGGER chat_messages_read_monotonic
			BEFORE UPDATE OF read ON chat_messages
			FOR EACH ROW EXECUTE FUNCTION keep_read_monotonic();

		DROP TRIGGER IF EXISTS chat_messages_notify_insert ON chat_messages;
		CREATE TRIGGER chat_messages_notify_insert
			AFTER INSERT ON chat_messages
			FOR EACH ROW EXECUTE FUNCTION notify_chat_message_change();

		DROP TRIGGER IF EXISTS chat_messages_notify_read ON chat_messages;
		CREATE TRIGGER chat_messages_notify_read
			AFTER UPDATE OF read ON chat_messages
			FOR EACH ROW
			WHEN (OLD.read IS DISTINCT FROM NEW.read)
			EXECUTE FUNCTION notify_chat_message_change();
	`},
	{6, "notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id         uuid NOT NULL,
			kind            text NOT NULL,
			conversation_id uuid NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			message_id      uuid NOT NULL,
			body            text NOT NULL DEFAULT '',
			created_at      timestamptz NOT NULL DEFAULT now(),
			CONSTRAINT notifications_user_message_unique UNIQUE (user_id, message_id)
		);
		CREATE INDEX IF NOT EXISTS notifications_user_created_idx
			ON notifications (user_id, created_at DESC);
	`},
}

// Migrate applies pending schema migrations in order. Each migration runs in
// its own transaction and is recorded in schema_migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    integer PRIMARY KEY,
			name       text NOT NULL,
			applied_at timestamptz NOT NULL DEFAULT now()
		)
	`); err != nil {
		return fmt.Errorf("migrate: schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := applyMigration(ctx, pool, m)
		if err != nil {
			return fmt.Errorf("migrate: %03d_%s: %w", m.version, m.name, err)
		}
		if applied {
			log.Info("migration applied", zap.Int("version", m.version), zap.String("name", m.name))
		}
	}
	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, m migration) (bool, error) {
	applied := false
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", m.version,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.version, m.name,
		); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}
