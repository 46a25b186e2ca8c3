package changefeed

import (
	"context"
	"fmt"

	"evento-chat/internal/infrastructure/database"
	"evento-chat/internal/infrastructure/pubsub"
	chat "evento-chat/internal/pkg/chat/application/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PgListener holds one pooled connection in LISTEN mode and republishes
// every notification on the broker.
type PgListener struct {
	pool   *pgxpool.Pool
	broker *pubsub.Broker[chat.ChangeEvent]
	log    *zap.Logger
}

func NewPgListener(pool *pgxpool.Pool, broker *pubsub.Broker[chat.ChangeEvent], log *zap.Logger) *PgListener {
	if log == nil {
		log = zap.NewNop()
	}
	return &PgListener{pool: pool, broker: broker, log: log}
}

// Run blocks until ctx is cancelled or the connection fails. A lost
// connection is returned to the caller; it is not re-established here.
func (l *PgListener) Run(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("changefeed: acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+database.ChangesChannel); err != nil {
		return fmt.Errorf("changefeed: listen: %w", err)
	}
	l.log.Info("changefeed listening", zap.String("channel", database.ChangesChannel))

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("changefeed: wait: %w", err)
		}
		ev, err := Decode([]byte(n.Payload))
		if err != nil {
			l.log.Warn("changefeed: dropping notification", zap.Error(err))
			continue
		}
		Publish(l.broker, ev)
	}
}
