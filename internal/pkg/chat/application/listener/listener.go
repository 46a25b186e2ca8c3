// Package listener keeps one open conversation live: it reacts to row changes
// on the conversation's topic by reconciling read state and refetching.
package listener

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"evento-chat/internal/infrastructure/pubsub"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/usecase"

	"go.uber.org/zap"
)

// ErrNotLive is returned when a conversation cannot be subscribed to.
// The caller keeps working with what it already fetched.
var ErrNotLive = errors.New("listener: conversation is not live")

type State int

const (
	Unsubscribed State = iota
	Subscribed
)

func (s State) String() string {
	if s == Subscribed {
		return "SUBSCRIBED"
	}
	return "UNSUBSCRIBED"
}

// Sink receives the refetched message list. It is called from the
// subscription goroutine, one call at a time.
type Sink func(msgs []chat.Message)

type Config struct {
	UserID   string
	Broker   *pubsub.Broker[chat.ChangeEvent]
	Fetch    *usecase.GetMessageUseCase
	MarkRead *usecase.MarkReadUseCase
	Sink     Sink
	Limit    int
	Log      *zap.Logger
}

// Listener is owned by one session. Open and Close may be called from any
// goroutine except from inside Sink.
type Listener struct {
	cfg Config

	mu  sync.Mutex
	sub *pubsub.Subscription[chat.ChangeEvent]

	// generation invalidates deliveries that belong to a closed subscription
	generation atomic.Uint64
	fetchMu    sync.Mutex
}

func New(cfg Config) *Listener {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Sink == nil {
		cfg.Sink = func([]chat.Message) {}
	}
	return &Listener{cfg: cfg}
}

// Open parses rawID and subscribes to it, closing any previous subscription.
// A malformed id never reaches the broker.
func (l *Listener) Open(rawID string) error {
	id, err := chat.ParseConversationID(rawID)
	if err != nil {
		l.Close()
		return fmt.Errorf("%w: %v", ErrNotLive, err)
	}
	return l.OpenID(id)
}

func (l *Listener) OpenID(id chat.ConversationID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()

	if id.IsZero() {
		return ErrNotLive
	}

	gen := l.generation.Load()
	sub, err := l.cfg.Broker.Subscribe(chat.MessagesTopic(id), func(ctx context.Context, ev chat.ChangeEvent) {
		l.handle(ctx, gen, id, ev)
	})
	if err != nil {
		l.cfg.Log.Warn("listener subscribe failed",
			zap.String("conversation_id", id.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrNotLive, err)
	}
	l.sub = sub
	return nil
}

// Close detaches the listener. Once it returns, Sink is not called again.
func (l *Listener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

func (l *Listener) closeLocked() {
	l.generation.Add(1)
	if l.sub != nil {
		l.sub.Unsubscribe()
	}
	l.sub = nil
}

func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub == nil {
		return Unsubscribed
	}
	return Subscribed
}

func (l *Listener) handle(ctx context.Context, gen uint64, id chat.ConversationID, ev chat.ChangeEvent) {
	if l.generation.Load() != gen {
		return
	}
	if ev.Type == chat.ChangeInsert && ev.Message.SenderID != l.cfg.UserID {
		if _, err := l.cfg.MarkRead.Execute(ctx, usecase.MarkReadInput{ConversationID: id, ReaderID: l.cfg.UserID}); err != nil {
			l.cfg.Log.Warn("listener mark read failed",
				zap.String("conversation_id", id.String()),
				zap.String("user_id", l.cfg.UserID),
				zap.Error(err),
			)
		}
	}
	l.refresh(ctx, gen, id)
}

func (l *Listener) refresh(ctx context.Context, gen uint64, id chat.ConversationID) {
	l.fetchMu.Lock()
	defer l.fetchMu.Unlock()

	msgs, err := l.cfg.Fetch.Execute(ctx, usecase.GetMessageInput{ConversationID: id, Limit: l.cfg.Limit})
	if err != nil {
		if ctx.Err() == nil {
			l.cfg.Log.Warn("listener refetch failed", zap.String("conversation_id", id.String()), zap.Error(err))
		}
		return
	}
	if l.generation.Load() != gen {
		return
	}
	l.cfg.Sink(msgs)
}
