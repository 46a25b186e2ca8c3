package adapter

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"evento-chat/internal/infrastructure/queue/port"
)

// InlineQueue is both Client and Server for single-process runs without
// Redis: Enqueue runs the registered handler in the caller's goroutine.
type InlineQueue struct {
	mu       sync.RWMutex
	handlers map[string]port.Handler
	log      *zap.Logger
}

func NewInlineQueue(log *zap.Logger) *InlineQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &InlineQueue{handlers: make(map[string]port.Handler), log: log}
}

var (
	_ port.Client = (*InlineQueue)(nil)
	_ port.Server = (*InlineQueue)(nil)
)

func (q *InlineQueue) Register(taskType string, h port.Handler) {
	q.mu.Lock()
	q.handlers[taskType] = h
	q.mu.Unlock()
}

// Enqueue runs the handler once. Handler failures are logged, not returned,
// matching the fire-and-forget contract of a real queue.
func (q *InlineQueue) Enqueue(ctx context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	q.mu.RLock()
	h, ok := q.handlers[t.Type]
	q.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", port.ErrNoHandler, t.Type)
	}
	id := uuid.NewString()
	if err := h(ctx, t); err != nil {
		q.log.Error("inline task failed", zap.String("type", t.Type), zap.String("id", id), zap.Error(err))
	}
	return id, nil
}

func (q *InlineQueue) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (q *InlineQueue) Stop(ctx context.Context) error { return nil }

func (q *InlineQueue) Close() error { return nil }
