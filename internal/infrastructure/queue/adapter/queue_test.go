package adapter

import (
	"context"
	"errors"
	"testing"

	"evento-chat/internal/infrastructure/queue/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueueWeights(t *testing.T) {
	assert.Equal(t, map[string]int{"critical": 6, "default": 3, "low": 1}, parseQueueWeights("critical=6, default=3,low"))
	assert.Equal(t, map[string]int{"chat": 1}, parseQueueWeights("chat=zero"))
	assert.Empty(t, parseQueueWeights(" , "))
}

func TestAsynqRequiresRedisURL(t *testing.T) {
	_, err := NewAsynqClient("")
	assert.Error(t, err)
	_, err = NewAsynqServer(AsynqServerConfig{}, nil)
	assert.Error(t, err)
}

func TestInlineQueueRunsHandler(t *testing.T) {
	q := NewInlineQueue(nil)
	var got []byte
	q.Register("chat:test", func(ctx context.Context, task port.Task) error {
		got = task.Payload
		return nil
	})

	id, err := q.Enqueue(context.Background(), port.Task{Type: "chat:test", Payload: []byte(`{"a":1}`)})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.JSONEq(t, `{"a":1}`, string(got))

	q.Register("chat:fails", func(ctx context.Context, task port.Task) error { return errors.New("boom") })
	_, err = q.Enqueue(context.Background(), port.Task{Type: "chat:fails"})
	assert.NoError(t, err)

	_, err = q.Enqueue(context.Background(), port.Task{Type: "chat:unknown"})
	assert.ErrorIs(t, err, port.ErrNoHandler)
}
