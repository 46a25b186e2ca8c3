package presence

import (
	"context"
	"time"

	"evento-chat/internal/infrastructure/cache/port"
)

const mirrorKeyPrefix = "presence:"

// CacheMirror copies heartbeats into a shared cache so other nodes can answer
// IsOnline for users connected elsewhere. There is one key per session,
// presence:<user>:<session>, and each expires after ttl.
type CacheMirror struct {
	cache port.Cache
	ttl   time.Duration
}

func NewCacheMirror(cache port.Cache, ttl time.Duration) *CacheMirror {
	return &CacheMirror{cache: cache, ttl: ttl}
}

func userPrefix(userID string) string { return mirrorKeyPrefix + userID + ":" }

func (m *CacheMirror) Touch(ctx context.Context, userID string, sessionKey string, at time.Time) error {
	return m.cache.Set(ctx, userPrefix(userID)+sessionKey, at.UTC().Format(time.RFC3339Nano), m.ttl)
}

// Clear drops one session. Sessions of the same user on other nodes stay.
func (m *CacheMirror) Clear(ctx context.Context, userID string, sessionKey string) error {
	_, err := m.cache.Del(ctx, userPrefix(userID)+sessionKey)
	return err
}

func (m *CacheMirror) Online(ctx context.Context, userID string) (bool, error) {
	keys, err := m.cache.KeysWithPrefix(ctx, userPrefix(userID))
	if err != nil {
		return false, err
	}
	return len(keys) > 0, nil
}
