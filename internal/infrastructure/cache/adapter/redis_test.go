package adapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "")
	assert.ErrorContains(t, err, "REDIS_URL")

	_, err = NewRedisCache(context.Background(), "http://localhost:6379")
	assert.ErrorContains(t, err, "parse url")
}

func TestRedisCacheNamespacesKeys(t *testing.T) {
	r := &RedisCache{namespace: DefaultNamespace}
	assert.Equal(t, "evento:presence:bob", r.key("presence:bob"))

	r = &RedisCache{}
	assert.Equal(t, "presence:bob", r.key("presence:bob"))
}

func TestRedisScanPatternEscapesGlob(t *testing.T) {
	assert.Equal(t, `evento:presence:a\*b\?:`, globEscaper.Replace("evento:presence:a*b?:"))
	assert.Equal(t, `x\[1\]`, globEscaper.Replace("x[1]"))
}
