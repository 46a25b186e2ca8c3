package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"evento-chat/internal/infrastructure/cache/port"
)

// DefaultNamespace prefixes every key so the cache can share a Redis
// database with the asynq queues.
const DefaultNamespace = "evento:"

// RedisCache satisfies port.Cache with a go-redis v9 client.
type RedisCache struct {
	client    *redis.Client
	namespace string
}

type RedisOption func(*redisSettings)

type redisSettings struct {
	namespace   string
	dialTimeout time.Duration
	log         *zap.Logger
}

// WithNamespace replaces DefaultNamespace. An empty namespace disables prefixing.
func WithNamespace(ns string) RedisOption {
	return func(s *redisSettings) { s.namespace = ns }
}

func WithRedisLogger(log *zap.Logger) RedisOption {
	return func(s *redisSettings) { s.log = log }
}

// NewRedisCache dials url (redis://[:password@]host:port/db) and pings it.
func NewRedisCache(ctx context.Context, url string, opts ...RedisOption) (*RedisCache, error) {
	if url == "" {
		return nil, errors.New("redis: REDIS_URL is not set")
	}
	s := redisSettings{namespace: DefaultNamespace, dialTimeout: 3 * time.Second, log: zap.NewNop()}
	for _, o := range opts {
		o(&s)
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, s.dialTimeout)
	defer cancel()
	if err := c.Ping(pingCtx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	s.log.Info("redis cache connected", zap.String("addr", opt.Addr), zap.Int("db", opt.DB), zap.String("namespace", s.namespace))
	return &RedisCache{client: c, namespace: s.namespace}, nil
}

var _ port.Cache = (*RedisCache)(nil)

func (r *RedisCache) key(k string) string { return r.namespace + k }

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	res, err := r.client.Get(ctx, r.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", port.ErrMiss
	case err != nil:
		return "", fmt.Errorf("redis: get: %w", err)
	}
	return res, nil
}

// Set with a non-positive ttl stores the key without expiry.
func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set: %w", err)
	}
	return nil
}

func (r *RedisCache) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	n, err := r.client.Del(ctx, full...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: del: %w", err)
	}
	return n, nil
}

// KeysWithPrefix walks SCAN MATCH and strips the namespace from results.
func (r *RedisCache) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := r.client.Scan(ctx, 0, globEscaper.Replace(r.key(prefix))+"*", 100).Iterator()
	for iter.Next(ctx) {
		out = append(out, strings.TrimPrefix(iter.Val(), r.namespace))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan: %w", err)
	}
	return out, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
