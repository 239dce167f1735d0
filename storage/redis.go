package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps values in Redis under a key prefix
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStorage)

// WithRedisPrefix namespaces every key, "portal:" by default
func WithRedisPrefix(prefix string) RedisOption {
	return func(r *RedisStorage) {
		r.prefix = prefix
	}
}

// WithRedisTTL expires values after ttl. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *RedisStorage) {
		if ttl >= 0 {
			r.ttl = ttl
		}
	}
}

func NewRedisStorage(client *redis.Client, opts ...RedisOption) *RedisStorage {
	r := &RedisStorage{
		client: client,
		prefix: "portal:",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenRedis parses a redis:// URL and pings the server
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis storage: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis storage: ping: %w", err)
	}

	return client, nil
}

func (r *RedisStorage) key(key string) string {
	return r.prefix + key
}

func (r *RedisStorage) Read(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis storage: get: %w", err)
	}
	return v, true, nil
}

func (r *RedisStorage) Write(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis storage: set: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis storage: del: %w", err)
	}
	return nil
}
