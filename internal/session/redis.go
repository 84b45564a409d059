package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend stores the token without expiry; the token itself carries one.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client, key: redisKey(TokenKey)}
}

func (r *RedisBackend) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return token, nil
}

func (r *RedisBackend) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func redisKey(name string) string {
	return fmt.Sprintf("storefront:session:%s", name)
}
