// internal/storage/redis.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"delivery-engine/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// Redis is a KV backend for deployments that sync client state server-side.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed KV store.
func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &Redis{client: rdb}, nil
}

// NewRedisFromClient wraps an existing client. Tests inject miniredis or
// redismock clients through here.
func NewRedisFromClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Ping tests the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
