// Package cache provides the stores backing the gin-cache response cache
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hirescape/job-api/config"

	"github.com/chenyahui/gin-cache/persist"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// RedisStore keeps cached responses in redis so they are shared between
// instances
type RedisStore struct {
	client *redis.Client
}

var _ persist.CacheStore = (*RedisStore)(nil)

// NewRedisStore connects to the configured redis and fails if it doesn't
// answer a ping
func NewRedisStore(ctx context.Context, c config.Cache) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s, %w", c.RedisAddr, err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Set(key string, value any, expire time.Duration) error {
	payload, err := persist.Serialize(value)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.client.Set(ctx, key, payload, expire).Err()
}

func (s *RedisStore) Get(key string, value any) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return persist.ErrCacheMiss
		}

		return err
	}

	return persist.Deserialize(payload, value)
}

func (s *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
