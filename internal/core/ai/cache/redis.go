package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "snap2cook:"

// RedisStore Redis 緩存服務
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 創建 Redis 緩存服務
func NewRedisStore(cfg config.CacheConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Get 獲取緩存
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", common.ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get cache: %w", err)
	}
	return val, nil
}

// Set 設置緩存
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Ping 檢查連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
