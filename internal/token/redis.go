package token

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisHash 默认哈希键
const DefaultRedisHash = "drone-console:storage"

// RedisStore 基于Redis哈希的存储
// 多台主机共用同一个登录槽位时使用
type RedisStore struct {
	client *redis.Client
	hash   string
}

// NewRedisStore 创建Redis存储
// 参数: client Redis客户端, hash 哈希键（为空时使用默认值）
// 返回值: *RedisStore 存储实例
func NewRedisStore(client *redis.Client, hash string) *RedisStore {
	if hash == "" {
		hash = DefaultRedisHash
	}
	return &RedisStore{client: client, hash: hash}
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := r.client.HGet(ctx, r.hash, Key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load token from redis: %w", err)
	}
	return token, nil
}

func (r *RedisStore) Save(ctx context.Context, token string) error {
	if err := r.client.HSet(ctx, r.hash, Key, token).Err(); err != nil {
		return fmt.Errorf("save token to redis: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context) error {
	if err := r.client.HDel(ctx, r.hash, Key).Err(); err != nil {
		return fmt.Errorf("remove token from redis: %w", err)
	}
	return nil
}

// Close 关闭Redis连接
func (r *RedisStore) Close() error {
	return r.client.Close()
}
