package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revoker 注销令牌名单
type Revoker interface {
	Revoke(ctx context.Context, c *Claims) error
	Revoked(ctx context.Context, c *Claims) (bool, error)
}

// RedisRevoker 以 jti 为 key，过期时间与令牌一致
type RedisRevoker struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisRevoker(rdb *redis.Client) *RedisRevoker {
	return &RedisRevoker{RDB: rdb, Prefix: "revoked_jti:"}
}

func (r *RedisRevoker) Revoke(ctx context.Context, c *Claims) error {
	ttl := time.Minute
	if c.ExpiresAt != nil {
		if d := time.Until(c.ExpiresAt.Time); d > 0 {
			ttl = d
		}
	}
	return r.RDB.Set(ctx, r.Prefix+c.ID, 1, ttl).Err()
}

func (r *RedisRevoker) Revoked(ctx context.Context, c *Claims) (bool, error) {
	err := r.RDB.Get(ctx, r.Prefix+c.ID).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// NopRevoker 未配置 redis 时使用：注销只在客户端丢弃令牌
type NopRevoker struct{}

func (NopRevoker) Revoke(context.Context, *Claims) error          { return nil }
func (NopRevoker) Revoked(context.Context, *Claims) (bool, error) { return false, nil }
