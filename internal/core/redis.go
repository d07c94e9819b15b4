// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/perkhub/internal/config"
)

const redisPingTimeout = 2 * time.Second

// Redis holds the rate limiter's shared buckets. The client dials lazily,
// so an unreachable server never blocks startup; the limiters switch to
// local buckets until it answers again.
type Redis struct {
	Client *redis.Client
}

func NewRedis(cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = redisPingTimeout
	opts.PoolTimeout = 5 * time.Second
	opts.ConnMaxIdleTime = 5 * time.Minute
	opts.MaxRetries = 1

	return &Redis{Client: redis.NewClient(opts)}, nil
}

// Addr is the host:port the client dials, for logs.
func (r *Redis) Addr() string {
	return r.Client.Options().Addr
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	return r.Client.Close()
}
