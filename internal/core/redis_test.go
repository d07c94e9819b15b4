// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/perkhub/internal/config"
)

func TestNewRedisDoesNotDial(t *testing.T) {
	r, err := NewRedis(config.RedisConfig{URL: "redis://127.0.0.1:1/0", PoolSize: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	assert.Equal(t, "127.0.0.1:1", r.Addr())
	assert.NotNil(t, r.PoolStats())

	err = r.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{URL: "not-a-url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}
