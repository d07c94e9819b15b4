// AngelaMos | 2026
// main_test.go

package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carterperez-dev/perkhub/internal/config"
)

func TestClosersRunInReverseOrder(t *testing.T) {
	var (
		cleanup closers
		order   []string
	)
	cleanup.add(func() { order = append(order, "storage") })
	cleanup.add(func() { order = append(order, "redis") })

	cleanup.run()

	assert.Equal(t, []string{"redis", "storage"}, order)
}

func TestClosersRunAfterEarlyReturn(t *testing.T) {
	var released []string

	startup := func(failAt string) {
		var cleanup closers
		defer cleanup.run()

		for _, step := range []string{"storage", "redis", "jwt"} {
			if step == failAt {
				return
			}
			cleanup.add(func() { released = append(released, step) })
		}
	}

	startup("jwt")
	assert.Equal(t, []string{"redis", "storage"}, released)
}

func TestSetupLoggerLevels(t *testing.T) {
	logger := setupLogger(config.LogConfig{Level: "warn", Format: "json"})
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
}
