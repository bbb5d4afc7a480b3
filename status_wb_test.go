package queueboard

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestGetSystemStatus(t *testing.T) {
	t.Parallel()

	t.Run("without redis", func(t *testing.T) {
		t.Parallel()

		di := &Container{Config: &Config{ApplicationName: "queueboard", Environment: TestEnv}}

		status := getSystemStatus(context.Background(), di, time.Now().Add(-time.Minute))
		assert.Equal(t, statusOnline, status.Status)
		assert.Equal(t, "1m0s", status.Uptime)
		assert.Nil(t, status.Redis)
	})

	t.Run("redis offline", func(t *testing.T) {
		t.Parallel()

		client := redis.NewClient(&redis.Options{Addr: "localhost:1", MaxRetries: -1})
		defer client.Close()

		di := &Container{Config: &Config{Environment: TestEnv}, Redis: client}

		status := getSystemStatus(context.Background(), di, time.Now())
		assert.Equal(t, statusDegraded, status.Status)
		assert.Contains(t, status.Redis.Status, "err: ")
	})
}
