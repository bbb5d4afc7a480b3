package queueboard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/queueboard"
)

func TestInitialiseDefaultDependencies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty config", func(t *testing.T) {
		t.Parallel()

		di, err := queueboard.InitialiseDefaultDependencies(ctx, &queueboard.Config{Environment: queueboard.TestEnv})
		require.NoError(t, err)

		assert.NoError(t, di.EnsureAllDependenciesPresent())
		assert.NotNil(t, di.Logger)
		assert.NotNil(t, di.TraceProvider)
		assert.NotNil(t, di.MeterProvider)
		assert.NotNil(t, di.WebRouter)
		assert.NotNil(t, di.DashboardRouter)
		assert.Nil(t, di.Redis, "no queue uses redis")
		assert.NotEmpty(t, di.Config.InstanceName, "falls back to a generated name")
	})

	t.Run("redis queue", func(t *testing.T) {
		t.Parallel()

		di, err := queueboard.InitialiseDefaultDependencies(ctx, &queueboard.Config{
			Environment: queueboard.TestEnv,
			Redis:       queueboard.Redis{Host: "localhost", Port: 6379},
			Queues:      []queueboard.QueueConfig{{Name: "emails", Driver: queueboard.RedisDriver}},
		})
		require.NoError(t, err)

		assert.NotNil(t, di.Redis)
		assert.NoError(t, di.Redis.Close())
	})

	t.Run("base path", func(t *testing.T) {
		t.Parallel()

		di, err := queueboard.InitialiseDefaultDependencies(ctx, &queueboard.Config{
			Environment: queueboard.TestEnv,
			HTTP:        queueboard.HTTP{BasePath: "/admin/queues/"},
		})
		require.NoError(t, err)

		di.DashboardRouter.GET("/ping", func(c echo.Context) error {
			return c.String(http.StatusOK, "pong")
		})

		rec := httptest.NewRecorder()
		di.WebRouter.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/queues/ping", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pong", rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("Request-Id"))
	})
}

func TestContainer_Shutdown(t *testing.T) {
	t.Parallel()

	di, err := queueboard.InitialiseDefaultDependencies(context.Background(), &queueboard.Config{Environment: queueboard.TestEnv})
	require.NoError(t, err)

	assert.NoError(t, di.Shutdown(context.Background()))
}
