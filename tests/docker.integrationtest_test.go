//go:build integration

package tests_test

import (
	"context"
	"testing"

	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/queueboard/tests"
)

func TestStartDockerContainer(t *testing.T) {
	t.Parallel()

	t.Run("invalid docker run options", func(t *testing.T) {
		t.Parallel()

		cleanup, err := tests.StartDockerContainer(nil, nil)
		assert.ErrorIs(t, err, tests.ErrDockerFailure)
		assert.Nil(t, cleanup)
	})

	t.Run("invalid docker retry func", func(t *testing.T) {
		t.Parallel()

		cleanup, err := tests.StartDockerContainer(&dockertest.RunOptions{Repository: "redis"}, nil)
		assert.ErrorIs(t, err, tests.ErrDockerFailure)
		assert.Nil(t, cleanup)
	})

	t.Run("start docker container", func(t *testing.T) {
		t.Parallel()

		runOptions := &dockertest.RunOptions{
			Repository: "redis",
			Tag:        "7-alpine",
		}

		retryFunc := func(resource *dockertest.Resource) func() error {
			return func() error {
				client := redis.NewClient(&redis.Options{Addr: "localhost:" + resource.GetPort("6379/tcp")})
				defer client.Close()

				return client.Ping(context.Background()).Err() //nolint:wrapcheck
			}
		}

		cleanup, err := tests.StartDockerContainer(runOptions, retryFunc)
		assert.NoError(t, err)
		assert.NotNil(t, cleanup)

		err = cleanup()
		assert.NoError(t, err)
	})
}

func TestGetDockerContainerInstance(t *testing.T) {
	t.Parallel()

	_, err := tests.GetDockerContainerInstance(&dockertest.RunOptions{Repository: "redis"}, nil)
	assert.ErrorIs(t, err, tests.ErrMissingInstanceName)
}

func TestGetRedisDockerForIntegrationTestingInstance(t *testing.T) {
	t.Parallel()

	rd := tests.GetRedisDockerForIntegrationTestingInstance()
	assert.Same(t, rd, tests.GetRedisDockerForIntegrationTestingInstance())

	assert.NoError(t, rd.Client().Ping(context.Background()).Err())
	assert.NotEqual(t, rd.NewPrefix(), rd.NewPrefix())
}
