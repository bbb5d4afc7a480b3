//go:build integration

package tests

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/redis/go-redis/v9"
)

//nolint:gochecknoglobals // the variables are used on purpose for a singleton pattern.
var (
	muRedis        = &sync.Mutex{}
	singletonRedis *RedisDocker
)

//nolint:gochecknoglobals,exhaustruct // only set required configuration
var defaultRedisRunOptions = dockertest.RunOptions{
	Repository: "redis",
	Tag:        "7-alpine",
}

// GetRedisDockerForIntegrationTestingInstance returns a connected RedisDocker.
// Subsequent calls return the same instance to prevent multiple docker containers to spin up,
// if you have a lot of integration tests running in parallel.
// In case of an issue, it panics.
func GetRedisDockerForIntegrationTestingInstance() *RedisDocker {
	muRedis.Lock()
	defer muRedis.Unlock()

	if singletonRedis != nil {
		return singletonRedis
	}

	var client *redis.Client

	retryFunc := func(resource *dockertest.Resource) func() error {
		return func() error {
			c := redis.NewClient(&redis.Options{Addr: "localhost:" + resource.GetPort("6379/tcp")})

			if err := c.Ping(context.Background()).Err(); err != nil {
				_ = c.Close()

				return err //nolint:wrapcheck // only used for retrying
			}

			client = c

			return nil
		}
	}

	options := defaultRedisRunOptions
	options.Name = fmt.Sprintf("queueboard-testing-redis-%d", rand.Intn(1000)) //nolint:gosec,mnd // prevent collisions only

	cleanup, err := GetDockerContainerInstance(&options, retryFunc)
	if err != nil {
		panic(err)
	}

	singletonRedis = &RedisDocker{
		client:        client,
		cleanupDocker: cleanup,
	}

	return singletonRedis
}

type RedisDocker struct {
	client        *redis.Client
	cleanupDocker func() error
}

// Client returns the connection to the redis server in the container.
func (rd *RedisDocker) Client() *redis.Client {
	return rd.client
}

// NewPrefix returns a key prefix no other test uses.
// Tests running in parallel stay isolated by using their own prefix instead of their own database.
func (rd *RedisDocker) NewPrefix() string {
	return "test-" + uuid.NewString()
}

// Cleanup closes the connection, stops, and removes the docker container.
// It cannot be deferred in TestMain, if it exists with os.Exit(code), as that does not execute the defer stack.
// In case of an issue, it panics.
func (rd *RedisDocker) Cleanup() {
	if err := rd.client.Close(); err != nil {
		panic(err)
	}

	if err := rd.cleanupDocker(); err != nil {
		panic(err)
	}
}
