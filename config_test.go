package queueboard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/queueboard"
)

func TestDefaultViper(t *testing.T) {
	t.Parallel()

	vip := queueboard.DefaultViper()
	assert.NotEmpty(t, vip)

	// This test enforces the default values, so whenever they change,
	// make sure to also update the README!

	assert.Equal(t, "queueboard", vip.GetString("application_name"))
	assert.Empty(t, vip.Get("instance_name"))

	assert.Equal(t, queueboard.LocalEnv, queueboard.Environment(vip.GetString("environment")))

	assert.Equal(t, 8080, vip.GetInt("http.port"))
	assert.Equal(t, "", vip.GetString("http.base_path"))
	assert.True(t, vip.GetBool("http.status_endpoint_enabled"))
	assert.Equal(t, 2223, vip.GetInt("http.status_endpoint_port"))

	assert.Equal(t, "localhost", vip.GetString("redis.host"))
	assert.Equal(t, 6379, vip.GetInt("redis.port"))
	assert.Equal(t, "", vip.GetString("redis.password"))
	assert.Equal(t, 0, vip.GetInt("redis.db"))

	assert.Equal(t, "localhost", vip.GetString("otel.host"))
	assert.Equal(t, 4317, vip.GetInt("otel.port"))
	assert.Equal(t, "", vip.GetString("otel.hostname"))

	assert.Equal(t, "http://localhost:3100/api/prom/push", vip.GetString("loki.push_url"))

	assert.Equal(t, "http://localhost:8080", vip.GetString("watch.url"))
	assert.Equal(t, 5*time.Second, vip.GetDuration("watch.interval"))
}

func TestViper_Unmarshal(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		conf := queueboard.Config{}

		err := queueboard.DefaultViper().Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, queueboard.LocalEnv, conf.Environment)
		assert.Equal(t, "localhost:6379", conf.Redis.Addr())
		assert.True(t, conf.Redis.Password.IsEmpty())
		assert.Empty(t, conf.Queues)
		assert.Equal(t, 5*time.Second, conf.Watch.Interval)
	})

	t.Run("config file", func(t *testing.T) {
		t.Parallel()

		vip := queueboard.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		conf := queueboard.Config{}

		err := vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, queueboard.TestEnv, conf.Environment)
		assert.Equal(t, "/admin/queues", conf.HTTP.BasePath)
		assert.Equal(t, 9090, conf.HTTP.Port)
		assert.Equal(t, "redis.internal:6380", conf.Redis.Addr())
		assert.Equal(t, 2, conf.Redis.DB)
		assert.Equal(t, 2*time.Second, conf.Watch.Interval)
		assert.Equal(t, []queueboard.QueueConfig{
			{Name: "emails", Driver: queueboard.RedisDriver},
			{Name: "images", Prefix: "jobs", Driver: queueboard.MemoryDriver},
		}, conf.Queues)
	})

	t.Run("unmarshal secret", func(t *testing.T) {
		t.Parallel()

		vip := queueboard.DefaultViper()
		vip.SetConfigFile("./testdata/config/test-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		conf := queueboard.Config{}

		err := vip.Unmarshal(&conf)
		assert.NoError(t, err)
		assert.Equal(t, "my-redis-secret", conf.Redis.Password.Secret())
		assert.Equal(t, "******", conf.Redis.Password.String())
	})

	t.Run("invalid environment", func(t *testing.T) {
		t.Parallel()

		vip := queueboard.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-config.yaml")
		require.NoError(t, vip.ReadInConfig())

		err := vip.Unmarshal(&queueboard.Config{})
		assert.Error(t, err, "should fail when using unsupported enum values")
		assert.Contains(t, err.Error(), "use one of: local, test, dev, prod", "error message should list out all accepted environments")
	})

	t.Run("invalid driver", func(t *testing.T) {
		t.Parallel()

		vip := queueboard.DefaultViper()
		vip.SetConfigFile("./testdata/config/invalid-driver.yaml")
		require.NoError(t, vip.ReadInConfig())

		err := vip.Unmarshal(&queueboard.Config{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "use one of: redis, memory")
	})

	t.Run("queue without name", func(t *testing.T) {
		t.Parallel()

		vip := queueboard.DefaultViper()
		vip.SetConfigFile("./testdata/config/unnamed-queue.yaml")
		require.NoError(t, vip.ReadInConfig())

		err := vip.Unmarshal(&queueboard.Config{})
		assert.Error(t, err)
	})

	t.Run("unsupported config type", func(t *testing.T) {
		t.Parallel()

		conf := struct{ A string }{}

		err := queueboard.DefaultViper().Unmarshal(&conf)
		assert.Error(t, err)
	})
}

func TestViper_Env(t *testing.T) { //nolint:paralleltest // t.Setenv
	t.Setenv("QUEUEBOARD_REDIS_HOST", "redis.from.env")
	t.Setenv("QUEUEBOARD_HTTP_PORT", "9999")

	conf := queueboard.Config{}

	err := queueboard.DefaultViper().Unmarshal(&conf)
	assert.NoError(t, err)
	assert.Equal(t, "redis.from.env", conf.Redis.Host)
	assert.Equal(t, 9999, conf.HTTP.Port)
}
