package queueboard

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/go-arrower/queueboard/secret"
)

// Config is a structure used for service configuration.
// It is intended to be mapped by viper.
type Config struct {
	ApplicationName string `mapstructure:"application_name"`
	InstanceName    string `mapstructure:"instance_name"`

	Environment Environment `mapstructure:"environment"`

	HTTP   HTTP          `mapstructure:"http"`
	Redis  Redis         `mapstructure:"redis"`
	Queues []QueueConfig `mapstructure:"queues"`
	OTEL   OTEL          `mapstructure:"otel"`
	Loki   Loki          `mapstructure:"loki"`
	Watch  Watch         `mapstructure:"watch"`
}

const (
	LocalEnv       Environment = "local"
	TestEnv        Environment = "test"
	DevelopmentEnv Environment = "dev"
	ProductionEnv  Environment = "prod"
)

// Environments is the list of all supported environments.
func Environments() []Environment {
	return []Environment{LocalEnv, TestEnv, DevelopmentEnv, ProductionEnv}
}

type Environment string

const (
	RedisDriver  Driver = "redis"
	MemoryDriver Driver = "memory"
)

// Driver selects the backend of a queue.
// MemoryDriver serves generated jobs without any redis, e.g. for a demo.
type Driver string

type (
	HTTP struct {
		Port int `mapstructure:"port" json:"port"`
		// BasePath mounts the dashboard below a prefix, e.g. /admin/queues.
		BasePath              string `mapstructure:"base_path"               json:"basePath"`
		StatusEndpointEnabled bool   `mapstructure:"status_endpoint_enabled" json:"-"`
		StatusEndpointPort    int    `mapstructure:"status_endpoint_port"    json:"-"`
	}

	Redis struct {
		Host     string        `mapstructure:"host"            json:"host"`
		Port     int           `mapstructure:"port"            json:"port"`
		Password secret.Secret `mapstructure:"password,squash" json:"-"`
		DB       int           `mapstructure:"db"              json:"db"`
	}

	// QueueConfig is one queue shown on the dashboard. The first queue
	// is used to report the redis server stats.
	QueueConfig struct {
		Name   string `mapstructure:"name"   json:"name"`
		Prefix string `mapstructure:"prefix" json:"prefix"`
		Driver Driver `mapstructure:"driver" json:"driver"`
	}

	OTEL struct {
		Host     string `mapstructure:"host"     json:"host"`
		Port     int    `mapstructure:"port"     json:"port"`
		Hostname string `mapstructure:"hostname" json:"hostname"`
	}

	// Loki receives the logs of the LocalEnv, labeled with application_name and instance_name.
	Loki struct {
		PushURL string `mapstructure:"push_url" json:"pushURL"`
	}

	// Watch configures the terminal dashboard.
	Watch struct {
		URL      string        `mapstructure:"url"      json:"url"`
		Interval time.Duration `mapstructure:"interval" json:"interval"`
	}
)

// Addr returns host:port of the redis server.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// DefaultViper returns a new viper instance with all default values
// from Config set. Every value can be overwritten by an environment variable
// with the prefix QUEUEBOARD_, e.g. QUEUEBOARD_REDIS_HOST.
func DefaultViper() *Viper {
	vip := viper.New()

	vip.SetEnvPrefix("queueboard")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	vip.SetDefault("application_name", "queueboard")
	vip.SetDefault("instance_name", "")

	vip.SetDefault("environment", "local")

	vip.SetDefault("http.port", 8080)
	vip.SetDefault("http.base_path", "")
	vip.SetDefault("http.status_endpoint_enabled", true)
	vip.SetDefault("http.status_endpoint_port", 2223)

	vip.SetDefault("redis.host", "localhost")
	vip.SetDefault("redis.port", 6379)
	vip.SetDefault("redis.password", "")
	vip.SetDefault("redis.db", 0)

	vip.SetDefault("queues", []map[string]any{})

	vip.SetDefault("otel.host", "localhost")
	vip.SetDefault("otel.port", 4317)
	vip.SetDefault("otel.hostname", "")

	vip.SetDefault("loki.push_url", "http://localhost:3100/api/prom/push")

	vip.SetDefault("watch.url", "http://localhost:8080")
	vip.SetDefault("watch.interval", "5s")

	return &Viper{Viper: vip}
}

var errConfigLoadFailed = errors.New("loading configuration failed")

// Viper is a wrapper around viper.Viper for configuration loading.
// The only purpose is to overwrite the Unmarshal method,
// so that the custom types of Config are decoded and validated.
type Viper struct {
	*viper.Viper
}

func (vip *Viper) Unmarshal(rawVal any, _ ...viper.DecoderConfigOption) error {
	err := vip.Viper.Unmarshal(rawVal, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		allowedValuesHookFunc(Environments()),
		allowedValuesHookFunc([]Driver{RedisDriver, MemoryDriver}),
	)))
	if err != nil {
		return fmt.Errorf("%w: could not decode configuration into struct: %v", errConfigLoadFailed, err)
	}

	config, ok := rawVal.(*Config)
	if !ok {
		return fmt.Errorf("%w: could not cast to queueboard.Config", errConfigLoadFailed)
	}

	// secret.Secret has no exported fields and has to be decoded by hand.
	err = vip.Viper.UnmarshalKey(
		"redis.password",
		&config.Redis.Password,
		viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc()),
	)
	if err != nil {
		return fmt.Errorf("%w: could not decode secret: %v", errConfigLoadFailed, err)
	}

	for i, q := range config.Queues {
		if q.Name == "" {
			return fmt.Errorf("%w: queue %d has no name", errConfigLoadFailed, i)
		}

		if q.Driver == "" {
			config.Queues[i].Driver = RedisDriver
		}
	}

	return nil
}

// allowedValuesHookFunc rejects every value of type T not in allowed.
func allowedValuesHookFunc[T ~string](allowed []T) mapstructure.DecodeHookFuncType {
	return func(_ reflect.Type, t reflect.Type, data any) (interface{}, error) {
		if t != reflect.TypeOf(T("")) {
			return data, nil
		}

		s, _ := data.(string)
		if s == "" || slices.Contains(allowed, T(s)) {
			return data, nil
		}

		values := make([]string, 0, len(allowed))
		for _, v := range allowed {
			values = append(values, string(v))
		}

		return data, fmt.Errorf("value %q is not allowed, use one of: %s", s, strings.Join(values, ", ")) //nolint:err113,lll // accept dynamic error
	}
}
