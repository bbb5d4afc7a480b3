// Package queueboard is a monitoring dashboard for job queues stored in redis.
//
// The root package holds the configuration and the global dependencies,
// shared by the dashboard context and the command line.
package queueboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prometheusSDK "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"google.golang.org/grpc"

	"github.com/go-arrower/queueboard/alog"
)

var ErrMissingDependency = errors.New("missing dependency")

// Container holds global dependencies that can be used within each Context, to make initialisation easier.
type Container struct {
	Logger        alog.Logger
	MeterProvider *metric.MeterProvider
	TraceProvider *trace.TracerProvider

	Config *Config
	// Redis is nil, if no queue uses the RedisDriver.
	Redis redis.UniversalClient

	WebRouter *echo.Echo
	// DashboardRouter is mounted at Config.HTTP.BasePath.
	DashboardRouter *echo.Group

	registry        *prometheusSDK.Registry
	metricsEndpoint *http.Server
}

func (c *Container) EnsureAllDependenciesPresent() error {
	if c.Config == nil {
		return fmt.Errorf("%w: global config not found", ErrMissingDependency)
	}

	return nil
}

func InitialiseDefaultDependencies(ctx context.Context, conf *Config) (*Container, error) {
	if conf.InstanceName == "" {
		conf.InstanceName = uuid.NewString()
	}

	dc := &Container{
		Config:   conf,
		registry: prometheusSDK.NewRegistry(),
	}

	{ // observability
		resource := resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(conf.ApplicationName),
			semconv.ServiceInstanceIDKey.String(conf.InstanceName),
			// needs to match the app label of the logs, see lokiOptions
			attribute.String("app", conf.ApplicationName),
		)

		{ // traces
			opts := []otlptracegrpc.Option{
				otlptracegrpc.WithEndpoint(fmt.Sprintf("%s:%d", conf.OTEL.Host, conf.OTEL.Port)),
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithUserAgent(conf.ApplicationName)),
			}

			if conf.Environment == TestEnv {
				// while unit testing no otel endpoint is running.
				// Shutting down the trace provider would block until the ctx expires.
				opts = append(opts, otlptracegrpc.WithTimeout(10*time.Millisecond))
			}

			traceExporter, err := otlptracegrpc.New(ctx, opts...)
			if err != nil {
				return nil, fmt.Errorf("could not connect to trace exporter: %w", err)
			}

			traceProvider := trace.NewTracerProvider(
				trace.WithBatcher(traceExporter),
				trace.WithResource(resource),
				// every poll of the dashboard is traced, keep a fraction of them
				trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(0.2))),
			)
			if conf.Environment == LocalEnv {
				traceProvider = trace.NewTracerProvider(
					trace.WithBatcher(traceExporter, trace.WithBlocking()),
					trace.WithResource(resource),
					trace.WithSampler(trace.AlwaysSample()),
				)
			}

			dc.TraceProvider = traceProvider
			otel.SetTracerProvider(traceProvider)
		}

		{ // metrics
			dc.registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			exporter, err := prometheus.New(prometheus.WithRegisterer(dc.registry))
			if err != nil {
				return nil, fmt.Errorf("could not create to prometheus exporter: %w", err)
			}

			meterProvider := metric.NewMeterProvider(
				metric.WithResource(resource),
				metric.WithReader(exporter),
			)

			dc.MeterProvider = meterProvider
			otel.SetMeterProvider(meterProvider)
		}
	}

	{ // logger
		logger := alog.New()

		if conf.Environment == LocalEnv {
			logger = alog.NewDevelopment(lokiOptions(conf))
		}

		logger = logger.With(
			slog.String("application_name", conf.ApplicationName),
			slog.String("instance_name", conf.InstanceName),
			slog.String("git_hash", gitHash()),
			slog.String("environment", string(conf.Environment)),
		)

		dc.Logger = logger
	}

	{ // redis
		usesRedis := slices.ContainsFunc(conf.Queues, func(q QueueConfig) bool {
			return q.Driver == RedisDriver || q.Driver == ""
		})

		if usesRedis {
			dc.Redis = redis.NewClient(&redis.Options{
				Addr:     conf.Redis.Addr(),
				Password: conf.Redis.Password.Secret(),
				DB:       conf.Redis.DB,
			})
		}
	}

	{ // web router
		router := echo.New()
		router.HideBanner = true
		router.HidePort = true
		router.Logger.SetOutput(io.Discard)
		router.Validator = &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
		router.IPExtractor = echo.ExtractIPFromXFFHeader() // see: https://echo.labstack.com/docs/ip-address

		router.Use(middleware.Recover())
		router.Use(otelecho.Middleware(conf.OTEL.Hostname, otelecho.WithTracerProvider(dc.TraceProvider)))
		router.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  strings.ReplaceAll(conf.ApplicationName, "-", "_"),
			Registerer: dc.registry,
		}))
		router.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TargetHeader: "Request-Id",
			RequestIDHandler: func(c echo.Context, rid string) {
				c.SetRequest(c.Request().WithContext(alog.AddAttr(
					c.Request().Context(),
					slog.String("request_id", rid)),
				))
			},
		}))

		if conf.Environment == LocalEnv {
			router.Debug = true
		}

		dc.WebRouter = router
		dc.DashboardRouter = router.Group(strings.TrimSuffix(conf.HTTP.BasePath, "/"))
	}

	return dc, nil
}

func (c *Container) Start(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "starting all servers")

	if c.Config.HTTP.StatusEndpointEnabled {
		c.metricsEndpoint = serveMetrics(ctx, c)
	}

	addr := fmt.Sprintf(":%d", c.Config.HTTP.Port)
	c.Logger.InfoContext(ctx, "serving dashboard",
		slog.String("addr", addr),
		slog.String("base_path", c.Config.HTTP.BasePath),
	)

	go func() {
		err := c.WebRouter.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.Logger.InfoContext(ctx, "could not serve dashboard", slog.String("err", err.Error()))
		}
	}()

	return nil
}

func (c *Container) Shutdown(ctx context.Context) error {
	c.Logger.LogAttrs(ctx, alog.LevelInfo, "shutting down all servers")

	var errs []error

	errs = append(errs, c.WebRouter.Shutdown(ctx))

	if c.metricsEndpoint != nil {
		errs = append(errs, c.metricsEndpoint.Shutdown(ctx))
	}

	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}

	errs = append(errs,
		c.TraceProvider.Shutdown(ctx),
		c.MeterProvider.Shutdown(ctx),
	)

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	return nil
}

const (
	metricPath = "/metrics"
	statusPath = "/status"
)

func serveMetrics(ctx context.Context, di *Container) *http.Server {
	serverStartedAt := time.Now()

	mux := http.NewServeMux()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", di.Config.HTTP.StatusEndpointPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
	}

	di.Logger.InfoContext(ctx, "serving status endpoint",
		slog.String("addr", srv.Addr),
		slog.String("metric_path", metricPath),
		slog.String("status_path", statusPath),
	)

	mux.Handle(metricPath, promhttp.HandlerFor(
		di.registry,
		promhttp.HandlerOpts{ //nolint:exhaustruct
			EnableOpenMetrics: true, // to enable Examplars in the export format
		},
	))

	mux.HandleFunc(statusPath, func(w http.ResponseWriter, r *http.Request) {
		statusData := getSystemStatus(r.Context(), di, serverStartedAt)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if statusData.Status != statusOnline {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(statusData)
	})

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			di.Logger.DebugContext(ctx, "error serving http", slog.String("err", err.Error()))
		}
	}()

	return srv
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return err //nolint:wrapcheck // return the original validate error to not break the API for the caller.
	}

	return nil
}

// lokiOptions labels the stream of this instance, so that the logs can be
// correlated with the traces and metrics of the same resource.
func lokiOptions(conf *Config) alog.LokiHandlerOptions {
	return alog.LokiHandlerOptions{
		PushURL: conf.Loki.PushURL,
		Labels: map[string]string{
			"app":      conf.ApplicationName,
			"instance": conf.InstanceName,
		},
	}
}

func gitHash() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return "unknown"
}
