// Package init is the context's startup API.
//
// It builds the queues from the configuration, sets up the use cases
// and registers the routes of the dashboard.
package init

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/go-arrower/queueboard"
	"github.com/go-arrower/queueboard/app"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/application"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/interfaces/repository"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/interfaces/web"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/views"
)

const (
	contextName = "dashboard"

	// demoJobs is the number of generated jobs of a queue using the memory driver.
	demoJobs = 60
)

func NewDashboardContext(ctx context.Context, di *queueboard.Container) (*DashboardContext, error) {
	err := ensureRequiredDependencies(di)
	if err != nil {
		return nil, fmt.Errorf("missing dependencies to initialise context dashboard: %w", err)
	}

	dashboard, err := setupDashboardContext(di)
	if err != nil {
		return nil, fmt.Errorf("could not initialise context dashboard: %w", err)
	}

	di.Logger.DebugContext(ctx, "context dashboard initialised", slog.Int("queues", len(dashboard.queues)))

	return dashboard, nil
}

type DashboardContext struct {
	globalContainer *queueboard.Container

	queues queues.Refs

	queuesController *web.QueuesController
}

func (c *DashboardContext) Shutdown(_ context.Context) error {
	return nil
}

func ensureRequiredDependencies(di *queueboard.Container) error {
	if di.Logger == nil {
		return fmt.Errorf("%w: logger", queueboard.ErrMissingDependency)
	}

	if di.Config == nil {
		return fmt.Errorf("%w: config", queueboard.ErrMissingDependency)
	}

	if di.TraceProvider == nil || di.MeterProvider == nil {
		return fmt.Errorf("%w: observability", queueboard.ErrMissingDependency)
	}

	if di.WebRouter == nil || di.DashboardRouter == nil {
		return fmt.Errorf("%w: web router", queueboard.ErrMissingDependency)
	}

	for _, q := range di.Config.Queues {
		if q.Driver != queueboard.MemoryDriver && di.Redis == nil {
			return fmt.Errorf("%w: redis for queue %s", queueboard.ErrMissingDependency, q.Name)
		}
	}

	return nil
}

func setupDashboardContext(di *queueboard.Container) (*DashboardContext, error) {
	logger := di.Logger.With(slog.String("context", contextName))

	refs := make(queues.Refs, 0, len(di.Config.Queues))
	for _, q := range di.Config.Queues {
		if _, exists := refs.Find(q.Name); exists {
			return nil, fmt.Errorf("queue %s is configured twice", q.Name) //nolint:err113 // configuration error
		}

		refs = append(refs, queues.Ref{
			Name:  q.Name,
			Queue: repository.NewTracedQueue(di.TraceProvider, q.Name, newQueue(di, q)),
		})
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("could not load views: %w", err)
	}

	di.WebRouter.Renderer = renderer

	dashboard := &DashboardContext{
		globalContainer: di,
		queues:          refs,
		queuesController: web.NewQueuesController(
			logger,
			setupApplication(di, logger, refs),
			di.Config.ApplicationName,
			di.Config.HTTP.BasePath,
		),
	}

	registerDashboardRoutes(dashboard)

	return dashboard, nil
}

func newQueue(di *queueboard.Container, conf queueboard.QueueConfig) queues.Queue { //nolint:ireturn // port of the queue engine
	if conf.Driver == queueboard.MemoryDriver {
		q := repository.NewMemoryQueue()
		q.Seed(gofakeit.New(0), demoJobs)

		return q
	}

	return repository.NewRedisQueue(di.Redis, conf.Name, conf.Prefix)
}

func setupApplication(di *queueboard.Container, logger *slog.Logger, refs queues.Refs) application.App {
	return application.App{
		GetQueues: app.NewInstrumentedQuery(di.TraceProvider, di.MeterProvider, logger,
			application.NewGetQueuesQueryHandler(logger, refs),
		),
		RetryJob: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedCommand(nil, application.NewRetryJobCommandHandler(refs)),
		),
		PromoteJob: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedCommand(nil, application.NewPromoteJobCommandHandler(refs)),
		),
		RetryAll: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedCommand(nil, application.NewRetryAllCommandHandler(refs)),
		),
		CleanQueue: app.NewInstrumentedCommand(di.TraceProvider, di.MeterProvider, logger,
			app.NewValidatedCommand(nil, application.NewCleanQueueCommandHandler(refs)),
		),
	}
}
