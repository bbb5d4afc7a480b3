package init

import (
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// mutationsPerSecond limits the mutating requests per client ip.
const mutationsPerSecond = 10

func registerDashboardRoutes(di *DashboardContext) {
	r := di.globalContainer.DashboardRouter

	r.GET("", di.queuesController.Index())
	r.GET("/", di.queuesController.Index())

	limit := middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(mutationsPerSecond)))

	{
		q := r.Group("/queues")
		q.GET("", di.queuesController.ListQueues())
		q.GET("/", di.queuesController.ListQueues())
		q.PUT("/:queueName/retry", di.queuesController.RetryAll(), limit)
		q.PUT("/:queueName/clean/:status", di.queuesController.CleanQueue(), limit)
		q.PUT("/:queueName/:jobId/retry", di.queuesController.RetryJob(), limit)
		q.PUT("/:queueName/:jobId/promote", di.queuesController.PromoteJob(), limit)
	}
}
