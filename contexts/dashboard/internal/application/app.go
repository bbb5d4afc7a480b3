package application

import (
	"errors"

	"github.com/go-arrower/queueboard/app"
)

// ErrQueueNotFound is returned if a command names a queue the dashboard is not configured for.
var ErrQueueNotFound = errors.New("queue not found")

// App is a dependency injection container.
type App struct {
	GetQueues  app.Query[GetQueuesQuery, GetQueuesResponse]
	RetryJob   app.Command[RetryJobCommand]
	PromoteJob app.Command[PromoteJobCommand]
	RetryAll   app.Command[RetryAllCommand]
	CleanQueue app.Command[CleanQueueCommand]
}
