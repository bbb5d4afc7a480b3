package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/go-arrower/queueboard/alog"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/application"
	"github.com/go-arrower/queueboard/contexts/dashboard/internal/domain/queues"
)

func NewQueuesController(logger alog.Logger, appDI application.App, title string, basePath string) *QueuesController {
	return &QueuesController{
		logger:   logger,
		appDI:    appDI,
		title:    title,
		basePath: basePath,
	}
}

type QueuesController struct {
	logger alog.Logger
	appDI  application.App

	title    string
	basePath string
}

// Index shows the dashboard page. The page polls ListQueues itself.
func (qc *QueuesController) Index() func(c echo.Context) error {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "index.html", echo.Map{
			"Title":    qc.title,
			"BasePath": qc.basePath,
		})
	}
}

func (qc *QueuesController) ListQueues() func(c echo.Context) error {
	return func(c echo.Context) error {
		res, err := qc.appDI.GetQueues.H(c.Request().Context(), application.GetQueuesQuery{Params: c.QueryParams()})
		if err != nil {
			return httpError(err)
		}

		return c.JSON(http.StatusOK, res)
	}
}

func (qc *QueuesController) RetryJob() func(c echo.Context) error {
	return func(c echo.Context) error {
		cmd := application.RetryJobCommand{
			Queue: queueName(c),
			JobID: c.Param("jobId"),
		}
		if err := c.Validate(cmd); err != nil {
			return httpError(err)
		}

		if err := qc.appDI.RetryJob.H(c.Request().Context(), cmd); err != nil {
			return httpError(err)
		}

		qc.logger.InfoContext(c.Request().Context(), "retried job", slog.String("queue", cmd.Queue), slog.String("job", cmd.JobID))

		return c.JSON(http.StatusOK, echo.Map{})
	}
}

func (qc *QueuesController) PromoteJob() func(c echo.Context) error {
	return func(c echo.Context) error {
		cmd := application.PromoteJobCommand{
			Queue: queueName(c),
			JobID: c.Param("jobId"),
		}
		if err := c.Validate(cmd); err != nil {
			return httpError(err)
		}

		if err := qc.appDI.PromoteJob.H(c.Request().Context(), cmd); err != nil {
			return httpError(err)
		}

		qc.logger.InfoContext(c.Request().Context(), "promoted job", slog.String("queue", cmd.Queue), slog.String("job", cmd.JobID))

		return c.JSON(http.StatusOK, echo.Map{})
	}
}

func (qc *QueuesController) RetryAll() func(c echo.Context) error {
	return func(c echo.Context) error {
		cmd := application.RetryAllCommand{Queue: queueName(c)}
		if err := c.Validate(cmd); err != nil {
			return httpError(err)
		}

		if err := qc.appDI.RetryAll.H(c.Request().Context(), cmd); err != nil {
			return httpError(err)
		}

		qc.logger.InfoContext(c.Request().Context(), "retried all failed jobs", slog.String("queue", cmd.Queue))

		return c.JSON(http.StatusOK, echo.Map{})
	}
}

func (qc *QueuesController) CleanQueue() func(c echo.Context) error {
	return func(c echo.Context) error {
		cmd := application.CleanQueueCommand{
			Queue:  queueName(c),
			Status: queues.Status(c.Param("status")),
		}
		if err := c.Validate(cmd); err != nil {
			return httpError(err)
		}

		if err := qc.appDI.CleanQueue.H(c.Request().Context(), cmd); err != nil {
			return httpError(err)
		}

		qc.logger.InfoContext(c.Request().Context(), "cleaned jobs", slog.String("queue", cmd.Queue), slog.String("status", string(cmd.Status)))

		return c.JSON(http.StatusOK, echo.Map{})
	}
}

// queueName returns the queue name, percent-decoded exactly once.
// echo routes on the decoded URL.Path and only keeps the params escaped,
// if the path needs RawPath to be represented, e.g. for an encoded slash.
func queueName(c echo.Context) string {
	name := c.Param("queueName")

	if c.Request().URL.RawPath == "" {
		return name
	}

	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}

	return name
}

// httpError maps the errors of the use cases to a status code.
// All other errors are left to the default error handler of echo.
func httpError(err error) error {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, application.ErrQueueNotFound), errors.Is(err, queues.ErrJobNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, queues.ErrInvalidStatus), errors.As(err, &validationErrs):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	default:
		return fmt.Errorf("%w", err)
	}
}
